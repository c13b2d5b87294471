package transport

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-deposit/pkg/record"
)

// RequestArgs describes one outbound call.
type RequestArgs struct {
	URL    string
	Method string
	Data   any
	Params map[string]any
}

// DefaultArgs is the base configuration a session starts from.
func DefaultArgs() RequestArgs {
	return RequestArgs{URL: "/", Method: http.MethodGet}
}

// Clone deep copies the arguments, including Data and Params.
func (a RequestArgs) Clone() RequestArgs {
	out := RequestArgs{
		URL:    a.URL,
		Method: a.Method,
		Data:   record.Copy(a.Data),
	}
	if a.Params != nil {
		out.Params = record.Record(a.Params).Clone()
	}
	return out
}

// MergeArgs returns base with each override applied in order. Non-empty
// scalar fields replace, Data replaces when set, Params merge deeply. None of
// the inputs are modified.
func MergeArgs(base RequestArgs, overrides ...RequestArgs) RequestArgs {
	out := base.Clone()
	for _, override := range overrides {
		if url := strings.TrimSpace(override.URL); url != "" {
			out.URL = url
		}
		if method := strings.TrimSpace(override.Method); method != "" {
			out.Method = strings.ToUpper(method)
		}
		if override.Data != nil {
			out.Data = record.Copy(override.Data)
		}
		if len(override.Params) > 0 {
			out.Params = record.Merge(out.Params, override.Params)
		}
	}
	return out
}

// Endpoints holds the schema and form-definition URLs of a session.
type Endpoints struct {
	Schema string
	Form   string
}

// MergeEndpoints applies non-empty override URLs over base.
func MergeEndpoints(base Endpoints, overrides ...Endpoints) Endpoints {
	out := base
	for _, override := range overrides {
		if v := strings.TrimSpace(override.Schema); v != "" {
			out.Schema = v
		}
		if v := strings.TrimSpace(override.Form); v != "" {
			out.Form = v
		}
	}
	return out
}
