package editor

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

const (
	DefaultTheme   = "bootstrap3"
	DefaultIconLib = "fontawesome4"
)

// Options is the fixed editor configuration a binder hands to every editor it
// builds. It is a value: ForRegion and Clone return copies, nothing mutates
// an Options in place.
type Options struct {
	// FormNameRoot prefixes generated input names; set per region.
	FormNameRoot string
	// AjaxRefs resolves remote $ref targets through the schema loader.
	AjaxRefs bool
	// DisableCollapse hides collapse toggles.
	DisableCollapse bool
	// DisableEditJSON hides the raw JSON editing UI.
	DisableEditJSON bool
	// DisableProperties hides the add/remove property UI.
	DisableProperties bool
	// NoAdditionalProperties rejects keys the schema does not declare.
	NoAdditionalProperties bool
	// RemoveEmptyProperties drops empty values when the editor is read.
	RemoveEmptyProperties bool
	// IconLib names the icon set.
	IconLib string
	// Theme carries the theme selection and its tokens.
	Theme theme.RendererConfig
}

// DefaultOptions returns the configuration deposit regions render with.
func DefaultOptions() Options {
	return Options{
		AjaxRefs:               true,
		DisableCollapse:        true,
		DisableEditJSON:        true,
		DisableProperties:      true,
		NoAdditionalProperties: true,
		RemoveEmptyProperties:  true,
		IconLib:                DefaultIconLib,
		Theme:                  theme.RendererConfig{Theme: DefaultTheme},
	}
}

// ForRegion returns a copy scoped to the region identified by id.
func (o Options) ForRegion(id string) Options {
	out := o.Clone()
	out.FormNameRoot = strings.TrimSpace(id)
	return out
}

// Clone copies the options including the theme maps.
func (o Options) Clone() Options {
	out := o
	out.Theme.Partials = cloneStrings(o.Theme.Partials)
	out.Theme.Tokens = cloneStrings(o.Theme.Tokens)
	out.Theme.CSSVars = cloneStrings(o.Theme.CSSVars)
	return out
}

// ThemeName returns the configured theme, falling back to DefaultTheme.
func (o Options) ThemeName() string {
	if name := strings.TrimSpace(o.Theme.Theme); name != "" {
		return name
	}
	return DefaultTheme
}

func cloneStrings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
