package markup

import (
	"embed"
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-deposit/pkg/blob"
	"github.com/goliatone/go-deposit/pkg/record"
	"github.com/goliatone/go-deposit/pkg/session"
	"github.com/goliatone/go-deposit/pkg/transport"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	regionTemplate = "templates/region.html"
	statusTemplate = "templates/status.html"
)

// RegionView is the data rendered into a region fragment.
type RegionView struct {
	ID        string
	SchemaURL string
	Record    record.Record
	// Loading keeps the loading marker in the output.
	Loading bool
}

// Renderer renders region and status fragments from the embedded templates.
type Renderer struct {
	selectors Selectors
	set       *pongo2.TemplateSet

	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

// NewRenderer returns a renderer using the given markup contract.
func NewRenderer(options ...Option) *Renderer {
	selectors := DefaultSelectors()
	for _, opt := range options {
		if opt != nil {
			opt(&selectors)
		}
	}
	registerFilters()
	return &Renderer{
		selectors: selectors,
		set:       pongo2.NewSet("deposit", pongo2.NewFSLoader(templateFS)),
		templates: make(map[string]*pongo2.Template),
	}
}

// RenderRegion renders a region whose blob encodes view.Record, ready to be
// parsed back with Parse.
func (r *Renderer) RenderRegion(view RegionView) (string, error) {
	encoded, err := blob.Encode(view.Record)
	if err != nil {
		return "", fmt.Errorf("markup: encode region %q: %w", view.ID, err)
	}
	return r.execute(regionTemplate, pongo2.Context{
		"id":         view.ID,
		"schema_url": view.SchemaURL,
		"blob":       encoded,
		"loading":    view.Loading,
		"classes": map[string]string{
			"region":   r.selectors.Region,
			"blob":     r.selectors.Blob,
			"loading":  r.selectors.Loading,
			"rendered": r.selectors.Rendered,
		},
	})
}

// RenderStatus renders the loading, error and notification feedback of a
// session.
func (r *Renderer) RenderStatus(ui session.UIState) (string, error) {
	return r.execute(statusTemplate, pongo2.Context{
		"loading": ui.Loading,
		"error":   FailureMessage(ui.Error),
		"notify":  ui.Notify,
	})
}

// FailureMessage returns the text shown for a failed request: the response
// text, a "message" field of a JSON body, or the error itself.
func FailureMessage(failure *transport.Failure) string {
	if failure == nil {
		return ""
	}
	if failure.Response != nil {
		if text, ok := failure.Response.Text(); ok {
			return text
		}
		if body, ok := failure.Response.Data.(map[string]any); ok {
			if msg, ok := body["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return failure.Error()
}

func (r *Renderer) execute(name string, ctx pongo2.Context) (string, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return "", err
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("markup: execute template %q: %w", name, err)
	}
	return out, nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("markup: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}
