package markup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/goliatone/go-deposit/pkg/binder"
	"github.com/goliatone/go-deposit/pkg/record"
	"github.com/goliatone/go-deposit/pkg/session"
	"github.com/goliatone/go-deposit/pkg/transport"
)

// Session node attributes.
const (
	AttrActionEndpoint = "action-endpoint"
	AttrActionMethod   = "action-method"
	AttrExtraParams    = "extra-params"
	AttrRecord         = "record"
	AttrSchema         = "schema"
	AttrForm           = "form"
)

// ErrNoSession is returned by Page.Session when the page has no session node.
var ErrNoSession = errors.New("markup: session node not found")

// AttrError reports a session attribute that could not be parsed.
type AttrError struct {
	Attr string
	Err  error
}

func (e *AttrError) Error() string {
	return fmt.Sprintf("markup: attribute %q: %v", e.Attr, e.Err)
}

func (e *AttrError) Unwrap() error { return e.Err }

// Page is a parsed HTML document. Regions mutate the document in place;
// access is serialized so editors may write from any goroutine.
type Page struct {
	mu        sync.Mutex
	root      *html.Node
	selectors Selectors
	regions   []*Region
}

// Parse reads an HTML document from r.
func Parse(r io.Reader, options ...Option) (*Page, error) {
	selectors := DefaultSelectors()
	for _, opt := range options {
		if opt != nil {
			opt(&selectors)
		}
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("markup: parse: %w", err)
	}
	page := &Page{root: root, selectors: selectors}
	for _, node := range findAll(root, func(n *html.Node) bool { return hasClass(n, selectors.Region) }) {
		page.regions = append(page.regions, page.newRegion(node))
	}
	return page, nil
}

// Regions returns the editable regions in document order.
func (p *Page) Regions() []*Region {
	return append([]*Region(nil), p.regions...)
}

// BinderRegions returns the regions typed for binder.AttachAll.
func (p *Page) BinderRegions() []binder.Region {
	out := make([]binder.Region, 0, len(p.regions))
	for _, region := range p.regions {
		out = append(out, region)
	}
	return out
}

// Session reads the session node into an Initialization signal. The action
// method defaults to GET, extra params and record default to empty objects.
func (p *Page) Session() (session.Initialization, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	node := findFirst(p.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		return attrValue(n, "id") == p.selectors.Session || n.Data == p.selectors.Session
	})
	if node == nil {
		return session.Initialization{}, ErrNoSession
	}

	method := strings.TrimSpace(attrValue(node, AttrActionMethod))
	if method == "" {
		method = http.MethodGet
	}
	params, err := objectAttr(node, AttrExtraParams)
	if err != nil {
		return session.Initialization{}, err
	}
	rec, err := objectAttr(node, AttrRecord)
	if err != nil {
		return session.Initialization{}, err
	}

	sig := session.Initialization{
		Args: transport.RequestArgs{
			URL:    strings.TrimSpace(attrValue(node, AttrActionEndpoint)),
			Method: strings.ToUpper(method),
			Params: params,
		},
		Endpoints: transport.Endpoints{
			Schema: strings.TrimSpace(attrValue(node, AttrSchema)),
			Form:   strings.TrimSpace(attrValue(node, AttrForm)),
		},
		Record: rec,
	}
	return sig, nil
}

// Render writes the document, including every blob update, to w.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := html.Render(w, p.root); err != nil {
		return fmt.Errorf("markup: render: %w", err)
	}
	return nil
}

func objectAttr(n *html.Node, key string) (record.Record, error) {
	raw := strings.TrimSpace(attrValue(n, key))
	if raw == "" {
		return record.New(), nil
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, &AttrError{Attr: key, Err: err}
	}
	rec, ok := record.FromValue(value)
	if !ok {
		return nil, &AttrError{Attr: key, Err: fmt.Errorf("expected a JSON object, got %T", value)}
	}
	return rec, nil
}
