package markup

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-deposit/pkg/binder"
)

// Region is one editable area of a parsed page.
type Region struct {
	page     *Page
	node     *html.Node
	blob     *html.Node
	loading  []*html.Node
	rendered *html.Node
}

var _ binder.Region = (*Region)(nil)

func (p *Page) newRegion(node *html.Node) *Region {
	sel := p.selectors
	region := &Region{page: p, node: node}
	region.blob = findFirst(node, func(n *html.Node) bool { return hasClass(n, sel.Blob) })
	region.rendered = findFirst(node, func(n *html.Node) bool { return hasClass(n, sel.Rendered) })
	region.loading = findAll(node, func(n *html.Node) bool { return n != node && hasClass(n, sel.Loading) })
	return region
}

// ID returns the data-id attribute.
func (r *Region) ID() string { return strings.TrimSpace(attrValue(r.node, "data-id")) }

// SchemaURL returns the data-schema attribute.
func (r *Region) SchemaURL() string { return strings.TrimSpace(attrValue(r.node, "data-schema")) }

// BlobText returns the text of the blob child, empty when there is none.
func (r *Region) BlobText() string {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	if r.blob == nil {
		return ""
	}
	return textContent(r.blob)
}

// SetBlobText replaces the blob child's text. Regions without a blob child
// get one appended.
func (r *Region) SetBlobText(text string) {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	if r.blob == nil {
		r.blob = &html.Node{
			Type: html.ElementNode,
			Data: "textarea",
			Attr: []html.Attribute{
				{Key: "class", Val: r.page.selectors.Blob},
				{Key: "hidden"},
			},
		}
		r.node.AppendChild(r.blob)
	}
	setText(r.blob, text)
}

// Mount returns the rendered child, or the region node itself.
func (r *Region) Mount() any {
	if r.rendered != nil {
		return r.rendered
	}
	return r.node
}

// RemoveLoading detaches every loading marker from the document.
func (r *Region) RemoveLoading() {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	for _, marker := range r.loading {
		if marker.Parent != nil {
			marker.Parent.RemoveChild(marker)
		}
	}
	r.loading = nil
}

// Loading reports whether a loading marker is still attached.
func (r *Region) Loading() bool {
	r.page.mu.Lock()
	defer r.page.mu.Unlock()
	return len(r.loading) > 0
}
