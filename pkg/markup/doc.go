// Package markup connects deposit pages to the binder and the session.
//
// Parse reads an HTML page and exposes two kinds of nodes:
//
//   - regions, elements carrying the region class with data-schema and
//     data-id attributes, whose children hold the encoded blob, the loading
//     marker and the mount point of the editor;
//   - the session node, which carries the action endpoint, action method,
//     extra params, the embedded record and the schema and form endpoints.
//
// Regions implement binder.Region, so edits flow straight back into the
// parsed document, and Page.Render writes the updated page. RenderRegion and
// RenderStatus produce fragments from pongo2 templates.
package markup
