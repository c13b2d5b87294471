// Package binder attaches one schema-driven editor to each deposit region of
// a page. Attaching fetches the region's schema, seeds the editor from the
// region's blob once it is ready, removes the region's loading marker, and
// from then on rewrites the blob after every edit.
//
// A region whose schema cannot be fetched keeps its loading marker. There is
// no retry.
package binder
