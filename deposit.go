// Package deposit edits JSON records embedded in HTML pages.
//
// A page carries regions, each holding a record as an encoded blob next to
// the schema it follows, and a session node naming the remote resource the
// record is saved to. The binder keeps each region's blob in step with an
// editor; the session controller saves and deletes the record and tracks
// loading, error and notification state.
package deposit

import (
	"github.com/goliatone/go-deposit/internal/schemaloader"
	"github.com/goliatone/go-deposit/pkg/binder"
	"github.com/goliatone/go-deposit/pkg/blob"
	"github.com/goliatone/go-deposit/pkg/editor"
	"github.com/goliatone/go-deposit/pkg/record"
	"github.com/goliatone/go-deposit/pkg/schema"
	"github.com/goliatone/go-deposit/pkg/session"
	"github.com/goliatone/go-deposit/pkg/transport"
)

// Record is a JSON object held by a session or a region.
type Record = record.Record

// RequestArgs describes an outbound request.
type RequestArgs = transport.RequestArgs

// Endpoints holds the schema and form definition URLs of a session.
type Endpoints = transport.Endpoints

// NewLoader constructs a schema loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return schemaloader.New(schema.NewLoaderOptions(options...))
}

// NewBinder constructs a binder attaching editors built by factory.
func NewBinder(loader schema.Loader, factory editor.Factory, options ...binder.Option) *binder.Binder {
	return binder.New(loader, factory, options...)
}

// NewSession constructs a record session issuing requests through client.
// A nil client uses the default HTTP client.
func NewSession(client transport.Client, options ...session.Option) *session.Controller {
	if client == nil {
		client = transport.NewHTTPClient()
	}
	return session.New(client, options...)
}

// Encode serializes value into a blob.
func Encode(value any) (string, error) {
	return blob.Encode(value)
}

// Decode parses a blob.
func Decode(text string) (any, error) {
	return blob.Decode(text)
}
