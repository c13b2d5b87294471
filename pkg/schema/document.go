package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Document wraps the raw schema payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}
	if !json.Valid(raw) {
		return Document{}, fmt.Errorf("schema: document %q is not valid JSON", src.Location())
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a defensive copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// IsZero reports whether the document was never loaded.
func (d Document) IsZero() bool {
	return d.source == nil && len(d.raw) == 0
}

// Decode parses the payload into a fresh value on every call, so callers may
// mutate the result freely.
func (d Document) Decode() (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(d.raw, &out); err != nil {
		return nil, fmt.Errorf("schema: decode %q: %w", d.Location(), err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
