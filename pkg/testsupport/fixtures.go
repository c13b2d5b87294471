package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-deposit/pkg/schema"
)

// TitleSchema is a minimal record schema with a single string property.
const TitleSchema = `{"type":"object","properties":{"title":{"type":"string"}}}`

// SchemaDocument wraps raw JSON in a Document sourced from location.
func SchemaDocument(t *testing.T, location, raw string) schema.Document {
	t.Helper()

	doc, err := schema.NewDocument(schema.SourceFromFS(location), []byte(raw))
	if err != nil {
		t.Fatalf("schema document: %v", err)
	}
	return doc
}

// MustLoadSchema reads a schema fixture from disk.
func MustLoadSchema(t *testing.T, path string) schema.Document {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	doc, err := schema.NewDocument(schema.SourceFromFile(path), data)
	if err != nil {
		t.Fatalf("new schema document: %v", err)
	}
	return doc
}

// MemoryLoader serves schema documents from memory keyed by location and
// counts lookups.
type MemoryLoader struct {
	mu    sync.Mutex
	Docs  map[string]string
	calls map[string]int
}

var _ schema.Loader = (*MemoryLoader)(nil)

// NewMemoryLoader returns a loader serving docs.
func NewMemoryLoader(docs map[string]string) *MemoryLoader {
	return &MemoryLoader{Docs: docs, calls: make(map[string]int)}
}

// Load returns the document stored under the source location.
func (m *MemoryLoader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return schema.Document{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[src.Location()]++
	raw, ok := m.Docs[src.Location()]
	if !ok {
		return schema.Document{}, fmt.Errorf("missing document %q", src.Location())
	}
	return schema.NewDocument(src, []byte(raw))
}

// Calls returns how many times location was requested.
func (m *MemoryLoader) Calls(location string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[location]
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
