package testsupport

import "sync"

// MemoryRegion is an in-memory region for binder tests.
type MemoryRegion struct {
	mu sync.Mutex

	RegionID string
	Schema   string
	Blob     string
	Target   any

	loading bool
	writes  int
}

// NewMemoryRegion returns a loading region.
func NewMemoryRegion(id, schemaURL, blobText string) *MemoryRegion {
	return &MemoryRegion{RegionID: id, Schema: schemaURL, Blob: blobText, loading: true}
}

func (r *MemoryRegion) ID() string        { return r.RegionID }
func (r *MemoryRegion) SchemaURL() string { return r.Schema }
func (r *MemoryRegion) Mount() any        { return r.Target }

func (r *MemoryRegion) BlobText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Blob
}

func (r *MemoryRegion) SetBlobText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Blob = text
	r.writes++
}

func (r *MemoryRegion) RemoveLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
}

// Loading reports whether the loading marker is still present.
func (r *MemoryRegion) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Writes counts SetBlobText calls.
func (r *MemoryRegion) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}
