package binder

// Region is the markup contract of one editable area.
type Region interface {
	// ID names the region; editors use it as their form name root.
	ID() string
	// SchemaURL references the schema the region renders.
	SchemaURL() string
	// BlobText returns the encoded record embedded in the region.
	BlobText() string
	// SetBlobText overwrites the embedded blob.
	SetBlobText(text string)
	// Mount returns the node the editor renders into.
	Mount() any
	// RemoveLoading removes the loading marker, making the region interactive.
	RemoveLoading()
}
