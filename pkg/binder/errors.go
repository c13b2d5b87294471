package binder

import (
	"errors"
	"fmt"
)

// ErrRegionInvalid is returned for regions missing required configuration.
var ErrRegionInvalid = errors.New("binder: invalid region")

// FetchError reports a schema that could not be loaded for a region. The
// region keeps its loading marker.
type FetchError struct {
	RegionID  string
	SchemaURL string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("binder: fetch schema %q for region %q: %v", e.SchemaURL, e.RegionID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
