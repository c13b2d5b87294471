package session

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-deposit/pkg/transport"
)

var (
	// ErrNotReady is returned for actions issued before the session finished
	// loading its schema and form.
	ErrNotReady = errors.New("session: not ready")
	// ErrClosed is returned once the session was torn down.
	ErrClosed = errors.New("session: closed")
	// ErrEndpointMissing reports an initialization without a schema or form URL.
	ErrEndpointMissing = errors.New("session: endpoint url is missing")
)

// FetchError reports a schema or form definition that could not be fetched.
type FetchError struct {
	Endpoint string
	URL      string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("session: fetch %s %q: %v", e.Endpoint, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Failure returns the transport failure behind the error, if any.
func (e *FetchError) Failure() *transport.Failure {
	var failure *transport.Failure
	if errors.As(e.Err, &failure) {
		return failure
	}
	return nil
}
