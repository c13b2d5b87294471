package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStatus marks failures caused by a non-2xx response.
var ErrStatus = errors.New("transport: unexpected status")

// Response is a received reply. Data holds the decoded JSON body, the body as
// a string when it is not JSON, or nil when the body is empty.
type Response struct {
	Status int
	Header http.Header
	Data   any
}

// Text returns Data when it is a non-empty string.
func (r Response) Text() (string, bool) {
	text, ok := r.Data.(string)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

// Failure is the error side of a Result. Response is nil when the request
// never produced a reply.
type Failure struct {
	Response *Response
	Err      error
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	switch {
	case f.Err != nil && f.Response != nil:
		return fmt.Sprintf("transport: %d: %v", f.Response.Status, f.Err)
	case f.Err != nil:
		return "transport: " + f.Err.Error()
	case f.Response != nil:
		return fmt.Sprintf("transport: status %d", f.Response.Status)
	default:
		return "transport: request failed"
	}
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// Result is either a Response or a Failure, never both.
type Result struct {
	response *Response
	failure  *Failure
}

// Ok wraps a successful response.
func Ok(resp Response) Result {
	return Result{response: &resp}
}

// Fail wraps a failure. A nil failure becomes a generic one so the result
// stays tagged.
func Fail(failure *Failure) Result {
	if failure == nil {
		failure = &Failure{Err: errors.New("request failed")}
	}
	return Result{failure: failure}
}

// FailErr wraps a transport level error with no response.
func FailErr(err error) Result {
	return Fail(&Failure{Err: err})
}

// OK reports whether the result holds a response.
func (r Result) OK() bool {
	return r.response != nil
}

// Response returns the successful response.
func (r Result) Response() (Response, bool) {
	if r.response == nil {
		return Response{}, false
	}
	return *r.response, true
}

// Failure returns the failure, or nil for successful results.
func (r Result) Failure() *Failure {
	if r.response != nil {
		return nil
	}
	if r.failure == nil {
		return &Failure{Err: errors.New("empty result")}
	}
	return r.failure
}
