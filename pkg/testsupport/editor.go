package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-deposit/pkg/editor"
	"github.com/goliatone/go-deposit/pkg/record"
	"github.com/goliatone/go-deposit/pkg/schema"
)

// StubEditor is an in-memory editor. It becomes ready when Ready is called.
type StubEditor struct {
	editor.Events

	Mount   any
	Schema  schema.Document
	Options editor.Options

	mu       sync.Mutex
	value    any
	setCalls []any
}

var _ editor.Editor = (*StubEditor)(nil)

// Value returns a copy of the current value; empty editors report {}.
func (e *StubEditor) Value() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.value == nil {
		return map[string]any{}
	}
	return record.Copy(e.value)
}

// SetValue stores value and records the call.
func (e *StubEditor) SetValue(value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = record.Copy(value)
	e.setCalls = append(e.setCalls, record.Copy(value))
	return nil
}

// SetCalls returns every value passed to SetValue.
func (e *StubEditor) SetCalls() []any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]any(nil), e.setCalls...)
}

// SignalReady marks the editor ready.
func (e *StubEditor) SignalReady() {
	e.MarkReady()
}

// Edit simulates a user edit: replace the value and emit change.
func (e *StubEditor) Edit(value any) {
	e.mu.Lock()
	e.value = record.Copy(value)
	e.mu.Unlock()
	e.EmitChange()
}

// StubFactory builds StubEditors and keeps them for inspection.
type StubFactory struct {
	mu      sync.Mutex
	Editors []*StubEditor
	// AutoReady marks editors ready right after construction.
	AutoReady bool
	// Err fails every construction when set.
	Err error
}

var _ editor.Factory = (*StubFactory)(nil)

// New implements editor.Factory.
func (f *StubFactory) New(_ context.Context, mount any, doc schema.Document, opts editor.Options) (editor.Editor, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	ed := &StubEditor{Mount: mount, Schema: doc, Options: opts}
	f.mu.Lock()
	f.Editors = append(f.Editors, ed)
	f.mu.Unlock()
	if f.AutoReady {
		ed.SignalReady()
	}
	return ed, nil
}

// Last returns the most recently built editor.
func (f *StubFactory) Last() *StubEditor {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Editors) == 0 {
		return nil
	}
	return f.Editors[len(f.Editors)-1]
}
