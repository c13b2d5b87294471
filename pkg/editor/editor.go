package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-deposit/pkg/schema"
)

// Editor is a live form instance bound to one region.
type Editor interface {
	// OnReady registers fn to run once the editor has finished building. If
	// the editor is already ready fn runs immediately.
	OnReady(fn func())
	// OnChange registers fn to run after every edit.
	OnChange(fn func())
	// Value returns the current form value.
	Value() any
	// SetValue replaces the form value.
	SetValue(value any) error
}

// Factory builds editors. mount is the region's render target.
type Factory interface {
	New(ctx context.Context, mount any, doc schema.Document, opts Options) (Editor, error)
}

// FactoryFunc lets plain functions satisfy Factory.
type FactoryFunc func(ctx context.Context, mount any, doc schema.Document, opts Options) (Editor, error)

// New calls fn.
func (fn FactoryFunc) New(ctx context.Context, mount any, doc schema.Document, opts Options) (Editor, error) {
	if fn == nil {
		return nil, errors.New("editor: factory func is nil")
	}
	return fn(ctx, mount, doc, opts)
}

// Events implements the ready/change bookkeeping shared by editors. The zero
// value is usable.
type Events struct {
	mu       sync.Mutex
	ready    bool
	onReady  []func()
	onChange []func()
}

// OnReady registers fn, running it at once when MarkReady already happened.
func (e *Events) OnReady(fn func()) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	if e.ready {
		e.mu.Unlock()
		fn()
		return
	}
	e.onReady = append(e.onReady, fn)
	e.mu.Unlock()
}

// OnChange registers fn for every later EmitChange.
func (e *Events) OnChange(fn func()) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.onChange = append(e.onChange, fn)
	e.mu.Unlock()
}

// MarkReady flips the ready flag and runs pending ready handlers once.
func (e *Events) MarkReady() {
	e.mu.Lock()
	if e.ready {
		e.mu.Unlock()
		return
	}
	e.ready = true
	pending := e.onReady
	e.onReady = nil
	e.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// Ready reports whether MarkReady ran.
func (e *Events) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// EmitChange runs every change handler registered so far.
func (e *Events) EmitChange() {
	e.mu.Lock()
	handlers := append([]func(){}, e.onChange...)
	e.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}
