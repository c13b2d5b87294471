package binder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-deposit/pkg/blob"
	"github.com/goliatone/go-deposit/pkg/editor"
	"github.com/goliatone/go-deposit/pkg/logging"
	"github.com/goliatone/go-deposit/pkg/record"
	"github.com/goliatone/go-deposit/pkg/schema"
)

// Option configures a Binder.
type Option func(*Binder)

// WithEditorOptions replaces the editor configuration handed to every editor.
func WithEditorOptions(opts editor.Options) Option {
	return func(b *Binder) {
		b.editorOptions = opts.Clone()
	}
}

// WithLogger attaches a logger.
func WithLogger(logger logging.Logger) Option {
	return func(b *Binder) {
		b.logger = logging.OrNop(logger)
	}
}

// Binder attaches editors to regions.
type Binder struct {
	loader        schema.Loader
	factory       editor.Factory
	editorOptions editor.Options
	logger        logging.Logger
}

// New constructs a Binder that loads schemas with loader and builds editors
// with factory.
func New(loader schema.Loader, factory editor.Factory, options ...Option) *Binder {
	b := &Binder{
		loader:        loader,
		factory:       factory,
		editorOptions: editor.DefaultOptions(),
		logger:        logging.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// EditorOptions returns a copy of the configuration editors are built with.
func (b *Binder) EditorOptions() editor.Options {
	return b.editorOptions.Clone()
}

// Attach binds an editor to region. It blocks until the schema is fetched and
// the editor is constructed; readiness and edits are handled through editor
// events afterwards. A schema fetch failure returns a *FetchError and leaves
// the region loading.
func (b *Binder) Attach(ctx context.Context, region Region) (*Binding, error) {
	if region == nil {
		return nil, fmt.Errorf("%w: region is nil", ErrRegionInvalid)
	}
	if b.loader == nil || b.factory == nil {
		return nil, errors.New("binder: loader and editor factory are required")
	}

	id := strings.TrimSpace(region.ID())
	if id == "" {
		id = uuid.NewString()
	}
	logger := b.logger.With("region", id)

	ref := strings.TrimSpace(region.SchemaURL())
	src, err := schema.ParseSource(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegionInvalid, err)
	}

	doc, err := b.loader.Load(ctx, src)
	if err != nil {
		logger.Error("schema fetch failed", "schema", ref, "err", err)
		return nil, &FetchError{RegionID: id, SchemaURL: ref, Err: err}
	}

	ed, err := b.factory.New(ctx, region.Mount(), doc, b.editorOptions.ForRegion(id))
	if err != nil {
		return nil, fmt.Errorf("binder: build editor for region %q: %w", id, err)
	}

	initial, err := blob.DecodeRecord(region.BlobText())
	if err != nil {
		// Corrupt legacy blobs must not block editing.
		logger.Debug("initial blob ignored", "err", err)
		initial = record.New()
	}

	binding := &Binding{
		id:      id,
		region:  region,
		editor:  ed,
		initial: initial,
		logger:  logger,
	}
	ed.OnReady(binding.handleReady)
	return binding, nil
}

// AttachAll attaches every region independently. Bindings are returned for
// the regions that attached; failures are joined into the error.
func (b *Binder) AttachAll(ctx context.Context, regions ...Region) ([]*Binding, error) {
	var (
		bindings []*Binding
		errs     []error
	)
	for _, region := range regions {
		binding, err := b.Attach(ctx, region)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bindings = append(bindings, binding)
	}
	return bindings, errors.Join(errs...)
}

// Binding is one attached region.
type Binding struct {
	id      string
	region  Region
	editor  editor.Editor
	initial record.Record
	logger  logging.Logger

	mu      sync.Mutex
	started bool
	ready   bool
	err     error
}

// ID returns the region identifier used for the editor.
func (b *Binding) ID() string { return b.id }

// Region returns the bound region.
func (b *Binding) Region() Region { return b.region }

// Editor returns the bound editor.
func (b *Binding) Editor() editor.Editor { return b.editor }

// Ready reports whether the editor signalled ready and the region became
// interactive.
func (b *Binding) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

// Err returns the last error raised while writing the blob back.
func (b *Binding) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Value decodes the region's current blob.
func (b *Binding) Value() (record.Record, error) {
	b.mu.Lock()
	text := b.region.BlobText()
	b.mu.Unlock()
	return blob.DecodeRecord(text)
}

func (b *Binding) handleReady() {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	if !b.initial.IsEmpty() {
		if err := b.editor.SetValue(b.initial.Clone()); err != nil {
			b.setErr(fmt.Errorf("binder: seed region %q: %w", b.id, err))
		}
	}
	b.editor.OnChange(b.handleChange)

	b.mu.Lock()
	b.region.RemoveLoading()
	b.ready = true
	b.mu.Unlock()
	b.logger.Debug("region ready")
}

func (b *Binding) handleChange() {
	text, err := blob.Encode(b.editor.Value())
	if err != nil {
		b.setErr(fmt.Errorf("binder: encode region %q: %w", b.id, err))
		return
	}
	b.mu.Lock()
	b.region.SetBlobText(text)
	b.err = nil
	b.mu.Unlock()
}

func (b *Binding) setErr(err error) {
	b.logger.Error("region update failed", "err", err)
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}
