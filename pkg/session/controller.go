package session

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-deposit/pkg/logging"
	"github.com/goliatone/go-deposit/pkg/record"
	"github.com/goliatone/go-deposit/pkg/transport"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Controller) {
		c.logger = logging.OrNop(logger)
	}
}

// WithMessages overrides the default notifications. Empty fields keep their
// defaults.
func WithMessages(messages Messages) Option {
	return func(c *Controller) {
		c.messages = messages.withDefaults()
	}
}

// WithBaseArgs replaces the request args initialization merges over.
func WithBaseArgs(args transport.RequestArgs) Option {
	return func(c *Controller) {
		c.args = args.Clone()
	}
}

// WithContext bounds every request the session issues; cancelling parent
// tears the session down.
func WithContext(parent context.Context) Option {
	return func(c *Controller) {
		if parent != nil {
			c.parent = parent
		}
	}
}

// WithID pins the session id instead of generating one.
func WithID(id string) Option {
	return func(c *Controller) {
		if id = strings.TrimSpace(id); id != "" {
			c.id = id
		}
	}
}

// Controller owns one record editing session. It is safe for concurrent use;
// all state changes go through its own handlers.
type Controller struct {
	id       string
	client   transport.Client
	logger   logging.Logger
	messages Messages
	bus      *Bus
	parent   context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup

	mu         sync.Mutex
	closed     bool
	generation int
	acting     int
	phase      Phase
	ui         UIState
	args       transport.RequestArgs
	endpoints  transport.Endpoints
	model      record.Record
	schema     any
	form       any
	fetchErr   error
}

// New constructs a controller issuing requests through client. A nil client
// falls back to a default HTTPClient.
func New(client transport.Client, options ...Option) *Controller {
	if client == nil {
		client = transport.NewHTTPClient()
	}
	c := &Controller{
		id:       uuid.NewString(),
		client:   client,
		logger:   logging.Nop(),
		messages: DefaultMessages(),
		parent:   context.Background(),
		args:     transport.DefaultArgs(),
		model:    record.New(),
		ui:       UIState{Loading: true},
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	c.ctx, c.cancel = context.WithCancel(c.parent)
	c.logger = c.logger.With("session", c.id)
	c.bus = NewBus(c.id)
	c.bus.OnInitialization(c.handleInitialization)
	c.bus.OnAction(c.handleAction)
	return c
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Bus returns the session's signal bus.
func (c *Controller) Bus() *Bus { return c.bus }

// Broadcast sends sig on the session bus.
func (c *Controller) Broadcast(sig Signal) {
	c.bus.Broadcast(sig)
}

// Initialize broadcasts an Initialization signal.
func (c *Controller) Initialize(args transport.RequestArgs, endpoints transport.Endpoints, rec record.Record) {
	c.Broadcast(Initialization{Args: args, Endpoints: endpoints, Record: rec})
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		ID:        c.id,
		Phase:     c.phase,
		UI:        c.ui,
		Args:      c.args.Clone(),
		Endpoints: c.endpoints,
		Model:     c.model.Clone(),
		Schema:    record.Copy(c.schema),
		Form:      record.Copy(c.form),
		FetchErr:  c.fetchErr,
	}
}

// UpdateModel replaces the session record with a copy of rec.
func (c *Controller) UpdateModel(rec record.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.model = rec.Clone()
}

// Wait blocks until every fetch and action started so far has resolved.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close tears the session down: in-flight requests are cancelled and the
// record is dropped. Close waits for in-flight work to resolve.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.inflight.Wait()

	c.mu.Lock()
	c.model = record.New()
	c.phase = PhaseUninitialized
	c.ui = UIState{Loading: true}
	c.mu.Unlock()
}

// Save sends the current record as a full replacement (PUT). The request is
// built from copies, so later model changes do not reach it.
func (c *Controller) Save() error {
	args, err := c.actionArgs(http.MethodPut, true)
	if err != nil {
		return err
	}
	c.Broadcast(Action{Args: args, OnSuccess: c.saved, OnError: c.failed})
	return nil
}

// Delete removes the remote record (DELETE, no body).
func (c *Controller) Delete() error {
	args, err := c.actionArgs(http.MethodDelete, false)
	if err != nil {
		return err
	}
	c.Broadcast(Action{Args: args, OnSuccess: c.deleted, OnError: c.failed})
	return nil
}

func (c *Controller) actionArgs(method string, withModel bool) (transport.RequestArgs, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return transport.RequestArgs{}, err
	}
	args := c.args.Clone()
	args.Method = method
	args.Data = nil
	if withModel {
		args.Data = c.model.Clone()
	}
	return args, nil
}

func (c *Controller) readyLocked() error {
	switch {
	case c.closed:
		return ErrClosed
	case c.phase == PhaseReady || c.phase == PhaseActing:
		return nil
	default:
		return ErrNotReady
	}
}

func (c *Controller) saved(resp transport.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if text, ok := resp.Text(); ok {
		c.ui.Notify = text
		return
	}
	if canonical, ok := resp.Data.(map[string]any); ok {
		c.model = record.Record(canonical).Clone()
	}
	c.ui.Notify = c.messages.SaveSuccess
}

func (c *Controller) deleted(resp transport.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if text, ok := resp.Text(); ok {
		c.ui.Notify = text
		return
	}
	c.ui.Notify = c.messages.DeleteSuccess
}

// failed records the failure verbatim. Notify is left as it is; a closed
// session is not touched.
func (c *Controller) failed(failure *transport.Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.ui.Error = failure
}

func (c *Controller) handleInitialization(sig Initialization) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.generation++
	generation := c.generation
	c.model = sig.Record.Clone()
	c.args = transport.MergeArgs(c.args, sig.Args)
	c.endpoints = transport.MergeEndpoints(transport.Endpoints{}, sig.Endpoints)
	c.schema, c.form, c.fetchErr = nil, nil, nil
	c.phase = PhaseLoading
	c.ui.Loading = true
	endpoints := c.endpoints
	// Registered under mu so Close never waits before the fetch is counted.
	c.inflight.Add(1)
	c.mu.Unlock()

	c.logger.Debug("initialize", "schema", endpoints.Schema, "form", endpoints.Form)
	go c.loadDefinitions(generation, endpoints)
}

// loadDefinitions fetches schema and form concurrently and marks the session
// ready only once both have resolved successfully.
func (c *Controller) loadDefinitions(generation int, endpoints transport.Endpoints) {
	defer c.inflight.Done()

	var schemaData, formData any
	group, ctx := errgroup.WithContext(c.ctx)
	group.Go(func() error {
		data, err := c.fetch(ctx, "schema", endpoints.Schema)
		schemaData = data
		return err
	})
	group.Go(func() error {
		data, err := c.fetch(ctx, "form", endpoints.Form)
		formData = data
		return err
	})
	err := group.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation || c.closed {
		return
	}
	if err != nil {
		c.fetchErr = err
		c.logger.Error("definitions fetch failed", "err", err)
		return
	}
	c.schema = schemaData
	c.form = formData
	c.ui.Loading = false
	c.phase = PhaseReady
}

func (c *Controller) fetch(ctx context.Context, endpoint, url string) (any, error) {
	if strings.TrimSpace(url) == "" {
		return nil, &FetchError{Endpoint: endpoint, URL: url, Err: ErrEndpointMissing}
	}
	result := transport.Get(ctx, c.client, url)
	resp, ok := result.Response()
	if !ok {
		return nil, &FetchError{Endpoint: endpoint, URL: url, Err: result.Failure()}
	}
	return resp.Data, nil
}

func (c *Controller) handleAction(sig Action) {
	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		c.logger.Error("action rejected", "method", sig.Args.Method, "err", err)
		if sig.OnError != nil {
			sig.OnError(&transport.Failure{Err: err})
		}
		return
	}
	c.acting++
	c.phase = PhaseActing
	c.ui.Loading = true
	c.ui.Error = nil
	c.ui.Notify = ""
	c.inflight.Add(1)
	c.mu.Unlock()

	args := sig.Args.Clone()
	c.logger.Debug("action", "method", args.Method, "url", args.URL)

	go func() {
		defer c.inflight.Done()
		defer c.finishAction()

		result := c.client.Do(c.ctx, args)
		if resp, ok := result.Response(); ok {
			if sig.OnSuccess != nil {
				sig.OnSuccess(resp)
			}
			return
		}
		failure := result.Failure()
		c.logger.Error("action failed", "method", args.Method, "url", args.URL, "err", failure)
		if sig.OnError != nil {
			sig.OnError(failure)
		}
	}()
}

// finishAction runs after every action regardless of outcome. Loading is
// cleared even while other actions are still in flight.
func (c *Controller) finishAction() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ui.Loading = false
	if c.acting > 0 {
		c.acting--
	}
	if c.acting == 0 && c.phase == PhaseActing {
		c.phase = PhaseReady
	}
}

