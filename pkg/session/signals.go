package session

import (
	"sync"

	"github.com/goliatone/go-deposit/pkg/record"
	"github.com/goliatone/go-deposit/pkg/transport"
)

// Signal is one of the messages a session understands: Initialization or
// Action.
type Signal interface {
	subject() string
}

// Initialization seeds a session with request args, endpoints and the record
// embedded in the page.
type Initialization struct {
	Args      transport.RequestArgs
	Endpoints transport.Endpoints
	Record    record.Record
}

// Action issues Args and hands the outcome to exactly one continuation.
// Either continuation may be nil.
type Action struct {
	Args      transport.RequestArgs
	OnSuccess func(transport.Response)
	OnError   func(*transport.Failure)
}

const (
	subjInitialization = "records.initialization"
	subjAction         = "records.action"
)

func (Initialization) subject() string { return subjInitialization }
func (Action) subject() string         { return subjAction }

// Bus delivers signals to the handlers of a single session. Handlers run
// synchronously on the broadcasting goroutine.
type Bus struct {
	id string

	mu           sync.RWMutex
	onInitialize []func(Initialization)
	onAction     []func(Action)
}

// NewBus returns a bus scoped to the session id.
func NewBus(id string) *Bus {
	return &Bus{id: id}
}

// ID returns the session id the bus is scoped to.
func (b *Bus) ID() string { return b.id }

// OnInitialization subscribes fn to Initialization signals.
func (b *Bus) OnInitialization(fn func(Initialization)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.onInitialize = append(b.onInitialize, fn)
	b.mu.Unlock()
}

// OnAction subscribes fn to Action signals.
func (b *Bus) OnAction(fn func(Action)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.onAction = append(b.onAction, fn)
	b.mu.Unlock()
}

// Broadcast delivers sig to its subscribers. It returns false when nobody
// listens for that subject.
func (b *Bus) Broadcast(sig Signal) bool {
	switch typed := sig.(type) {
	case *Initialization:
		if typed == nil {
			return false
		}
		return b.Broadcast(*typed)
	case *Action:
		if typed == nil {
			return false
		}
		return b.Broadcast(*typed)
	}

	b.mu.RLock()
	initHandlers := append([]func(Initialization){}, b.onInitialize...)
	actionHandlers := append([]func(Action){}, b.onAction...)
	b.mu.RUnlock()

	switch typed := sig.(type) {
	case Initialization:
		for _, fn := range initHandlers {
			fn(typed)
		}
		return len(initHandlers) > 0
	case Action:
		for _, fn := range actionHandlers {
			fn(typed)
		}
		return len(actionHandlers) > 0
	default:
		return false
	}
}
