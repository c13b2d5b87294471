package session

import (
	"github.com/goliatone/go-deposit/pkg/record"
	"github.com/goliatone/go-deposit/pkg/transport"
)

// Phase is the session lifecycle position.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
	PhaseActing
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseActing:
		return "acting"
	default:
		return "unknown"
	}
}

// UIState is the transient feedback of the last action. A nil Error means no
// error; an empty Notify means no notification.
type UIState struct {
	Loading bool
	Error   *transport.Failure
	Notify  string
}

// Messages are the notifications used when the server sends no text.
type Messages struct {
	SaveSuccess   string
	DeleteSuccess string
}

// DefaultMessages returns the stock notifications.
func DefaultMessages() Messages {
	return Messages{
		SaveSuccess:   "Success",
		DeleteSuccess: "Successfully deleted!",
	}
}

func (m Messages) withDefaults() Messages {
	defaults := DefaultMessages()
	if m.SaveSuccess == "" {
		m.SaveSuccess = defaults.SaveSuccess
	}
	if m.DeleteSuccess == "" {
		m.DeleteSuccess = defaults.DeleteSuccess
	}
	return m
}

// State is a snapshot of a session. Every field is a copy.
type State struct {
	ID        string
	Phase     Phase
	UI        UIState
	Args      transport.RequestArgs
	Endpoints transport.Endpoints
	Model     record.Record
	Schema    any
	Form      any
	FetchErr  error
}
