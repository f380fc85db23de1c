// Package realtime runs the per-connection state machines of the assistant
// and coach websocket modes.
package realtime

import "fmt"

// State is the lifecycle state of one realtime session.
type State int

const (
	StateOpen State = iota
	StateAwaitConversationID
	StateAccumulating
	StateAnalyzing
	StateSuggesting
	StateTranscribing
	StateGeneratingReply
	StateClosed
	// StatePersisted - coach history has been flushed to the message store.
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateAwaitConversationID:
		return "AWAIT_CONVERSATION_ID"
	case StateAccumulating:
		return "ACCUMULATING"
	case StateAnalyzing:
		return "ANALYZING"
	case StateSuggesting:
		return "SUGGESTING"
	case StateTranscribing:
		return "TRANSCRIBING"
	case StateGeneratingReply:
		return "GENERATING_REPLY"
	case StateClosed:
		return "CLOSED"
	case StatePersisted:
		return "PERSISTED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal reports whether the connection is gone.
func (s State) IsTerminal() bool {
	return s == StateClosed || s == StatePersisted
}
