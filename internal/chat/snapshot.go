package chat

import "github.com/sriram629/AI-ChatBot/client/internal/types"

// BootstrapState tracks the first turn of a new conversation
type BootstrapState int

const (
	BootstrapIdle BootstrapState = iota
	BootstrapCreating
	BootstrapNavigated
	BootstrapConnecting
	BootstrapFlushed
)

func (s BootstrapState) String() string {
	switch s {
	case BootstrapIdle:
		return "idle"
	case BootstrapCreating:
		return "creating"
	case BootstrapNavigated:
		return "navigated"
	case BootstrapConnecting:
		return "connecting"
	case BootstrapFlushed:
		return "flushed"
	default:
		return "unknown"
	}
}

// Snapshot is the observable state handed to the presentation layer.
// Messages is a deep copy.
type Snapshot struct {
	Version    uint64
	SessionID  string
	Messages   []types.Message
	Streaming  bool
	Status     string
	Loading    bool
	Connected  bool
	Connecting bool
	Bootstrap  BootstrapState
}

// VisibleStatus returns the status text while the reply is still empty
func (s Snapshot) VisibleStatus() string {
	if s.Status == "" || len(s.Messages) == 0 {
		return ""
	}
	last := s.Messages[len(s.Messages)-1]
	if last.Role != types.RoleAssistant || last.Content != "" {
		return ""
	}
	return s.Status
}
