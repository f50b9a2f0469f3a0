package sim

import (
	"context"
	"strings"

	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

// Responder produces the assistant reply for a conversation whose last
// message is the user turn being answered
type Responder interface {
	Respond(ctx context.Context, history []types.Message) (string, error)
}

// ResponderFunc adapts a function to Responder
type ResponderFunc func(ctx context.Context, history []types.Message) (string, error)

func (f ResponderFunc) Respond(ctx context.Context, history []types.Message) (string, error) {
	return f(ctx, history)
}

// EchoResponder repeats the last user message
type EchoResponder struct{}

func (EchoResponder) Respond(_ context.Context, history []types.Message) (string, error) {
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.Role != types.RoleUser {
			continue
		}
		if strings.TrimSpace(m.Content) == "" && len(m.Attachments) > 0 {
			return "Received " + m.Attachments[0].Filename + ".", nil
		}
		return "You said: " + m.Content, nil
	}
	return "I processed the request.", nil
}

// splitWords cuts a reply into chunks that concatenate back to it exactly
func splitWords(reply string) []string {
	if reply == "" {
		return nil
	}
	return strings.SplitAfter(reply, " ")
}
