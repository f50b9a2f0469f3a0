package chat

import (
	"fmt"
	"strings"

	"github.com/sriram629/AI-ChatBot/client/internal/id"
	"github.com/sriram629/AI-ChatBot/client/internal/store"
	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

// DefaultStoppedNotice is shown in place of an interrupted reply
const DefaultStoppedNotice = "Generation stopped by user."

// StopPolicy decides what happens to the trailing message on Stop
type StopPolicy string

const (
	// StopPreserve keeps partial text and only fills an empty reply
	StopPreserve StopPolicy = "preserve"
	// StopReplace always overwrites the trailing reply with the notice
	StopReplace StopPolicy = "replace"
)

// ParseStopPolicy validates a policy name
func ParseStopPolicy(s string) (StopPolicy, error) {
	switch p := StopPolicy(s); p {
	case StopPreserve, StopReplace:
		return p, nil
	default:
		return "", fmt.Errorf("chat: unknown stop policy %q", s)
	}
}

// apply rewrites the tail of s after a stop. A trailing user turn gets an
// assistant notice appended under either policy.
func (p StopPolicy) apply(s *store.Store, notice string) {
	last, ok := s.Last()
	if !ok {
		return
	}
	switch last.Role {
	case types.RoleAssistant:
		if p == StopReplace || strings.TrimSpace(last.Content) == "" {
			s.SetLastContent(notice)
		}
	case types.RoleUser:
		_ = s.Append(types.Message{
			ID:          id.NewStoppedID(),
			Role:        types.RoleAssistant,
			Content:     notice,
			Attachments: []types.Attachment{},
		})
	}
}
