package store

import (
	"errors"

	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

// ErrDuplicateID is returned when appending a message whose id is already held.
var ErrDuplicateID = errors.New("store: duplicate message id")

// Store is the ordered message list of one conversation.
// It is not safe for concurrent use.
type Store struct {
	msgs []types.Message
}

// New creates an empty store
func New() *Store {
	return &Store{}
}

// Len returns the number of messages
func (s *Store) Len() int {
	return len(s.msgs)
}

// Append adds m at the tail
func (s *Store) Append(m types.Message) error {
	if s.indexOf(m.ID) >= 0 {
		return ErrDuplicateID
	}
	s.msgs = append(s.msgs, m.Clone())
	return nil
}

// AppendDelta concatenates text onto the last message satisfying match.
// It reports whether a message was found.
func (s *Store) AppendDelta(match func(types.Message) bool, text string) bool {
	for i := len(s.msgs) - 1; i >= 0; i-- {
		if match(s.msgs[i]) {
			s.msgs[i].Content += text
			return true
		}
	}
	return false
}

// RemapID replaces tempID with realID. It is a no-op when tempID is absent,
// when the ids are equal, or when realID already belongs to a message.
func (s *Store) RemapID(tempID, realID string) bool {
	if tempID == realID || realID == "" {
		return false
	}
	i := s.indexOf(tempID)
	if i < 0 || s.indexOf(realID) >= 0 {
		return false
	}
	s.msgs[i].ID = realID
	return true
}

// MutateByID replaces the content of the message with the given id
func (s *Store) MutateByID(id, content string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.msgs[i].Content = content
	return true
}

// TruncateAfter drops every message after id and returns its index,
// or -1 without changes when id is absent.
func (s *Store) TruncateAfter(id string) int {
	i := s.indexOf(id)
	if i < 0 {
		return -1
	}
	clear(s.msgs[i+1:])
	s.msgs = s.msgs[:i+1]
	return i
}

// DropLastIf removes the final message only when it has the given role
func (s *Store) DropLastIf(role types.Role) bool {
	n := len(s.msgs)
	if n == 0 || s.msgs[n-1].Role != role {
		return false
	}
	s.msgs[n-1] = types.Message{}
	s.msgs = s.msgs[:n-1]
	return true
}

// Remove deletes the message with the given id
func (s *Store) Remove(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.msgs = append(s.msgs[:i], s.msgs[i+1:]...)
	return true
}

// Replace swaps the whole list, e.g. after a history fetch.
// Later duplicates of an id are dropped.
func (s *Store) Replace(msgs []types.Message) {
	s.msgs = make([]types.Message, 0, len(msgs))
	seen := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		s.msgs = append(s.msgs, m.Clone())
	}
}

// Last returns the trailing message
func (s *Store) Last() (types.Message, bool) {
	if len(s.msgs) == 0 {
		return types.Message{}, false
	}
	return s.msgs[len(s.msgs)-1].Clone(), true
}

// Find returns the message with the given id
func (s *Store) Find(id string) (types.Message, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return types.Message{}, false
	}
	return s.msgs[i].Clone(), true
}

// Has reports whether id is present
func (s *Store) Has(id string) bool {
	return s.indexOf(id) >= 0
}

// SetLastContent overwrites the trailing message content
func (s *Store) SetLastContent(content string) bool {
	if len(s.msgs) == 0 {
		return false
	}
	s.msgs[len(s.msgs)-1].Content = content
	return true
}

// Snapshot returns a deep copy safe to hand to other goroutines
func (s *Store) Snapshot() []types.Message {
	out := make([]types.Message, len(s.msgs))
	for i, m := range s.msgs {
		out[i] = m.Clone()
	}
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.msgs {
		if s.msgs[i].ID == id {
			return i
		}
	}
	return -1
}
