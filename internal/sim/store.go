package sim

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

// DefaultTitle is the title of a session before its first turn
const DefaultTitle = "New Chat"

type session struct {
	summary  types.SessionSummary
	messages []types.Message
	aliases  map[string]string // client temp id -> message id
}

// Store holds sessions in memory
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	now      func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Create adds an empty session
func (s *Store) Create() types.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	sess := &session{
		summary: types.SessionSummary{
			SessionID: uuid.NewString(),
			Title:     DefaultTitle,
			CreatedAt: now,
			UpdatedAt: now,
		},
		aliases: make(map[string]string),
	}
	s.sessions[sess.summary.SessionID] = sess
	return sess.summary
}

// List returns all sessions, most recently updated first
func (s *Store) List() []types.SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.SessionSummary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Exists reports whether id names a session
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// Messages returns a copy of a session's history
func (s *Store) Messages(id string) ([]types.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	out := make([]types.Message, len(sess.messages))
	for i, m := range sess.messages {
		out[i] = m.Clone()
	}
	return out, true
}

// Append persists a message and returns its server id. A non-empty tempID
// is remembered so later edits may still address it.
func (s *Store) Append(id string, msg types.Message, tempID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return "", false
	}
	msg.ID = uuid.NewString()
	if msg.Attachments == nil {
		msg.Attachments = []types.Attachment{}
	}
	sess.messages = append(sess.messages, msg.Clone())
	if tempID != "" {
		sess.aliases[tempID] = msg.ID
	}
	sess.summary.UpdatedAt = s.now().UTC()
	return msg.ID, true
}

// NameIfNew sets the title of a session still carrying DefaultTitle.
// It reports whether the title changed.
func (s *Store) NameIfNew(id, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || title == "" || sess.summary.Title != DefaultTitle {
		return false
	}
	sess.summary.Title = title
	return true
}

// Rewind replaces the content of a user message and deletes every message
// after it. It reports whether the message was found.
func (s *Store) Rewind(id, messageID, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	if real, ok := sess.aliases[messageID]; ok {
		messageID = real
	}
	for i := range sess.messages {
		m := &sess.messages[i]
		if m.ID != messageID {
			continue
		}
		if m.Role != types.RoleUser {
			return false
		}
		m.Content = content
		sess.messages = sess.messages[:i+1]
		sess.summary.UpdatedAt = s.now().UTC()
		return true
	}
	return false
}

// DropTrailingReply removes the last message if it is an assistant reply
func (s *Store) DropTrailingReply(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || len(sess.messages) == 0 {
		return false
	}
	last := len(sess.messages) - 1
	if sess.messages[last].Role != types.RoleAssistant {
		return false
	}
	sess.messages = sess.messages[:last]
	return true
}
