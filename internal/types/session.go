package types

import "time"

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// AttachmentType distinguishes inline images from other files
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentFile  AttachmentType = "file"
)

// Attachment is an opaque reference to uploaded content
type Attachment struct {
	Type     AttachmentType `json:"type"`
	URL      string         `json:"url,omitempty"`
	Filename string         `json:"filename"`
	Preview  string         `json:"preview,omitempty"`
}

// Message represents one conversation turn
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Clone returns a copy that shares no slices with m
func (m Message) Clone() Message {
	if m.Attachments != nil {
		m.Attachments = append(make([]Attachment, 0, len(m.Attachments)), m.Attachments...)
	}
	return m
}

// PendingTurn is a user turn waiting for a socket to deliver it
type PendingTurn struct {
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Message builds the optimistic user message for the turn
func (p PendingTurn) Message(id string) Message {
	msg := Message{
		ID:          id,
		Role:        RoleUser,
		Content:     p.Content,
		Attachments: []Attachment{},
	}
	if p.Attachment != nil {
		msg.Attachments = append(msg.Attachments, *p.Attachment)
	}
	return msg
}

// SessionSummary is the list view of a persisted conversation
type SessionSummary struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
