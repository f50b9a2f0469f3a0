package protocol

import "github.com/sriram629/AI-ChatBot/client/internal/types"

// Command types sent by the client.
const (
	TypeMessage    = "message"
	TypeEdit       = "edit"
	TypeRegenerate = "regenerate"
)

// Command is one outbound message
type Command interface {
	Type() string
	wire() any
}

// MessageCommand submits a user turn
type MessageCommand struct {
	Content    string
	Attachment *types.Attachment
	TempID     string
}

// EditCommand replaces the content of a user message and regenerates
type EditCommand struct {
	MessageID  string
	NewContent string
}

// RegenerateCommand asks for a fresh reply to the last user turn
type RegenerateCommand struct{}

func (MessageCommand) Type() string { return TypeMessage }
func (EditCommand) Type() string { return TypeEdit }
func (RegenerateCommand) Type() string { return TypeRegenerate }

type messageWire struct {
	Type       string            `json:"type"`
	Message    string            `json:"message"`
	Attachment *types.Attachment `json:"attachment"`
	TempID     string            `json:"tempId"`
}

type editWire struct {
	Type       string `json:"type"`
	MessageID  string `json:"messageId"`
	NewContent string `json:"newContent"`
}

type typeOnlyWire struct {
	Type string `json:"type"`
}

func (c MessageCommand) wire() any {
	return messageWire{Type: TypeMessage, Message: c.Content, Attachment: c.Attachment, TempID: c.TempID}
}

func (c EditCommand) wire() any {
	return editWire{Type: TypeEdit, MessageID: c.MessageID, NewContent: c.NewContent}
}

func (RegenerateCommand) wire() any {
	return typeOnlyWire{Type: TypeRegenerate}
}
