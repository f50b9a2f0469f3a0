package protocol

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

var (
	// ErrUnknownFrame is returned for a well-formed frame with an unrecognised type
	ErrUnknownFrame = errors.New("protocol: unknown frame type")
	// ErrMalformed is returned when a frame is not valid JSON or misses its type
	ErrMalformed = errors.New("protocol: malformed frame")
)

type inbound struct {
	Type    string  `json:"type"`
	IsEdit  bool    `json:"isEdit"`
	Content *string `json:"content"`
	Text    *string `json:"text"`
	ID      string  `json:"id"`
	TempID  string  `json:"tempId"`
	RealID  string  `json:"realId"`
	Title   string  `json:"title"`
}

// content returns the text payload, accepting "text" as an alias
func (in *inbound) content() string {
	if in.Content != nil {
		return *in.Content
	}
	if in.Text != nil {
		return *in.Text
	}
	return ""
}

// Decode parses one inbound text frame
func Decode(data []byte) (Frame, error) {
	var in inbound
	if err := sonic.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch in.Type {
	case TypeStart:
		return StartFrame{IsEdit: in.IsEdit}, nil
	case TypeStatus:
		return StatusFrame{Content: in.content()}, nil
	case TypeChunk:
		return ChunkFrame{Content: in.content()}, nil
	case TypeEditChunk:
		return EditChunkFrame{ID: in.ID, Content: in.content()}, nil
	case TypeIDUpdate:
		return IDUpdateFrame{TempID: in.TempID, RealID: in.RealID}, nil
	case TypeTitleUpdate:
		return TitleUpdateFrame{Title: in.Title}, nil
	case TypeEnd:
		return EndFrame{}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, in.Type)
	}
}

// Encode serialises a command for the socket
func Encode(cmd Command) ([]byte, error) {
	data, err := sonic.Marshal(cmd.wire())
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", cmd.Type(), err)
	}
	return data, nil
}

// EncodeFrame serialises a server frame. The simulated backend uses it so
// both ends share one definition of the wire format.
func EncodeFrame(f Frame) ([]byte, error) {
	var out any
	switch v := f.(type) {
	case StartFrame:
		out = struct {
			Type   string `json:"type"`
			IsEdit bool   `json:"isEdit,omitempty"`
		}{TypeStart, v.IsEdit}
	case StatusFrame:
		out = contentWire{TypeStatus, v.Content}
	case ChunkFrame:
		out = contentWire{TypeChunk, v.Content}
	case EditChunkFrame:
		out = struct {
			Type    string `json:"type"`
			ID      string `json:"id"`
			Content string `json:"content"`
		}{TypeEditChunk, v.ID, v.Content}
	case IDUpdateFrame:
		out = struct {
			Type   string `json:"type"`
			TempID string `json:"tempId"`
			RealID string `json:"realId"`
		}{TypeIDUpdate, v.TempID, v.RealID}
	case TitleUpdateFrame:
		out = struct {
			Type  string `json:"type"`
			Title string `json:"title"`
		}{TypeTitleUpdate, v.Title}
	case EndFrame:
		out = typeOnlyWire{Type: TypeEnd}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownFrame, f)
	}
	return sonic.Marshal(out)
}

type contentWire struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// DecodeCommand parses one outbound command. The simulated backend uses it.
func DecodeCommand(data []byte) (Command, error) {
	var in struct {
		Type       string            `json:"type"`
		Message    string            `json:"message"`
		Attachment *types.Attachment `json:"attachment"`
		TempID     string            `json:"tempId"`
		MessageID  string            `json:"messageId"`
		NewContent string            `json:"newContent"`
	}
	if err := sonic.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch in.Type {
	case TypeMessage:
		return MessageCommand{Content: in.Message, Attachment: in.Attachment, TempID: in.TempID}, nil
	case TypeEdit:
		return EditCommand{MessageID: in.MessageID, NewContent: in.NewContent}, nil
	case TypeRegenerate:
		return RegenerateCommand{}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, in.Type)
	}
}
