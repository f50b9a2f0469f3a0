package api

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

const (
	sessionsPath = "/api/chat/sessions"
	messagesPath = "/api/chat/sessions/{id}/messages"
)

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
}

// historyMessage is the persisted message shape. The backend keys
// documents by _id; id is accepted too.
type historyMessage struct {
	MongoID     string             `json:"_id"`
	ID          string             `json:"id"`
	Role        types.Role         `json:"role"`
	Content     string             `json:"content"`
	Attachments []types.Attachment `json:"attachments"`
}

// CreateSession creates an empty conversation and returns its id
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var out createSessionResponse
	err := c.do(ctx, "create_session", func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&out).Post(sessionsPath)
	})
	if err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("%w: create_session: missing session_id", ErrBadResponse)
	}
	c.logger.Info("Session created", zap.String("session_id", out.SessionID))
	return out.SessionID, nil
}

// ListSessions returns the caller's conversations
func (c *Client) ListSessions(ctx context.Context) ([]types.SessionSummary, error) {
	var out []types.SessionSummary
	err := c.do(ctx, "list_sessions", func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&out).Get(sessionsPath)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchHistory returns the persisted messages of a session in turn order
func (c *Client) FetchHistory(ctx context.Context, sessionID string) ([]types.Message, error) {
	var out []historyMessage
	err := c.do(ctx, "fetch_history", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", sessionID).SetResult(&out).Get(messagesPath)
	})
	if err != nil {
		return nil, err
	}

	msgs := make([]types.Message, 0, len(out))
	for _, h := range out {
		id := h.MongoID
		if id == "" {
			id = h.ID
		}
		if id == "" || !h.Role.Valid() {
			c.logger.Debug("Skipping history entry",
				zap.String("session_id", sessionID),
				zap.String("id", id),
				zap.String("role", string(h.Role)))
			continue
		}
		attachments := h.Attachments
		if attachments == nil {
			attachments = []types.Attachment{}
		}
		msgs = append(msgs, types.Message{
			ID:          id,
			Role:        h.Role,
			Content:     h.Content,
			Attachments: attachments,
		})
	}
	return msgs, nil
}
