package sim

import (
	"context"
	"errors"
	"html"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/protocol"
	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

const (
	titleLimit    = 40
	thinkingText  = "Thinking..."
	fallbackReply = "**Error:** I couldn't process that request."
)

var errSessionGone = errors.New("sim: session no longer exists")

// HandleSocket upgrades to the chat socket. Bad credentials and unknown
// sessions are accepted and then closed with a policy violation, as the
// production server does.
func (s *Server) HandleSocket(c *gin.Context) {
	sessionID := c.Param("id")
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", traceField(c), zap.Error(err))
		return
	}
	defer conn.Close()

	if !tokenMatches(c.Query("token"), s.tokenHash) || !s.store.Exists(sessionID) {
		s.logger.Warn("Rejecting socket", zapSession(sessionID), traceField(c))
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		return
	}

	s.logger.Info("Socket opened", zapSession(sessionID))
	sock := &socket{server: s, conn: conn, sessionID: sessionID}
	ctx := c.Request.Context()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debug("Socket closed", zapSession(sessionID), zap.Error(err))
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		cmd, err := protocol.DecodeCommand(data)
		if err != nil {
			s.logger.Debug("Ignoring command", zapSession(sessionID), zap.Error(err))
			continue
		}
		if err := sock.handle(ctx, cmd); err != nil {
			s.logger.Debug("Socket handler stopped", zapSession(sessionID), zap.Error(err))
			return
		}
	}
}

// socket serves one connection; all writes happen on the read goroutine
type socket struct {
	server    *Server
	conn      *websocket.Conn
	sessionID string
}

func (k *socket) handle(ctx context.Context, cmd protocol.Command) error {
	store := k.server.store

	switch cmd := cmd.(type) {
	case protocol.MessageCommand:
		if strings.TrimSpace(cmd.Content) == "" && cmd.Attachment == nil {
			return nil
		}
		msg := types.Message{Role: types.RoleUser, Content: cmd.Content}
		if cmd.Attachment != nil {
			msg.Attachments = []types.Attachment{*cmd.Attachment}
		}
		realID, ok := store.Append(k.sessionID, msg, cmd.TempID)
		if !ok {
			return errSessionGone
		}
		if cmd.TempID != "" {
			if err := k.write(protocol.IDUpdateFrame{TempID: cmd.TempID, RealID: realID}); err != nil {
				return err
			}
		}
		if title := k.server.title(cmd.Content); store.NameIfNew(k.sessionID, title) {
			if err := k.write(protocol.TitleUpdateFrame{Title: title}); err != nil {
				return err
			}
		}

	case protocol.EditCommand:
		if strings.TrimSpace(cmd.NewContent) == "" {
			return nil
		}
		if !store.Rewind(k.sessionID, cmd.MessageID, cmd.NewContent) {
			k.server.logger.Info("Edit of unknown message ignored",
				zapSession(k.sessionID), zap.String("message_id", cmd.MessageID))
			return nil
		}

	case protocol.RegenerateCommand:
		store.DropTrailingReply(k.sessionID)
	}

	return k.reply(ctx)
}

// reply streams one assistant answer and persists it before the end frame
func (k *socket) reply(ctx context.Context) error {
	history, ok := k.server.store.Messages(k.sessionID)
	if !ok {
		return errSessionGone
	}

	if err := k.write(protocol.StartFrame{}); err != nil {
		return err
	}
	if err := k.write(protocol.StatusFrame{Content: thinkingText}); err != nil {
		return err
	}

	text, err := k.server.responder.Respond(ctx, history)
	if err != nil {
		k.server.logger.Warn("Responder failed", zapSession(k.sessionID), zap.Error(err))
		text = fallbackReply
	}

	for _, word := range splitWords(text) {
		if err := k.pause(ctx); err != nil {
			return err
		}
		if err := k.write(protocol.ChunkFrame{Content: word}); err != nil {
			return err
		}
	}

	reply := types.Message{Role: types.RoleAssistant, Content: text}
	if _, ok := k.server.store.Append(k.sessionID, reply, ""); !ok {
		return errSessionGone
	}
	return k.write(protocol.EndFrame{})
}

func (k *socket) pause(ctx context.Context) error {
	if k.server.chunkDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(k.server.chunkDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *socket) write(f protocol.Frame) error {
	data, err := protocol.EncodeFrame(f)
	if err != nil {
		return err
	}
	return k.conn.WriteMessage(websocket.TextMessage, data)
}

// title derives a plain-text session title from the first user turn
func (s *Server) title(content string) string {
	plain := html.UnescapeString(s.titles.Sanitize(content))
	plain = strings.Join(strings.Fields(plain), " ")
	if utf8.RuneCountInString(plain) > titleLimit {
		plain = string([]rune(plain)[:titleLimit])
	}
	return plain
}

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}
