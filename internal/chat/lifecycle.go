package chat

import (
	"errors"

	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/api"
	"github.com/sriram629/AI-ChatBot/client/internal/store"
	"github.com/sriram629/AI-ChatBot/client/internal/transport"
	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

// Reconnect reasons, logged and counted.
const (
	ReasonSessionChanged = "session_changed"
	ReasonCredential     = "credential"
	ReasonUserStop       = "user_stop"
	ReasonSendRecovery   = "send_recovery"
)

// activateLocked makes sessionID current with a fresh store. A seed message
// skips the history fetch.
func (c *Controller) activateLocked(sessionID string, seed *types.Message) {
	c.closeConnLocked()
	c.sessionID = sessionID
	c.store = store.New()
	c.streaming = false
	c.status = ""
	c.loading = false
	c.historyLoaded = false
	c.historyGen++
	c.touch()

	c.logger.Info("Session activated", zap.String("session_id", sessionID))
	if sessionID == "" {
		return
	}

	if seed != nil {
		_ = c.store.Append(*seed)
		c.historyLoaded = true
	} else {
		c.startHistoryLocked()
	}
	c.connectLocked(ReasonSessionChanged)
}

func (c *Controller) startHistoryLocked() {
	if c.sessionID == "" || !c.creds.Present() {
		return
	}
	c.loading = true
	c.touch()
	go c.loadHistory(c.sessionID, c.historyGen)
}

// loadHistory fetches persisted messages without holding the lock and
// drops the result if the session or generation moved on.
func (c *Controller) loadHistory(sessionID string, gen uint64) {
	msgs, err := c.api.FetchHistory(c.ctx, sessionID)

	c.mu.Lock()
	defer c.release()

	if c.closed || sessionID != c.sessionID || gen != c.historyGen {
		c.logger.Debug("Dropping stale history", zap.String("session_id", sessionID), zap.Uint64("generation", gen))
		return
	}
	c.loading = false
	c.touch()

	if err != nil {
		switch {
		case errors.Is(err, api.ErrNotFound):
			c.notifyLocked(LevelError, "Chat not found")
			c.after(func() { c.navigator.Navigate("") })
			c.abandonPendingLocked()
			c.activateLocked("", nil)
		case errors.Is(err, api.ErrUnauthorized):
			c.authRejectedLocked("history", "Session expired. Please login again.")
		default:
			c.logger.Error("History fetch failed", zap.String("session_id", sessionID), zap.Error(err))
			c.notifyLocked(LevelError, "Failed to load chat history")
		}
		return
	}

	// keep turns added while the fetch was in flight
	local := c.store.Snapshot()
	c.store.Replace(msgs)
	for _, m := range local {
		if !c.store.Has(m.ID) {
			_ = c.store.Append(m)
		}
	}
	c.historyLoaded = true
	c.logger.Debug("History loaded", zap.String("session_id", sessionID), zap.Int("messages", len(msgs)))
}

// closeConnLocked drops the current socket without draining and bumps the
// epoch so its remaining events are ignored.
func (c *Controller) closeConnLocked() {
	c.epoch++
	if c.conn != nil {
		conn := c.conn
		c.after(func() { _ = conn.Close() })
	}
	if c.connected {
		c.metrics.DecWSConnections()
	}
	if c.conn != nil || c.connected || c.connecting {
		c.touch()
	}
	c.conn = nil
	c.connected = false
	c.connecting = false
}

// connectLocked replaces the socket with a new one for the current session
func (c *Controller) connectLocked(reason string) {
	c.closeConnLocked()
	if c.closed || c.sessionID == "" {
		return
	}
	token := c.creds.Token()
	if token == "" {
		c.logger.Debug("Not connecting without credential", zap.String("session_id", c.sessionID))
		return
	}

	epoch := c.epoch
	sessionID := c.sessionID
	c.connecting = true
	c.touch()
	c.metrics.RecordReconnect(reason)
	c.logger.Info("Connecting",
		zap.String("session_id", sessionID),
		zap.Uint64("epoch", epoch),
		zap.String("reason", reason))

	go c.dial(epoch, sessionID, token)
}

func (c *Controller) dial(epoch uint64, sessionID, token string) {
	conn, err := c.transport.Dial(c.ctx, sessionID, token)

	c.mu.Lock()
	defer c.release()

	if c.closed || epoch != c.epoch {
		if conn != nil {
			c.after(func() { _ = conn.Close() })
		}
		return
	}
	c.connecting = false
	c.touch()

	if err != nil {
		if errors.Is(err, transport.ErrAuthRejected) {
			c.authRejectedLocked("handshake", "Connection denied. Please login again.")
			return
		}
		c.logger.Warn("Dial failed", zap.String("session_id", sessionID), zap.Uint64("epoch", epoch), zap.Error(err))
		c.streaming = false
		c.notifyLocked(LevelWarn, "Could not connect to chat server")
		return
	}

	c.conn = conn
	conn.Start(c.handlerFor(epoch))
}

func (c *Controller) handlerFor(epoch uint64) transport.Handler {
	return func(ev transport.Event) {
		c.onSocketEvent(epoch, ev)
	}
}

func (c *Controller) onSocketEvent(epoch uint64, ev transport.Event) {
	c.mu.Lock()
	defer c.release()

	if c.closed || epoch != c.epoch {
		c.logger.Debug("Ignoring stale socket event",
			zap.Stringer("kind", ev.Kind),
			zap.Uint64("epoch", epoch),
			zap.Uint64("current", c.epoch))
		return
	}

	switch ev.Kind {
	case transport.EventOpen:
		c.connected = true
		c.metrics.IncWSConnections()
		c.touch()
		c.flushPendingLocked()
	case transport.EventMessage:
		c.handleFrameLocked(ev.Data)
	case transport.EventError:
		c.logger.Warn("Socket error", zap.String("session_id", c.sessionID), zap.Error(ev.Err))
	case transport.EventClose:
		c.onCloseLocked(ev.Code)
	}
}

// onCloseLocked handles a close the client did not initiate. The socket is
// not redialled; the next command reconnects.
func (c *Controller) onCloseLocked(code int) {
	if c.connected {
		c.metrics.DecWSConnections()
	}
	c.conn = nil
	c.connected = false
	c.connecting = false
	c.touch()

	if code == c.authCloseCode {
		c.authRejectedLocked("close_code", "Connection denied. Please login again.")
		return
	}

	c.logger.Info("Socket closed by server", zap.String("session_id", c.sessionID), zap.Int("code", code))
	c.streaming = false
	c.status = ""
	c.rekeyPlaceholderLocked()
}

// onCredential follows login and logout
func (c *Controller) onCredential(token string) {
	c.mu.Lock()
	defer c.release()

	if c.closed {
		return
	}
	if token == "" {
		c.logger.Info("Credential cleared", zap.String("session_id", c.sessionID))
		c.closeConnLocked()
		c.streaming = false
		c.status = ""
		c.touch()
		return
	}
	if c.sessionID == "" {
		return
	}
	if !c.historyLoaded && !c.loading {
		c.historyGen++
		c.startHistoryLocked()
	}
	c.connectLocked(ReasonCredential)
}
