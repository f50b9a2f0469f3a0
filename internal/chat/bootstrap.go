package chat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/api"
	"github.com/sriram629/AI-ChatBot/client/internal/events"
	"github.com/sriram629/AI-ChatBot/client/internal/protocol"
	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

// pendingSlot holds at most one turn waiting for an open socket
type pendingSlot interface {
	pending()
}

type emptySlot struct{}

type bufferedSlot struct {
	turn   types.PendingTurn
	tempID string
}

func (emptySlot) pending() {}
func (bufferedSlot) pending() {}

// bootstrapLocked creates a session for the first turn. It is entered with
// mu held and always returns with mu released.
func (c *Controller) bootstrapLocked(ctx context.Context, turn types.PendingTurn, tempID string) error {
	if _, busy := c.slot.(bufferedSlot); busy {
		c.release()
		return ErrPendingBusy
	}

	msg := turn.Message(tempID)
	if err := c.store.Append(msg); err != nil {
		c.release()
		return err
	}
	c.streaming = true
	c.status = ""
	c.slot = bufferedSlot{turn: turn, tempID: tempID}
	c.bootstrap = BootstrapCreating
	c.bootGen++
	gen := c.bootGen
	c.touch()
	c.release()

	sessionID, err := c.api.CreateSession(ctx)

	c.mu.Lock()
	defer c.release()

	if c.closed {
		return ErrClosed
	}
	if gen != c.bootGen || c.bootstrap != BootstrapCreating {
		c.logger.Info("Dropping late session creation", zap.String("session_id", sessionID), zap.Error(err))
		return ErrBootstrapAbandoned
	}

	if err != nil {
		c.slot = emptySlot{}
		c.bootstrap = BootstrapIdle
		c.store.Remove(tempID)
		c.streaming = false
		c.touch()
		if errors.Is(err, api.ErrUnauthorized) {
			c.authRejectedLocked("create_session", "Session expired. Please login again.")
		} else {
			c.logger.Error("Session creation failed", zap.Error(err))
			c.notifyLocked(LevelError, "Failed to start chat")
		}
		return fmt.Errorf("%w: %w", ErrBootstrapFailed, err)
	}

	c.logger.Info("Session created for first turn", zap.String("session_id", sessionID), zap.String("temp_id", tempID))
	c.bootstrap = BootstrapNavigated
	c.after(func() { c.navigator.Navigate(sessionID) })

	c.activateLocked(sessionID, &msg)
	c.streaming = true
	if c.connecting {
		c.bootstrap = BootstrapConnecting
	}
	return nil
}

// flushPendingLocked delivers the buffered turn on a freshly opened socket
func (c *Controller) flushPendingLocked() {
	slot, ok := c.slot.(bufferedSlot)
	if !ok {
		return
	}

	cmd := protocol.MessageCommand{Content: slot.turn.Content, Attachment: slot.turn.Attachment, TempID: slot.tempID}
	if err := c.sendLocked(cmd); err != nil {
		c.logger.Warn("Flushing pending turn failed", zap.String("session_id", c.sessionID), zap.Error(err))
		return
	}
	c.slot = emptySlot{}
	c.touch()

	if !c.store.Has(slot.tempID) {
		_ = c.store.Append(slot.turn.Message(slot.tempID))
	}

	if c.bootstrap == BootstrapConnecting || c.bootstrap == BootstrapNavigated {
		c.bootstrap = BootstrapFlushed
		sessionID := c.sessionID
		c.after(func() {
			c.bus.Publish(events.SessionEvent{SessionID: sessionID, Reason: events.ReasonFirstTurn})
		})
	}
}

// abandonPendingLocked drops a buffered turn; a creation still in flight
// will find its generation stale.
func (c *Controller) abandonPendingLocked() {
	if _, ok := c.slot.(bufferedSlot); ok {
		c.logger.Debug("Discarding pending turn", zap.String("session_id", c.sessionID))
	}
	c.slot = emptySlot{}
	c.bootstrap = BootstrapIdle
	c.bootGen++
}
