package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/auth"
	"github.com/sriram629/AI-ChatBot/client/internal/events"
	"github.com/sriram629/AI-ChatBot/client/internal/id"
	"github.com/sriram629/AI-ChatBot/client/internal/logging"
	"github.com/sriram629/AI-ChatBot/client/internal/monitoring"
	"github.com/sriram629/AI-ChatBot/client/internal/protocol"
	"github.com/sriram629/AI-ChatBot/client/internal/store"
	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

// PlaceholderID is the id of the assistant message being streamed
const PlaceholderID = "ai-response"

// Controller drives one chat view
type Controller struct {
	api         SessionAPI
	transport   Transport
	creds       *auth.Credentials
	navigator   Navigator
	notifier    Notifier
	authHandler AuthHandler
	bus         *events.Bus
	observer    Observer
	logger      *logging.Logger
	metrics     *monitoring.Metrics

	policy        StopPolicy
	notice        string
	authCloseCode int

	ctx    context.Context
	cancel context.CancelFunc
	unsub  func()

	mu            sync.Mutex
	sessionID     string
	store         *store.Store
	streaming     bool
	status        string
	loading       bool
	historyLoaded bool
	historyGen    uint64
	conn          Conn
	connected     bool
	connecting    bool
	epoch         uint64
	slot          pendingSlot
	bootstrap     BootstrapState
	bootGen       uint64
	closed        bool
	version       uint64
	dirty         bool
	effects       []func()
}

// New creates a controller with no active session
func New(opts Options) (*Controller, error) {
	if opts.API == nil || opts.Transport == nil || opts.Credentials == nil {
		return nil, errors.New("chat: API, Transport and Credentials are required")
	}
	if opts.StopPolicy != "" {
		if _, err := ParseStopPolicy(string(opts.StopPolicy)); err != nil {
			return nil, err
		}
	}
	opts.setDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		api:           opts.API,
		transport:     opts.Transport,
		creds:         opts.Credentials,
		navigator:     opts.Navigator,
		notifier:      opts.Notifier,
		authHandler:   opts.AuthHandler,
		bus:           opts.Bus,
		observer:      opts.Observer,
		logger:        opts.Logger.Named("chat"),
		metrics:       opts.Metrics,
		policy:        opts.StopPolicy,
		notice:        opts.StoppedNotice,
		authCloseCode: opts.AuthCloseCode,
		ctx:           ctx,
		cancel:        cancel,
		store:         store.New(),
		slot:          emptySlot{},
	}
	c.unsub = c.creds.Subscribe(c.onCredential)
	return c, nil
}

// release unlocks mu, then runs queued side effects and notifies the
// observer if state changed. Every locked section ends with it.
func (c *Controller) release() {
	effects := c.effects
	c.effects = nil

	var snap *Snapshot
	if c.dirty {
		c.dirty = false
		c.version++
		s := c.snapshotLocked()
		snap = &s
	}
	c.mu.Unlock()

	for _, fn := range effects {
		fn()
	}
	if snap != nil {
		c.observer(*snap)
	}
}

// after queues fn to run once the lock is released
func (c *Controller) after(fn func()) {
	c.effects = append(c.effects, fn)
}

func (c *Controller) touch() {
	c.dirty = true
}

func (c *Controller) notifyLocked(level Level, text string) {
	c.after(func() { c.notifier.Notify(level, text) })
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Version:    c.version,
		SessionID:  c.sessionID,
		Messages:   c.store.Snapshot(),
		Streaming:  c.streaming,
		Status:     c.status,
		Loading:    c.loading,
		Connected:  c.connected,
		Connecting: c.connecting,
		Bootstrap:  c.bootstrap,
	}
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SessionID returns the active session, empty for a new chat
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Open switches to sessionID; empty starts a new chat. A turn still
// waiting for its session is discarded.
func (c *Controller) Open(sessionID string) {
	c.mu.Lock()
	defer c.release()

	if c.closed || sessionID == c.sessionID {
		return
	}
	c.abandonPendingLocked()
	c.activateLocked(sessionID, nil)
}

// Close tears down the socket and stops all background work.
// Later commands return ErrClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.release()

	if c.closed {
		return nil
	}
	c.closed = true
	c.closeConnLocked()
	c.slot = emptySlot{}
	c.streaming = false
	c.status = ""
	c.touch()
	c.cancel()
	unsub := c.unsub
	c.after(unsub)
	c.logger.Debug("Controller closed", zap.String("session_id", c.sessionID))
	return nil
}

// Send submits a user turn. Without a session one is created first and the
// turn is delivered once its socket opens.
func (c *Controller) Send(ctx context.Context, content string, attachment *types.Attachment) error {
	if strings.TrimSpace(content) == "" && attachment == nil {
		return ErrEmptyMessage
	}
	turn := types.PendingTurn{Content: content, Attachment: attachment}
	tempID := id.NewTempID()

	c.mu.Lock()
	if c.closed {
		c.release()
		return ErrClosed
	}
	if !c.creds.Present() {
		c.notifyLocked(LevelError, "Please login to continue.")
		c.release()
		return ErrNoCredential
	}
	if c.sessionID == "" {
		// releases the lock while the session is created
		return c.bootstrapLocked(ctx, turn, tempID)
	}
	defer c.release()

	if _, busy := c.slot.(bufferedSlot); busy {
		if !c.connected && !c.dialPendingLocked() {
			c.connectLocked(ReasonSendRecovery)
		}
		return ErrPendingBusy
	}

	if err := c.store.Append(turn.Message(tempID)); err != nil {
		return err
	}
	c.streaming = true
	c.status = ""
	c.touch()

	if c.connected {
		err := c.sendLocked(protocol.MessageCommand{Content: turn.Content, Attachment: turn.Attachment, TempID: tempID})
		if err == nil {
			return nil
		}
		c.logger.Warn("Send failed, buffering turn", zap.String("session_id", c.sessionID), zap.Error(err))
	}

	c.slot = bufferedSlot{turn: turn, tempID: tempID}
	if c.dialPendingLocked() {
		// the socket on its way flushes the slot when it opens
		return nil
	}
	c.connectLocked(ReasonSendRecovery)
	return nil
}

// Edit replaces the content of a user message, drops everything after it
// and asks for a new reply.
func (c *Controller) Edit(messageID, newContent string) error {
	if strings.TrimSpace(newContent) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.release()

	if c.closed {
		return ErrClosed
	}
	target, ok := c.store.Find(messageID)
	if !ok {
		return ErrMessageNotFound
	}
	if target.Role != types.RoleUser {
		return ErrNotEditable
	}
	if !c.connected {
		c.notifyLocked(LevelWarn, "Connection lost. Refreshing...")
		c.connectLocked(ReasonSendRecovery)
		return ErrNotConnected
	}

	c.streaming = true
	c.status = ""
	c.store.TruncateAfter(messageID)
	c.store.MutateByID(messageID, newContent)
	c.touch()

	if err := c.sendLocked(protocol.EditCommand{MessageID: messageID, NewContent: newContent}); err != nil {
		c.commandFailedLocked(err)
		return err
	}
	return nil
}

// Regenerate drops a trailing reply and asks for a new one
func (c *Controller) Regenerate() error {
	c.mu.Lock()
	defer c.release()

	if c.closed {
		return ErrClosed
	}
	if !c.connected {
		c.notifyLocked(LevelWarn, "Connection lost. Try again.")
		c.connectLocked(ReasonSendRecovery)
		return ErrNotConnected
	}

	c.streaming = true
	c.status = ""
	c.store.DropLastIf(types.RoleAssistant)
	c.touch()

	if err := c.sendLocked(protocol.RegenerateCommand{}); err != nil {
		c.commandFailedLocked(err)
		return err
	}
	return nil
}

// Stop abandons the reply in progress by dropping the socket, then
// reconnects so the next command finds an open one.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.release()

	if c.closed {
		return ErrClosed
	}
	_, pending := c.slot.(bufferedSlot)
	if c.conn == nil && !c.connecting && !c.streaming && !pending {
		return nil
	}

	interrupted := c.streaming || pending
	c.abandonPendingLocked()
	c.closeConnLocked()
	c.streaming = false
	c.status = ""
	if interrupted {
		c.policy.apply(c.store, c.notice)
		c.metrics.IncStreamsStopped()
	}
	c.rekeyPlaceholderLocked()
	c.touch()

	c.connectLocked(ReasonUserStop)
	c.notifyLocked(LevelInfo, "Stopped")
	return nil
}

// dialPendingLocked reports whether a socket is being dialled or has been
// dialled but not opened yet
func (c *Controller) dialPendingLocked() bool {
	return c.connecting || (c.conn != nil && !c.connected)
}

func (c *Controller) sendLocked(cmd protocol.Command) error {
	data, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}
	if c.conn == nil || !c.connected {
		return ErrNotConnected
	}
	if err := c.conn.Send(data); err != nil {
		return errors.Join(ErrNotConnected, err)
	}
	c.metrics.RecordCommand(cmd.Type())
	c.logger.Debug("Command sent", zap.String("type", cmd.Type()), zap.String("session_id", c.sessionID))
	return nil
}

// commandFailedLocked handles a write error after local state was updated
func (c *Controller) commandFailedLocked(err error) {
	c.logger.Warn("Command failed", zap.String("session_id", c.sessionID), zap.Error(err))
	c.streaming = false
	c.touch()
	c.notifyLocked(LevelWarn, "Connection lost. Try again.")
	c.connectLocked(ReasonSendRecovery)
}

// authRejectedLocked logs out and hands control to the auth handler
func (c *Controller) authRejectedLocked(reason, message string) {
	c.logger.Warn("Credential rejected", zap.String("reason", reason), zap.String("session_id", c.sessionID))
	c.closeConnLocked()
	c.streaming = false
	c.status = ""
	c.touch()
	c.notifyLocked(LevelError, message)
	c.after(func() {
		c.creds.Clear()
		c.authHandler.Rejected(reason)
	})
}
