package transport

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/logging"
)

// EventKind enumerates socket lifecycle events
type EventKind int

const (
	EventOpen EventKind = iota
	EventMessage
	EventError
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventMessage:
		return "message"
	case EventError:
		return "error"
	case EventClose:
		return "close"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is delivered to a Handler from the session read loop
type Event struct {
	Kind EventKind
	Data []byte
	Code int
	Err  error
}

// Handler receives events in order from a single goroutine
type Handler func(Event)

// Close codes used by the client.
const (
	CloseNormal   = websocket.CloseNormalClosure
	CloseAbnormal = websocket.CloseAbnormalClosure
	ClosePolicy   = websocket.ClosePolicyViolation
)

const closeWriteTimeout = time.Second

// ErrNotOpen is returned when sending on a closed session
var ErrNotOpen = errors.New("transport: session not open")

// Session is one WebSocket connection bound to a chat session
type Session struct {
	id        string
	sessionID string
	conn      *websocket.Conn
	logger    *logging.Logger

	writeMu sync.Mutex
	closed  atomic.Bool
	started atomic.Bool
	done    chan struct{}
}

func newSession(conn *websocket.Conn, sessionID string, logger *logging.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:        id,
		sessionID: sessionID,
		conn:      conn,
		logger:    logger.With(zap.String("conn_id", id), zap.String("session_id", sessionID)),
		done:      make(chan struct{}),
	}
}

// ID returns the connection id used in logs
func (s *Session) ID() string {
	return s.id
}

// SessionID returns the chat session this connection serves
func (s *Session) SessionID() string {
	return s.sessionID
}

// Start runs the read loop. EventOpen is delivered first and EventClose last.
// Calling Start more than once has no effect.
func (s *Session) Start(h Handler) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.readLoop(h)
}

// Done is closed when the read loop exits
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) readLoop(h Handler) {
	defer close(s.done)

	h(Event{Kind: EventOpen})

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			for _, ev := range s.closeEvents(err) {
				h(ev)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		h(Event{Kind: EventMessage, Data: data})
	}
}

func (s *Session) closeEvents(err error) []Event {
	if !s.markClosed() {
		return []Event{{Kind: EventClose, Code: CloseNormal}}
	}
	_ = s.conn.Close()

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		s.logger.Debug("Socket closed by peer", zap.Int("code", ce.Code), zap.String("reason", ce.Text))
		return []Event{{Kind: EventClose, Code: ce.Code}}
	}
	s.logger.Warn("Socket read failed", zap.Error(err))
	return []Event{
		{Kind: EventError, Err: err},
		{Kind: EventClose, Code: CloseAbnormal},
	}
}

// Send writes one text frame
func (s *Session) Send(data []byte) error {
	if s.closed.Load() {
		return ErrNotOpen
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

// Close sends a best-effort close frame and drops the connection
// without waiting for the peer.
func (s *Session) Close() error {
	if !s.markClosed() {
		return nil
	}
	s.writeMu.Lock()
	msg := websocket.FormatCloseMessage(CloseNormal, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
	s.writeMu.Unlock()
	s.logger.Debug("Socket closed locally")
	return s.conn.Close()
}

func (s *Session) markClosed() bool {
	return s.closed.CompareAndSwap(false, true)
}
