package chat

import (
	"context"

	"github.com/sriram629/AI-ChatBot/client/internal/auth"
	"github.com/sriram629/AI-ChatBot/client/internal/events"
	"github.com/sriram629/AI-ChatBot/client/internal/logging"
	"github.com/sriram629/AI-ChatBot/client/internal/monitoring"
	"github.com/sriram629/AI-ChatBot/client/internal/transport"
	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

// SessionAPI is the REST surface the controller needs
type SessionAPI interface {
	CreateSession(ctx context.Context) (string, error)
	FetchHistory(ctx context.Context, sessionID string) ([]types.Message, error)
}

// Conn is one socket connection
type Conn interface {
	Start(h transport.Handler)
	Send(data []byte) error
	Close() error
}

// Transport opens socket connections
type Transport interface {
	Dial(ctx context.Context, sessionID, credential string) (Conn, error)
}

// Navigator moves the presentation layer to a session; empty means a new chat
type Navigator interface {
	Navigate(sessionID string)
}

// Level is the severity of a user notice
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notifier shows transient notices to the user
type Notifier interface {
	Notify(level Level, text string)
}

// AuthHandler is told when the credential was rejected
type AuthHandler interface {
	Rejected(reason string)
}

// Observer receives a snapshot after every state change
type Observer func(Snapshot)

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(sessionID string)

func (f NavigatorFunc) Navigate(sessionID string) { f(sessionID) }

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(level Level, text string)

func (f NotifierFunc) Notify(level Level, text string) { f(level, text) }

// AuthHandlerFunc adapts a function to AuthHandler
type AuthHandlerFunc func(reason string)

func (f AuthHandlerFunc) Rejected(reason string) { f(reason) }

// Options wires a Controller. API, Transport and Credentials are required.
type Options struct {
	API         SessionAPI
	Transport   Transport
	Credentials *auth.Credentials

	Navigator   Navigator
	Notifier    Notifier
	AuthHandler AuthHandler
	Bus         *events.Bus
	Observer    Observer

	Logger  *logging.Logger
	Metrics *monitoring.Metrics

	StopPolicy    StopPolicy
	StoppedNotice string
	AuthCloseCode int
}

func (o *Options) setDefaults() {
	if o.Navigator == nil {
		o.Navigator = NavigatorFunc(func(string) {})
	}
	if o.Notifier == nil {
		o.Notifier = NotifierFunc(func(Level, string) {})
	}
	if o.AuthHandler == nil {
		o.AuthHandler = AuthHandlerFunc(func(string) {})
	}
	if o.Bus == nil {
		o.Bus = events.NewBus()
	}
	if o.Observer == nil {
		o.Observer = func(Snapshot) {}
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
	if o.StopPolicy == "" {
		o.StopPolicy = StopPreserve
	}
	if o.StoppedNotice == "" {
		o.StoppedNotice = DefaultStoppedNotice
	}
	if o.AuthCloseCode == 0 {
		o.AuthCloseCode = transport.ClosePolicy
	}
}

// NewTransport adapts a transport.Dialer to Transport
func NewTransport(d *transport.Dialer) Transport {
	return dialerTransport{dialer: d}
}

type dialerTransport struct {
	dialer *transport.Dialer
}

func (t dialerTransport) Dial(ctx context.Context, sessionID, credential string) (Conn, error) {
	s, err := t.dialer.Dial(ctx, sessionID, credential)
	if err != nil {
		return nil, err
	}
	return s, nil
}
