package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/logging"
)

// ErrAuthRejected is returned when the handshake is refused with 401 or 403
var ErrAuthRejected = errors.New("transport: handshake rejected")

// Options configures a Dialer
type Options struct {
	HandshakeTimeout time.Duration
}

// Dialer opens chat sockets against one backend
type Dialer struct {
	base   *url.URL
	ws     *websocket.Dialer
	logger *logging.Logger
}

// NewDialer builds a dialer from the REST base URL (http or https)
func NewDialer(baseURL string, opts Options, logger *logging.Logger) (*Dialer, error) {
	base, err := socketBase(baseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	ws := *websocket.DefaultDialer
	if opts.HandshakeTimeout > 0 {
		ws.HandshakeTimeout = opts.HandshakeTimeout
	}
	return &Dialer{
		base:   base,
		ws:     &ws,
		logger: logger.Named("transport"),
	}, nil
}

func socketBase(baseURL string) (*url.URL, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("transport: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	return u, nil
}

// URL returns the socket address for a session. The credential travels in
// the query string since the browser-compatible handshake carries no headers.
func (d *Dialer) URL(sessionID, credential string) string {
	u := *d.base
	u.Path = d.base.Path + "/api/chat/ws/" + sessionID
	u.RawPath = d.base.Path + "/api/chat/ws/" + url.PathEscape(sessionID)
	q := url.Values{}
	q.Set("token", credential)
	u.RawQuery = q.Encode()
	return u.String()
}

// Dial connects to the socket for sessionID. The returned Session does not
// read until Start is called.
func (d *Dialer) Dial(ctx context.Context, sessionID, credential string) (*Session, error) {
	d.logger.Debug("Dialing socket", zap.String("session_id", sessionID))
	conn, resp, err := d.ws.DialContext(ctx, d.URL(sessionID, credential), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: status %d", ErrAuthRejected, resp.StatusCode)
		}
		return nil, fmt.Errorf("transport: dial %s: %w", sessionID, err)
	}

	s := newSession(conn, sessionID, d.logger)
	s.logger.Debug("Socket connected")
	return s, nil
}
