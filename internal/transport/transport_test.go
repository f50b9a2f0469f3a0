package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// echoServer upgrades, records the request and runs fn on the server side
func echoServer(t *testing.T, fn func(*websocket.Conn)) (*httptest.Server, chan *http.Request) {
	t.Helper()
	reqs := make(chan *http.Request, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- r
		if r.URL.Query().Get("token") == "bad" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		fn(conn)
	}))
	t.Cleanup(srv.Close)
	return srv, reqs
}

func collect(s *Session) chan Event {
	events := make(chan Event, 16)
	s.Start(func(ev Event) { events <- ev })
	return events
}

func next(t *testing.T, events chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestDialerURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{name: "http", base: "http://localhost:8000", want: "ws://localhost:8000/api/chat/ws/s1?token=t%2B1"},
		{name: "https with path", base: "https://chat.example.com/root/", want: "wss://chat.example.com/root/api/chat/ws/s1?token=t%2B1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDialer(tt.base, Options{}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.URL("s1", "t+1"))
		})
	}

	_, err := NewDialer("ftp://x", Options{}, nil)
	assert.Error(t, err)
}

func TestSessionEventOrder(t *testing.T) {
	srv, reqs := echoServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"start"}`))
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0x1})
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"end"}`))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"))
		_, _, _ = conn.ReadMessage()
	})

	d, err := NewDialer(srv.URL, Options{HandshakeTimeout: time.Second}, nil)
	require.NoError(t, err)

	s, err := d.Dial(context.Background(), "abc", "tok")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "abc", s.SessionID())

	r := <-reqs
	assert.Equal(t, "/api/chat/ws/abc", r.URL.Path)
	assert.Equal(t, "tok", r.URL.Query().Get("token"))

	events := collect(s)
	assert.Equal(t, EventOpen, next(t, events).Kind)

	ev := next(t, events)
	assert.Equal(t, EventMessage, ev.Kind)
	assert.JSONEq(t, `{"type":"start"}`, string(ev.Data))

	ev = next(t, events)
	assert.Equal(t, EventMessage, ev.Kind, "binary frames are skipped")
	assert.JSONEq(t, `{"type":"end"}`, string(ev.Data))

	ev = next(t, events)
	assert.Equal(t, EventClose, ev.Kind)
	assert.Equal(t, websocket.CloseGoingAway, ev.Code)

	<-s.Done()
	assert.ErrorIs(t, s.Send([]byte("x")), ErrNotOpen)
}

func TestSessionPolicyClose(t *testing.T) {
	srv, _ := echoServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(ClosePolicy, "invalid token"))
		_, _, _ = conn.ReadMessage()
	})

	d, err := NewDialer(srv.URL, Options{}, nil)
	require.NoError(t, err)
	s, err := d.Dial(context.Background(), "abc", "expired")
	require.NoError(t, err)

	events := collect(s)
	assert.Equal(t, EventOpen, next(t, events).Kind)
	ev := next(t, events)
	assert.Equal(t, EventClose, ev.Kind)
	assert.Equal(t, ClosePolicy, ev.Code)
}

func TestDialAuthRejected(t *testing.T) {
	srv, _ := echoServer(t, func(*websocket.Conn) {})

	d, err := NewDialer(srv.URL, Options{}, nil)
	require.NoError(t, err)

	_, err = d.Dial(context.Background(), "abc", "bad")
	assert.ErrorIs(t, err, ErrAuthRejected)
}

func TestDialUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	d, err := NewDialer(addr, Options{HandshakeTimeout: 500 * time.Millisecond}, nil)
	require.NoError(t, err)
	_, err = d.Dial(context.Background(), "abc", "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthRejected)
}

func TestSessionSendAndLocalClose(t *testing.T) {
	received := make(chan string, 1)
	srv, _ := echoServer(t, func(conn *websocket.Conn) {
		_, data, err := conn.ReadMessage()
		if err == nil {
			received <- string(data)
		}
		_, _, _ = conn.ReadMessage()
	})

	d, err := NewDialer(srv.URL, Options{}, nil)
	require.NoError(t, err)
	s, err := d.Dial(context.Background(), "abc", "tok")
	require.NoError(t, err)

	events := collect(s)
	assert.Equal(t, EventOpen, next(t, events).Kind)

	require.NoError(t, s.Send([]byte(`{"type":"regenerate"}`)))
	select {
	case got := <-received:
		assert.True(t, strings.Contains(got, "regenerate"))
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the frame")
	}

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close(), "second close is a no-op")

	ev := next(t, events)
	assert.Equal(t, EventClose, ev.Kind)
	assert.Equal(t, CloseNormal, ev.Code)
	assert.ErrorIs(t, s.Send([]byte("x")), ErrNotOpen)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "open", EventOpen.String())
	assert.Equal(t, "close", EventClose.String())
	assert.Equal(t, "EventKind(9)", EventKind(9).String())
}
