package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/sriram629/AI-ChatBot/client/internal/auth"
	"github.com/sriram629/AI-ChatBot/client/internal/events"
	"github.com/sriram629/AI-ChatBot/client/internal/monitoring"
	"github.com/sriram629/AI-ChatBot/client/internal/protocol"
	"github.com/sriram629/AI-ChatBot/client/internal/transport"
	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

const waitFor = 2 * time.Second

type fakeConn struct {
	sessionID  string
	credential string
	started    chan struct{}

	mu      sync.Mutex
	handler transport.Handler
	sent    [][]byte
	closed  bool
	sendErr error
}

func (f *fakeConn) Start(h transport.Handler) {
	f.mu.Lock()
	f.handler = h
	f.mu.Unlock()
	close(f.started)
}

func (f *fakeConn) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return transport.ErrNotOpen
	}
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) emit(t *testing.T, ev transport.Event) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(waitFor):
		t.Fatal("connection never started")
	}
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h(ev)
}

func (f *fakeConn) open(t *testing.T) {
	t.Helper()
	f.emit(t, transport.Event{Kind: transport.EventOpen})
}

func (f *fakeConn) frame(t *testing.T, raw string) {
	t.Helper()
	f.emit(t, transport.Event{Kind: transport.EventMessage, Data: []byte(raw)})
}

func (f *fakeConn) remoteClose(t *testing.T, code int) {
	t.Helper()
	f.emit(t, transport.Event{Kind: transport.EventClose, Code: code})
}

func (f *fakeConn) commands(t *testing.T) []protocol.Command {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]protocol.Command, 0, len(f.sent))
	for _, data := range f.sent {
		cmd, err := protocol.DecodeCommand(data)
		require.NoError(t, err)
		out = append(out, cmd)
	}
	return out
}

type fakeTransport struct {
	dials chan *fakeConn

	mu  sync.Mutex
	err error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{dials: make(chan *fakeConn, 32)}
}

func (ft *fakeTransport) Dial(_ context.Context, sessionID, credential string) (Conn, error) {
	ft.mu.Lock()
	err := ft.err
	ft.mu.Unlock()

	conn := &fakeConn{sessionID: sessionID, credential: credential, started: make(chan struct{})}
	ft.dials <- conn
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (ft *fakeTransport) setErr(err error) {
	ft.mu.Lock()
	ft.err = err
	ft.mu.Unlock()
}

func (ft *fakeTransport) next(t *testing.T) *fakeConn {
	t.Helper()
	select {
	case conn := <-ft.dials:
		return conn
	case <-time.After(waitFor):
		t.Fatal("expected a dial")
		return nil
	}
}

func (ft *fakeTransport) noDial(t *testing.T) {
	t.Helper()
	select {
	case conn := <-ft.dials:
		t.Fatalf("unexpected dial for %q", conn.sessionID)
	case <-time.After(50 * time.Millisecond):
	}
}

type fakeAPI struct {
	mu          sync.Mutex
	nextID      string
	createErr   error
	createGate  chan struct{}
	creates     int
	history     map[string][]types.Message
	historyErr  map[string]error
	historyGate map[string]chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		nextID:      "s-new",
		history:     make(map[string][]types.Message),
		historyErr:  make(map[string]error),
		historyGate: make(map[string]chan struct{}),
	}
}

func (a *fakeAPI) CreateSession(ctx context.Context) (string, error) {
	a.mu.Lock()
	a.creates++
	gate, id, err := a.createGate, a.nextID, a.createErr
	a.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (a *fakeAPI) FetchHistory(ctx context.Context, sessionID string) ([]types.Message, error) {
	a.mu.Lock()
	gate := a.historyGate[sessionID]
	a.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.historyErr[sessionID]; err != nil {
		return nil, err
	}
	return append([]types.Message(nil), a.history[sessionID]...), nil
}

type recorder struct {
	mu          sync.Mutex
	notices     []string
	navigations []string
	rejections  []string
	events      []events.SessionEvent
	snapshots   []Snapshot
}

func (r *recorder) Notify(_ Level, text string) {
	r.mu.Lock()
	r.notices = append(r.notices, text)
	r.mu.Unlock()
}

func (r *recorder) Navigate(sessionID string) {
	r.mu.Lock()
	r.navigations = append(r.navigations, sessionID)
	r.mu.Unlock()
}

func (r *recorder) Rejected(reason string) {
	r.mu.Lock()
	r.rejections = append(r.rejections, reason)
	r.mu.Unlock()
}

func (r *recorder) observe(s Snapshot) {
	r.mu.Lock()
	r.snapshots = append(r.snapshots, s)
	r.mu.Unlock()
}

func (r *recorder) onEvent(ev events.SessionEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) getNotices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notices...)
}

func (r *recorder) getNavigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.navigations...)
}

func (r *recorder) getRejections() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.rejections...)
}

func (r *recorder) getEvents() []events.SessionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.SessionEvent(nil), r.events...)
}

func (r *recorder) getSnapshots() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snapshots...)
}

type harness struct {
	c       *Controller
	api     *fakeAPI
	tr      *fakeTransport
	creds   *auth.Credentials
	rec     *recorder
	metrics *monitoring.Metrics
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	h := &harness{
		api:     newFakeAPI(),
		tr:      newFakeTransport(),
		creds:   auth.NewCredentials("tok"),
		rec:     &recorder{},
		metrics: monitoring.NewMetrics(prometheus.NewRegistry()),
	}
	bus := events.NewBus()
	bus.Subscribe(h.rec.onEvent)

	opts := Options{
		API:         h.api,
		Transport:   h.tr,
		Credentials: h.creds,
		Navigator:   h.rec,
		Notifier:    h.rec,
		AuthHandler: h.rec,
		Bus:         bus,
		Observer:    h.rec.observe,
		Metrics:     h.metrics,
	}
	for _, fn := range mutate {
		fn(&opts)
	}

	c, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	h.c = c
	return h
}

// openSession activates sessionID with the given history and opens its socket
func (h *harness) openSession(t *testing.T, sessionID string, history ...types.Message) *fakeConn {
	t.Helper()
	h.api.mu.Lock()
	h.api.history[sessionID] = history
	h.api.mu.Unlock()

	h.c.Open(sessionID)
	conn := h.tr.next(t)
	require.Equal(t, sessionID, conn.sessionID)
	conn.open(t)
	h.waitLoaded(t)
	require.True(t, h.c.Snapshot().Connected)
	return conn
}

func (h *harness) waitLoaded(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return !h.c.Snapshot().Loading }, waitFor, time.Millisecond)
}

// waitNotice waits for a notice delivered after the lock is released
func (h *harness) waitNotice(t *testing.T, text string) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, n := range h.rec.getNotices() {
			if n == text {
				return true
			}
		}
		return false
	}, waitFor, time.Millisecond)
}

func (h *harness) messages() []types.Message {
	return h.c.Snapshot().Messages
}

func user(id, content string) types.Message {
	return types.Message{ID: id, Role: types.RoleUser, Content: content, Attachments: []types.Attachment{}}
}

func assistant(id, content string) types.Message {
	return types.Message{ID: id, Role: types.RoleAssistant, Content: content, Attachments: []types.Attachment{}}
}
