package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sriram629/AI-ChatBot/client/internal/id"
	"github.com/sriram629/AI-ChatBot/client/internal/monitoring"
	"github.com/sriram629/AI-ChatBot/client/internal/protocol"
	"github.com/sriram629/AI-ChatBot/client/internal/resilience"
	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts.BaseURL = srv.URL
	if opts.RetryWaitMin == 0 {
		opts.RetryWaitMin = time.Millisecond
		opts.RetryWaitMax = 5 * time.Millisecond
	}
	return New(opts), srv
}

func TestCreateSession(t *testing.T) {
	var auth, method, path string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		method, path = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"session_id":"s-123","title":"New Chat"}`))
	}, Options{Tokens: staticToken("tok")})

	id, err := client.CreateSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "s-123", id)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/chat/sessions", path)
}

func TestTraceHeaderPerCall(t *testing.T) {
	var traces []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		traces = append(traces, r.Header.Get(protocol.TraceHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}, Options{})

	_, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	_, err = client.ListSessions(context.Background())
	require.NoError(t, err)

	require.Len(t, traces, 2)
	assert.True(t, id.HasPrefix(traces[0], id.TracePrefix), traces[0])
	assert.NotEqual(t, traces[0], traces[1])
}

func TestCreateSessionMissingID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"New Chat"}`))
	}, Options{})

	_, err := client.CreateSession(context.Background())
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestCreateSessionIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, Options{RetryMax: 3})

	_, err := client.CreateSession(context.Background())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Status)
	assert.Equal(t, "create_session", statusErr.Op)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchHistory(t *testing.T) {
	var path string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"_id":"m1","role":"user","content":"hi","attachments":[{"type":"image","url":"https://x/a.png","filename":"a.png"}]},
			{"_id":"m2","role":"assistant","content":"hello"},
			{"id":"m3","role":"user","content":"alt id"},
			{"_id":"m4","role":"system","content":"skipped"},
			{"role":"assistant","content":"no id"}
		]`))
	}, Options{})

	msgs, err := client.FetchHistory(context.Background(), "s 1")
	require.NoError(t, err)

	assert.Equal(t, "/api/chat/sessions/s 1/messages", path)
	require.Len(t, msgs, 3)
	assert.Equal(t, types.Message{
		ID:      "m1",
		Role:    types.RoleUser,
		Content: "hi",
		Attachments: []types.Attachment{
			{Type: types.AttachmentImage, URL: "https://x/a.png", Filename: "a.png"},
		},
	}, msgs[0])
	assert.Equal(t, "m2", msgs[1].ID)
	assert.Equal(t, []types.Attachment{}, msgs[1].Attachments)
	assert.Equal(t, "m3", msgs[2].ID)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, want: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}, Options{})

			_, err := client.FetchHistory(context.Background(), "s1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetchHistoryRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}, Options{RetryMax: 3})

	msgs, err := client.FetchHistory(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Equal(t, int32(3), hits.Load())
}

func TestListSessions(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"session_id":"a","title":"First","created_at":"2025-01-02T03:04:05Z","updated_at":"2025-01-02T03:04:06Z"}]`))
	}, Options{})

	list, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].SessionID)
	assert.Equal(t, "First", list[0].Title)
	assert.Equal(t, 2025, list[0].CreatedAt.Year())
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	var auth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}, Options{Tokens: staticToken("")})

	_, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestBreakerOpensOnRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, Options{RetryMax: 0})

	for i := 0; i < 5; i++ {
		_, err := client.CreateSession(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, resilience.StateOpen, client.BreakerState())

	_, err := client.CreateSession(context.Background())
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(5), hits.Load())
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, Options{})

	for i := 0; i < 10; i++ {
		_, err := client.FetchHistory(context.Background(), "gone")
		require.True(t, errors.Is(err, ErrNotFound))
	}
	assert.Equal(t, resilience.StateClosed, client.BreakerState())
}

func TestRecordsMetrics(t *testing.T) {
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, Options{Metrics: metrics})

	_, _ = client.FetchHistory(context.Background(), "gone")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RESTRequests.WithLabelValues("fetch_history", "404")))
}

func TestCanceledContext(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListSessions(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, resilience.StateClosed, client.BreakerState())
}
