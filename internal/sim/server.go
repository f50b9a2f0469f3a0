package sim

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/logging"
	"github.com/sriram629/AI-ChatBot/client/internal/monitoring"
)

// Options configures a Server. Token is required.
type Options struct {
	Token        string
	ChunkDelay   time.Duration
	RateLimitRPS float64
	Responder    Responder
	Logger       *logging.Logger
	Metrics      *monitoring.Metrics
	Development  bool

	// MetricsHandler, when set, is served on /metrics
	MetricsHandler http.Handler
}

// Server wraps the router and the in-memory backend state
type Server struct {
	router     *gin.Engine
	store      *Store
	tokenHash  []byte
	chunkDelay time.Duration
	responder  Responder
	logger     *logging.Logger
	metrics    *monitoring.Metrics
	upgrader   websocket.Upgrader
	titles     *bluemonday.Policy
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Token == "" {
		return nil, errors.New("sim: token is required")
	}
	hash, err := hashToken(opts.Token)
	if err != nil {
		return nil, fmt.Errorf("sim: hash token: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Responder == nil {
		opts.Responder = EchoResponder{}
	}

	s := &Server{
		store:      NewStore(),
		tokenHash:  hash,
		chunkDelay: opts.ChunkDelay,
		responder:  opts.Responder,
		logger:     opts.Logger.Named("sim"),
		metrics:    opts.Metrics,
		upgrader:   newUpgrader(),
		titles:     bluemonday.StrictPolicy(),
	}

	if !opts.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(Trace(s.logger))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(CORS(DefaultCORSConfig()))
	router.Use(RateLimit(opts.RateLimitRPS, int(opts.RateLimitRPS)*2))

	router.GET("/health", s.Health)
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	chat := router.Group("/api/chat")
	// the socket authenticates with its query token
	chat.GET("/ws/:id", s.HandleSocket)

	sessions := chat.Group("/sessions", BearerAuth(s.tokenHash), Gzip())
	sessions.POST("", s.CreateSession)
	sessions.GET("", s.ListSessions)
	sessions.GET("/:id/messages", s.SessionMessages)

	s.router = router
	return s, nil
}

// Handler exposes the router, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store exposes the backing store
func (s *Server) Store() *Store {
	return s.store
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting simulated chat backend", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func zapSession(id string) zap.Field {
	return zap.String("session_id", id)
}
