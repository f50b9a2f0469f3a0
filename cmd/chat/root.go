package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sriram629/AI-ChatBot/client/internal/api"
	"github.com/sriram629/AI-ChatBot/client/internal/auth"
	"github.com/sriram629/AI-ChatBot/client/internal/chat"
	"github.com/sriram629/AI-ChatBot/client/internal/config"
	"github.com/sriram629/AI-ChatBot/client/internal/events"
	"github.com/sriram629/AI-ChatBot/client/internal/logging"
	"github.com/sriram629/AI-ChatBot/client/internal/monitoring"
	"github.com/sriram629/AI-ChatBot/client/internal/transport"
	"github.com/sriram629/AI-ChatBot/client/internal/tui"
)

var errNoToken = errors.New("no access token; pass --token or set CHAT_TOKEN")

// app holds what every subcommand shares
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *prometheus.Registry
	metrics  *monitoring.Metrics
	creds    *auth.Credentials
	client   *api.Client
}

type rootFlags struct {
	apiURL      string
	token       string
	logLevel    string
	logFile     string
	stopPolicy  string
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     = &app{}
	)

	root := &cobra.Command{
		Use:   "chat",
		Short: "Terminal client for the streaming chat service",
		Long: `Chat with the assistant from your terminal.

Replies stream in as they are generated. Type /help inside the client for
the list of commands.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			// the interactive view owns the terminal, so it only logs to a file
			interactive := cmd.Name() == "chat"
			return a.init(cfg, interactive)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", "", "Chat server base URL (env CHAT_API_URL)")
	pf.StringVar(&flags.token, "token", "", "Access token (env CHAT_TOKEN)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")
	pf.StringVar(&flags.logFile, "log-file", "", "Write logs to this file (env LOG_OUTPUT)")
	root.Flags().StringVar(&flags.stopPolicy, "stop-policy", "", "What stop does to a partial reply: preserve or replace (env CHAT_STOP_POLICY)")
	root.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (env METRICS_ADDR)")

	root.AddCommand(newSessionsCmd(a), newHistoryCmd(a))
	return root
}

// loadConfig reads the environment and applies flags that were set
func loadConfig(cmd *cobra.Command, flags rootFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	changed := func(name string) bool {
		f := cmd.Flag(name)
		return f != nil && f.Changed
	}
	if changed("api-url") {
		cfg.API.BaseURL = flags.apiURL
	}
	if changed("token") {
		cfg.API.Token = flags.token
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if changed("log-file") {
		cfg.Logging.Output = flags.logFile
	}
	if changed("stop-policy") {
		cfg.Stream.StopPolicy = flags.stopPolicy
	}
	if changed("metrics-addr") {
		cfg.Metrics.Addr = flags.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) init(cfg *config.Config, interactive bool) error {
	a.cfg = cfg

	output := cfg.Logging.Output
	if interactive && (output == "" || output == "stderr" || output == "stdout") {
		a.logger = logging.NewNop()
	} else {
		logger, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
			Output:      output,
		})
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		a.logger = logger
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = monitoring.NewMetrics(a.registry)
	a.creds = auth.NewCredentials(cfg.API.Token)
	a.client = api.New(api.Options{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout,
		RetryMax:     cfg.API.RetryMax,
		RateLimitRPS: cfg.API.RateLimitRPS,
		Tokens:       a.creds,
		Logger:       a.logger,
		Metrics:      a.metrics,
	})
	return nil
}

func (a *app) runInteractive(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	dialer, err := transport.NewDialer(a.cfg.API.BaseURL, transport.Options{
		HandshakeTimeout: a.cfg.Stream.HandshakeTimeout,
	}, a.logger)
	if err != nil {
		return err
	}

	policy, err := chat.ParseStopPolicy(a.cfg.Stream.StopPolicy)
	if err != nil {
		return err
	}

	bridge := tui.NewBridge()
	bus := events.NewBus()
	bus.Subscribe(bridge.OnSessionEvent)

	ctrl, err := chat.New(chat.Options{
		API:           a.client,
		Transport:     chat.NewTransport(dialer),
		Credentials:   a.creds,
		Navigator:     bridge,
		Notifier:      bridge,
		AuthHandler:   bridge,
		Bus:           bus,
		Observer:      bridge.Observe,
		Logger:        a.logger,
		Metrics:       a.metrics,
		StopPolicy:    policy,
		StoppedNotice: a.cfg.Stream.StoppedNotice,
		AuthCloseCode: a.cfg.Stream.AuthCloseCode,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if addr := a.cfg.Metrics.Addr; addr != "" {
		stop := a.serveMetrics(addr)
		defer stop()
	}

	model := tui.New(tui.Config{
		Controller:  ctrl,
		Sessions:    a.client,
		Credentials: a.creds,
		Bridge:      bridge,
		Logger:      a.logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// serveMetrics exposes the registry until the returned func is called
func (a *app) serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func (a *app) requireToken() error {
	if !a.creds.Present() {
		return errNoToken
	}
	return nil
}
