package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sriram629/AI-ChatBot/client/internal/id"
	"github.com/sriram629/AI-ChatBot/client/internal/logging"
	"github.com/sriram629/AI-ChatBot/client/internal/monitoring"
	"github.com/sriram629/AI-ChatBot/client/internal/protocol"
	"github.com/sriram629/AI-ChatBot/client/internal/resilience"
)

var (
	// ErrUnauthorized is returned for 401 and 403 responses
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrNotFound is returned for 404 responses
	ErrNotFound = errors.New("api: not found")
	// ErrBadResponse is returned when a 2xx body lacks required fields
	ErrBadResponse = errors.New("api: bad response")
)

// StatusError reports an unexpected HTTP status
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s: unexpected status %d", e.Op, e.Status)
}

// TokenSource supplies the bearer token for each request
type TokenSource interface {
	Token() string
}

// Options configures a Client
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimitRPS float64
	Tokens       TokenSource
	Logger       *logging.Logger
	Metrics      *monitoring.Metrics
}

// Client talks to the chat REST surface
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// New creates a client with retries, rate limiting and a circuit breaker
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = 500 * time.Millisecond
	}
	if opts.RetryWaitMax < opts.RetryWaitMin {
		opts.RetryWaitMax = 5 * time.Second
	}
	logger := opts.Logger.Named("api")

	// pooled transport only; resty owns the retry loop
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	r := resty.New()
	r.SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryMax).
		SetRetryWaitTime(opts.RetryWaitMin).
		SetRetryMaxWaitTime(opts.RetryWaitMax).
		SetHeader("User-Agent", "chat-client/1.0").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTransport(retryClient.HTTPClient.Transport).
		AddRetryCondition(retryIdempotent)

	if opts.Tokens != nil {
		tokens := opts.Tokens
		r.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if tok := tokens.Token(); tok != "" {
				req.SetAuthToken(tok)
			}
			return nil
		})
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimitRPS > 0 {
		burst := int(opts.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	breaker := resilience.New("chat-api", resilience.Settings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsFailure: isBreakerFailure,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		resty:   r,
		limiter: limiter,
		breaker: breaker,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// retryIdempotent retries reads on transport errors, 5xx and 429.
// Creating a session is never retried.
func retryIdempotent(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func isBreakerFailure(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNotFound) &&
		!errors.Is(err, ErrUnauthorized) &&
		!errors.Is(err, context.Canceled)
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// do runs one call through the limiter, the breaker and the metrics timer
func (c *Client) do(ctx context.Context, op string, call func(*resty.Request) (*resty.Response, error)) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("api: %s: rate limit: %w", op, err)
	}

	traceID := id.NewTraceID()
	timer := monitoring.NewTimer(c.metrics, op)
	status := 0
	err := c.breaker.Execute(func() error {
		resp, err := call(c.resty.R().SetContext(ctx).SetHeader(protocol.TraceHeader, traceID))
		if resp != nil && resp.RawResponse != nil {
			status = resp.StatusCode()
		}
		if err != nil {
			return fmt.Errorf("api: %s: %w", op, err)
		}
		return checkStatus(op, resp.StatusCode())
	})
	timer.Stop(status)

	if err != nil {
		c.logger.Debug("Request failed",
			zap.String("op", op),
			zap.String("trace_id", traceID),
			zap.Int("status", status),
			zap.Error(err))
	}
	return err
}

func checkStatus(op string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("api: %s: %w", op, ErrUnauthorized)
	case status == http.StatusNotFound:
		return fmt.Errorf("api: %s: %w", op, ErrNotFound)
	default:
		return &StatusError{Op: op, Status: status}
	}
}
