package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/flashcards/internal/adapters/http/middleware"
	"github.com/jsamuelsen/flashcards/internal/platform/config"
	"github.com/jsamuelsen/flashcards/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/flashcards/internal/adapters/clients"

	defaultTimeout      = 30 * time.Second
	defaultJitterFactor = 0.25
)

// Config configures a Client.
type Config struct {
	// BaseURL prefixes relative paths. Absolute URLs (presigned upload
	// targets) are used as given.
	BaseURL string

	// ServiceName labels logs, spans and metrics.
	ServiceName string

	// Timeout bounds a single attempt.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// AuthFunc, when set, decorates every attempt. Leave it nil for clients
	// that talk to presigned storage, which rejects extra credentials.
	AuthFunc func(*http.Request)

	Logger *slog.Logger
}

// Client sends requests to one downstream dependency with retries,
// a circuit breaker, tracing and request id propagation.
type Client struct {
	http    *http.Client
	baseURL string
	cfg     Config
	logger  *slog.Logger
	breaker *Breaker
	tracer  trace.Tracer

	duration metric.Float64Histogram
	total    metric.Int64Counter
}

// New builds a Client. cfg is copied.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	c := *cfg
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Retry.MaxAttempts < 1 {
		c.Retry.MaxAttempts = 1
	}
	if c.Retry.JitterFactor == 0 {
		c.Retry.JitterFactor = defaultJitterFactor
	}
	if c.Transport.MaxIdleConns == 0 {
		c.Transport.MaxIdleConns = config.DefaultTransportMaxIdleConns
	}
	if c.Transport.MaxIdleConnsPerHost == 0 {
		c.Transport.MaxIdleConnsPerHost = config.DefaultTransportMaxIdleConnsPerHost
	}
	if c.Transport.IdleConnTimeout == 0 {
		c.Transport.IdleConnTimeout = config.DefaultTransportIdleConnTimeout
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "clients.Client"), slog.String("downstream", c.ServiceName))

	breaker := NewBreaker(BreakerConfig{
		MaxFailures: c.Circuit.MaxFailures,
		Cooldown:    c.Circuit.Timeout,
		Probes:      c.Circuit.HalfOpenLimit,
	})
	breaker.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed", slog.String("from", from.String()), slog.String("to", to.String()))
	})

	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of downstream requests including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	total, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Downstream requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http: &http.Client{
			Timeout: c.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        c.Transport.MaxIdleConns,
				MaxIdleConnsPerHost: c.Transport.MaxIdleConnsPerHost,
				IdleConnTimeout:     c.Transport.IdleConnTimeout,
			},
		},
		baseURL:  strings.TrimSuffix(c.BaseURL, "/"),
		cfg:      c,
		logger:   logger,
		breaker:  breaker,
		tracer:   otel.Tracer(instrumentationName),
		duration: duration,
		total:    total,
	}, nil
}

// ServiceName returns the downstream label.
func (c *Client) ServiceName() string {
	return c.cfg.ServiceName
}

// Breaker exposes the circuit breaker for readiness reporting.
func (c *Client) Breaker() *Breaker {
	return c.breaker
}

// PostJSON posts payload to path. The body is buffered so retries can resend it.
func (c *Client) PostJSON(ctx context.Context, path string, payload []byte) (*http.Response, error) {
	return c.post(ctx, path, "application/json", payload)
}

// PostMultipart posts an encoded multipart body to target, which may be absolute.
func (c *Client) PostMultipart(ctx context.Context, target, contentType string, body []byte) (*http.Response, error) {
	return c.post(ctx, target, contentType, body)
}

// Get issues a GET to path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.Do(ctx, req)
}

func (c *Client) post(ctx context.Context, target, contentType string, body []byte) (*http.Response, error) {
	// bytes.Reader bodies get GetBody set, which makes the request replayable.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(target), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.Do(ctx, req)
}

// Do sends req. 4xx responses are returned to the caller; transport failures
// and 429/5xx answers are retried and, once attempts run out, returned as
// ErrMaxRetriesExceeded.
// Requests with a body must be replayable (GetBody set) to be retried.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.cfg.ServiceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.breaker.Allow() {
		c.record(ctx, req.Method, 0, start, "circuit_open")
		logger.Warn("request blocked by circuit breaker")

		return nil, ErrCircuitOpen
	}

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.cfg.ServiceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("server.address", req.URL.Host),
			attribute.String("peer.service", c.cfg.ServiceName),
		),
	)
	defer span.End()

	c.decorate(ctx, req)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.attempt(ctx, req, logger)
	if err != nil {
		c.breaker.Failure()
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, req.Method, 0, start, "error")
		logger.Error("request failed", slog.Duration("duration", time.Since(start)), slog.Any("error", err))

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
	}

	c.breaker.Success()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
	c.record(ctx, req.Method, resp.StatusCode, start, fmt.Sprintf("%dxx", resp.StatusCode/100))
	logger.Debug("request completed", slog.Int("status", resp.StatusCode), slog.Duration("duration", time.Since(start)))

	return resp, nil
}

func (c *Client) attempt(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, error) {
	var lastErr error

	for n := range c.cfg.Retry.MaxAttempts {
		if n > 0 {
			wait := c.backoff(n)
			logger.Debug("retrying request", slog.Int("attempt", n+1), slog.Duration("backoff", wait))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}

			if err := rewind(req); err != nil {
				return nil, err
			}
			if c.cfg.AuthFunc != nil {
				c.cfg.AuthFunc(req)
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))
		if err != nil {
			if !retryable(err) {
				return nil, err
			}
			lastErr = err

			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)

			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

func rewind(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	if req.GetBody == nil {
		return errors.New("request body cannot be replayed")
	}

	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("replaying request body: %w", err)
	}
	req.Body = body

	return nil
}

func (c *Client) decorate(ctx context.Context, req *http.Request) {
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}
	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}
	if c.cfg.AuthFunc != nil {
		c.cfg.AuthFunc(req)
	}
}

func (c *Client) resolve(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	if target == "" {
		return c.baseURL
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}

	return c.baseURL + target
}

// backoff grows exponentially from InitialInterval, capped at MaxInterval,
// with symmetric jitter of JitterFactor.
func (c *Client) backoff(attempt int) time.Duration {
	r := c.cfg.Retry
	d := float64(r.InitialInterval) * math.Pow(r.Multiplier, float64(attempt-1))
	if r.MaxInterval > 0 && d > float64(r.MaxInterval) {
		d = float64(r.MaxInterval)
	}

	jitter := d * r.JitterFactor * (rand.Float64()*2 - 1) //nolint:gosec // jitter only
	d += jitter
	if d < 0 {
		d = 0
	}

	return time.Duration(d)
}

func (c *Client) record(ctx context.Context, method string, status int, start time.Time, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.cfg.ServiceName),
		attribute.String("result", result),
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	c.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
	c.total.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
