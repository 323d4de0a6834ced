package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/flashcards/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/flashcards/telemetry"

	// HeaderTraceID echoes the trace id to clients.
	HeaderTraceID = "X-Trace-ID"

	// ContextKeyTraceID is the gin key the error envelope reads the trace id from.
	ContextKeyTraceID = "trace_id"
)

// Metrics holds the HTTP server instruments.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics creates the HTTP server instruments on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"flashcards.http.request.duration",
		metric.WithDescription("Study API request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"flashcards.http.request.total",
		metric.WithDescription("Study API requests by route and status"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"flashcards.http.active_requests",
		metric.WithDescription("Study API requests in flight"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		activeRequests:  activeRequests,
	}, nil
}

// Middleware returns the server telemetry chain: an otelgin span per
// request followed by route metrics and trace id propagation. Register it
// with engine.Use(telemetry.Middleware(name)...).
func Middleware(serviceName string) gin.HandlersChain {
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return gin.HandlersChain{
		otelgin.Middleware(serviceName),
		instrument(metrics),
	}
}

// instrument records route metrics and exposes the current trace id to the
// response, the gin context and the request logger.
func instrument(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			c.Set(ContextKeyTraceID, traceID)
			c.Header(HeaderTraceID, traceID)
			ctx = logging.WithTraceID(ctx, traceID)
			c.Request = c.Request.WithContext(ctx)
		}

		if metrics == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		active := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		)
		metrics.activeRequests.Add(ctx, 1, active)
		defer metrics.activeRequests.Add(ctx, -1, active)

		start := time.Now()

		c.Next()

		done := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", c.Writer.Status()),
		)
		metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), done)
		metrics.requestTotal.Add(ctx, 1, done)
	}
}
