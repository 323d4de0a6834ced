package hygraph

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/flashcards/internal/adapters/clients"
	"github.com/jsamuelsen/flashcards/internal/platform/config"
)

var operationName = regexp.MustCompile(`(?:query|mutation)\s+(\w+)`)

type gqlCall struct {
	Operation     string
	Query         string
	Variables     map[string]any
	Authorization string
}

type handlerFunc func(vars map[string]any) (int, any)

// fakeHygraph answers GraphQL requests by operation name.
type fakeHygraph struct {
	t        *testing.T
	mu       sync.Mutex
	calls    []gqlCall
	handlers map[string]handlerFunc
}

func newFakeHygraph(t *testing.T) (*fakeHygraph, *httptest.Server) {
	t.Helper()

	f := &fakeHygraph{t: t, handlers: make(map[string]handlerFunc)}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	return f, srv
}

// on registers a 200 response carrying data.
func (f *fakeHygraph) on(operation string, data func(vars map[string]any) any) {
	f.handle(operation, func(vars map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"data": data(vars)}
	})
}

func (f *fakeHygraph) handle(operation string, fn handlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[operation] = fn
}

func (f *fakeHygraph) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Errorf("decoding request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	name := ""
	if m := operationName.FindStringSubmatch(req.Query); m != nil {
		name = m[1]
	}

	f.mu.Lock()
	f.calls = append(f.calls, gqlCall{
		Operation:     name,
		Query:         req.Query,
		Variables:     req.Variables,
		Authorization: r.Header.Get("Authorization"),
	})
	h, ok := f.handlers[name]
	f.mu.Unlock()

	if !ok {
		f.t.Errorf("unexpected operation %q", name)
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	status, body := h(req.Variables)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeHygraph) operations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	ops := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		ops = append(ops, c.Operation)
	}

	return ops
}

func (f *fakeHygraph) lastCall(operation string) gqlCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Operation == operation {
			return f.calls[i]
		}
	}
	f.t.Fatalf("operation %q was not called", operation)

	return gqlCall{}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHTTPClient(t *testing.T, baseURL, service string, auth func(*http.Request)) *clients.Client {
	t.Helper()

	c, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: service,
		Timeout:     5 * time.Second,
		Retry:       config.RetryConfig{MaxAttempts: 1},
		Circuit:     config.CircuitBreakerConfig{MaxFailures: 100, Timeout: time.Minute, HalfOpenLimit: 1},
		AuthFunc:    auth,
		Logger:      discardLogger(),
	})
	require.NoError(t, err)

	return c
}

// newTestClient points a Client at url with a page size of 2 and no settle
// delay. Options adjust the config before construction.
func newTestClient(t *testing.T, url string, opts ...func(*Config)) *Client {
	t.Helper()

	cfg := Config{
		API: testHTTPClient(t, url, "hygraph", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer test-token")
		}),
		Uploads:  testHTTPClient(t, "", "hygraph-assets", nil),
		PageSize: 2,
		Logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c, err := New(cfg)
	require.NoError(t, err)
	c.sleep = func(context.Context, time.Duration) error { return nil }

	return c
}

func page(hasNext bool, cursor string, count int, nodes ...map[string]any) map[string]any {
	edges := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		edges = append(edges, map[string]any{"node": n})
	}

	var endCursor any
	if cursor != "" {
		endCursor = cursor
	}

	return map[string]any{
		"edges":     edges,
		"pageInfo":  map[string]any{"hasNextPage": hasNext, "endCursor": endCursor},
		"aggregate": map[string]any{"count": count},
	}
}
