package hygraph

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/flashcards/internal/domain"
	"github.com/jsamuelsen/flashcards/internal/platform/logging"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Execute runs an arbitrary GraphQL document and decodes "data" into out.
// It never reads from the cache and always invalidates it, since the
// document may be a mutation.
func (c *Client) Execute(ctx context.Context, document string, variables map[string]any, out any) error {
	return c.mutate(ctx, call{name: "execute"}, document, variables, out)
}

// query runs a read, serving it from the cache when possible.
func (c *Client) query(ctx context.Context, op call, document string, variables map[string]any, out any) error {
	key := cacheKey(document, variables)

	if data, ok := c.cached(ctx, key); ok {
		if err := json.Unmarshal(data, out); err == nil {
			c.logger.Log(ctx, logging.LevelTrace, "cache hit", slog.String("operation", op.name))
			return nil
		}
		// Undecodable entries are refetched.
	}

	gen := c.generation()

	data, err := c.execute(ctx, op, document, variables)
	if err != nil {
		return err
	}

	if err := decodeData(data, out, op); err != nil {
		return err
	}
	c.store(ctx, key, data, gen)

	return nil
}

// mutate runs a write. Any cached read may now be stale, so the cache is
// cleared whether or not the write succeeded.
func (c *Client) mutate(ctx context.Context, op call, document string, variables map[string]any, out any) error {
	data, err := c.execute(ctx, op, document, variables)
	c.invalidate(ctx)
	if err != nil {
		return err
	}

	return decodeData(data, out, op)
}

func (c *Client) execute(ctx context.Context, op call, document string, variables map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(gqlRequest{Query: document, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", op.name, err)
	}

	c.logger.Log(ctx, logging.LevelTrace, "starting graphql request", slog.String("operation", op.name))

	resp, err := c.api.PostJSON(ctx, "", payload)
	if err != nil {
		return nil, mapClientError(err, serviceName, op)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Log(ctx, logging.LevelTrace, "graphql request complete",
		slog.String("operation", op.name),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, mapResponseError(resp, serviceName, op)
	}

	var envelope gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, domain.NewUnavailableError(serviceName, fmt.Sprintf("decoding %s response: %v", op.name, err))
	}

	if len(envelope.Errors) > 0 {
		err := mapGraphQLErrors(envelope.Errors, serviceName, op)
		c.logger.DebugContext(ctx, "graphql errors",
			slog.String("operation", op.name),
			slog.Int("count", len(envelope.Errors)),
			slog.String("first", envelope.Errors[0].Message))

		return nil, err
	}

	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return nil, domain.NewUnavailableError(serviceName, op.name+" returned no data")
	}

	return envelope.Data, nil
}

func decodeData(data json.RawMessage, out any, op call) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("decoding %s data: %v", op.name, err))
	}

	return nil
}

// cacheKey hashes the document and its variables. encoding/json sorts map
// keys, so equal variables always hash the same.
func cacheKey(document string, variables map[string]any) string {
	h := sha256.New()
	h.Write([]byte(document))
	h.Write([]byte{0})
	if variables != nil {
		vars, _ := json.Marshal(variables)
		h.Write(vars)
	}

	return "gql:" + hex.EncodeToString(h.Sum(nil))
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !domain.IsNotFound(err) {
			c.logger.WarnContext(ctx, "cache read failed", slog.Any("error", err))
		}
		return nil, false
	}

	return data, true
}

func (c *Client) generation() uint64 {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	return c.gen
}

// store caches data unless a mutation invalidated the cache after the
// fetch began, in which case data may predate the write.
func (c *Client) store(ctx context.Context, key string, data []byte, gen uint64) {
	if c.cache == nil {
		return
	}

	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	if c.gen != gen {
		c.logger.Log(ctx, logging.LevelTrace, "dropping response fetched across a mutation")
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", slog.Any("error", err))
	}
}

func (c *Client) invalidate(ctx context.Context) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.gen++
	if c.cache == nil {
		return
	}
	if err := c.cache.Clear(ctx); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", slog.Any("error", err))
	}
}
