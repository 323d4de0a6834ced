package hygraph

import (
	"context"
	"log/slog"
)

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type aggregate struct {
	Count int `json:"count"`
}

// connection is the Relay-style list shape of every *Connection field.
type connection[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
	PageInfo  pageInfo  `json:"pageInfo"`
	Aggregate aggregate `json:"aggregate"`
}

func (c *connection[T]) nodes() []T {
	out := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}

	return out
}

// fetchPage loads one page of a connection.
type fetchPage[T any] func(ctx context.Context, first int, after string) (*connection[T], error)

// walk follows a connection page by page until hasNextPage is false or
// the client's page limit is reached.
func walk[T any](ctx context.Context, c *Client, op call, fetch fetchPage[T]) ([]T, error) {
	var (
		all   []T
		after string
	)

	for page := 0; c.maxPages <= 0 || page < c.maxPages; page++ {
		conn, err := fetch(ctx, c.pageSize, after)
		if err != nil {
			return nil, err
		}

		all = append(all, conn.nodes()...)

		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			return all, nil
		}
		after = conn.PageInfo.EndCursor
	}

	c.logger.WarnContext(ctx, "page limit reached, result truncated",
		slog.String("operation", op.name),
		slog.Int("pages", c.maxPages),
		slog.Int("records", len(all)))

	return all, nil
}

// pageVars builds the variables of a paged query. An empty cursor is sent as
// null, which Hygraph reads as "from the start".
func pageVars(first int, after string, extra map[string]any) map[string]any {
	vars := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		vars[k] = v
	}

	vars["first"] = first
	if after != "" {
		vars["after"] = after
	} else {
		vars["after"] = nil
	}

	return vars
}
