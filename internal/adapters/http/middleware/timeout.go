package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// RouteTimeouts sets the request deadline per route. Keys are "METHOD
// /route/template"; unmatched routes use Default.
type RouteTimeouts struct {
	Default   time.Duration
	Overrides map[string]time.Duration
}

func (t RouteTimeouts) lookup(method, route string) time.Duration {
	if d, ok := t.Overrides[method+" "+route]; ok {
		return d
	}

	return t.Default
}

// Timeout puts a deadline on the request context. It never aborts the
// handler itself: the content API client returns context.DeadlineExceeded,
// which handlers report as a timeout.
func Timeout(timeouts RouteTimeouts) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := timeouts.lookup(c.Request.Method, c.FullPath())
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
