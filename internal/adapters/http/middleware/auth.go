package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/flashcards/internal/adapters/http/dto"
	"github.com/jsamuelsen/flashcards/internal/platform/config"
	"github.com/jsamuelsen/flashcards/internal/platform/logging"
)

const (
	// ContextKeyLearner is the gin context key for the authenticated learner.
	ContextKeyLearner = "learner"

	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
	defaultEditorRole    = "editor"
)

// Learner is the caller as identified by the gateway.
type Learner struct {
	ID    string
	Roles []string
}

// HasRole reports whether the learner has role.
func (l *Learner) HasRole(role string) bool {
	return slices.Contains(l.Roles, role)
}

// LearnerFromHeaders reads the learner from the configured gateway headers.
func LearnerFromHeaders(c *gin.Context, cfg *config.AuthConfig) *Learner {
	subjectHeader, rolesHeader := defaultSubjectHeader, defaultRolesHeader
	if cfg != nil {
		if cfg.SubjectHeader != "" {
			subjectHeader = cfg.SubjectHeader
		}
		if cfg.RolesHeader != "" {
			rolesHeader = cfg.RolesHeader
		}
	}

	return &Learner{
		ID:    strings.TrimSpace(c.GetHeader(subjectHeader)),
		Roles: parseCommaSeparated(c.GetHeader(rolesHeader)),
	}
}

// GetLearner returns the learner stored by Authenticate, or nil.
func GetLearner(c *gin.Context) *Learner {
	if v, ok := c.Get(ContextKeyLearner); ok {
		if l, ok := v.(*Learner); ok {
			return l
		}
	}

	return nil
}

// Authenticate requires a learner id header and stores the learner on the
// context and the request logger. It passes everything through when auth is
// disabled.
func Authenticate(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || !cfg.Enabled {
			c.Next()
			return
		}

		learner := LearnerFromHeaders(c, cfg)
		if learner.ID == "" {
			abortWithCode(c, dto.ErrorCodeUnauthorized, "authentication required")
			return
		}

		c.Set(ContextKeyLearner, learner)

		c.Request = c.Request.WithContext(logging.With(c.Request.Context(), "learner_id", learner.ID))

		c.Next()
	}
}

// RequireEditor allows only learners with the editor role. Use it after
// Authenticate on routes that write content.
func RequireEditor(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || !cfg.Enabled {
			c.Next()
			return
		}

		role := cfg.EditorRole
		if role == "" {
			role = defaultEditorRole
		}

		learner := GetLearner(c)
		if learner == nil {
			learner = LearnerFromHeaders(c, cfg)
		}

		if !learner.HasRole(role) {
			abortWithCode(c, dto.ErrorCodeForbidden, "role "+role+" required to change content")
			return
		}

		c.Next()
	}
}

// EditorOnly applies RequireEditor to the listed routes, keyed
// "METHOD /route/template". With no routes it guards every write method.
func EditorOnly(cfg *config.AuthConfig, routes ...string) gin.HandlerFunc {
	guard := RequireEditor(cfg)

	guarded := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		guarded[r] = struct{}{}
	}

	return func(c *gin.Context) {
		var protect bool
		if len(guarded) == 0 {
			protect = c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead
		} else {
			_, protect = guarded[c.Request.Method+" "+c.FullPath()]
		}

		if !protect {
			c.Next()
			return
		}

		guard(c)
	}
}

func abortWithCode(c *gin.Context, code, message string) {
	resp := dto.NewErrorResponse(code, message).WithTraceID(dto.GetTraceID(c))
	c.AbortWithStatusJSON(dto.HTTPStatusFromCode(code), resp)
}

// parseCommaSeparated splits a comma-separated string into trimmed values.
func parseCommaSeparated(s string) []string {
	parts := strings.Split(s, ",")

	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
