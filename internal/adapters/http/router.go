package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/flashcards/internal/adapters/http/handlers"
	"github.com/jsamuelsen/flashcards/internal/adapters/http/middleware"
	"github.com/jsamuelsen/flashcards/internal/platform/config"
	"github.com/jsamuelsen/flashcards/internal/platform/telemetry"
)

const (
	// DefaultRequestTimeout bounds API requests that make a few content API calls.
	DefaultRequestTimeout = 30 * time.Second

	// UploadRequestTimeout bounds word creation, which uploads and publishes
	// every image before creating the word.
	UploadRequestTimeout = 2 * time.Minute

	// APIPrefix is where the study API is mounted.
	APIPrefix = "/api/v1"

	routeCreateWord = "POST " + APIPrefix + "/words"
	routeCreateQuiz = "POST " + APIPrefix + "/quizzes"
)

// RouterConfig contains the handlers and settings mounted by SetupRouter.
type RouterConfig struct {
	AuthConfig *config.AuthConfig
	AppConfig  *config.AppConfig

	HealthHandler *handlers.HealthHandler
	Words         *handlers.WordHandler
	Quizzes       *handlers.QuizHandler
	Sessions      *handlers.SessionHandler

	Timeouts middleware.RouteTimeouts

	// MaxBodySize caps JSON bodies. UploadBodySize caps the multipart word
	// creation body; zero falls back to MaxBodySize.
	MaxBodySize    int64
	UploadBodySize int64
}

// SetupRouter installs the middleware chain and every route on engine.
// Order matters: recovery wraps everything, ids exist before telemetry and
// logging read them, and the route-keyed middleware runs after routing.
//
// Routes under /-/ skip auth; /api/v1 carries the study API.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(serviceName(cfg.AppConfig))...)
	engine.Use(
		middleware.Logging(),
		middleware.Timeout(cfg.Timeouts),
		middleware.BodyLimit(cfg.MaxBodySize, uploadLimits(cfg)),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group(APIPrefix,
		middleware.Authenticate(cfg.AuthConfig),
		middleware.EditorOnly(cfg.AuthConfig, routeCreateWord, routeCreateQuiz),
	)

	if cfg.Words != nil {
		cfg.Words.RegisterWordRoutes(api)
	}
	if cfg.Quizzes != nil {
		cfg.Quizzes.RegisterQuizRoutes(api)
	}
	if cfg.Sessions != nil {
		cfg.Sessions.RegisterSessionRoutes(api)
	}
}

// DefaultTimeouts gives word creation the upload budget and probes no deadline.
func DefaultTimeouts() middleware.RouteTimeouts {
	return middleware.RouteTimeouts{
		Default: DefaultRequestTimeout,
		Overrides: map[string]time.Duration{
			routeCreateWord: UploadRequestTimeout,
			"GET /-/live":   0,
			"GET /-/ready":  0,
		},
	}
}

func uploadLimits(cfg RouterConfig) map[string]int64 {
	if cfg.UploadBodySize <= 0 {
		return nil
	}

	return map[string]int64{routeCreateWord: cfg.UploadBodySize}
}

func serviceName(app *config.AppConfig) string {
	if app == nil || app.Name == "" {
		return "flashcards"
	}

	return app.Name
}
