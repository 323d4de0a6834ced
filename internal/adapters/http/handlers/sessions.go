package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/flashcards/internal/adapters/http/dto"
	"github.com/jsamuelsen/flashcards/internal/app"
)

// SessionHandler drives study sessions.
type SessionHandler struct {
	service *app.StudyService
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(service *app.StudyService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Start handles POST /api/v1/sessions.
//
// @Summary Start a study session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body dto.StartSessionRequest true "Kind and tag or category"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Tag or category has no cards"
// @Router /api/v1/sessions [post]
func (h *SessionHandler) Start(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	view, err := h.service.Start(c.Request.Context(), app.SessionKind(req.Kind), req.GroupID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSessionResponse(view))
}

// Get handles GET /api/v1/sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	h.respond(c)(h.service.Current(c.Request.Context(), c.Param("id")))
}

// Reveal handles POST /api/v1/sessions/:id/reveal.
func (h *SessionHandler) Reveal(c *gin.Context) {
	h.respond(c)(h.service.Reveal(c.Request.Context(), c.Param("id")))
}

// Answer handles POST /api/v1/sessions/:id/answer. Word sessions take
// {"know": bool}, quiz sessions {"option": n}.
func (h *SessionHandler) Answer(c *gin.Context) {
	var req dto.SessionAnswerRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	if req.Know != nil {
		h.respond(c)(h.service.AnswerWord(ctx, id, *req.Know))
		return
	}

	h.respond(c)(h.service.AnswerQuiz(ctx, id, *req.Option))
}

// Finish handles DELETE /api/v1/sessions/:id and returns the final tally.
func (h *SessionHandler) Finish(c *gin.Context) {
	h.respond(c)(h.service.Finish(c.Request.Context(), c.Param("id")))
}

func (h *SessionHandler) respond(c *gin.Context) func(*app.SessionView, error) {
	return func(view *app.SessionView, err error) {
		if err != nil {
			dto.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.NewSessionResponse(view))
	}
}

// RegisterSessionRoutes registers session routes on the given router group.
func (h *SessionHandler) RegisterSessionRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	sessions.POST("", h.Start)
	sessions.GET("/:id", h.Get)
	sessions.POST("/:id/reveal", h.Reveal)
	sessions.POST("/:id/answer", h.Answer)
	sessions.DELETE("/:id", h.Finish)
}
