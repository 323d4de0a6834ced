package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/flashcards/internal/adapters/http/dto"
	"github.com/jsamuelsen/flashcards/internal/app"
)

// QuizHandler serves categories and quizzes.
type QuizHandler struct {
	service *app.QuizService
}

// NewQuizHandler creates a quiz handler.
func NewQuizHandler(service *app.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// ListCategories handles GET /api/v1/categories.
// With ?incorrect=true each category carries its collected quizzes and
// categories without any are left out.
//
// @Summary List quiz categories
// @Tags quizzes
// @Produce json
// @Param incorrect query bool false "Only categories with collected quizzes"
// @Success 200 {array} dto.CategoryResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/categories [get]
func (h *QuizHandler) ListCategories(c *gin.Context) {
	var query dto.ListQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.HandleError(c, err)
		return
	}

	list := h.service.ListCategories
	if query.Incorrect {
		list = h.service.ListCategoriesWithIncorrect
	}

	categories, err := list(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCategoryResponses(categories))
}

// ListQuizzes handles GET /api/v1/categories/:id/quizzes.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	var query dto.ListQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.HandleError(c, err)
		return
	}

	quizzes, err := h.service.ListQuizzes(c.Request.Context(), c.Param("id"), query.Collected)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponses(quizzes))
}

// GetQuiz handles GET /api/v1/quizzes/:id.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.service.GetQuiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// CreateQuiz handles POST /api/v1/quizzes.
//
// @Summary Create a quiz with its options
// @Tags quizzes
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Quiz"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req dto.CreateQuizRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	quiz, err := h.service.CreateQuiz(c.Request.Context(), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz))
}

// SubmitAnswer handles POST /api/v1/quizzes/:id/answers.
//
// @Summary Grade an answer
// @Tags quizzes
// @Accept json
// @Produce json
// @Param request body dto.AnswerRequest true "Selected option and mode"
// @Success 200 {object} dto.AnswerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quizzes/{id}/answers [post]
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req dto.AnswerRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := h.service.SubmitAnswer(c.Request.Context(), c.Param("id"), *req.Option, req.AnswerMode())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAnswerResponse(result))
}

// RecordView handles POST /api/v1/quizzes/:id/views.
func (h *QuizHandler) RecordView(c *gin.Context) {
	req, ok := bindViewRequest(c)
	if !ok {
		return
	}

	if err := h.service.RecordQuizView(c.Request.Context(), c.Param("id"), req.Time()); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterQuizRoutes registers category and quiz routes on the given router group.
func (h *QuizHandler) RegisterQuizRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.GET("/:id/quizzes", h.ListQuizzes)

	quizzes := rg.Group("/quizzes")
	quizzes.POST("", h.CreateQuiz)
	quizzes.GET("/:id", h.GetQuiz)
	quizzes.POST("/:id/answers", h.SubmitAnswer)
	quizzes.POST("/:id/views", h.RecordView)
}
