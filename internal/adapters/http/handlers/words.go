package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/flashcards/internal/adapters/http/dto"
	"github.com/jsamuelsen/flashcards/internal/app"
	"github.com/jsamuelsen/flashcards/internal/domain"
)

// MaxImages caps the files accepted with one word.
const MaxImages = 10

// WordHandler serves tags and word items.
type WordHandler struct {
	service *app.WordService
}

// NewWordHandler creates a word handler.
func NewWordHandler(service *app.WordService) *WordHandler {
	return &WordHandler{service: service}
}

// ListTags handles GET /api/v1/tags.
// With ?collected=true only tags having collected words are listed, each
// carrying those words. A cursor or limit switches to a paged listing.
//
// @Summary List tags
// @Tags words
// @Produce json
// @Param collected query bool false "Only tags with collected words"
// @Param cursor query string false "Cursor from a previous page"
// @Param limit query int false "Page size (1-100)"
// @Success 200 {array} dto.TagResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/tags [get]
func (h *WordHandler) ListTags(c *gin.Context) {
	var query struct {
		dto.ListQuery
		dto.PaginationRequest
	}
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()

	if query.Collected {
		tags, err := h.service.ListCollectedTags(ctx)
		if err != nil {
			dto.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewTagResponses(tags))
		return
	}

	if !query.Paged() {
		tags, err := h.service.ListTags(ctx)
		if err != nil {
			dto.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewTagResponses(tags))
		return
	}

	after, err := query.After()
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("cursor", err.Error()))
		return
	}

	page, err := h.service.ListTagsPage(ctx, query.GetLimit(), after)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(
		dto.NewTagResponses(page.Tags), page.EndCursor, page.HasMore, page.TotalCount,
	))
}

// ListWords handles GET /api/v1/tags/:id/words.
//
// @Summary List the words of a tag
// @Tags words
// @Produce json
// @Param id path string true "Tag ID"
// @Param collected query bool false "Only collected words"
// @Success 200 {array} dto.WordResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/tags/{id}/words [get]
func (h *WordHandler) ListWords(c *gin.Context) {
	var query dto.ListQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.HandleError(c, err)
		return
	}

	words, err := h.service.ListWords(c.Request.Context(), c.Param("id"), query.Collected)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewWordResponses(words))
}

// TagSummary handles GET /api/v1/tags/:id/summary.
func (h *WordHandler) TagSummary(c *gin.Context) {
	summary, err := h.service.TagSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTagSummaryResponse(summary))
}

// GetWord handles GET /api/v1/words/:id.
func (h *WordHandler) GetWord(c *gin.Context) {
	word, err := h.service.GetWord(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewWordResponse(word))
}

// CreateWord handles POST /api/v1/words.
// A JSON body creates a word without images. A multipart form carries the
// same JSON in the "payload" field and the files in "images".
//
// @Summary Create a word item
// @Tags words
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} dto.WordResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/words [post]
func (h *WordHandler) CreateWord(c *gin.Context) {
	var (
		req    dto.CreateWordRequest
		images []domain.Upload
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		uploads, closeAll, err := bindWordForm(c, &req)
		if err != nil {
			dto.HandleError(c, err)
			return
		}
		defer closeAll()
		images = uploads
	} else if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	word, err := h.service.CreateWord(c.Request.Context(), req.ToDomain(images))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewWordResponse(word))
}

// UpdateWord handles PATCH /api/v1/words/:id.
func (h *WordHandler) UpdateWord(c *gin.Context) {
	var req dto.UpdateWordRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	word, err := h.service.UpdateWord(c.Request.Context(), c.Param("id"), req.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewWordResponse(word))
}

// RecordView handles POST /api/v1/words/:id/views. The body is optional.
func (h *WordHandler) RecordView(c *gin.Context) {
	req, ok := bindViewRequest(c)
	if !ok {
		return
	}

	if err := h.service.RecordWordView(c.Request.Context(), c.Param("id"), req.Time()); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterWordRoutes registers tag and word routes on the given router group.
func (h *WordHandler) RegisterWordRoutes(rg *gin.RouterGroup) {
	tags := rg.Group("/tags")
	tags.GET("", h.ListTags)
	tags.GET("/:id/words", h.ListWords)
	tags.GET("/:id/summary", h.TagSummary)

	words := rg.Group("/words")
	words.POST("", h.CreateWord)
	words.GET("/:id", h.GetWord)
	words.PATCH("/:id", h.UpdateWord)
	words.POST("/:id/views", h.RecordView)
}

// bindWordForm reads the multipart payload and opens the image files. The
// returned func closes every opened file.
func bindWordForm(c *gin.Context, req *dto.CreateWordRequest) ([]domain.Upload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", dto.ErrBinding, err)
	}

	payload := form.Value["payload"]
	if len(payload) == 0 {
		return nil, nil, domain.NewValidationError("payload", "is required")
	}
	if err := json.Unmarshal([]byte(payload[0]), req); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", dto.ErrBinding, err)
	}
	if err := dto.ValidateAll(req); err != nil {
		return nil, nil, err
	}

	headers := form.File["images"]
	if len(headers) > MaxImages {
		return nil, nil, domain.NewValidationError("images", fmt.Sprintf("at most %d images are allowed", MaxImages))
	}

	var opened []io.Closer
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	uploads := make([]domain.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("%w: %s: %w", dto.ErrBinding, fh.Filename, err)
		}
		opened = append(opened, f)
		uploads = append(uploads, uploadFromHeader(fh, f))
	}

	return uploads, closeAll, nil
}

func uploadFromHeader(fh *multipart.FileHeader, f multipart.File) domain.Upload {
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return domain.Upload{
		FileName: fh.Filename,
		MimeType: mimeType,
		Size:     fh.Size,
		Content:  f,
	}
}

// bindViewRequest binds the optional view body. It writes the error
// response itself and reports whether the handler should continue.
func bindViewRequest(c *gin.Context) (dto.ViewRequest, bool) {
	var req dto.ViewRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}

	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return req, false
	}

	return req, true
}
