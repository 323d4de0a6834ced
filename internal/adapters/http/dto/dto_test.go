package dto

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/flashcards/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func TestErrorResponseBuilders(t *testing.T) {
	resp := NewErrorResponse(ErrorCodeNotFound, "word item not found")
	assert.Equal(t, ErrorCodeNotFound, resp.Error.Code)
	assert.Nil(t, resp.Error.Details)

	withDetails := NewErrorResponseWithDetails(ErrorCodeValidation, "bad", map[string]string{"item": "required"})
	assert.Equal(t, "required", withDetails.Error.Details["item"])

	assert.Same(t, resp, resp.WithTraceID("abc"))
	assert.Equal(t, "abc", resp.TraceID)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := map[string]int{
		ErrorCodeNotFound:     http.StatusNotFound,
		ErrorCodeConflict:     http.StatusConflict,
		ErrorCodeValidation:   http.StatusBadRequest,
		ErrorCodeBadRequest:   http.StatusBadRequest,
		ErrorCodeForbidden:    http.StatusForbidden,
		ErrorCodeUnauthorized: http.StatusUnauthorized,
		ErrorCodeUnavailable:  http.StatusServiceUnavailable,
		ErrorCodeTimeout:      http.StatusGatewayTimeout,
		ErrorCodeInternal:     http.StatusInternalServerError,
		"SOMETHING_ELSE":      http.StatusInternalServerError,
	}

	for code, want := range tests {
		assert.Equal(t, want, HTTPStatusFromCode(code), code)
	}
}

func TestFromError(t *testing.T) {
	var tagErr struct {
		Kind string `json:"kind" validate:"oneof=a b"`
	}
	tagErr.Kind = "c"
	validationErr := Validate(&tagErr)
	require.Error(t, validationErr)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetail  string
	}{
		{
			name:       "binding",
			err:        fmt.Errorf("%w: %w", ErrBinding, errors.New("unexpected EOF")),
			wantStatus: http.StatusBadRequest, wantCode: ErrorCodeBadRequest,
			wantMessage: "malformed request: unexpected EOF",
		},
		{
			name:       "tag validation",
			err:        validationErr,
			wantStatus: http.StatusBadRequest, wantCode: ErrorCodeValidation,
			wantMessage: "request validation failed", wantDetail: "kind",
		},
		{
			name:       "domain validation",
			err:        domain.NewValidationError("quizContent", "must contain answer_placeholder"),
			wantStatus: http.StatusBadRequest, wantCode: ErrorCodeValidation, wantDetail: "quizContent",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("loading word: %w", domain.NewNotFoundError("word item", "w1")),
			wantStatus: http.StatusNotFound, wantCode: ErrorCodeNotFound,
		},
		{
			name:       "conflict",
			err:        domain.NewConflictError("tag", "name already used"),
			wantStatus: http.StatusConflict, wantCode: ErrorCodeConflict,
		},
		{
			name:       "forbidden",
			err:        domain.NewForbiddenError("publish", "token lacks rights"),
			wantStatus: http.StatusForbidden, wantCode: ErrorCodeForbidden,
		},
		{
			name:       "unavailable hides cause",
			err:        domain.NewUnavailableError("hygraph", "dial tcp: refused"),
			wantStatus: http.StatusServiceUnavailable, wantCode: ErrorCodeUnavailable,
			wantMessage: "content service is temporarily unavailable, try again later",
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("listing tags: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout, wantCode: ErrorCodeTimeout,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError, wantCode: ErrorCodeInternal,
			wantMessage: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
			if tt.wantDetail != "" {
				assert.Contains(t, resp.Error.Details, tt.wantDetail)
			}
		})
	}

	status, resp := FromError(nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp)
}

func TestGetTraceID(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(c *gin.Context)
		header string
		want   string
	}{
		{name: "gin key", setup: func(c *gin.Context) { c.Set(traceIDKey, "trace-1") }, header: "req-1", want: "trace-1"},
		{name: "non-string gin key", setup: func(c *gin.Context) { c.Set(traceIDKey, 7) }, want: ""},
		{name: "request id header", header: "req-2", want: "req-2"},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("X-Request-ID", tt.header)
			}
			if tt.setup != nil {
				tt.setup(c)
			}

			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}
}

func TestHandleError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/words/w1", nil)
	c.Request.Header.Set("X-Request-ID", "req-7")

	HandleError(c, domain.NewNotFoundError("word item", "w1"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
	assert.Contains(t, w.Body.String(), `"traceId":"req-7"`)
}

func TestCursorRoundTrip(t *testing.T) {
	encoded := EncodeCursor("ckz8abc")
	assert.NotContains(t, encoded, "ckz8abc")

	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, "ckz8abc", decoded)

	assert.Empty(t, EncodeCursor(""))

	empty, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecodeCursor_Rejects(t *testing.T) {
	for _, in := range []string{"not base64!", "ckz8abc", EncodeCursor("x")[:2]} {
		_, err := DecodeCursor(in)
		assert.ErrorIs(t, err, ErrInvalidCursor, in)
	}
}

func TestPaginationRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       PaginationRequest
		wantLimit int
		wantPaged bool
	}{
		{name: "defaults", req: PaginationRequest{}, wantLimit: DefaultLimit},
		{name: "limit", req: PaginationRequest{Limit: 5}, wantLimit: 5, wantPaged: true},
		{name: "capped", req: PaginationRequest{Limit: 500}, wantLimit: MaxLimit, wantPaged: true},
		{name: "cursor only", req: PaginationRequest{Cursor: EncodeCursor("c")}, wantLimit: DefaultLimit, wantPaged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLimit, tt.req.GetLimit())
			assert.Equal(t, tt.wantPaged, tt.req.Paged())
		})
	}

	assert.Error(t, Validate(&PaginationRequest{Limit: 101}))
}

func TestNewPaginatedResponse(t *testing.T) {
	last := NewPaginatedResponse[string](nil, "end", false, 3)
	assert.Equal(t, []string{}, last.Items)
	assert.Empty(t, last.NextCursor)
	assert.Equal(t, 3, last.Total)

	more := NewPaginatedResponse([]string{"a"}, "end", true, 0)
	after, err := (&PaginationRequest{Cursor: more.NextCursor}).After()
	require.NoError(t, err)
	assert.Equal(t, "end", after)
}

func TestValidationMessages(t *testing.T) {
	req := CreateQuizRequest{
		Content:       "   ",
		CorrectAnswer: "E",
		Options:       []OptionRequest{{Text: "one"}},
	}

	details := ValidationErrors(Validate(&req))

	assert.Equal(t, "must not be empty", details["quizContent"])
	assert.Equal(t, "must be one of A, B, C, D", details["correctAnswer"])
	assert.Equal(t, "must be at least 2", details["options"])
	assert.True(t, IsValidationError(Validate(&req)))
	assert.False(t, IsValidationError(errors.New("other")))
}

func TestAnswerLetter_CaseInsensitive(t *testing.T) {
	req := CreateQuizRequest{
		Content:       "The cat answer_placeholder on the mat.",
		CorrectAnswer: "b",
		Options:       []OptionRequest{{Text: "sits"}, {Text: "sat"}},
	}

	assert.NoError(t, ValidateAll(&req))
}

func TestValidateAll_CustomRules(t *testing.T) {
	tests := []struct {
		name      string
		v         any
		wantField string
	}{
		{
			name: "quiz without placeholder",
			v: &CreateQuizRequest{
				Content: "no blank", CorrectAnswer: "A",
				Options: []OptionRequest{{Text: "x"}, {Text: "y"}},
			},
			wantField: "quizContent",
		},
		{name: "empty word update", v: &UpdateWordRequest{}, wantField: "isKnown"},
		{name: "answer with both", v: &SessionAnswerRequest{Know: boolPtr(true), Option: intPtr(1)}, wantField: "know"},
		{name: "answer with neither", v: &SessionAnswerRequest{}, wantField: "know"},
		{name: "word update", v: &UpdateWordRequest{IsCollected: boolPtr(false)}},
		{name: "know answer", v: &SessionAnswerRequest{Know: boolPtr(false)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAll(tt.v)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestBindAndValidate(t *testing.T) {
	bind := func(body string) error {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		var req StartSessionRequest
		return BindAndValidate(c, &req)
	}

	assert.NoError(t, bind(`{"kind":"quiz-test","groupId":"c1"}`))
	assert.ErrorIs(t, bind(`{"kind":`), ErrBinding)
	assert.ErrorIs(t, bind(`{"kind":"cram","groupId":"c1"}`), ErrValidation)
}

func TestAnswerRequest_Mode(t *testing.T) {
	assert.Equal(t, domain.AnswerModeTest, (&AnswerRequest{}).AnswerMode())
	assert.Equal(t, domain.AnswerModeReview, (&AnswerRequest{Mode: "review"}).AnswerMode())
	assert.Error(t, Validate(&AnswerRequest{Option: intPtr(-1)}))
	assert.Error(t, Validate(&AnswerRequest{}))
}

func TestCreateWordRequest_ToDomain(t *testing.T) {
	req := CreateWordRequest{
		Item:     "cat",
		Meaning:  "a small feline",
		Examples: []ExampleRequest{{Sentence: "The cat sleeps.", Meaning: "..."}},
		Tags:     []TagRefRequest{{ID: "t1", Name: "Animals"}, {Name: "Pets"}},
	}
	require.NoError(t, ValidateAll(&req))

	in := req.ToDomain([]domain.Upload{{FileName: "cat.png"}})

	assert.Equal(t, "cat", in.Item)
	require.Len(t, in.Tags, 2)
	assert.True(t, in.Tags[0].Existing)
	assert.Equal(t, "t1", in.Tags[0].TagID)
	assert.False(t, in.Tags[1].Existing)
	assert.Len(t, in.Images, 1)
	assert.Len(t, in.Examples, 1)
}
