package dto

import (
	"strings"
	"time"

	"github.com/jsamuelsen/flashcards/internal/domain"
)

// CategoryResponse is a quiz category. Quizzes is filled by the
// incorrect-quiz listing only.
type CategoryResponse struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Quizzes []QuizResponse `json:"quizzes,omitempty"`
}

// QuizResponse is a quiz as shown to a learner. The correct answer is only
// revealed by answering.
type QuizResponse struct {
	ID          string           `json:"id"`
	Content     string           `json:"content"`
	Options     []OptionResponse `json:"options"`
	IsCollected bool             `json:"isCollected"`
	ImageURLs   []string         `json:"imageUrls,omitempty"`
	LastViewed  *time.Time       `json:"lastViewed,omitempty"`
	Draft       bool             `json:"draft,omitempty"`
}

// OptionResponse is one answer option.
type OptionResponse struct {
	Letter   string `json:"letter"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// AnswerResponse grades an answer.
type AnswerResponse struct {
	QuizID        string `json:"quizId"`
	Selected      int    `json:"selected"`
	Correct       bool   `json:"correct"`
	CorrectIndex  int    `json:"correctIndex"`
	CorrectAnswer string `json:"correctAnswer"`
}

// NewCategoryResponses converts categories.
func NewCategoryResponses(categories []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp := CategoryResponse{ID: c.ID, Name: c.Name}
		if len(c.Quizzes) > 0 {
			resp.Quizzes = NewQuizResponses(c.Quizzes)
		}
		out = append(out, resp)
	}

	return out
}

// NewQuizResponse converts a quiz, blanking its placeholder.
func NewQuizResponse(q *domain.Quiz) QuizResponse {
	resp := QuizResponse{
		ID:          q.ID,
		Content:     q.RenderedContent(),
		Options:     make([]OptionResponse, 0, len(q.Options)),
		IsCollected: q.IsCollected,
		ImageURLs:   q.ImageURLs,
		LastViewed:  timePtr(q.LastViewed()),
		Draft:       q.Draft,
	}
	for i, opt := range q.Options {
		resp.Options = append(resp.Options, OptionResponse{
			Letter:   domain.OptionLetter(i),
			Text:     opt.Text,
			ImageURL: opt.ImageURL,
		})
	}

	return resp
}

// NewQuizResponses converts a quiz list.
func NewQuizResponses(quizzes []domain.Quiz) []QuizResponse {
	out := make([]QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		out = append(out, NewQuizResponse(&quizzes[i]))
	}

	return out
}

// NewAnswerResponse converts a grade.
func NewAnswerResponse(r *domain.AnswerResult) *AnswerResponse {
	if r == nil {
		return nil
	}

	return &AnswerResponse{
		QuizID:        r.QuizID,
		Selected:      r.Selected,
		Correct:       r.Correct,
		CorrectIndex:  r.CorrectIndex,
		CorrectAnswer: r.CorrectAnswer,
	}
}

// CreateQuizRequest is the body of POST /quizzes. Content marks the blank
// with answer_placeholder.
type CreateQuizRequest struct {
	Content       string          `json:"quizContent" validate:"required,notempty"`
	CorrectAnswer string          `json:"correctAnswer" validate:"required,answerletter"`
	Options       []OptionRequest `json:"options" validate:"required,min=2,max=4,dive"`
	CategoryIDs   []string        `json:"categoryIds"`
	IsCollected   bool            `json:"isCollected"`
}

// OptionRequest is an option to create. ImageAssetID links an uploaded image.
type OptionRequest struct {
	Text         string `json:"text" validate:"required,notempty"`
	ImageAssetID string `json:"imageAssetId"`
}

// Validate requires the placeholder in the content.
func (r *CreateQuizRequest) Validate() error {
	if !strings.Contains(r.Content, domain.AnswerPlaceholder) {
		return domain.NewValidationError("quizContent", "must contain "+domain.AnswerPlaceholder)
	}

	return nil
}

// ToDomain converts the request.
func (r *CreateQuizRequest) ToDomain() domain.CreateQuizInput {
	in := domain.CreateQuizInput{
		Content:       r.Content,
		CorrectAnswer: r.CorrectAnswer,
		CategoryIDs:   r.CategoryIDs,
		IsCollected:   r.IsCollected,
	}
	for _, opt := range r.Options {
		in.Options = append(in.Options, domain.QuizOptionInput{Text: opt.Text, ImageAssetID: opt.ImageAssetID})
	}

	return in
}

// AnswerRequest is the body of POST /quizzes/:id/answers. Mode defaults to test.
type AnswerRequest struct {
	Option *int   `json:"option" validate:"required,gte=0"`
	Mode   string `json:"mode" validate:"omitempty,oneof=test review"`
}

// AnswerMode returns the requested mode.
func (r *AnswerRequest) AnswerMode() domain.AnswerMode {
	if r.Mode == "" {
		return domain.AnswerModeTest
	}

	return domain.AnswerMode(r.Mode)
}
