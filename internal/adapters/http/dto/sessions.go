package dto

import (
	"time"

	"github.com/jsamuelsen/flashcards/internal/app"
	"github.com/jsamuelsen/flashcards/internal/domain"
)

// StartSessionRequest is the body of POST /sessions. GroupID is a tag for
// word sessions and a category for quiz sessions.
type StartSessionRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=word-learning word-review quiz-test quiz-review"`
	GroupID string `json:"groupId" validate:"required,notempty"`
}

// SessionAnswerRequest answers the current card: Know for words, Option for quizzes.
type SessionAnswerRequest struct {
	Know   *bool `json:"know"`
	Option *int  `json:"option" validate:"omitempty,gte=0"`
}

// Validate requires exactly one of Know and Option.
func (r *SessionAnswerRequest) Validate() error {
	if (r.Know == nil) == (r.Option == nil) {
		return domain.NewValidationError("know", "exactly one of know or option is required")
	}

	return nil
}

// SessionResponse is the state of a study session.
type SessionResponse struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	GroupID    string          `json:"groupId"`
	Index      int             `json:"index"`
	Total      int             `json:"total"`
	Revealed   bool            `json:"revealed"`
	Finished   bool            `json:"finished"`
	Word       *WordResponse   `json:"word,omitempty"`
	Quiz       *QuizResponse   `json:"quiz,omitempty"`
	LastAnswer *AnswerResponse `json:"lastAnswer,omitempty"`
	Correct    int             `json:"correct"`
	Incorrect  int             `json:"incorrect"`
	StartedAt  time.Time       `json:"startedAt"`
}

// NewSessionResponse converts a session view.
func NewSessionResponse(v *app.SessionView) SessionResponse {
	resp := SessionResponse{
		ID:         v.ID,
		Kind:       string(v.Kind),
		GroupID:    v.GroupID,
		Index:      v.Index,
		Total:      v.Total,
		Revealed:   v.Revealed,
		Finished:   v.Finished,
		LastAnswer: NewAnswerResponse(v.LastAnswer),
		Correct:    v.Correct,
		Incorrect:  v.Incorrect,
		StartedAt:  v.StartedAt,
	}
	if v.Word != nil {
		w := NewWordResponse(v.Word)
		resp.Word = &w
	}
	if v.Quiz != nil {
		q := NewQuizResponse(v.Quiz)
		resp.Quiz = &q
	}

	return resp
}
