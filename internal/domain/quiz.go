package domain

import (
	"strings"
	"time"
)

// AnswerPlaceholder marks the blank in quiz content.
const AnswerPlaceholder = "answer_placeholder"

// BlankRendering replaces AnswerPlaceholder when content is shown.
const BlankRendering = "__________"

// MinQuizOptions is the fewest options a quiz may have.
const MinQuizOptions = 2

// unmatchedAnswerIndex is returned for answers outside A-D. It never equals
// a selectable option index.
const unmatchedAnswerIndex = 4

// Category groups quizzes. Quizzes is only filled by listings that ask for it.
type Category struct {
	ID      string
	Name    string
	Quizzes []Quiz
}

// Quiz is a multiple-choice question.
type Quiz struct {
	ID            string
	Content       string
	CorrectAnswer string
	Options       []QuizOption
	IsCollected   bool
	ViewTimes     []time.Time
	Categories    []Category
	ImageURLs     []string

	Draft bool
}

// RenderedContent returns the content with its first placeholder blanked.
func (q *Quiz) RenderedContent() string {
	return strings.Replace(q.Content, AnswerPlaceholder, BlankRendering, 1)
}

// CorrectIndex returns the option index of the correct answer.
func (q *Quiz) CorrectIndex() int {
	return AnswerIndex(q.CorrectAnswer)
}

// IsCorrect reports whether the option at index answers the quiz.
func (q *Quiz) IsCorrect(index int) bool {
	return index >= 0 && index == q.CorrectIndex()
}

// LastViewed returns the most recent view time, or the zero time.
func (q *Quiz) LastViewed() time.Time {
	return latest(q.ViewTimes)
}

// AnswerIndex maps an answer letter to an option index: A is 0 through D is 3.
// Anything else maps to an index no option has.
func AnswerIndex(letter string) int {
	switch letter {
	case "A":
		return 0
	case "B":
		return 1
	case "C":
		return 2
	case "D":
		return 3
	default:
		return unmatchedAnswerIndex
	}
}

// OptionLetter returns the label for the option at index (0 is "A").
func OptionLetter(index int) string {
	return string(rune('A' + index))
}

// QuizOption is one selectable answer.
type QuizOption struct {
	ID       string
	Text     string
	ImageURL string
}

// QuizOptionInput describes an option to create. ImageAssetID is optional.
type QuizOptionInput struct {
	Text         string
	ImageAssetID string
}

// CreateQuizInput describes a new quiz and its options.
type CreateQuizInput struct {
	Content       string
	CorrectAnswer string
	Options       []QuizOptionInput
	CategoryIDs   []string
	IsCollected   bool
}

// Normalize trims the input and drops blank options.
func (in *CreateQuizInput) Normalize() {
	in.Content = strings.TrimSpace(in.Content)
	in.CorrectAnswer = strings.ToUpper(strings.TrimSpace(in.CorrectAnswer))

	options := in.Options[:0]
	for _, opt := range in.Options {
		opt.Text = strings.TrimSpace(opt.Text)
		if opt.Text == "" {
			continue
		}
		options = append(options, opt)
	}
	in.Options = options
}

// Validate checks the input after Normalize.
func (in *CreateQuizInput) Validate() error {
	if in.Content == "" {
		return NewValidationError("quizContent", "is required")
	}
	if in.CorrectAnswer == "" {
		return NewValidationError("correctAnswer", "is required")
	}
	if len(in.Options) < MinQuizOptions {
		return NewValidationError("options", "at least 2 options are required")
	}

	index := AnswerIndex(in.CorrectAnswer)
	if index == unmatchedAnswerIndex || index >= len(in.Options) {
		return NewValidationError("correctAnswer", "must name one of the options")
	}

	return nil
}

// QuizDraft is what the store needs to create a quiz once options exist.
type QuizDraft struct {
	Content       string
	CorrectAnswer string
	OptionIDs     []string
	CategoryIDs   []string
	IsCollected   bool
}

// AnswerMode selects how an answer updates the collected flag.
type AnswerMode string

const (
	// AnswerModeTest collects wrong answers and releases right ones.
	AnswerModeTest AnswerMode = "test"

	// AnswerModeReview collects wrong answers and leaves right ones collected.
	AnswerModeReview AnswerMode = "review"
)

// Valid reports whether m is a known mode.
func (m AnswerMode) Valid() bool {
	return m == AnswerModeTest || m == AnswerModeReview
}

// AnswerResult is the outcome of answering a quiz.
type AnswerResult struct {
	QuizID        string
	Selected      int
	Correct       bool
	CorrectIndex  int
	CorrectAnswer string
}
