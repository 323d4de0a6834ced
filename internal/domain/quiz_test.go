package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerIndex(t *testing.T) {
	tests := []struct {
		letter string
		want   int
	}{
		{"A", 0},
		{"B", 1},
		{"C", 2},
		{"D", 3},
		{"E", 4},
		{"a", 4},
		{"", 4},
	}

	for _, tt := range tests {
		t.Run(tt.letter, func(t *testing.T) {
			assert.Equal(t, tt.want, AnswerIndex(tt.letter))
		})
	}
}

func TestOptionLetter(t *testing.T) {
	assert.Equal(t, "A", OptionLetter(0))
	assert.Equal(t, "D", OptionLetter(3))
}

func TestQuiz_RenderedContent_ReplacesFirstPlaceholderOnly(t *testing.T) {
	q := Quiz{Content: "I answer_placeholder to school, you answer_placeholder too."}

	assert.Equal(t, "I __________ to school, you answer_placeholder too.", q.RenderedContent())
}

func TestQuiz_IsCorrect(t *testing.T) {
	q := Quiz{CorrectAnswer: "C"}

	assert.True(t, q.IsCorrect(2))
	assert.False(t, q.IsCorrect(0))
	assert.False(t, q.IsCorrect(-1))

	unmatched := Quiz{CorrectAnswer: "Z"}
	for i := range 4 {
		assert.False(t, unmatched.IsCorrect(i), "option %d", i)
	}
}

func TestCreateQuizInput_Validate(t *testing.T) {
	valid := func() CreateQuizInput {
		return CreateQuizInput{
			Content:       " She answer_placeholder tea. ",
			CorrectAnswer: " b ",
			Options: []QuizOptionInput{
				{Text: "drink"},
				{Text: "drinks"},
				{Text: "   "},
			},
			CategoryIDs: []string{"cat-1"},
		}
	}

	tests := []struct {
		name      string
		mutate    func(in *CreateQuizInput)
		wantField string
	}{
		{name: "valid", mutate: func(*CreateQuizInput) {}},
		{name: "missing content", mutate: func(in *CreateQuizInput) { in.Content = "" }, wantField: "quizContent"},
		{name: "missing answer", mutate: func(in *CreateQuizInput) { in.CorrectAnswer = "" }, wantField: "correctAnswer"},
		{name: "answer beyond options", mutate: func(in *CreateQuizInput) { in.CorrectAnswer = "C" }, wantField: "correctAnswer"},
		{name: "answer not a letter", mutate: func(in *CreateQuizInput) { in.CorrectAnswer = "7" }, wantField: "correctAnswer"},
		{name: "too few options", mutate: func(in *CreateQuizInput) { in.Options = in.Options[:1] }, wantField: "options"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			in.Normalize()

			err := in.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "B", in.CorrectAnswer)
				assert.Len(t, in.Options, 2)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestAnswerMode_Valid(t *testing.T) {
	assert.True(t, AnswerModeTest.Valid())
	assert.True(t, AnswerModeReview.Valid())
	assert.False(t, AnswerMode("practice").Valid())
}
