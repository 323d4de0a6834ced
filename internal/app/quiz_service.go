package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jsamuelsen/flashcards/internal/domain"
	"github.com/jsamuelsen/flashcards/internal/platform/logging"
	"github.com/jsamuelsen/flashcards/internal/ports"
)

// QuizService manages categories and quizzes and grades answers.
type QuizService struct {
	categories  ports.CategoryStore
	quizzes     ports.QuizStore
	exec        *Executor
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
}

// NewQuizService creates a QuizService over the given stores.
func NewQuizService(categories ports.CategoryStore, quizzes ports.QuizStore, cfg *ServiceConfig) *QuizService {
	c := cfg.resolve()

	return &QuizService{
		categories:  categories,
		quizzes:     quizzes,
		exec:        NewExecutor(c.Logger),
		logger:      c.Logger,
		concurrency: c.Concurrency,
		now:         c.Now,
	}
}

// ListCategories returns every category.
func (s *QuizService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.ListCategories(ctx)
}

// ListCategoriesWithIncorrect returns categories holding collected quizzes,
// each with those quizzes.
func (s *QuizService) ListCategoriesWithIncorrect(ctx context.Context) ([]domain.Category, error) {
	return s.categories.CategoriesWithIncorrectQuizzes(ctx)
}

// ListQuizzes returns the quizzes of a category, or only its collected ones.
func (s *QuizService) ListQuizzes(ctx context.Context, categoryID string, collectedOnly bool) ([]domain.Quiz, error) {
	if err := requireID("categoryId", categoryID); err != nil {
		return nil, err
	}

	if collectedOnly {
		return s.quizzes.CollectedQuizzesByCategory(ctx, categoryID)
	}

	return s.quizzes.QuizzesByCategory(ctx, categoryID)
}

// GetQuiz returns one quiz.
func (s *QuizService) GetQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}

	return s.quizzes.GetQuiz(ctx, id)
}

// CreateQuiz creates the options, then the quiz connecting them, then
// publishes everything. Options and quiz are deleted again if a create
// fails. A failed publish returns the draft with Draft set.
func (s *QuizService) CreateQuiz(ctx context.Context, in domain.CreateQuizInput) (*domain.Quiz, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var (
		options []*domain.QuizOption
		quiz    *domain.Quiz
	)

	plan := NewPlan(s.logger)
	err := plan.Add(
		NewAction("create quiz options",
			func(ctx context.Context) error {
				var err error
				options, err = s.createOptions(ctx, in.Options)

				return err
			},
			func(ctx context.Context) error { return s.deleteOptions(ctx, options) },
		),
		NewAction("create quiz",
			func(ctx context.Context) error {
				var err error
				quiz, err = s.quizzes.CreateQuiz(ctx, domain.QuizDraft{
					Content:       in.Content,
					CorrectAnswer: in.CorrectAnswer,
					OptionIDs:     optionIDs(options),
					CategoryIDs:   in.CategoryIDs,
					IsCollected:   in.IsCollected,
				})

				return err
			},
			nil,
		),
	)
	if err != nil {
		return nil, err
	}

	if err := plan.Commit(ctx); err != nil {
		return nil, err
	}

	published, err := s.publishQuiz(ctx, quiz.ID, options)
	if err != nil {
		logging.FromContextOr(ctx, s.logger).WarnContext(ctx, "quiz left as draft",
			slog.String("quiz_id", quiz.ID),
			slog.Any("error", err),
		)

		quiz.Draft = true

		return quiz, nil
	}

	return published, nil
}

// createOptions creates every option concurrently. The result keeps input
// order; on failure it holds only the options that were created.
func (s *QuizService) createOptions(ctx context.Context, inputs []domain.QuizOptionInput) ([]*domain.QuizOption, error) {
	fns := make([]func(context.Context) (*domain.QuizOption, error), len(inputs))
	for i, in := range inputs {
		fns[i] = func(ctx context.Context) (*domain.QuizOption, error) {
			return s.quizzes.CreateQuizOption(ctx, in)
		}
	}

	results := ParallelPartial(ctx, s.concurrency, fns...)

	created := make([]*domain.QuizOption, 0, len(results))
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		if r.Value == nil {
			results[i].Err = fmt.Errorf("option %q: store returned no option", inputs[i].Text)
			continue
		}
		created = append(created, r.Value)
	}

	return created, firstError(results)
}

// deleteOptions removes created options in reverse creation order.
func (s *QuizService) deleteOptions(ctx context.Context, options []*domain.QuizOption) error {
	var errs []error
	for _, o := range slices.Backward(options) {
		if err := s.quizzes.DeleteQuizOption(ctx, o.ID); err != nil {
			errs = append(errs, fmt.Errorf("option %s: %w", o.ID, err))
		}
	}

	return errors.Join(errs...)
}

// publishQuiz publishes the options concurrently, then the quiz.
func (s *QuizService) publishQuiz(ctx context.Context, quizID string, options []*domain.QuizOption) (*domain.Quiz, error) {
	fns := make([]func(context.Context) (struct{}, error), len(options))
	for i, o := range options {
		fns[i] = func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.quizzes.PublishQuizOption(ctx, o.ID)
		}
	}

	if _, err := ParallelLimit(ctx, s.concurrency, fns...); err != nil {
		return nil, err
	}

	return s.quizzes.PublishQuiz(ctx, quizID)
}

func optionIDs(options []*domain.QuizOption) []string {
	ids := make([]string, 0, len(options))
	for _, o := range options {
		ids = append(ids, o.ID)
	}

	return ids
}

type answerRequest struct {
	quizID   string
	selected int
	mode     domain.AnswerMode
}

// graded pairs an answer with the collected flag it leads to.
type graded struct {
	result    domain.AnswerResult
	collected bool
	changed   bool
}

// SubmitAnswer grades the option at selected. In test mode the quiz is
// collected when answered wrongly and released when answered rightly. In
// review mode a wrong answer collects it and a right one leaves it alone.
func (s *QuizService) SubmitAnswer(ctx context.Context, quizID string, selected int, mode domain.AnswerMode) (*domain.AnswerResult, error) {
	return Execute(ctx, s.exec, Operation[answerRequest, *domain.Quiz, graded, *domain.AnswerResult]{
		Name: "submit answer",
		Validate: func(_ context.Context, req answerRequest) error {
			if err := requireID("quizId", req.quizID); err != nil {
				return err
			}
			if !req.mode.Valid() {
				return domain.NewValidationError("mode", "must be test or review")
			}
			if req.selected < 0 {
				return domain.NewValidationError("option", "must not be negative")
			}

			return nil
		},
		Perform: func(ctx context.Context, req answerRequest) (*domain.Quiz, error) {
			return s.quizzes.GetQuiz(ctx, req.quizID)
		},
		Verify: func(_ context.Context, req answerRequest, quiz *domain.Quiz) (graded, error) {
			if req.selected >= len(quiz.Options) {
				return graded{}, domain.NewValidationError("option",
					fmt.Sprintf("quiz has %d options", len(quiz.Options)))
			}

			correct := quiz.IsCorrect(req.selected)
			g := graded{
				result: domain.AnswerResult{
					QuizID:        quiz.ID,
					Selected:      req.selected,
					Correct:       correct,
					CorrectIndex:  quiz.CorrectIndex(),
					CorrectAnswer: quiz.CorrectAnswer,
				},
				collected: quiz.IsCollected,
			}

			switch {
			case req.mode == domain.AnswerModeTest:
				g.collected = !correct
				g.changed = true
			case !correct:
				g.collected = true
				g.changed = true
			}

			return g, nil
		},
		Archive: func(ctx context.Context, req answerRequest, g graded) error {
			if !g.changed {
				return nil
			}

			return s.quizzes.SetQuizCollected(ctx, req.quizID, g.collected)
		},
		Respond: func(_ context.Context, _ answerRequest, g graded) (*domain.AnswerResult, error) {
			return &g.result, nil
		},
	}, answerRequest{quizID: quizID, selected: selected, mode: mode})
}

// RecordQuizView appends at to the view history of a quiz. A zero at means now.
func (s *QuizService) RecordQuizView(ctx context.Context, id string, at time.Time) error {
	if err := requireID("id", id); err != nil {
		return err
	}

	return s.quizzes.AppendQuizView(ctx, id, viewTime(at, s.now))
}
