package hygraph

import (
	"context"
	"fmt"
	"time"

	"github.com/jsamuelsen/flashcards/internal/domain"
)

type quizOptionCreateInput struct {
	QuizOptionText string           `json:"quizOptionText"`
	OptionImage    *connectOneInput `json:"optionImage,omitempty"`
}

type connectOneInput struct {
	Connect whereUnique `json:"connect"`
}

type quizCreateInput struct {
	QuizContent   string        `json:"quizContent"`
	CorrectAnswer string        `json:"correctAnswer"`
	IsCollected   bool          `json:"isCollected"`
	QuizOptions   *connectInput `json:"quizOptions,omitempty"`
	Category      *connectInput `json:"category,omitempty"`
}

// ListCategories implements ports.CategoryStore.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return c.walkCategories(ctx, call{name: "list categories", entity: "category"}, categoriesQuery)
}

// CategoriesWithIncorrectQuizzes implements ports.CategoryStore.
func (c *Client) CategoriesWithIncorrectQuizzes(ctx context.Context) ([]domain.Category, error) {
	categories, err := c.walkCategories(ctx,
		call{name: "list categories with incorrect quizzes", entity: "category"}, incorrectCategoriesQuery)
	if err != nil {
		return nil, err
	}

	kept := categories[:0]
	for _, cat := range categories {
		if len(cat.Quizzes) > 0 {
			kept = append(kept, cat)
		}
	}

	return kept, nil
}

func (c *Client) walkCategories(ctx context.Context, op call, document string) ([]domain.Category, error) {
	nodes, err := walk(ctx, c, op, func(ctx context.Context, first int, after string) (*connection[categoryDTO], error) {
		var out struct {
			CategoriesConnection connection[categoryDTO] `json:"categoriesConnection"`
		}
		if err := c.query(ctx, op, document, pageVars(first, after, nil), &out); err != nil {
			return nil, err
		}

		return &out.CategoriesConnection, nil
	})
	if err != nil {
		return nil, err
	}

	categories, err := translateSlice(nodes, translateCategory)
	if err != nil {
		return nil, domain.NewUnavailableError(serviceName, err.Error())
	}

	return categories, nil
}

// QuizzesByCategory implements ports.QuizStore.
func (c *Client) QuizzesByCategory(ctx context.Context, categoryID string) ([]domain.Quiz, error) {
	return c.quizzesByCategory(ctx, call{name: "list quizzes", entity: "category", id: categoryID}, quizzesByCategoryQuery)
}

// CollectedQuizzesByCategory implements ports.QuizStore.
func (c *Client) CollectedQuizzesByCategory(ctx context.Context, categoryID string) ([]domain.Quiz, error) {
	return c.quizzesByCategory(ctx,
		call{name: "list collected quizzes", entity: "category", id: categoryID}, collectedQuizzesByCategoryQuery)
}

func (c *Client) quizzesByCategory(ctx context.Context, op call, document string) ([]domain.Quiz, error) {
	nodes, err := walk(ctx, c, op, func(ctx context.Context, first int, after string) (*connection[quizDTO], error) {
		var out struct {
			Category          *whereUnique        `json:"category"`
			QuizzesConnection connection[quizDTO] `json:"quizzesConnection"`
		}
		vars := pageVars(first, after, map[string]any{"categoryId": op.id})
		if err := c.query(ctx, op, document, vars, &out); err != nil {
			return nil, err
		}
		if out.Category == nil {
			return nil, notFound(op)
		}

		return &out.QuizzesConnection, nil
	})
	if err != nil {
		return nil, err
	}

	quizzes, err := translateSlice(nodes, translateQuiz)
	if err != nil {
		return nil, domain.NewUnavailableError(serviceName, err.Error())
	}

	return quizzes, nil
}

// GetQuiz implements ports.QuizStore.
func (c *Client) GetQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	op := call{name: "get quiz", entity: "quiz", id: id}

	var out struct {
		Quiz *quizDTO `json:"quiz"`
	}
	if err := c.query(ctx, op, quizQuery, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}

	return c.quizResult(op, out.Quiz)
}

// CreateQuizOption implements ports.QuizStore.
func (c *Client) CreateQuizOption(ctx context.Context, in domain.QuizOptionInput) (*domain.QuizOption, error) {
	op := call{name: "create quiz option", entity: "quiz option"}

	input := quizOptionCreateInput{QuizOptionText: in.Text}
	if in.ImageAssetID != "" {
		input.OptionImage = &connectOneInput{Connect: whereUnique{ID: in.ImageAssetID}}
	}

	var out struct {
		CreateQuizOption *optionDTO `json:"createQuizOption"`
	}
	if err := c.mutate(ctx, op, createQuizOptionMutation, map[string]any{"data": input}, &out); err != nil {
		return nil, err
	}
	if out.CreateQuizOption == nil || out.CreateQuizOption.ID == "" {
		return nil, domain.NewUnavailableError(serviceName, "quiz option creation returned no data")
	}

	opt := translateOption(out.CreateQuizOption)

	return &opt, nil
}

// PublishQuizOption implements ports.QuizStore.
func (c *Client) PublishQuizOption(ctx context.Context, id string) error {
	return c.mutateByID(ctx, call{name: "publish quiz option", entity: "quiz option", id: id},
		publishQuizOptionMutation, "publishQuizOption")
}

// DeleteQuizOption implements ports.QuizStore.
func (c *Client) DeleteQuizOption(ctx context.Context, id string) error {
	return c.mutateByID(ctx, call{name: "delete quiz option", entity: "quiz option", id: id},
		deleteQuizOptionMutation, "deleteQuizOption")
}

// CreateQuiz implements ports.QuizStore. The quiz is left unpublished.
func (c *Client) CreateQuiz(ctx context.Context, draft domain.QuizDraft) (*domain.Quiz, error) {
	op := call{name: "create quiz", entity: "quiz"}

	input := quizCreateInput{
		QuizContent:   draft.Content,
		CorrectAnswer: draft.CorrectAnswer,
		IsCollected:   draft.IsCollected,
	}
	if len(draft.OptionIDs) > 0 {
		input.QuizOptions = &connectInput{Connect: connectAll(draft.OptionIDs)}
	}
	if len(draft.CategoryIDs) > 0 {
		input.Category = &connectInput{Connect: connectAll(draft.CategoryIDs)}
	}

	var out struct {
		CreateQuiz *quizDTO `json:"createQuiz"`
	}
	if err := c.mutate(ctx, op, createQuizMutation, map[string]any{"data": input}, &out); err != nil {
		return nil, err
	}
	if out.CreateQuiz == nil {
		return nil, domain.NewUnavailableError(serviceName, "quiz creation returned no data")
	}

	quiz, err := c.quizResult(op, out.CreateQuiz)
	if err != nil {
		return nil, err
	}
	quiz.Draft = true

	return quiz, nil
}

// PublishQuiz implements ports.QuizStore.
func (c *Client) PublishQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	op := call{name: "publish quiz", entity: "quiz", id: id}

	var out struct {
		PublishQuiz *quizDTO `json:"publishQuiz"`
	}
	if err := c.mutate(ctx, op, publishQuizMutation, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}

	return c.quizResult(op, out.PublishQuiz)
}

// DeleteQuiz implements ports.QuizStore.
func (c *Client) DeleteQuiz(ctx context.Context, id string) error {
	return c.mutateByID(ctx, call{name: "delete quiz", entity: "quiz", id: id}, deleteQuizMutation, "deleteQuiz")
}

// SetQuizCollected implements ports.QuizStore.
func (c *Client) SetQuizCollected(ctx context.Context, id string, collected bool) error {
	op := call{name: "set quiz collected", entity: "quiz", id: id}

	var out struct {
		UpdateQuiz *whereUnique `json:"updateQuiz"`
	}
	vars := map[string]any{"id": id, "isCollected": collected}
	if err := c.mutate(ctx, op, setQuizCollectedMutation, vars, &out); err != nil {
		return err
	}
	if out.UpdateQuiz == nil {
		return notFound(op)
	}

	return nil
}

// AppendQuizView implements ports.QuizStore.
func (c *Client) AppendQuizView(ctx context.Context, id string, at time.Time) error {
	op := call{name: "record quiz view", entity: "quiz", id: id}

	var out struct {
		UpdateQuiz *whereUnique `json:"updateQuiz"`
	}
	vars := map[string]any{"id": id, "viewTime": formatViewTime(at)}
	if err := c.mutate(ctx, op, appendQuizViewMutation, vars, &out); err != nil {
		return err
	}
	if out.UpdateQuiz == nil {
		return notFound(op)
	}

	return nil
}

func (c *Client) quizResult(op call, ext *quizDTO) (*domain.Quiz, error) {
	if ext == nil {
		return nil, notFound(op)
	}

	quiz, err := translateQuiz(ext)
	if err != nil {
		return nil, domain.NewUnavailableError(serviceName, fmt.Sprintf("%s: %v", op.name, err))
	}

	return &quiz, nil
}
