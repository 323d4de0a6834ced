// Package ports defines the contracts between the study use cases and the
// adapters that reach the content API, asset storage and caches.
//
// Every method takes a context first, returns domain types, and reports
// failures with the domain error vocabulary (ErrNotFound, ErrValidation,
// ErrForbidden, ErrUnavailable).
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/flashcards/internal/domain"
)

// TagStore reads tags.
type TagStore interface {
	// ListTags returns every tag with the IDs and items of its words.
	ListTags(ctx context.Context) ([]domain.Tag, error)

	// ListTagsPage returns up to first tags after the cursor. An empty cursor
	// starts at the beginning.
	ListTagsPage(ctx context.Context, first int, after string) (*domain.TagPage, error)

	// ListCollectedTags returns tags having collected words, each carrying
	// only those words.
	ListCollectedTags(ctx context.Context) ([]domain.Tag, error)
}

// WordStore reads and writes word items.
type WordStore interface {
	// WordsByTag returns the full words of a tag. ErrNotFound if the tag is missing.
	WordsByTag(ctx context.Context, tagID string) ([]domain.WordItem, error)

	// CollectedWordsByTag is WordsByTag restricted to collected words.
	CollectedWordsByTag(ctx context.Context, tagID string) ([]domain.WordItem, error)

	// GetWordItem returns one word with its view history.
	GetWordItem(ctx context.Context, id string) (*domain.WordItem, error)

	// CreateWordItem creates an unpublished word.
	CreateWordItem(ctx context.Context, draft domain.WordDraft) (*domain.WordItem, error)

	// PublishWordItem publishes a draft and returns the published record.
	PublishWordItem(ctx context.Context, id string) (*domain.WordItem, error)

	// DeleteWordItem removes a word.
	DeleteWordItem(ctx context.Context, id string) error

	// UpdateWordItem sets the non-nil learning flags.
	UpdateWordItem(ctx context.Context, id string, in domain.UpdateWordInput) (*domain.WordItem, error)

	// AppendWordView pushes one entry onto the view history. Entries already
	// stored are never rewritten.
	AppendWordView(ctx context.Context, id string, at time.Time) error

	// CountWords counts the words of a tag.
	CountWords(ctx context.Context, tagID string) (*domain.WordCounts, error)
}

// AssetStore stores uploaded images.
type AssetStore interface {
	// CreateAndUploadAsset runs the create, upload, publish sequence and
	// returns the published asset. Errors name the file.
	CreateAndUploadAsset(ctx context.Context, upload domain.Upload) (*domain.Asset, error)

	// DeleteAsset removes an asset.
	DeleteAsset(ctx context.Context, id string) error
}

// CategoryStore reads quiz categories.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// CategoriesWithIncorrectQuizzes returns categories with their collected
	// quizzes. Categories without any are left out.
	CategoriesWithIncorrectQuizzes(ctx context.Context) ([]domain.Category, error)
}

// QuizStore reads and writes quizzes and their options.
type QuizStore interface {
	QuizzesByCategory(ctx context.Context, categoryID string) ([]domain.Quiz, error)
	CollectedQuizzesByCategory(ctx context.Context, categoryID string) ([]domain.Quiz, error)
	GetQuiz(ctx context.Context, id string) (*domain.Quiz, error)

	CreateQuizOption(ctx context.Context, in domain.QuizOptionInput) (*domain.QuizOption, error)
	PublishQuizOption(ctx context.Context, id string) error
	DeleteQuizOption(ctx context.Context, id string) error

	CreateQuiz(ctx context.Context, draft domain.QuizDraft) (*domain.Quiz, error)
	PublishQuiz(ctx context.Context, id string) (*domain.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error

	SetQuizCollected(ctx context.Context, id string, collected bool) error
	AppendQuizView(ctx context.Context, id string, at time.Time) error
}

// ContentStore is everything the content API offers. The Hygraph adapter
// implements it; tests usually fake only the slice they need.
type ContentStore interface {
	TagStore
	WordStore
	AssetStore
	CategoryStore
	QuizStore
}
