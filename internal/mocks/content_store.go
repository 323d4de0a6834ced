// Package mocks provides testify mocks of the ports interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/flashcards/internal/domain"
	"github.com/jsamuelsen/flashcards/internal/ports"
)

var _ ports.ContentStore = (*ContentStore)(nil)

// ContentStore is a mock of ports.ContentStore. Nil results are returned as
// typed nils so callers can set up failures with Return(nil, err).
type ContentStore struct {
	mock.Mock
}

// NewContentStore creates a ContentStore that asserts its expectations when
// the test ends.
func NewContentStore(t interface {
	mock.TestingT
	Cleanup(func())
},
) *ContentStore {
	m := &ContentStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *ContentStore) ListTags(ctx context.Context) ([]domain.Tag, error) {
	ret := m.Called(ctx)
	tags, _ := ret.Get(0).([]domain.Tag)

	return tags, ret.Error(1)
}

func (m *ContentStore) ListTagsPage(ctx context.Context, first int, after string) (*domain.TagPage, error) {
	ret := m.Called(ctx, first, after)
	p, _ := ret.Get(0).(*domain.TagPage)

	return p, ret.Error(1)
}

func (m *ContentStore) ListCollectedTags(ctx context.Context) ([]domain.Tag, error) {
	ret := m.Called(ctx)
	tags, _ := ret.Get(0).([]domain.Tag)

	return tags, ret.Error(1)
}

func (m *ContentStore) WordsByTag(ctx context.Context, tagID string) ([]domain.WordItem, error) {
	ret := m.Called(ctx, tagID)
	words, _ := ret.Get(0).([]domain.WordItem)

	return words, ret.Error(1)
}

func (m *ContentStore) CollectedWordsByTag(ctx context.Context, tagID string) ([]domain.WordItem, error) {
	ret := m.Called(ctx, tagID)
	words, _ := ret.Get(0).([]domain.WordItem)

	return words, ret.Error(1)
}

func (m *ContentStore) GetWordItem(ctx context.Context, id string) (*domain.WordItem, error) {
	ret := m.Called(ctx, id)
	w, _ := ret.Get(0).(*domain.WordItem)

	return w, ret.Error(1)
}

func (m *ContentStore) CreateWordItem(ctx context.Context, draft domain.WordDraft) (*domain.WordItem, error) {
	ret := m.Called(ctx, draft)
	w, _ := ret.Get(0).(*domain.WordItem)

	return w, ret.Error(1)
}

func (m *ContentStore) PublishWordItem(ctx context.Context, id string) (*domain.WordItem, error) {
	ret := m.Called(ctx, id)
	w, _ := ret.Get(0).(*domain.WordItem)

	return w, ret.Error(1)
}

func (m *ContentStore) DeleteWordItem(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ContentStore) UpdateWordItem(ctx context.Context, id string, in domain.UpdateWordInput) (*domain.WordItem, error) {
	ret := m.Called(ctx, id, in)
	w, _ := ret.Get(0).(*domain.WordItem)

	return w, ret.Error(1)
}

func (m *ContentStore) AppendWordView(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *ContentStore) CountWords(ctx context.Context, tagID string) (*domain.WordCounts, error) {
	ret := m.Called(ctx, tagID)
	c, _ := ret.Get(0).(*domain.WordCounts)

	return c, ret.Error(1)
}

func (m *ContentStore) CreateAndUploadAsset(ctx context.Context, up domain.Upload) (*domain.Asset, error) {
	ret := m.Called(ctx, up)
	a, _ := ret.Get(0).(*domain.Asset)

	return a, ret.Error(1)
}

func (m *ContentStore) DeleteAsset(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ContentStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ret := m.Called(ctx)
	cats, _ := ret.Get(0).([]domain.Category)

	return cats, ret.Error(1)
}

func (m *ContentStore) CategoriesWithIncorrectQuizzes(ctx context.Context) ([]domain.Category, error) {
	ret := m.Called(ctx)
	cats, _ := ret.Get(0).([]domain.Category)

	return cats, ret.Error(1)
}

func (m *ContentStore) QuizzesByCategory(ctx context.Context, categoryID string) ([]domain.Quiz, error) {
	ret := m.Called(ctx, categoryID)
	quizzes, _ := ret.Get(0).([]domain.Quiz)

	return quizzes, ret.Error(1)
}

func (m *ContentStore) CollectedQuizzesByCategory(ctx context.Context, categoryID string) ([]domain.Quiz, error) {
	ret := m.Called(ctx, categoryID)
	quizzes, _ := ret.Get(0).([]domain.Quiz)

	return quizzes, ret.Error(1)
}

func (m *ContentStore) GetQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	ret := m.Called(ctx, id)
	q, _ := ret.Get(0).(*domain.Quiz)

	return q, ret.Error(1)
}

func (m *ContentStore) CreateQuizOption(ctx context.Context, in domain.QuizOptionInput) (*domain.QuizOption, error) {
	ret := m.Called(ctx, in)
	o, _ := ret.Get(0).(*domain.QuizOption)

	return o, ret.Error(1)
}

func (m *ContentStore) PublishQuizOption(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ContentStore) DeleteQuizOption(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ContentStore) CreateQuiz(ctx context.Context, draft domain.QuizDraft) (*domain.Quiz, error) {
	ret := m.Called(ctx, draft)
	q, _ := ret.Get(0).(*domain.Quiz)

	return q, ret.Error(1)
}

func (m *ContentStore) PublishQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	ret := m.Called(ctx, id)
	q, _ := ret.Get(0).(*domain.Quiz)

	return q, ret.Error(1)
}

func (m *ContentStore) DeleteQuiz(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ContentStore) SetQuizCollected(ctx context.Context, id string, collected bool) error {
	return m.Called(ctx, id, collected).Error(0)
}

func (m *ContentStore) AppendQuizView(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}
