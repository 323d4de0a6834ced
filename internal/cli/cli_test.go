package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/flashcards/internal/adapters/http/dto"
	"github.com/jsamuelsen/flashcards/internal/app"
	"github.com/jsamuelsen/flashcards/internal/domain"
	"github.com/jsamuelsen/flashcards/internal/mocks"
)

type cliFixture struct {
	store   *mocks.ContentStore
	closed  int
	profile string
}

func newFixture(t *testing.T) *cliFixture {
	t.Helper()

	return &cliFixture{store: mocks.NewContentStore(t)}
}

func (f *cliFixture) open(_ context.Context, profile string) (*Services, func() error, error) {
	f.profile = profile
	cfg := &app.ServiceConfig{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	return &Services{
			Words:   app.NewWordService(f.store, f.store, f.store, cfg),
			Quizzes: app.NewQuizService(f.store, f.store, cfg),
		}, func() error {
			f.closed++
			return nil
		}, nil
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd(f.open)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestTags_Table(t *testing.T) {
	f := newFixture(t)
	f.store.On("ListTags", mock.Anything).Return([]domain.Tag{
		{ID: "t1", Name: "Animals", WordItems: []domain.WordItem{{ID: "w1", Item: "cat"}, {ID: "w2", Item: "dog"}}},
	}, nil)

	out, err := f.run(t, "tags", "--profile", "test")

	require.NoError(t, err)
	assert.Contains(t, out, "TAG")
	assert.Contains(t, out, "Animals")
	assert.Contains(t, out, "2")
	assert.Equal(t, "test", f.profile)
	assert.Equal(t, 1, f.closed)
}

func TestTags_Collected(t *testing.T) {
	f := newFixture(t)
	f.store.On("ListCollectedTags", mock.Anything).Return([]domain.Tag{}, nil)

	out, err := f.run(t, "tags", "--collected")

	require.NoError(t, err)
	assert.Contains(t, out, "nothing found")
}

func TestWords_JSON(t *testing.T) {
	f := newFixture(t)
	f.store.On("CollectedWordsByTag", mock.Anything, "t1").Return([]domain.WordItem{
		{ID: "w1", Item: "cat", Meaning: "a small feline", IsCollected: true},
	}, nil)

	out, err := f.run(t, "words", "t1", "--collected", "-o", "json")
	require.NoError(t, err)

	var words []dto.WordResponse
	require.NoError(t, json.Unmarshal([]byte(out), &words))
	require.Len(t, words, 1)
	assert.Equal(t, "cat", words[0].Item)
	assert.True(t, words[0].IsCollected)
}

func TestWords_RequiresTag(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "words")

	assert.Error(t, err)
	assert.Zero(t, f.closed)
}

func TestAddWord_UploadsImages(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "cat.png")
	require.NoError(t, os.WriteFile(image, []byte("\x89PNG fake"), 0o600))

	f := newFixture(t)
	f.store.On("CreateAndUploadAsset", mock.Anything, mock.MatchedBy(func(up domain.Upload) bool {
		return up.FileName == "cat.png" && up.MimeType == "image/png" && up.Size == 9
	})).Return(&domain.Asset{ID: "a1", FileName: "cat.png"}, nil)
	f.store.On("CreateWordItem", mock.Anything, mock.MatchedBy(func(d domain.WordDraft) bool {
		return d.Item == "cat" &&
			assert.ObjectsAreEqual([]string{"a1"}, d.ImageIDs) &&
			assert.ObjectsAreEqual([]string{"Animals"}, d.NewTagNames) &&
			assert.ObjectsAreEqual([]string{"t9"}, d.ExistingTagIDs) &&
			len(d.Examples) == 1 && d.Examples[0].Meaning == "Le chat dort."
	})).Return(&domain.WordItem{ID: "w1", Item: "cat"}, nil)
	f.store.On("PublishWordItem", mock.Anything, "w1").
		Return(&domain.WordItem{ID: "w1", Item: "cat", Images: []domain.Asset{{ID: "a1"}}}, nil)

	out, err := f.run(t, "add-word",
		"--item", "cat",
		"--meaning", "a small feline",
		"--tag", "Animals",
		"--tag-id", "t9=Pets",
		"--example", "The cat sleeps.|Le chat dort.",
		"--image", image,
	)

	require.NoError(t, err)
	assert.Contains(t, out, "published")
}

func TestAddWord_MissingImage(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "add-word", "--item", "cat", "--meaning", "m", "--tag", "x", "--image", "/does/not/exist.png")

	assert.ErrorContains(t, err, "opening image")
}

func TestAddWord_RequiresFlags(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "add-word", "--item", "cat")

	assert.ErrorContains(t, err, "meaning")
}

func TestCategories_Incorrect(t *testing.T) {
	f := newFixture(t)
	f.store.On("CategoriesWithIncorrectQuizzes", mock.Anything).Return([]domain.Category{
		{ID: "c1", Name: "Grammar", Quizzes: []domain.Quiz{{ID: "q1"}}},
	}, nil)

	out, err := f.run(t, "categories", "--incorrect")

	require.NoError(t, err)
	assert.Contains(t, out, "Grammar")
}

func TestQuizzes_HidesAnswer(t *testing.T) {
	f := newFixture(t)
	f.store.On("QuizzesByCategory", mock.Anything, "c1").Return([]domain.Quiz{{
		ID:            "q1",
		Content:       "The cat answer_placeholder on the mat.",
		CorrectAnswer: "B",
		Options:       []domain.QuizOption{{Text: "sits"}, {Text: "sat"}},
	}}, nil)

	out, err := f.run(t, "quizzes", "c1")

	require.NoError(t, err)
	assert.NotContains(t, out, "answer_placeholder")
	assert.Contains(t, out, "sits / sat")
}

func TestRoot_RejectsUnknownOutput(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "tags", "-o", "yaml")

	assert.ErrorContains(t, err, "unknown output")
}

func TestRoot_OpenFailure(t *testing.T) {
	cmd := NewRootCmd(func(context.Context, string) (*Services, func() error, error) {
		return nil, nil, errors.New("invalid config: hygraph.endpoint is required")
	})
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"categories"})

	assert.ErrorContains(t, cmd.Execute(), "hygraph.endpoint")
}

func TestServiceErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	f.store.On("ListCategories", mock.Anything).Return(nil, domain.NewUnavailableError("hygraph", "down"))

	_, err := f.run(t, "categories")

	assert.True(t, domain.IsUnavailable(err))
	assert.Equal(t, 1, f.closed)
}
