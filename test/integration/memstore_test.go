//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/flashcards/internal/domain"
	"github.com/jsamuelsen/flashcards/internal/ports"
)

var _ ports.ContentStore = (*memStore)(nil)

// memStore keeps content in maps. Only published records are listed.
type memStore struct {
	mu sync.Mutex

	seq        int
	tags       []domain.Tag
	words      map[string]*domain.WordItem
	wordTags   map[string][]string
	published  map[string]bool
	assets     map[string]*domain.Asset
	categories []domain.Category
	quizzes    map[string]*domain.Quiz
	quizCats   map[string][]string
	options    map[string]*domain.QuizOption
}

func newMemStore() *memStore {
	return &memStore{
		words:     make(map[string]*domain.WordItem),
		wordTags:  make(map[string][]string),
		published: make(map[string]bool),
		assets:    make(map[string]*domain.Asset),
		quizzes:   make(map[string]*domain.Quiz),
		quizCats:  make(map[string][]string),
		options:   make(map[string]*domain.QuizOption),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s%d", prefix, m.seq)
}

func (m *memStore) tagIndex(name string) int {
	for i, t := range m.tags {
		if t.Name == name || t.ID == name {
			return i
		}
	}

	return -1
}

// addTag creates a tag unless one with that name exists and returns its id.
func (m *memStore) addTag(name string) string {
	if i := m.tagIndex(name); i >= 0 {
		return m.tags[i].ID
	}

	id := m.nextID("tag-")
	m.tags = append(m.tags, domain.Tag{ID: id, Name: name})

	return id
}

// addTagLocked returns the id of the named tag, creating it if needed.
func (m *memStore) addTagLocked(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.addTag(name)
}

// categoryID returns the id of the named category or "".
func (m *memStore) categoryID(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.categories {
		if c.Name == name {
			return c.ID
		}
	}

	return ""
}

// seedWord adds a published word to the named tag.
func (m *memStore) seedWord(tag, item, meaning string, collected bool) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	tagID := m.addTag(tag)
	id := m.nextID("word-")
	m.words[id] = &domain.WordItem{ID: id, Item: item, Meaning: meaning, IsCollected: collected}
	m.wordTags[id] = []string{tagID}
	m.published[id] = true

	return id
}

// seedQuiz adds a published quiz to the named category.
func (m *memStore) seedQuiz(category, content, answer string, options []string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	catID := ""
	for _, c := range m.categories {
		if c.Name == category {
			catID = c.ID
		}
	}
	if catID == "" {
		catID = m.nextID("cat-")
		m.categories = append(m.categories, domain.Category{ID: catID, Name: category})
	}

	id := m.nextID("quiz-")
	q := &domain.Quiz{ID: id, Content: content, CorrectAnswer: answer}
	for _, text := range options {
		q.Options = append(q.Options, domain.QuizOption{ID: m.nextID("opt-"), Text: text})
	}
	m.quizzes[id] = q
	m.quizCats[id] = []string{catID}
	m.published[id] = true

	return id
}

func (m *memStore) wordCopy(id string) domain.WordItem {
	w := *m.words[id]
	w.ViewTimes = slices.Clone(w.ViewTimes)
	w.Tags = nil
	for _, tagID := range m.wordTags[id] {
		if i := m.tagIndex(tagID); i >= 0 {
			w.Tags = append(w.Tags, domain.Tag{ID: tagID, Name: m.tags[i].Name})
		}
	}

	return w
}

func (m *memStore) wordsOf(tagID string, onlyCollected bool) []domain.WordItem {
	var out []domain.WordItem
	for id := range m.words {
		if !m.published[id] || !slices.Contains(m.wordTags[id], tagID) {
			continue
		}
		if onlyCollected && !m.words[id].IsCollected {
			continue
		}
		out = append(out, m.wordCopy(id))
	}
	slices.SortFunc(out, func(a, b domain.WordItem) int { return compareIDs(a.ID, b.ID) })

	return out
}

func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}

	return 0
}

func (m *memStore) listTags(onlyCollected bool) []domain.Tag {
	out := make([]domain.Tag, 0, len(m.tags))
	for _, t := range m.tags {
		t.WordItems = m.wordsOf(t.ID, onlyCollected)
		if onlyCollected && len(t.WordItems) == 0 {
			continue
		}
		out = append(out, t)
	}

	return out
}

func (m *memStore) ListTags(context.Context) ([]domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listTags(false), nil
}

func (m *memStore) ListTagsPage(_ context.Context, first int, after string) (*domain.TagPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.listTags(false)
	start := 0
	if after != "" {
		start = slices.IndexFunc(all, func(t domain.Tag) bool { return t.ID == after }) + 1
	}
	end := min(start+first, len(all))

	page := &domain.TagPage{Tags: all[start:end], HasMore: end < len(all), TotalCount: len(all)}
	if end > start {
		page.EndCursor = all[end-1].ID
	}

	return page, nil
}

func (m *memStore) ListCollectedTags(context.Context) ([]domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listTags(true), nil
}

func (m *memStore) requireTag(tagID string) error {
	if m.tagIndex(tagID) < 0 {
		return domain.NewNotFoundError("tag", tagID)
	}

	return nil
}

func (m *memStore) WordsByTag(_ context.Context, tagID string) ([]domain.WordItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireTag(tagID); err != nil {
		return nil, err
	}

	return m.wordsOf(tagID, false), nil
}

func (m *memStore) CollectedWordsByTag(_ context.Context, tagID string) ([]domain.WordItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireTag(tagID); err != nil {
		return nil, err
	}

	return m.wordsOf(tagID, true), nil
}

func (m *memStore) GetWordItem(_ context.Context, id string) (*domain.WordItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.words[id]; !ok {
		return nil, domain.NewNotFoundError("word item", id)
	}

	w := m.wordCopy(id)

	return &w, nil
}

func (m *memStore) CreateWordItem(_ context.Context, d domain.WordDraft) (*domain.WordItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID("word-")
	w := &domain.WordItem{ID: id, Item: d.Item, Meaning: d.Meaning, IsKnown: d.IsKnown, IsCollected: d.IsCollected}
	for _, ex := range d.Examples {
		w.Examples = append(w.Examples, domain.Example{Sentence: ex.Sentence, Meaning: ex.Meaning})
	}
	for _, assetID := range d.ImageIDs {
		if a, ok := m.assets[assetID]; ok {
			w.Images = append(w.Images, *a)
		}
	}

	tagIDs := slices.Clone(d.ExistingTagIDs)
	for _, name := range d.NewTagNames {
		tagIDs = append(tagIDs, m.addTag(name))
	}

	m.words[id] = w
	m.wordTags[id] = tagIDs

	created := m.wordCopy(id)

	return &created, nil
}

func (m *memStore) PublishWordItem(_ context.Context, id string) (*domain.WordItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.words[id]; !ok {
		return nil, domain.NewNotFoundError("word item", id)
	}
	m.published[id] = true

	w := m.wordCopy(id)

	return &w, nil
}

func (m *memStore) DeleteWordItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.words, id)
	delete(m.wordTags, id)

	return nil
}

func (m *memStore) UpdateWordItem(_ context.Context, id string, in domain.UpdateWordInput) (*domain.WordItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.words[id]
	if !ok {
		return nil, domain.NewNotFoundError("word item", id)
	}
	if in.IsKnown != nil {
		w.IsKnown = *in.IsKnown
	}
	if in.IsCollected != nil {
		w.IsCollected = *in.IsCollected
	}

	updated := m.wordCopy(id)

	return &updated, nil
}

func (m *memStore) AppendWordView(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.words[id]
	if !ok {
		return domain.NewNotFoundError("word item", id)
	}
	w.ViewTimes = append(slices.Clone(w.ViewTimes), at)

	return nil
}

func (m *memStore) CountWords(_ context.Context, tagID string) (*domain.WordCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireTag(tagID); err != nil {
		return nil, err
	}

	counts := &domain.WordCounts{}
	for _, w := range m.wordsOf(tagID, false) {
		counts.Total++
		if w.IsKnown {
			counts.Known++
		}
		if w.IsCollected {
			counts.Collected++
		}
	}

	return counts, nil
}

func (m *memStore) CreateAndUploadAsset(_ context.Context, up domain.Upload) (*domain.Asset, error) {
	if _, err := io.Copy(io.Discard, up.Content); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", up.FileName, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID("asset-")
	a := &domain.Asset{
		ID:       id,
		URL:      "https://media.example.test/" + up.FileName,
		FileName: up.FileName,
		MimeType: up.MimeType,
		Status:   domain.AssetCompleted,
	}
	m.assets[id] = a

	return a, nil
}

func (m *memStore) DeleteAsset(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.assets, id)

	return nil
}

func (m *memStore) quizzesOf(catID string, onlyCollected bool) []domain.Quiz {
	var out []domain.Quiz
	for id, q := range m.quizzes {
		if !m.published[id] || !slices.Contains(m.quizCats[id], catID) {
			continue
		}
		if onlyCollected && !q.IsCollected {
			continue
		}
		c := *q
		c.ViewTimes = slices.Clone(q.ViewTimes)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Quiz) int { return compareIDs(a.ID, b.ID) })

	return out
}

func (m *memStore) ListCategories(context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.categories), nil
}

func (m *memStore) CategoriesWithIncorrectQuizzes(context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Category
	for _, c := range m.categories {
		c.Quizzes = m.quizzesOf(c.ID, true)
		if len(c.Quizzes) > 0 {
			out = append(out, c)
		}
	}

	return out, nil
}

func (m *memStore) requireCategory(id string) error {
	for _, c := range m.categories {
		if c.ID == id {
			return nil
		}
	}

	return domain.NewNotFoundError("category", id)
}

func (m *memStore) QuizzesByCategory(_ context.Context, categoryID string) ([]domain.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireCategory(categoryID); err != nil {
		return nil, err
	}

	return m.quizzesOf(categoryID, false), nil
}

func (m *memStore) CollectedQuizzesByCategory(_ context.Context, categoryID string) ([]domain.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireCategory(categoryID); err != nil {
		return nil, err
	}

	return m.quizzesOf(categoryID, true), nil
}

func (m *memStore) GetQuiz(_ context.Context, id string) (*domain.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.quizzes[id]
	if !ok {
		return nil, domain.NewNotFoundError("quiz", id)
	}
	c := *q

	return &c, nil
}

func (m *memStore) CreateQuizOption(_ context.Context, in domain.QuizOptionInput) (*domain.QuizOption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := &domain.QuizOption{ID: m.nextID("opt-"), Text: in.Text}
	m.options[o.ID] = o

	return o, nil
}

func (m *memStore) PublishQuizOption(context.Context, string) error { return nil }

func (m *memStore) DeleteQuizOption(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.options, id)

	return nil
}

func (m *memStore) CreateQuiz(_ context.Context, d domain.QuizDraft) (*domain.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID("quiz-")
	q := &domain.Quiz{ID: id, Content: d.Content, CorrectAnswer: d.CorrectAnswer, IsCollected: d.IsCollected}
	for _, optID := range d.OptionIDs {
		if o, ok := m.options[optID]; ok {
			q.Options = append(q.Options, *o)
		}
	}
	m.quizzes[id] = q
	m.quizCats[id] = slices.Clone(d.CategoryIDs)

	c := *q

	return &c, nil
}

func (m *memStore) PublishQuiz(_ context.Context, id string) (*domain.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.quizzes[id]
	if !ok {
		return nil, domain.NewNotFoundError("quiz", id)
	}
	m.published[id] = true
	c := *q

	return &c, nil
}

func (m *memStore) DeleteQuiz(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.quizzes, id)

	return nil
}

func (m *memStore) SetQuizCollected(_ context.Context, id string, collected bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.quizzes[id]
	if !ok {
		return domain.NewNotFoundError("quiz", id)
	}
	q.IsCollected = collected

	return nil
}

func (m *memStore) AppendQuizView(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.quizzes[id]
	if !ok {
		return domain.NewNotFoundError("quiz", id)
	}
	q.ViewTimes = append(slices.Clone(q.ViewTimes), at)

	return nil
}
