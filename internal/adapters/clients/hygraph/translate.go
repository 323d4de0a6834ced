package hygraph

import (
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen/flashcards/internal/domain"
)

// viewTimeLayout matches what browsers produce with toISOString, which is
// how existing records were written.
const viewTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// External DTOs. They mirror the Hygraph schema and never leave the package.

type tagDTO struct {
	ID        string    `json:"id"`
	TagName   string    `json:"tagName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	WordItem  []wordDTO `json:"wordItem"`
}

type wordDTO struct {
	ID          string       `json:"id"`
	Item        string       `json:"item"`
	Meaning     string       `json:"meaning"`
	IsKnown     bool         `json:"isKnown"`
	IsCollected bool         `json:"isCollected"`
	ViewTime    []string     `json:"viewTime"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Tags        []tagDTO     `json:"tags"`
	Examples    []exampleDTO `json:"examples"`
	Images      []assetDTO   `json:"images"`
}

type exampleDTO struct {
	ID       string `json:"id"`
	Sentence string `json:"sentence"`
	Meaning  string `json:"meaning"`
}

type assetDTO struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
}

type categoryDTO struct {
	ID           string    `json:"id"`
	CategoryName string    `json:"categoryName"`
	Quiz         []quizDTO `json:"quiz"`
}

type quizDTO struct {
	ID            string        `json:"id"`
	QuizContent   string        `json:"quizContent"`
	CorrectAnswer string        `json:"correctAnswer"`
	IsCollected   bool          `json:"isCollected"`
	ViewTime      []string      `json:"viewTime"`
	QuizOptions   []optionDTO   `json:"quizOptions"`
	Category      []categoryDTO `json:"category"`
	QuizImages    []struct {
		URL string `json:"url"`
	} `json:"quizImages"`
}

type optionDTO struct {
	ID             string `json:"id"`
	QuizOptionText string `json:"quizOptionText"`
	OptionImage    *struct {
		URL string `json:"url"`
	} `json:"optionImage"`
}

var errMissingID = errors.New("record has no id")

// translator converts one external DTO into a domain value.
type translator[E any, D any] func(ext *E) (D, error)

// translateSlice applies translate to every item and stops at the first error.
func translateSlice[E any, D any](items []E, translate translator[E, D]) ([]D, error) {
	result := make([]D, 0, len(items))

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		result = append(result, translated)
	}

	return result, nil
}

func translateTag(ext *tagDTO) (domain.Tag, error) {
	if ext.ID == "" {
		return domain.Tag{}, errMissingID
	}

	words := make([]domain.WordItem, 0, len(ext.WordItem))
	for _, w := range ext.WordItem {
		words = append(words, domain.WordItem{ID: w.ID, Item: w.Item})
	}

	return domain.Tag{
		ID:        ext.ID,
		Name:      ext.TagName,
		CreatedAt: ext.CreatedAt,
		UpdatedAt: ext.UpdatedAt,
		WordItems: words,
	}, nil
}

func translateWord(ext *wordDTO) (domain.WordItem, error) {
	if ext.ID == "" {
		return domain.WordItem{}, errMissingID
	}

	word := domain.WordItem{
		ID:          ext.ID,
		Item:        ext.Item,
		Meaning:     ext.Meaning,
		IsKnown:     ext.IsKnown,
		IsCollected: ext.IsCollected,
		ViewTimes:   parseViewTimes(ext.ViewTime),
		CreatedAt:   ext.CreatedAt,
		UpdatedAt:   ext.UpdatedAt,
	}

	for _, t := range ext.Tags {
		word.Tags = append(word.Tags, domain.Tag{ID: t.ID, Name: t.TagName})
	}
	for _, ex := range ext.Examples {
		word.Examples = append(word.Examples, domain.Example{ID: ex.ID, Sentence: ex.Sentence, Meaning: ex.Meaning})
	}
	for i := range ext.Images {
		word.Images = append(word.Images, translateAsset(&ext.Images[i]))
	}

	return word, nil
}

func translateAsset(ext *assetDTO) domain.Asset {
	return domain.Asset{
		ID:       ext.ID,
		URL:      ext.URL,
		FileName: ext.FileName,
		MimeType: ext.MimeType,
		Status:   domain.AssetCompleted,
	}
}

func translateCategory(ext *categoryDTO) (domain.Category, error) {
	if ext.ID == "" {
		return domain.Category{}, errMissingID
	}

	quizzes, err := translateSlice(ext.Quiz, translateQuiz)
	if err != nil {
		return domain.Category{}, fmt.Errorf("category %s: %w", ext.ID, err)
	}

	return domain.Category{ID: ext.ID, Name: ext.CategoryName, Quizzes: quizzes}, nil
}

func translateQuiz(ext *quizDTO) (domain.Quiz, error) {
	if ext.ID == "" {
		return domain.Quiz{}, errMissingID
	}

	quiz := domain.Quiz{
		ID:            ext.ID,
		Content:       ext.QuizContent,
		CorrectAnswer: ext.CorrectAnswer,
		IsCollected:   ext.IsCollected,
		ViewTimes:     parseViewTimes(ext.ViewTime),
	}

	for i := range ext.QuizOptions {
		quiz.Options = append(quiz.Options, translateOption(&ext.QuizOptions[i]))
	}
	for _, c := range ext.Category {
		quiz.Categories = append(quiz.Categories, domain.Category{ID: c.ID, Name: c.CategoryName})
	}
	for _, img := range ext.QuizImages {
		quiz.ImageURLs = append(quiz.ImageURLs, img.URL)
	}

	return quiz, nil
}

func translateOption(ext *optionDTO) domain.QuizOption {
	opt := domain.QuizOption{ID: ext.ID, Text: ext.QuizOptionText}
	if ext.OptionImage != nil {
		opt.ImageURL = ext.OptionImage.URL
	}

	return opt
}

// parseViewTimes keeps the entries that parse. Hand-edited records in the
// CMS sometimes hold other formats; those stay in the CMS untouched since
// views are only ever pushed.
func parseViewTimes(raw []string) []time.Time {
	if len(raw) == 0 {
		return nil
	}

	times := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			if t, err = time.Parse(time.DateOnly, s); err != nil {
				continue
			}
		}
		times = append(times, t)
	}

	return times
}

func formatViewTime(t time.Time) string {
	return t.UTC().Format(viewTimeLayout)
}
