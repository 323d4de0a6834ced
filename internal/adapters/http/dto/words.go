package dto

import (
	"time"

	"github.com/jsamuelsen/flashcards/internal/app"
	"github.com/jsamuelsen/flashcards/internal/domain"
)

// TagResponse is a tag with the items of its words.
type TagResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	WordCount int            `json:"wordCount"`
	Words     []WordListItem `json:"words"`
	CreatedAt *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

// WordListItem is the short form of a word used in tag listings.
type WordListItem struct {
	ID   string `json:"id"`
	Item string `json:"item"`
}

// TagSummaryResponse reports learning progress for a tag.
type TagSummaryResponse struct {
	TagID        string `json:"tagId"`
	Total        int    `json:"total"`
	Known        int    `json:"known"`
	Collected    int    `json:"collected"`
	DueForReview int    `json:"dueForReview"`
}

// WordResponse is a full word item.
type WordResponse struct {
	ID          string            `json:"id"`
	Item        string            `json:"item"`
	Meaning     string            `json:"meaning"`
	Examples    []ExampleResponse `json:"examples"`
	Tags        []TagRefResponse  `json:"tags"`
	IsKnown     bool              `json:"isKnown"`
	IsCollected bool              `json:"isCollected"`
	Images      []ImageResponse   `json:"images"`
	ViewTimes   []time.Time       `json:"viewTimes"`
	LastViewed  *time.Time        `json:"lastViewed,omitempty"`
	NextReview  *time.Time        `json:"nextReview,omitempty"`
	Draft       bool              `json:"draft,omitempty"`
}

// ExampleResponse is an example sentence.
type ExampleResponse struct {
	Sentence string `json:"sentence"`
	Meaning  string `json:"meaning"`
}

// TagRefResponse names a tag a word belongs to.
type TagRefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ImageResponse is an uploaded image.
type ImageResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"fileName,omitempty"`
}

// NewTagResponses converts tags for listing.
func NewTagResponses(tags []domain.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		words := make([]WordListItem, 0, len(t.WordItems))
		for _, w := range t.WordItems {
			words = append(words, WordListItem{ID: w.ID, Item: w.Item})
		}

		out = append(out, TagResponse{
			ID:        t.ID,
			Name:      t.Name,
			WordCount: len(words),
			Words:     words,
			CreatedAt: timePtr(t.CreatedAt),
			UpdatedAt: timePtr(t.UpdatedAt),
		})
	}

	return out
}

// NewTagSummaryResponse converts a summary.
func NewTagSummaryResponse(s *app.TagSummary) TagSummaryResponse {
	return TagSummaryResponse{
		TagID:        s.TagID,
		Total:        s.Counts.Total,
		Known:        s.Counts.Known,
		Collected:    s.Counts.Collected,
		DueForReview: s.DueForReview,
	}
}

// NewWordResponse converts a word item.
func NewWordResponse(w *domain.WordItem) WordResponse {
	resp := WordResponse{
		ID:          w.ID,
		Item:        w.Item,
		Meaning:     w.Meaning,
		Examples:    make([]ExampleResponse, 0, len(w.Examples)),
		Tags:        make([]TagRefResponse, 0, len(w.Tags)),
		IsKnown:     w.IsKnown,
		IsCollected: w.IsCollected,
		Images:      make([]ImageResponse, 0, len(w.Images)),
		ViewTimes:   w.ViewTimes,
		LastViewed:  timePtr(w.LastViewed()),
		Draft:       w.Draft,
	}
	if resp.ViewTimes == nil {
		resp.ViewTimes = []time.Time{}
	}
	if len(w.ViewTimes) > 0 {
		resp.NextReview = timePtr(domain.ReviewDue(w.ViewTimes))
	}

	for _, ex := range w.Examples {
		resp.Examples = append(resp.Examples, ExampleResponse{Sentence: ex.Sentence, Meaning: ex.Meaning})
	}
	for _, t := range w.Tags {
		resp.Tags = append(resp.Tags, TagRefResponse{ID: t.ID, Name: t.Name})
	}
	for _, img := range w.Images {
		resp.Images = append(resp.Images, ImageResponse{ID: img.ID, URL: img.URL, FileName: img.FileName})
	}

	return resp
}

// NewWordResponses converts a word list.
func NewWordResponses(words []domain.WordItem) []WordResponse {
	out := make([]WordResponse, 0, len(words))
	for i := range words {
		out = append(out, NewWordResponse(&words[i]))
	}

	return out
}

// CreateWordRequest is the body of POST /words. In multipart form it is
// sent as the "payload" field next to the image files.
type CreateWordRequest struct {
	Item        string           `json:"item" validate:"required,notempty"`
	Meaning     string           `json:"meaning" validate:"required,notempty"`
	Examples    []ExampleRequest `json:"examples" validate:"dive"`
	Tags        []TagRefRequest  `json:"tags" validate:"required,min=1,dive"`
	IsKnown     bool             `json:"isKnown"`
	IsCollected bool             `json:"isCollected"`
}

// ExampleRequest is an example sentence to create.
type ExampleRequest struct {
	Sentence string `json:"sentence"`
	Meaning  string `json:"meaning"`
}

// TagRefRequest selects an existing tag when ID is set, or names a new one.
type TagRefRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required,notempty"`
}

// ToDomain builds the create input with the uploaded images.
func (r *CreateWordRequest) ToDomain(images []domain.Upload) domain.CreateWordInput {
	in := domain.CreateWordInput{
		Item:        r.Item,
		Meaning:     r.Meaning,
		IsKnown:     r.IsKnown,
		IsCollected: r.IsCollected,
		Images:      images,
	}
	for _, ex := range r.Examples {
		in.Examples = append(in.Examples, domain.ExampleInput{Sentence: ex.Sentence, Meaning: ex.Meaning})
	}
	for _, t := range r.Tags {
		in.Tags = append(in.Tags, domain.TagRef{Name: t.Name, Existing: t.ID != "", TagID: t.ID})
	}

	return in
}

// UpdateWordRequest is the body of PATCH /words/:id.
type UpdateWordRequest struct {
	IsKnown     *bool `json:"isKnown"`
	IsCollected *bool `json:"isCollected"`
}

// Validate requires at least one flag.
func (r *UpdateWordRequest) Validate() error {
	if r.IsKnown == nil && r.IsCollected == nil {
		return domain.NewValidationError("isKnown", "isKnown or isCollected is required")
	}

	return nil
}

// ToDomain converts the request.
func (r *UpdateWordRequest) ToDomain() domain.UpdateWordInput {
	return domain.UpdateWordInput{IsKnown: r.IsKnown, IsCollected: r.IsCollected}
}

// ViewRequest is the optional body of a view recording. A missing At means now.
type ViewRequest struct {
	At *time.Time `json:"at"`
}

// Time returns the requested view time or the zero time.
func (r *ViewRequest) Time() time.Time {
	if r.At == nil {
		return time.Time{}
	}

	return *r.At
}

// ListQuery carries the listing filters of GET collections.
type ListQuery struct {
	Collected bool `form:"collected"`
	Incorrect bool `form:"incorrect"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
