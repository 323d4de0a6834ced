package domain

import (
	"io"
	"strings"
	"time"
)

// Tag groups word items. Listings only fill ID and Item of each WordItem.
type Tag struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	WordItems []WordItem
}

// WordItem is a vocabulary entry.
type WordItem struct {
	ID          string
	Item        string
	Meaning     string
	Examples    []Example
	Tags        []Tag
	IsKnown     bool
	IsCollected bool
	Images      []Asset
	ViewTimes   []time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Draft is set when the item was created but publishing it failed.
	Draft bool
}

// LastViewed returns the most recent view time, or the zero time.
func (w *WordItem) LastViewed() time.Time {
	return latest(w.ViewTimes)
}

// Example is a usage sentence attached to a word.
type Example struct {
	ID        string
	Sentence  string
	Meaning   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssetStatus is the upload state reported by the content API.
type AssetStatus string

const (
	AssetPending   AssetStatus = "PENDING"
	AssetCompleted AssetStatus = "COMPLETED"
	AssetFailed    AssetStatus = "FAILED"
)

// Asset is an uploaded image.
type Asset struct {
	ID       string
	URL      string
	FileName string
	MimeType string
	Status   AssetStatus
}

// Upload is a file to be stored as an Asset.
type Upload struct {
	FileName string
	MimeType string
	Size     int64
	Content  io.Reader
}

// TagRef selects an existing tag by ID or names a tag to create.
type TagRef struct {
	Name     string
	Existing bool
	TagID    string
}

// ExampleInput is an example sentence to create with a word.
type ExampleInput struct {
	Sentence string
	Meaning  string
}

// CreateWordInput describes a new word item.
type CreateWordInput struct {
	Item        string
	Meaning     string
	Examples    []ExampleInput
	Tags        []TagRef
	IsKnown     bool
	IsCollected bool
	Images      []Upload
}

// Normalize trims the input and drops examples without a sentence.
func (in *CreateWordInput) Normalize() {
	in.Item = strings.TrimSpace(in.Item)
	in.Meaning = strings.TrimSpace(in.Meaning)

	examples := in.Examples[:0]
	for _, ex := range in.Examples {
		ex.Sentence = strings.TrimSpace(ex.Sentence)
		ex.Meaning = strings.TrimSpace(ex.Meaning)
		if ex.Sentence == "" {
			continue
		}
		examples = append(examples, ex)
	}
	in.Examples = examples

	for i := range in.Tags {
		in.Tags[i].Name = strings.TrimSpace(in.Tags[i].Name)
		in.Tags[i].TagID = strings.TrimSpace(in.Tags[i].TagID)
	}
}

// Validate checks the input after Normalize.
func (in *CreateWordInput) Validate() error {
	if in.Item == "" {
		return NewValidationError("item", "is required")
	}
	if in.Meaning == "" {
		return NewValidationError("meaning", "is required")
	}
	if len(in.Tags) == 0 {
		return NewValidationError("tags", "at least one tag is required")
	}
	for _, t := range in.Tags {
		if t.Name == "" {
			return NewValidationError("tags", "tag name is required")
		}
		if t.Existing && t.TagID == "" {
			return NewValidationError("tags", "existing tag "+t.Name+" has no id")
		}
	}
	for _, img := range in.Images {
		if img.FileName == "" {
			return NewValidationError("images", "file name is required")
		}
		if img.Content == nil {
			return NewValidationError("images", "file "+img.FileName+" has no content")
		}
	}

	return nil
}

// ExistingTagIDs returns the IDs of tags to connect.
func (in *CreateWordInput) ExistingTagIDs() []string {
	var ids []string
	for _, t := range in.Tags {
		if t.Existing && t.TagID != "" {
			ids = append(ids, t.TagID)
		}
	}

	return ids
}

// NewTagNames returns the names of tags to create.
func (in *CreateWordInput) NewTagNames() []string {
	var names []string
	for _, t := range in.Tags {
		if !t.Existing {
			names = append(names, t.Name)
		}
	}

	return names
}

// WordDraft is what the store needs to create a word once images are uploaded.
type WordDraft struct {
	Item           string
	Meaning        string
	Examples       []ExampleInput
	ExistingTagIDs []string
	NewTagNames    []string
	ImageIDs       []string
	IsKnown        bool
	IsCollected    bool
}

// UpdateWordInput changes the learning flags of a word. Nil fields are left alone.
type UpdateWordInput struct {
	IsKnown     *bool
	IsCollected *bool
}

// Empty reports whether the update changes nothing.
func (u UpdateWordInput) Empty() bool {
	return u.IsKnown == nil && u.IsCollected == nil
}

// WordCounts summarises the words of a tag.
type WordCounts struct {
	Total     int
	Known     int
	Collected int
}

// TagPage is one page of a tag listing.
type TagPage struct {
	Tags       []Tag
	EndCursor  string
	HasMore    bool
	TotalCount int
}

func latest(times []time.Time) time.Time {
	var last time.Time
	for _, t := range times {
		if t.After(last) {
			last = t
		}
	}

	return last
}
