package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWordInput_Normalize_DropsBlankExamples(t *testing.T) {
	in := CreateWordInput{
		Item:    " apple ",
		Meaning: " a fruit ",
		Examples: []ExampleInput{
			{Sentence: "An apple a day.", Meaning: " "},
			{Sentence: "   ", Meaning: "ignored"},
			{Sentence: "Apples are red.", Meaning: "colour"},
		},
		Tags: []TagRef{{Name: " food "}},
	}

	in.Normalize()

	assert.Equal(t, "apple", in.Item)
	assert.Equal(t, "a fruit", in.Meaning)
	require.Len(t, in.Examples, 2)
	assert.Empty(t, in.Examples[0].Meaning)
	assert.Equal(t, "colour", in.Examples[1].Meaning)
	assert.Equal(t, "food", in.Tags[0].Name)
}

func TestCreateWordInput_Validate(t *testing.T) {
	tests := []struct {
		name      string
		in        CreateWordInput
		wantField string
	}{
		{
			name: "valid with new and existing tags",
			in: CreateWordInput{
				Item: "apple", Meaning: "fruit",
				Tags: []TagRef{{Name: "food"}, {Name: "fruit", Existing: true, TagID: "t1"}},
			},
		},
		{
			name:      "missing item",
			in:        CreateWordInput{Meaning: "fruit", Tags: []TagRef{{Name: "food"}}},
			wantField: "item",
		},
		{
			name:      "missing meaning",
			in:        CreateWordInput{Item: "apple", Tags: []TagRef{{Name: "food"}}},
			wantField: "meaning",
		},
		{
			name:      "no tags",
			in:        CreateWordInput{Item: "apple", Meaning: "fruit"},
			wantField: "tags",
		},
		{
			name:      "existing tag without id",
			in:        CreateWordInput{Item: "apple", Meaning: "fruit", Tags: []TagRef{{Name: "food", Existing: true}}},
			wantField: "tags",
		},
		{
			name: "image without content",
			in: CreateWordInput{
				Item: "apple", Meaning: "fruit", Tags: []TagRef{{Name: "food"}},
				Images: []Upload{{FileName: "apple.png"}},
			},
			wantField: "images",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestCreateWordInput_TagSplit(t *testing.T) {
	in := CreateWordInput{
		Tags: []TagRef{
			{Name: "food", Existing: true, TagID: "t1"},
			{Name: "new-one"},
			{Name: "fruit", Existing: true, TagID: "t2"},
		},
		Images: []Upload{{FileName: "a.png", Content: strings.NewReader("x")}},
	}

	assert.Equal(t, []string{"t1", "t2"}, in.ExistingTagIDs())
	assert.Equal(t, []string{"new-one"}, in.NewTagNames())
}

func TestWordItem_LastViewed(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)

	w := WordItem{ViewTimes: []time.Time{t2, t1}}
	assert.Equal(t, t2, w.LastViewed())

	assert.True(t, (&WordItem{}).LastViewed().IsZero())
}

func TestUpdateWordInput_Empty(t *testing.T) {
	known := true

	assert.True(t, UpdateWordInput{}.Empty())
	assert.False(t, UpdateWordInput{IsKnown: &known}.Empty())
}
