package hygraph

import (
	"context"
	"fmt"
	"time"

	"github.com/jsamuelsen/flashcards/internal/domain"
)

type whereUnique struct {
	ID string `json:"id"`
}

type tagRelationInput struct {
	Connect []whereUnique    `json:"connect,omitempty"`
	Create  []tagCreateInput `json:"create,omitempty"`
}

type tagCreateInput struct {
	TagName string `json:"tagName"`
}

type exampleCreateInput struct {
	Sentence string `json:"sentence"`
	Meaning  string `json:"meaning,omitempty"`
}

type exampleRelationInput struct {
	Create []exampleCreateInput `json:"create"`
}

type connectInput struct {
	Connect []whereUnique `json:"connect"`
}

type wordItemCreateInput struct {
	Item        string                `json:"item"`
	Meaning     string                `json:"meaning"`
	IsKnown     bool                  `json:"isKnown"`
	IsCollected bool                  `json:"isCollected"`
	Tags        *tagRelationInput     `json:"tags,omitempty"`
	Examples    *exampleRelationInput `json:"examples,omitempty"`
	Images      *connectInput         `json:"images,omitempty"`
}

type wordItemUpdateInput struct {
	IsKnown     *bool `json:"isKnown,omitempty"`
	IsCollected *bool `json:"isCollected,omitempty"`
}

func connectAll(ids []string) []whereUnique {
	out := make([]whereUnique, 0, len(ids))
	for _, id := range ids {
		out = append(out, whereUnique{ID: id})
	}

	return out
}

// ListTags implements ports.TagStore.
func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return c.walkTags(ctx, call{name: "list tags", entity: "tag"}, tagsQuery)
}

// ListCollectedTags implements ports.TagStore.
func (c *Client) ListCollectedTags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := c.walkTags(ctx, call{name: "list collected tags", entity: "tag"}, collectedTagsQuery)
	if err != nil {
		return nil, err
	}

	kept := tags[:0]
	for _, t := range tags {
		if len(t.WordItems) > 0 {
			kept = append(kept, t)
		}
	}

	return kept, nil
}

// ListTagsPage implements ports.TagStore.
func (c *Client) ListTagsPage(ctx context.Context, first int, after string) (*domain.TagPage, error) {
	op := call{name: "list tags page", entity: "tag"}
	if first <= 0 {
		first = c.pageSize
	}

	conn, err := c.tagsPage(ctx, op, tagsQuery, first, after)
	if err != nil {
		return nil, err
	}

	nodes := conn.nodes()
	tags, err := translateSlice(nodes, translateTag)
	if err != nil {
		return nil, domain.NewUnavailableError(serviceName, err.Error())
	}

	return &domain.TagPage{
		Tags:       tags,
		EndCursor:  conn.PageInfo.EndCursor,
		HasMore:    conn.PageInfo.HasNextPage,
		TotalCount: conn.Aggregate.Count,
	}, nil
}

func (c *Client) walkTags(ctx context.Context, op call, document string) ([]domain.Tag, error) {
	nodes, err := walk(ctx, c, op, func(ctx context.Context, first int, after string) (*connection[tagDTO], error) {
		return c.tagsPage(ctx, op, document, first, after)
	})
	if err != nil {
		return nil, err
	}

	tags, err := translateSlice(nodes, translateTag)
	if err != nil {
		return nil, domain.NewUnavailableError(serviceName, err.Error())
	}

	return tags, nil
}

func (c *Client) tagsPage(ctx context.Context, op call, document string, first int, after string) (*connection[tagDTO], error) {
	var out struct {
		TagsConnection connection[tagDTO] `json:"tagsConnection"`
	}
	if err := c.query(ctx, op, document, pageVars(first, after, nil), &out); err != nil {
		return nil, err
	}

	return &out.TagsConnection, nil
}

// WordsByTag implements ports.WordStore.
func (c *Client) WordsByTag(ctx context.Context, tagID string) ([]domain.WordItem, error) {
	return c.wordsByTag(ctx, call{name: "list words", entity: "tag", id: tagID}, wordsByTagQuery)
}

// CollectedWordsByTag implements ports.WordStore.
func (c *Client) CollectedWordsByTag(ctx context.Context, tagID string) ([]domain.WordItem, error) {
	return c.wordsByTag(ctx, call{name: "list collected words", entity: "tag", id: tagID}, collectedWordsByTagQuery)
}

func (c *Client) wordsByTag(ctx context.Context, op call, document string) ([]domain.WordItem, error) {
	nodes, err := walk(ctx, c, op, func(ctx context.Context, first int, after string) (*connection[wordDTO], error) {
		var out struct {
			Tag                 *whereUnique        `json:"tag"`
			WordItemsConnection connection[wordDTO] `json:"wordItemsConnection"`
		}
		vars := pageVars(first, after, map[string]any{"tagId": op.id})
		if err := c.query(ctx, op, document, vars, &out); err != nil {
			return nil, err
		}
		if out.Tag == nil {
			return nil, notFound(op)
		}

		return &out.WordItemsConnection, nil
	})
	if err != nil {
		return nil, err
	}

	words, err := translateSlice(nodes, translateWord)
	if err != nil {
		return nil, domain.NewUnavailableError(serviceName, err.Error())
	}

	return words, nil
}

// GetWordItem implements ports.WordStore.
func (c *Client) GetWordItem(ctx context.Context, id string) (*domain.WordItem, error) {
	op := call{name: "get word", entity: "word item", id: id}

	var out struct {
		WordItem *wordDTO `json:"wordItem"`
	}
	if err := c.query(ctx, op, wordItemQuery, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}

	return c.wordResult(op, out.WordItem)
}

// CreateWordItem implements ports.WordStore. The word is left unpublished.
func (c *Client) CreateWordItem(ctx context.Context, draft domain.WordDraft) (*domain.WordItem, error) {
	op := call{name: "create word", entity: "word item"}

	input := wordItemCreateInput{
		Item:        draft.Item,
		Meaning:     draft.Meaning,
		IsKnown:     draft.IsKnown,
		IsCollected: draft.IsCollected,
	}
	if len(draft.ExistingTagIDs) > 0 || len(draft.NewTagNames) > 0 {
		rel := &tagRelationInput{Connect: connectAll(draft.ExistingTagIDs)}
		for _, name := range draft.NewTagNames {
			rel.Create = append(rel.Create, tagCreateInput{TagName: name})
		}
		input.Tags = rel
	}
	if len(draft.Examples) > 0 {
		rel := &exampleRelationInput{}
		for _, ex := range draft.Examples {
			rel.Create = append(rel.Create, exampleCreateInput{Sentence: ex.Sentence, Meaning: ex.Meaning})
		}
		input.Examples = rel
	}
	if len(draft.ImageIDs) > 0 {
		input.Images = &connectInput{Connect: connectAll(draft.ImageIDs)}
	}

	var out struct {
		CreateWordItem *wordDTO `json:"createWordItem"`
	}
	if err := c.mutate(ctx, op, createWordItemMutation, map[string]any{"data": input}, &out); err != nil {
		return nil, err
	}
	if out.CreateWordItem == nil {
		return nil, domain.NewUnavailableError(serviceName, "word item creation returned no data")
	}

	word, err := c.wordResult(op, out.CreateWordItem)
	if err != nil {
		return nil, err
	}
	word.Draft = true

	return word, nil
}

// PublishWordItem implements ports.WordStore.
func (c *Client) PublishWordItem(ctx context.Context, id string) (*domain.WordItem, error) {
	op := call{name: "publish word", entity: "word item", id: id}

	var out struct {
		PublishWordItem *wordDTO `json:"publishWordItem"`
	}
	if err := c.mutate(ctx, op, publishWordItemMutation, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}

	return c.wordResult(op, out.PublishWordItem)
}

// DeleteWordItem implements ports.WordStore.
func (c *Client) DeleteWordItem(ctx context.Context, id string) error {
	return c.mutateByID(ctx, call{name: "delete word", entity: "word item", id: id}, deleteWordItemMutation, "deleteWordItem")
}

// UpdateWordItem implements ports.WordStore.
func (c *Client) UpdateWordItem(ctx context.Context, id string, in domain.UpdateWordInput) (*domain.WordItem, error) {
	op := call{name: "update word", entity: "word item", id: id}
	if in.Empty() {
		return nil, domain.NewValidationError("", "nothing to update")
	}

	var out struct {
		UpdateWordItem *wordDTO `json:"updateWordItem"`
	}
	vars := map[string]any{
		"id":   id,
		"data": wordItemUpdateInput{IsKnown: in.IsKnown, IsCollected: in.IsCollected},
	}
	if err := c.mutate(ctx, op, updateWordItemMutation, vars, &out); err != nil {
		return nil, err
	}

	return c.wordResult(op, out.UpdateWordItem)
}

// AppendWordView implements ports.WordStore.
func (c *Client) AppendWordView(ctx context.Context, id string, at time.Time) error {
	op := call{name: "record word view", entity: "word item", id: id}

	var out struct {
		UpdateWordItem *whereUnique `json:"updateWordItem"`
	}
	vars := map[string]any{"id": id, "viewTime": formatViewTime(at)}
	if err := c.mutate(ctx, op, appendWordViewMutation, vars, &out); err != nil {
		return err
	}
	if out.UpdateWordItem == nil {
		return notFound(op)
	}

	return nil
}

// CountWords implements ports.WordStore.
func (c *Client) CountWords(ctx context.Context, tagID string) (*domain.WordCounts, error) {
	op := call{name: "count words", entity: "tag", id: tagID}

	type counted struct {
		Aggregate aggregate `json:"aggregate"`
	}
	var out struct {
		Tag       *whereUnique `json:"tag"`
		Total     counted      `json:"total"`
		Known     counted      `json:"known"`
		Collected counted      `json:"collected"`
	}
	if err := c.query(ctx, op, countWordsQuery, map[string]any{"tagId": tagID}, &out); err != nil {
		return nil, err
	}
	if out.Tag == nil {
		return nil, notFound(op)
	}

	return &domain.WordCounts{
		Total:     out.Total.Aggregate.Count,
		Known:     out.Known.Aggregate.Count,
		Collected: out.Collected.Aggregate.Count,
	}, nil
}

func (c *Client) wordResult(op call, ext *wordDTO) (*domain.WordItem, error) {
	if ext == nil {
		return nil, notFound(op)
	}

	word, err := translateWord(ext)
	if err != nil {
		return nil, domain.NewUnavailableError(serviceName, fmt.Sprintf("%s: %v", op.name, err))
	}

	return &word, nil
}
