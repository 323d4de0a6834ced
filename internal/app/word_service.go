package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jsamuelsen/flashcards/internal/domain"
	"github.com/jsamuelsen/flashcards/internal/platform/logging"
	"github.com/jsamuelsen/flashcards/internal/ports"
)

// MaxTagPageSize is the largest page ListTagsPage serves.
const MaxTagPageSize = 100

// TagSummary reports learning progress for one tag.
type TagSummary struct {
	TagID  string
	Counts domain.WordCounts

	// DueForReview counts collected words whose next review is due now.
	DueForReview int
}

// WordService manages tags and word items.
type WordService struct {
	tags        ports.TagStore
	words       ports.WordStore
	assets      ports.AssetStore
	exec        *Executor
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
}

// NewWordService creates a WordService over the given stores.
func NewWordService(tags ports.TagStore, words ports.WordStore, assets ports.AssetStore, cfg *ServiceConfig) *WordService {
	c := cfg.resolve()

	return &WordService{
		tags:        tags,
		words:       words,
		assets:      assets,
		exec:        NewExecutor(c.Logger),
		logger:      c.Logger,
		concurrency: c.Concurrency,
		now:         c.Now,
	}
}

// ListTags returns every tag with the IDs and items of its words.
func (s *WordService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.ListTags(ctx)
}

// ListTagsPage returns one page of tags starting after cursor.
func (s *WordService) ListTagsPage(ctx context.Context, limit int, cursor string) (*domain.TagPage, error) {
	if limit < 1 || limit > MaxTagPageSize {
		return nil, domain.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", MaxTagPageSize))
	}

	return s.tags.ListTagsPage(ctx, limit, cursor)
}

// ListCollectedTags returns tags that have at least one collected word.
func (s *WordService) ListCollectedTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.ListCollectedTags(ctx)
}

// TagSummary gathers the word counts and due reviews of a tag concurrently.
func (s *WordService) TagSummary(ctx context.Context, tagID string) (*TagSummary, error) {
	if err := requireID("tagId", tagID); err != nil {
		return nil, err
	}

	counts, collected, err := Parallel2(ctx,
		func(ctx context.Context) (*domain.WordCounts, error) { return s.words.CountWords(ctx, tagID) },
		func(ctx context.Context) ([]domain.WordItem, error) { return s.words.CollectedWordsByTag(ctx, tagID) },
	)
	if err != nil {
		return nil, err
	}

	now := s.now()
	due := 0
	for _, w := range collected {
		if domain.IsReviewDue(w.ViewTimes, now) {
			due++
		}
	}

	return &TagSummary{TagID: tagID, Counts: *counts, DueForReview: due}, nil
}

// ListWords returns the words of a tag, or only its collected words.
func (s *WordService) ListWords(ctx context.Context, tagID string, collectedOnly bool) ([]domain.WordItem, error) {
	if err := requireID("tagId", tagID); err != nil {
		return nil, err
	}

	if collectedOnly {
		return s.words.CollectedWordsByTag(ctx, tagID)
	}

	return s.words.WordsByTag(ctx, tagID)
}

// GetWord returns one word item.
func (s *WordService) GetWord(ctx context.Context, id string) (*domain.WordItem, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}

	return s.words.GetWordItem(ctx, id)
}

// CreateWord uploads the images, creates the word as a draft and publishes
// it. Images uploaded before a failure are deleted again. When only the
// publish fails the draft is returned with Draft set.
func (s *WordService) CreateWord(ctx context.Context, in domain.CreateWordInput) (*domain.WordItem, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var (
		assets []*domain.Asset
		word   *domain.WordItem
	)

	plan := NewPlan(s.logger)
	err := plan.Add(
		NewAction("upload images",
			func(ctx context.Context) error {
				var err error
				assets, err = s.uploadImages(ctx, in.Images)

				return err
			},
			func(ctx context.Context) error { return s.deleteAssets(ctx, assets) },
		),
		NewAction("create word item",
			func(ctx context.Context) error {
				var err error
				word, err = s.words.CreateWordItem(ctx, domain.WordDraft{
					Item:           in.Item,
					Meaning:        in.Meaning,
					Examples:       in.Examples,
					ExistingTagIDs: in.ExistingTagIDs(),
					NewTagNames:    in.NewTagNames(),
					ImageIDs:       assetIDs(assets),
					IsKnown:        in.IsKnown,
					IsCollected:    in.IsCollected,
				})

				return err
			},
			nil,
		),
	)
	if err != nil {
		return nil, err
	}

	if err := plan.Commit(ctx); err != nil {
		return nil, err
	}

	published, err := s.words.PublishWordItem(ctx, word.ID)
	if err != nil {
		logging.FromContextOr(ctx, s.logger).WarnContext(ctx, "word item left as draft",
			slog.String("word_id", word.ID),
			slog.Any("error", err),
		)

		word.Draft = true

		return word, nil
	}

	return published, nil
}

// uploadImages uploads every image concurrently. On failure it returns the
// assets that did upload along with the first error.
func (s *WordService) uploadImages(ctx context.Context, images []domain.Upload) ([]*domain.Asset, error) {
	if len(images) == 0 {
		return nil, nil
	}

	fns := make([]func(context.Context) (*domain.Asset, error), len(images))
	for i, img := range images {
		fns[i] = func(ctx context.Context) (*domain.Asset, error) {
			return s.assets.CreateAndUploadAsset(ctx, img)
		}
	}

	results := ParallelPartial(ctx, s.concurrency, fns...)

	uploaded := make([]*domain.Asset, 0, len(results))
	for _, r := range results {
		if r.Err == nil && r.Value != nil {
			uploaded = append(uploaded, r.Value)
		}
	}

	return uploaded, firstError(results)
}

// deleteAssets removes uploaded assets newest first.
func (s *WordService) deleteAssets(ctx context.Context, assets []*domain.Asset) error {
	var errs []error
	for _, a := range slices.Backward(assets) {
		if err := s.assets.DeleteAsset(ctx, a.ID); err != nil {
			errs = append(errs, fmt.Errorf("asset %s: %w", a.ID, err))
		}
	}

	return errors.Join(errs...)
}

func assetIDs(assets []*domain.Asset) []string {
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}

	return ids
}

type updateWordRequest struct {
	id     string
	update domain.UpdateWordInput
}

// UpdateWord changes the known and collected flags of a word.
func (s *WordService) UpdateWord(ctx context.Context, id string, update domain.UpdateWordInput) (*domain.WordItem, error) {
	return Execute(ctx, s.exec, Operation[updateWordRequest, *domain.WordItem, *domain.WordItem, *domain.WordItem]{
		Name: "update word",
		Validate: func(_ context.Context, req updateWordRequest) error {
			if err := requireID("id", req.id); err != nil {
				return err
			}
			if req.update.Empty() {
				return domain.NewValidationError("isKnown", "isKnown or isCollected is required")
			}

			return nil
		},
		Perform: func(ctx context.Context, req updateWordRequest) (*domain.WordItem, error) {
			return s.words.UpdateWordItem(ctx, req.id, req.update)
		},
		Verify: func(_ context.Context, req updateWordRequest, word *domain.WordItem) (*domain.WordItem, error) {
			if word == nil {
				return nil, domain.NewNotFoundError("word item", req.id)
			}
			if (req.update.IsKnown != nil && word.IsKnown != *req.update.IsKnown) ||
				(req.update.IsCollected != nil && word.IsCollected != *req.update.IsCollected) {
				return nil, domain.NewUnavailableError("hygraph", "update was not applied")
			}

			return word, nil
		},
		Respond: func(_ context.Context, _ updateWordRequest, word *domain.WordItem) (*domain.WordItem, error) {
			return word, nil
		},
	}, updateWordRequest{id: id, update: update})
}

// RecordWordView appends at to the view history of a word. A zero at means now.
func (s *WordService) RecordWordView(ctx context.Context, id string, at time.Time) error {
	if err := requireID("id", id); err != nil {
		return err
	}

	return s.words.AppendWordView(ctx, id, viewTime(at, s.now))
}

// viewTime returns at in UTC, or now when at is zero.
func viewTime(at time.Time, now func() time.Time) time.Time {
	if at.IsZero() {
		at = now()
	}

	return at.UTC()
}
