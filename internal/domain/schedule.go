package domain

import (
	"slices"
	"time"
)

// ReviewIntervals is the expanding review schedule in days. A card viewed n
// times waits ReviewIntervals[n-1] days after its last view; cards viewed more
// often than the schedule is long use the last interval.
var ReviewIntervals = []int{1, 3, 7, 14, 30, 60}

// ReviewDue returns when a card with the given view history is next due.
// A card that was never viewed is due at the zero time.
func ReviewDue(views []time.Time) time.Time {
	if len(views) == 0 {
		return time.Time{}
	}

	stage := min(len(views), len(ReviewIntervals)) - 1
	days := ReviewIntervals[stage]

	return latest(views).Add(time.Duration(days) * 24 * time.Hour)
}

// IsReviewDue reports whether a card with the given history is due at now.
func IsReviewDue(views []time.Time, now time.Time) bool {
	return !now.Before(ReviewDue(views))
}

// OrderForReview sorts cards so the most overdue come first. Cards that were
// never viewed lead; equal due times keep their original order.
func OrderForReview[T any](cards []T, views func(T) []time.Time) []T {
	ordered := slices.Clone(cards)
	slices.SortStableFunc(ordered, func(a, b T) int {
		return ReviewDue(views(a)).Compare(ReviewDue(views(b)))
	})

	return ordered
}
