package dto

import (
	"encoding/base64"
	"errors"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// ErrInvalidCursor is returned when a cursor was not issued by this API.
var ErrInvalidCursor = errors.New("invalid cursor")

// cursorPrefix guards against clients passing raw content API cursors.
const cursorPrefix = "fc1:"

// PaginationRequest represents pagination parameters from the query string.
type PaginationRequest struct {
	// Cursor is the NextCursor of a previous page.
	Cursor string `form:"cursor"`

	// Limit is the maximum number of items to return (1-100, default 20).
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// Paged reports whether the client asked for a page rather than the full list.
func (p *PaginationRequest) Paged() bool {
	return p.Cursor != "" || p.Limit > 0
}

// After returns the store cursor to continue from; empty for the first page.
func (p *PaginationRequest) After() (string, error) {
	return DecodeCursor(p.Cursor)
}

// PaginatedResponse is one page of a listing.
type PaginatedResponse[T any] struct {
	Items []T `json:"items"`

	// NextCursor is empty on the last page.
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`

	// Total counts every item across pages when the store reports it.
	Total int `json:"total,omitempty"`
}

// NewPaginatedResponse wraps items with the store's end cursor.
func NewPaginatedResponse[T any](items []T, endCursor string, hasMore bool, total int) *PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}

	resp := &PaginatedResponse[T]{Items: items, HasMore: hasMore, Total: total}
	if hasMore {
		resp.NextCursor = EncodeCursor(endCursor)
	}

	return resp
}

// EncodeCursor makes a store cursor opaque to clients.
func EncodeCursor(storeCursor string) string {
	if storeCursor == "" {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + storeCursor))
}

// DecodeCursor reverses EncodeCursor. An empty cursor decodes to "".
func DecodeCursor(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(raw) <= len(cursorPrefix) || string(raw[:len(cursorPrefix)]) != cursorPrefix {
		return "", ErrInvalidCursor
	}

	return string(raw[len(cursorPrefix):]), nil
}
