package pagination

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any page can request.
	MaxLimit = 100
)

// Params holds pagination inputs from controllers.
type Params struct {
	Limit  int
	Cursor string
}

// Page is one window of a list plus the cursor for the next window.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	Total      int    `json:"total"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds an opaque cursor pointing at offset.
func EncodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf("o|%d", offset)))
}

// ParseCursor decodes a cursor back to its offset. Blank cursors start at 0.
func ParseCursor(value string) (int, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return 0, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[0] != "o" {
		return 0, fmt.Errorf("invalid cursor format")
	}
	offset, err := strconv.Atoi(parts[1])
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid cursor offset")
	}
	return offset, nil
}

// FromQuery reads limit and cursor query values.
func FromQuery(q url.Values) (Params, error) {
	p := Params{Cursor: strings.TrimSpace(q.Get("cursor"))}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return Params{}, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a non-negative integer").
				WithDetails(map[string]string{"limit": "must be a non-negative integer"})
		}
		p.Limit = limit
	}
	return p, nil
}

// Slice cuts one page out of items.
func Slice[T any](items []T, p Params) (Page[T], error) {
	offset, err := ParseCursor(p.Cursor)
	if err != nil {
		return Page[T]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").
			WithDetails(map[string]string{"cursor": "is invalid"})
	}
	limit := NormalizeLimit(p.Limit)
	page := Page[T]{Items: []T{}, Total: len(items)}
	if offset >= len(items) {
		return page, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	page.Items = append(page.Items, items[offset:end]...)
	if end < len(items) {
		page.NextCursor = EncodeCursor(end)
	}
	return page, nil
}
