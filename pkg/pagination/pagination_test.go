package pagination

import (
	"net/url"
	"testing"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, MaxLimit, NormalizeLimit(1000))
	require.Equal(t, 7, NormalizeLimit(7))
}

func TestCursorRoundTrip(t *testing.T) {
	offset, err := ParseCursor(EncodeCursor(40))
	require.NoError(t, err)
	require.Equal(t, 40, offset)

	_, err = ParseCursor("not-a-cursor!")
	require.Error(t, err)
}

func TestSliceWalksAllPages(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var seen []int
	p := Params{Limit: 2}
	for {
		page, err := Slice(items, p)
		require.NoError(t, err)
		require.Equal(t, 5, page.Total)
		seen = append(seen, page.Items...)
		if page.NextCursor == "" {
			break
		}
		p.Cursor = page.NextCursor
	}
	require.Equal(t, items, seen)
}

func TestSlicePastEnd(t *testing.T) {
	page, err := Slice([]int{1}, Params{Cursor: EncodeCursor(5)})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Empty(t, page.NextCursor)
}

func TestFromQuery(t *testing.T) {
	p, err := FromQuery(url.Values{"limit": {"10"}, "cursor": {"abc"}})
	require.NoError(t, err)
	require.Equal(t, Params{Limit: 10, Cursor: "abc"}, p)

	_, err = FromQuery(url.Values{"limit": {"ten"}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = Slice([]int{1}, Params{Cursor: "%%%"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
