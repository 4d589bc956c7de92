package daterange

import (
	"net/url"
	"testing"
	"time"

	"github.com/pcforge/storefront/pkg/validation"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestContainsIsInclusiveOfWholeEndDay(t *testing.T) {
	r := Range{From: day(2024, 3, 1), To: day(2024, 3, 5)}
	require.True(t, r.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, r.Contains(time.Date(2024, 3, 5, 23, 59, 59, 999, time.UTC)))
	require.False(t, r.Contains(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))
	require.False(t, r.Contains(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)))
}

func TestContainsTimestamp(t *testing.T) {
	require.True(t, Range{}.ContainsTimestamp("garbage"))
	r := Range{To: day(2024, 3, 5)}
	require.True(t, r.ContainsTimestamp("2024-03-05"))
	require.False(t, r.ContainsTimestamp("garbage"))
}

func TestFromQuery(t *testing.T) {
	errs := validation.FieldErrors{}
	r := FromQuery(url.Values{"from": {"2024-03-01"}, "to": {"5 March"}}, errs)
	require.NotNil(t, r.From)
	require.Nil(t, r.To)
	require.Contains(t, errs, "to")
}
