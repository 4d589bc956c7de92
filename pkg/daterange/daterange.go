package daterange

import (
	"net/url"
	"strings"
	"time"

	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/pcforge/storefront/pkg/validation"
)

// Layout is the calendar-date format accepted from admin filters.
const Layout = "2006-01-02"

// Range is an optional [From, To] window where To covers its whole UTC day.
type Range struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

func (r Range) IsZero() bool { return r.From == nil && r.To == nil }

// Contains reports whether t falls inside the window.
func (r Range) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(EndOfDay(*r.To)) {
		return false
	}
	return true
}

// ContainsTimestamp parses an API timestamp and checks it. Unparseable
// timestamps only match an empty window.
func (r Range) ContainsTimestamp(value string) bool {
	if r.IsZero() {
		return true
	}
	t, ok := shopapi.ParseTimestamp(value)
	if !ok {
		return false
	}
	return r.Contains(t)
}

// EndOfDay is the last nanosecond of t's UTC day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// FromQuery reads the "from" and "to" values, recording bad input in errs.
func FromQuery(q url.Values, errs validation.FieldErrors) Range {
	return Range{
		From: parse(q.Get("from"), "from", errs),
		To:   parse(q.Get("to"), "to", errs),
	}
}

func parse(raw, field string, errs validation.FieldErrors) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(Layout, raw)
	if err != nil {
		errs.Add(field, "must be a date in "+Layout+" format")
		return nil
	}
	return &t
}
