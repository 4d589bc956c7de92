package orders

import (
	"net/url"
	"strings"

	"github.com/pcforge/storefront/pkg/daterange"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/pcforge/storefront/pkg/validation"
)

// Filter narrows the admin order list.
type Filter struct {
	Search string              `json:"search,omitempty"`
	Status shopapi.OrderStatus `json:"status,omitempty"`
	daterange.Range
}

func (f Filter) Match(o shopapi.Order) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(o.User.Name), term) && !strings.Contains(strings.ToLower(o.User.Email), term) {
			return false
		}
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return f.Range.ContainsTimestamp(o.OrderDate)
}

func Apply(list []shopapi.Order, f Filter) []shopapi.Order {
	out := make([]shopapi.Order, 0, len(list))
	for _, o := range list {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}

// ParseFilter reads search, status, from and to (YYYY-MM-DD) query values.
func ParseFilter(q url.Values) (Filter, error) {
	errs := validation.FieldErrors{}
	f := Filter{Search: strings.TrimSpace(q.Get("search"))}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		f.Status = shopapi.OrderStatus(raw)
		if !f.Status.IsValid() {
			errs.Add("status", "must be one of: Pending Confirmed Shipped Cancelled")
		}
	}
	f.Range = daterange.FromQuery(q, errs)
	if err := errs.Err(); err != nil {
		return Filter{}, err
	}
	return f, nil
}
