package orders

import (
	"net/url"
	"testing"
	"time"

	"github.com/pcforge/storefront/pkg/daterange"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/stretchr/testify/require"
)

func order(id int64, name, email, date string, status shopapi.OrderStatus) shopapi.Order {
	return shopapi.Order{ID: id, OrderDate: date, Status: status, User: shopapi.User{Name: name, Email: email}}
}

func TestFilterByCustomerAndStatus(t *testing.T) {
	list := []shopapi.Order{
		order(1, "Alice Nguyen", "alice@shop.test", "2024-03-01T10:00:00Z", shopapi.OrderPending),
		order(2, "Bob", "bob@shop.test", "2024-03-02T10:00:00Z", shopapi.OrderShipped),
	}
	require.Len(t, Apply(list, Filter{Search: "ALICE"}), 1)
	require.Len(t, Apply(list, Filter{Search: "shop.test"}), 2)
	got := Apply(list, Filter{Status: shopapi.OrderShipped})
	require.Len(t, got, 1)
	require.EqualValues(t, 2, got[0].ID)
}

func TestFilterEndDateIsInclusive(t *testing.T) {
	list := []shopapi.Order{
		order(1, "a", "a", "2024-03-05T23:59:59.5Z", shopapi.OrderPending),
		order(2, "b", "b", "2024-03-06T00:00:00Z", shopapi.OrderPending),
		order(3, "c", "c", "2024-03-04T12:00:00Z", shopapi.OrderPending),
	}
	from := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	got := Apply(list, Filter{Range: daterange.Range{From: &from, To: &to}})
	require.Len(t, got, 1)
	require.EqualValues(t, 1, got[0].ID)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(url.Values{"status": {"Pending"}, "to": {"2024-03-05"}})
	require.NoError(t, err)
	require.Equal(t, shopapi.OrderPending, f.Status)
	require.Nil(t, f.From)
	require.Equal(t, 5, f.To.Day())

	_, err = ParseFilter(url.Values{"status": {"Lost"}, "from": {"05/03/2024"}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCheckTransition(t *testing.T) {
	require.NoError(t, CheckTransition(shopapi.OrderPending, shopapi.OrderShipped))
	require.NoError(t, CheckTransition(shopapi.OrderShipped, shopapi.OrderShipped))
	require.Error(t, CheckTransition(shopapi.OrderCancelled, shopapi.OrderPending))
}
