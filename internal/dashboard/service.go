package dashboard

import (
	"context"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type API interface {
	RevenueStats(ctx context.Context) ([]shopapi.RevenuePoint, error)
	TopProductStats(ctx context.Context) ([]shopapi.TopProduct, error)
	OrderStatusStats(ctx context.Context) ([]shopapi.OrderStatusCount, error)
	TopCustomerStats(ctx context.Context) ([]shopapi.TopCustomer, error)
	OrderPercentageStats(ctx context.Context) ([]shopapi.OrderPercentage, error)
}

// Summary is everything the admin dashboard renders.
type Summary struct {
	Revenue         []shopapi.RevenuePoint     `json:"revenue"`
	TopProducts     []shopapi.TopProduct       `json:"top_products"`
	OrderStatus     []shopapi.OrderStatusCount `json:"order_status"`
	TopCustomers    []shopapi.TopCustomer      `json:"top_customers"`
	OrderPercentage []shopapi.OrderPercentage  `json:"order_percentage"`
	TotalRevenue    decimal.Decimal            `json:"total_revenue"`
	TotalOrders     int64                      `json:"total_orders"`
}

type ServiceParams struct {
	API    API
	Logger *logger.Logger
}

type Service struct {
	api  API
	logg *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dashboard api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Service{api: params.API, logg: params.Logger}, nil
}

// Load fetches the five statistics concurrently. Any failure fails the load.
func (s *Service) Load(ctx context.Context) (Summary, error) {
	var sum Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.Revenue, err = s.api.RevenueStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.TopProducts, err = s.api.TopProductStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.OrderStatus, err = s.api.OrderStatusStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.TopCustomers, err = s.api.TopCustomerStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.OrderPercentage, err = s.api.OrderPercentageStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logg.Error(ctx, "dashboard load failed", err)
		return Summary{}, err
	}
	sum.TotalRevenue = TotalRevenue(sum.Revenue)
	sum.TotalOrders = TotalOrders(sum.OrderStatus)
	return sum, nil
}

func TotalRevenue(points []shopapi.RevenuePoint) decimal.Decimal {
	total := decimal.Zero
	for _, p := range points {
		total = total.Add(p.TotalRevenue)
	}
	return total
}

// TotalOrders sums the per-status counts, truncating any fraction.
func TotalOrders(counts []shopapi.OrderStatusCount) int64 {
	var total int64
	for _, c := range counts {
		total += c.Count.IntPart()
	}
	return total
}
