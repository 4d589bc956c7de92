package customers

import (
	"context"
	"strings"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
)

type API interface {
	ListCustomers(ctx context.Context) ([]shopapi.User, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

type ServiceParams struct {
	API    API
	Logger *logger.Logger
}

// Service backs the admin customer list.
type Service struct {
	api  API
	logg *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customers api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Service{api: params.API, logg: params.Logger}, nil
}

// List returns customers whose name or email contains search, or whose
// phone contains it verbatim.
func (s *Service) List(ctx context.Context, search string) ([]shopapi.User, error) {
	list, err := s.api.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	search = strings.TrimSpace(search)
	lower := strings.ToLower(search)
	out := make([]shopapi.User, 0, len(list))
	for _, u := range list {
		if search == "" ||
			strings.Contains(strings.ToLower(u.Name), lower) ||
			strings.Contains(strings.ToLower(u.Email), lower) ||
			(u.Phone != "" && strings.Contains(u.Phone, search)) {
			out = append(out, u)
		}
	}
	return out, nil
}

// Delete removes a customer account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteCustomer(ctx, id); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "customer_id", id), "customer delete failed", err)
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "customer_id", id), "customer deleted")
	return nil
}
