package suppliers

import (
	"context"
	"strings"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/pcforge/storefront/pkg/validation"
)

type API interface {
	ListSuppliers(ctx context.Context) ([]shopapi.Supplier, error)
	CreateSupplier(ctx context.Context, in shopapi.SupplierInput) error
	UpdateSupplier(ctx context.Context, id int64, in shopapi.SupplierInput) error
	DeleteSupplier(ctx context.Context, id int64) error
}

// Form is a supplier as entered in the admin console.
type Form struct {
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,phone"`
	Address string `json:"address" validate:"notblank"`
}

func (f Form) Validate() error {
	f = f.trimmed()
	return validation.Struct(f)
}

func (f Form) trimmed() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Address: strings.TrimSpace(f.Address),
	}
}

func (f Form) input() shopapi.SupplierInput {
	t := f.trimmed()
	return shopapi.SupplierInput{Name: t.Name, Email: t.Email, Phone: t.Phone, Address: t.Address}
}

// Match reports whether the supplier's name or email contains term, case
// folded, or its phone contains it verbatim.
func Match(s shopapi.Supplier, term string) bool {
	if term == "" {
		return true
	}
	lower := strings.ToLower(term)
	return strings.Contains(strings.ToLower(s.Name), lower) ||
		strings.Contains(strings.ToLower(s.Email), lower) ||
		(s.Phone != "" && strings.Contains(s.Phone, term))
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
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "suppliers api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Service{api: params.API, logg: params.Logger}, nil
}

func (s *Service) List(ctx context.Context, search string) ([]shopapi.Supplier, error) {
	list, err := s.api.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	search = strings.TrimSpace(search)
	out := make([]shopapi.Supplier, 0, len(list))
	for _, sup := range list {
		if Match(sup, search) {
			out = append(out, sup)
		}
	}
	return out, nil
}

// Save creates the supplier when id is zero, otherwise updates it.
func (s *Service) Save(ctx context.Context, id int64, form Form) error {
	if err := form.Validate(); err != nil {
		return err
	}
	var err error
	if id == 0 {
		err = s.api.CreateSupplier(ctx, form.input())
	} else {
		err = s.api.UpdateSupplier(ctx, id, form.input())
	}
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "supplier_id", id), "supplier save failed", err)
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteSupplier(ctx, id); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "supplier_id", id), "supplier delete failed", err)
		return err
	}
	return nil
}
