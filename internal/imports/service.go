package imports

import (
	"context"
	"net/url"
	"strings"

	"github.com/pcforge/storefront/pkg/daterange"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/pcforge/storefront/pkg/validation"
)

type API interface {
	ListImports(ctx context.Context) ([]shopapi.ImportReceipt, error)
	CreateImport(ctx context.Context, in shopapi.ImportReceiptInput) error
	DeleteImport(ctx context.Context, id int64) error
}

// Filter narrows receipts by supplier name and import date.
type Filter struct {
	Supplier string `json:"supplier,omitempty"`
	daterange.Range
}

func (f Filter) Match(r shopapi.ImportReceipt) bool {
	if f.Supplier != "" && !strings.Contains(strings.ToLower(r.Supplier.Name), strings.ToLower(f.Supplier)) {
		return false
	}
	return f.Range.ContainsTimestamp(r.ImportDate)
}

func Apply(list []shopapi.ImportReceipt, f Filter) []shopapi.ImportReceipt {
	out := make([]shopapi.ImportReceipt, 0, len(list))
	for _, r := range list {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// ParseFilter reads supplier, from and to query values.
func ParseFilter(q url.Values) (Filter, error) {
	errs := validation.FieldErrors{}
	f := Filter{Supplier: strings.TrimSpace(q.Get("supplier"))}
	f.Range = daterange.FromQuery(q, errs)
	if err := errs.Err(); err != nil {
		return Filter{}, err
	}
	return f, nil
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
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "imports api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Service{api: params.API, logg: params.Logger}, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]shopapi.ImportReceipt, error) {
	list, err := s.api.ListImports(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(list, f), nil
}

// Create validates the receipt before sending it.
func (s *Service) Create(ctx context.Context, form ReceiptForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if err := s.api.CreateImport(ctx, form.Input()); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "supplier_id", form.SupplierID), "import create failed", err)
		return err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"supplier_id": form.SupplierID,
		"lines":       len(form.Details),
		"total":       Total(form.Details).String(),
	}), "stock import recorded")
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteImport(ctx, id); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "import_id", id), "import delete failed", err)
		return err
	}
	return nil
}
