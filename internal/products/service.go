package products

import (
	"context"
	"strings"

	"github.com/pcforge/storefront/internal/catalog"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
)

type API interface {
	ListProducts(ctx context.Context) ([]shopapi.Product, error)
	GetProduct(ctx context.Context, id int64) (shopapi.Product, error)
	CreateProduct(ctx context.Context, upload shopapi.ProductUpload) error
	UpdateProduct(ctx context.Context, id int64, upload shopapi.ProductUpload) error
	DeleteProduct(ctx context.Context, id int64) error
	ListAttributesByCategory(ctx context.Context, categoryID int64) ([]shopapi.ProductAttribute, error)

	ListCategories(ctx context.Context) ([]shopapi.Category, error)
	CreateCategory(ctx context.Context, name string) error
	UpdateCategory(ctx context.Context, id int64, name string) error
	DeleteCategory(ctx context.Context, id int64) error

	ListBrands(ctx context.Context) ([]shopapi.Brand, error)
	CreateBrand(ctx context.Context, name string) error
	UpdateBrand(ctx context.Context, id int64, name string) error
	DeleteBrand(ctx context.Context, id int64) error
}

type ServiceParams struct {
	API    API
	Logger *logger.Logger
}

// Service backs the admin catalog screens.
type Service struct {
	api  API
	logg *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "products api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Service{api: params.API, logg: params.Logger}, nil
}

// List returns products matching the admin search, brand and category
// filters.
func (s *Service) List(ctx context.Context, f catalog.Filter) ([]shopapi.Product, error) {
	list, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Apply(list, f), nil
}

func (s *Service) Get(ctx context.Context, id int64) (shopapi.Product, error) {
	return s.api.GetProduct(ctx, id)
}

// Attributes lists the attribute definitions of a category.
func (s *Service) Attributes(ctx context.Context, categoryID int64) ([]shopapi.ProductAttribute, error) {
	if categoryID <= 0 {
		return []shopapi.ProductAttribute{}, nil
	}
	attrs, err := s.api.ListAttributesByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = []shopapi.ProductAttribute{}
	}
	return attrs, nil
}

func (s *Service) Create(ctx context.Context, form Form) error {
	if err := form.Validate(nil); err != nil {
		return err
	}
	upload, err := s.upload(ctx, form)
	if err != nil {
		return err
	}
	if err := s.api.CreateProduct(ctx, upload); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "product_name", upload.Name), "product create failed", err)
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "product_name", upload.Name), "product created")
	return nil
}

// Update loads the stored product first so an existing main image satisfies
// the image rule.
func (s *Service) Update(ctx context.Context, id int64, form Form) error {
	existing, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := form.Validate(&existing); err != nil {
		return err
	}
	upload, err := s.upload(ctx, form)
	if err != nil {
		return err
	}
	if err := s.api.UpdateProduct(ctx, id, upload); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "product_id", id), "product update failed", err)
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "product_id", id), "product delete failed", err)
		return err
	}
	return nil
}

func (s *Service) upload(ctx context.Context, form Form) (shopapi.ProductUpload, error) {
	attrs, err := s.Attributes(ctx, form.CategoryID)
	if err != nil {
		return shopapi.ProductUpload{}, err
	}
	return form.Upload(attrs)
}

func (s *Service) Categories(ctx context.Context) ([]shopapi.Category, error) {
	return s.api.ListCategories(ctx)
}

func (s *Service) SaveCategory(ctx context.Context, id int64, name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}
	if id == 0 {
		return s.api.CreateCategory(ctx, name)
	}
	return s.api.UpdateCategory(ctx, id, name)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.api.DeleteCategory(ctx, id)
}

func (s *Service) Brands(ctx context.Context) ([]shopapi.Brand, error) {
	return s.api.ListBrands(ctx)
}

func (s *Service) SaveBrand(ctx context.Context, id int64, name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}
	if id == 0 {
		return s.api.CreateBrand(ctx, name)
	}
	return s.api.UpdateBrand(ctx, id, name)
}

func (s *Service) DeleteBrand(ctx context.Context, id int64) error {
	return s.api.DeleteBrand(ctx, id)
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Name is required").
			WithDetails(map[string]string{"name": "is required"})
	}
	return name, nil
}
