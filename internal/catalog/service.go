package catalog

import (
	"context"
	"strings"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
	"golang.org/x/sync/errgroup"
)

// FeaturedCount is how many products the home page features.
const FeaturedCount = 8

// placeholderImage is used when a product has no main image.
const placeholderImage = "https://via.placeholder.com/600x600.png/F9FAFB/6B7280?text=No+Image"

type API interface {
	ListProducts(ctx context.Context) ([]shopapi.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID int64) ([]shopapi.Product, error)
	GetProduct(ctx context.Context, id int64) (shopapi.Product, error)
	ListCategories(ctx context.Context) ([]shopapi.Category, error)
	ListBrands(ctx context.Context) ([]shopapi.Brand, error)
}

type ServiceParams struct {
	API       API
	AssetHost string
	Logger    *logger.Logger
}

type Service struct {
	api       API
	assetHost string
	logg      *logger.Logger
}

// View is the browse page: filter options plus the grouped products.
type View struct {
	Filter     Filter             `json:"filter"`
	Categories []shopapi.Category `json:"categories"`
	Brands     []shopapi.Brand    `json:"brands"`
	Groups     []Group            `json:"groups"`
	Total      int                `json:"total"`
}

func NewService(params ServiceParams) (*Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Service{api: params.API, assetHost: strings.TrimRight(params.AssetHost, "/"), logg: params.Logger}, nil
}

// Browse loads products, categories and brands concurrently and groups the
// products under f.
func (s *Service) Browse(ctx context.Context, f Filter) (View, error) {
	var (
		products   []shopapi.Product
		categories []shopapi.Category
		brands     []shopapi.Brand
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.api.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.api.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		brands, err = s.api.ListBrands(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logg.Error(ctx, "catalog browse failed", err)
		return View{}, err
	}

	s.resolveImages(products)
	groups := GroupProducts(products, categories, f)
	total := 0
	for _, grp := range groups {
		total += len(grp.Products)
	}
	return View{
		Filter:     f,
		Categories: nonNil(categories),
		Brands:     nonNil(brands),
		Groups:     groups,
		Total:      total,
	}, nil
}

// Featured returns the first FeaturedCount products of the catalog.
func (s *Service) Featured(ctx context.Context) ([]shopapi.Product, error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) > FeaturedCount {
		products = products[:FeaturedCount]
	}
	s.resolveImages(products)
	return nonNil(products), nil
}

// Product loads one product with its attributes and images.
func (s *Service) Product(ctx context.Context, id int64) (shopapi.Product, error) {
	if id <= 0 {
		return shopapi.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "No product ID provided.")
	}
	p, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return shopapi.Product{}, err
	}
	s.resolveImage(&p)
	return p, nil
}

// ProductsInCategory lists candidates for one build slot.
func (s *Service) ProductsInCategory(ctx context.Context, categoryID int64) ([]shopapi.Product, error) {
	products, err := s.api.ListProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	out := nonNil(products)
	s.resolveImages(out)
	return out, nil
}

func (s *Service) Categories(ctx context.Context) ([]shopapi.Category, error) {
	categories, err := s.api.ListCategories(ctx)
	return nonNil(categories), err
}

func (s *Service) Brands(ctx context.Context) ([]shopapi.Brand, error) {
	brands, err := s.api.ListBrands(ctx)
	return nonNil(brands), err
}

// ImageURL turns an API-relative image path into an absolute URL.
func ImageURL(assetHost, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return placeholderImage
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(assetHost, "/") + path
}

func (s *Service) resolveImages(products []shopapi.Product) {
	for i := range products {
		s.resolveImage(&products[i])
	}
}

func (s *Service) resolveImage(p *shopapi.Product) {
	if p.MainImage != nil && strings.TrimSpace(*p.MainImage) != "" {
		resolved := ImageURL(s.assetHost, *p.MainImage)
		p.MainImage = &resolved
	}
	for i := range p.Images {
		p.Images[i].ImageURL = ImageURL(s.assetHost, p.Images[i].ImageURL)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
