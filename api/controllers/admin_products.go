package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/pcforge/storefront/api/validators"
	"github.com/pcforge/storefront/internal/catalog"
	"github.com/pcforge/storefront/internal/products"
	"github.com/pcforge/storefront/internal/storefront"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/pcforge/storefront/pkg/validation"
)

const maxProductUpload = 16 << 20

func AdminProductsList(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		f, err := catalog.ParseFilter(r.URL.Query())
		if err != nil {
			return nil, err
		}
		list, err := s.Products.List(r.Context(), f)
		if err != nil {
			return nil, err
		}
		return page(r, list)
	})
}

type productDetail struct {
	Product    shopapi.Product `json:"product"`
	Attributes map[int64]any   `json:"attributes"`
}

func AdminProductGet(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "productId")
		if err != nil {
			return nil, err
		}
		p, err := s.Products.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return productDetail{Product: p, Attributes: products.AttributeValues(p)}, nil
	})
}

func AdminProductCreate(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusCreated, func(r *http.Request, s *storefront.Session) (any, error) {
		form, closeFiles, err := parseProductForm(r)
		if err != nil {
			return nil, err
		}
		defer closeFiles()
		return nil, s.Products.Create(r.Context(), form)
	})
}

func AdminProductUpdate(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "productId")
		if err != nil {
			return nil, err
		}
		form, closeFiles, err := parseProductForm(r)
		if err != nil {
			return nil, err
		}
		defer closeFiles()
		return nil, s.Products.Update(r.Context(), id, form)
	})
}

func AdminProductDelete(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "productId")
		if err != nil {
			return nil, err
		}
		return nil, s.Products.Delete(r.Context(), id)
	})
}

// AdminAttributes lists the attribute definitions the product form shows
// for a category.
func AdminAttributes(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "categoryId")
		if err != nil {
			return nil, err
		}
		return s.Products.Attributes(r.Context(), id)
	})
}

// parseProductForm reads the multipart product form. Text fields are
// validated later by the form itself; only malformed numbers and the
// attributes document are rejected here.
func parseProductForm(r *http.Request) (products.Form, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(maxProductUpload); err != nil {
		return products.Form{}, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	errs := validation.FieldErrors{}
	form := products.Form{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       strings.TrimSpace(r.FormValue("price")),
		BrandID:     formInt(r, "brand_id", errs),
		CategoryID:  formInt(r, "category_id", errs),
	}
	if raw := strings.TrimSpace(r.FormValue("stock")); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			errs.Add("stock", "must be an integer")
		} else {
			form.Stock = &stock
		}
	}
	if raw := strings.TrimSpace(r.FormValue("attributes")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form.Attributes); err != nil {
			errs.Add("attributes", "must be a JSON object keyed by attribute id")
		}
	}
	if err := errs.Err(); err != nil {
		return products.Form{}, noop, err
	}

	var opened []multipart.File
	closeFiles := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			f, err := fh.Open()
			if err != nil {
				closeFiles()
				return products.Form{}, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable image").
					WithDetails(map[string]string{"images": "could not be read"})
			}
			opened = append(opened, f)
			form.Images = append(form.Images, shopapi.FilePart{Field: "images", Filename: fh.Filename, Content: f})
		}
	}
	return form, closeFiles, nil
}

func formInt(r *http.Request, key string, errs validation.FieldErrors) int64 {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		errs.Add(key, "must be an integer")
		return 0
	}
	return v
}

type nameRequest struct {
	Name string `json:"name"`
}

func AdminCategoriesList(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		return s.Products.Categories(r.Context())
	})
}

// AdminCategorySave creates a category, or renames the one in the path.
func AdminCategorySave(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.OptionalPathID(r, "categoryId")
		if err != nil {
			return nil, err
		}
		var body nameRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return nil, s.Products.SaveCategory(r.Context(), id, body.Name)
	})
}

func AdminCategoryDelete(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "categoryId")
		if err != nil {
			return nil, err
		}
		return nil, s.Products.DeleteCategory(r.Context(), id)
	})
}

func AdminBrandsList(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		return s.Products.Brands(r.Context())
	})
}

func AdminBrandSave(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.OptionalPathID(r, "brandId")
		if err != nil {
			return nil, err
		}
		var body nameRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return nil, s.Products.SaveBrand(r.Context(), id, body.Name)
	})
}

func AdminBrandDelete(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "brandId")
		if err != nil {
			return nil, err
		}
		return nil, s.Products.DeleteBrand(r.Context(), id)
	})
}
