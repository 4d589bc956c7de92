package controllers

import (
	"net/http"

	"github.com/pcforge/storefront/api/validators"
	"github.com/pcforge/storefront/internal/imports"
	"github.com/pcforge/storefront/internal/storefront"
	"github.com/pcforge/storefront/internal/suppliers"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/money"
	"github.com/pcforge/storefront/pkg/pagination"
)

// page cuts one page of items using the limit and cursor query values.
func page[T any](r *http.Request, items []T) (any, error) {
	p, err := pagination.FromQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}
	return pagination.Slice(items, p)
}

func AdminSuppliersList(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		list, err := s.Suppliers.List(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			return nil, err
		}
		return page(r, list)
	})
}

// AdminSupplierSave creates a supplier, or updates the one in the path.
func AdminSupplierSave(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.OptionalPathID(r, "supplierId")
		if err != nil {
			return nil, err
		}
		var form suppliers.Form
		if err := validators.DecodeJSON(r, &form); err != nil {
			return nil, err
		}
		return nil, s.Suppliers.Save(r.Context(), id, form)
	})
}

func AdminSupplierDelete(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "supplierId")
		if err != nil {
			return nil, err
		}
		return nil, s.Suppliers.Delete(r.Context(), id)
	})
}

func AdminCustomersList(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		list, err := s.Customers.List(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			return nil, err
		}
		return page(r, list)
	})
}

func AdminCustomerDelete(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "customerId")
		if err != nil {
			return nil, err
		}
		return nil, s.Customers.Delete(r.Context(), id)
	})
}

func AdminImportsList(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		f, err := imports.ParseFilter(r.URL.Query())
		if err != nil {
			return nil, err
		}
		list, err := s.Imports.List(r.Context(), f)
		if err != nil {
			return nil, err
		}
		return page(r, list)
	})
}

type importPreview struct {
	Total string `json:"total"`
}

// AdminImportCreate records a stock receipt. The form is validated by the
// service, so the body is only decoded here.
func AdminImportCreate(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusCreated, func(r *http.Request, s *storefront.Session) (any, error) {
		var form imports.ReceiptForm
		if err := validators.DecodeJSON(r, &form); err != nil {
			return nil, err
		}
		if err := s.Imports.Create(r.Context(), form); err != nil {
			return nil, err
		}
		return importPreview{Total: money.Format(imports.Total(form.Details))}, nil
	})
}

func AdminImportDelete(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "importId")
		if err != nil {
			return nil, err
		}
		return nil, s.Imports.Delete(r.Context(), id)
	})
}

func AdminDashboard(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		return s.Dashboard.Load(r.Context())
	})
}
