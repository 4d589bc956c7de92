package controllers

import (
	"net/http"
	"strings"

	"github.com/pcforge/storefront/api/validators"
	"github.com/pcforge/storefront/internal/pcbuild"
	"github.com/pcforge/storefront/internal/storefront"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/money"
	"github.com/pcforge/storefront/pkg/shopapi"
)

type buildRequest struct {
	Name       string  `json:"name" validate:"notblank"`
	ProductIDs []int64 `json:"product_ids"`
}

type buildView struct {
	shopapi.PcBuild
	Total string `json:"total"`
}

func viewBuild(b shopapi.PcBuild) buildView {
	return buildView{PcBuild: b, Total: money.Format(pcbuild.BuildTotal(b))}
}

type draftView struct {
	BuildID    int64               `json:"build_id,omitempty"`
	Name       string              `json:"name"`
	Slots      []pcbuild.Slot      `json:"slots"`
	Total      string              `json:"total"`
	Collisions []pcbuild.Collision `json:"collisions,omitempty"`
}

func viewDraft(a *pcbuild.Assembler, categories []shopapi.Category) draftView {
	return draftView{
		BuildID:    a.BuildID(),
		Name:       a.Name(),
		Slots:      a.Slots(categories),
		Total:      money.Format(a.Total()),
		Collisions: a.Collisions(),
	}
}

// draftResponse renders the draft against the current category list.
func draftResponse(r *http.Request, s *storefront.Session) (any, error) {
	categories, err := s.Catalog.Categories(r.Context())
	if err != nil {
		return nil, err
	}
	var view draftView
	_ = s.Draft(func(a *pcbuild.Assembler) error {
		view = viewDraft(a, categories)
		return nil
	})
	return view, nil
}

func BuildsList(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		if err := s.Builds.Fetch(r.Context()); err != nil {
			return nil, err
		}
		builds := s.Builds.Builds()
		out := make([]buildView, 0, len(builds))
		for _, b := range builds {
			out = append(out, viewBuild(b))
		}
		return out, nil
	})
}

func BuildGet(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "buildId")
		if err != nil {
			return nil, err
		}
		b, err := s.Builds.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return viewBuild(b), nil
	})
}

func BuildCreate(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusCreated, func(r *http.Request, s *storefront.Session) (any, error) {
		var body buildRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		b, err := s.Builds.Create(r.Context(), body.Name, body.ProductIDs)
		if err != nil {
			return nil, err
		}
		return viewBuild(b), nil
	})
}

func BuildUpdate(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "buildId")
		if err != nil {
			return nil, err
		}
		var body buildRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		b, err := s.Builds.Update(r.Context(), id, body.Name, body.ProductIDs)
		if err != nil {
			return nil, err
		}
		return viewBuild(b), nil
	})
}

func BuildDelete(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "buildId")
		if err != nil {
			return nil, err
		}
		return nil, s.Builds.Delete(r.Context(), id)
	})
}

// BuildAddToCart adds one of each product of a saved build to the cart.
func BuildAddToCart(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "buildId")
		if err != nil {
			return nil, err
		}
		b, err := s.Builds.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		if err := pcbuild.FromBuild(b).AddAllToCart(r.Context(), s.Cart); err != nil {
			return nil, err
		}
		return viewCart(s), nil
	})
}

type draftLoadRequest struct {
	BuildID int64 `json:"build_id" validate:"gte=0"`
}

// DraftLoad starts a fresh draft, or loads a saved build into it when
// build_id is set.
func DraftLoad(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		var body draftLoadRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				return nil, err
			}
		}
		if _, err := s.LoadDraft(r.Context(), body.BuildID); err != nil {
			return nil, err
		}
		return draftResponse(r, s)
	})
}

func DraftGet(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, draftResponse)
}

type draftSlotRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// DraftSelect puts a product into its category slot, replacing the
// previous choice.
func DraftSelect(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		var body draftSlotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		product, err := s.Catalog.Product(r.Context(), body.ProductID)
		if err != nil {
			return nil, err
		}
		if err := s.Draft(func(a *pcbuild.Assembler) error { return a.Select(product) }); err != nil {
			return nil, err
		}
		return draftResponse(r, s)
	})
}

func DraftRemove(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		categoryID, err := validators.PathID(r, "categoryId")
		if err != nil {
			return nil, err
		}
		_ = s.Draft(func(a *pcbuild.Assembler) error {
			a.Remove(categoryID)
			return nil
		})
		return draftResponse(r, s)
	})
}

type draftSaveRequest struct {
	Name string `json:"name"`
}

// DraftSave creates or updates the saved build behind the draft.
func DraftSave(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		var body draftSaveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		var saved shopapi.PcBuild
		err := s.Draft(func(a *pcbuild.Assembler) error {
			if strings.TrimSpace(body.Name) != "" {
				a.SetName(body.Name)
			}
			var err error
			saved, err = a.Save(r.Context(), s.Builds)
			return err
		})
		if err != nil {
			return nil, err
		}
		return viewBuild(saved), nil
	})
}

func DraftAddToCart(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		err := s.Draft(func(a *pcbuild.Assembler) error {
			return a.AddAllToCart(r.Context(), s.Cart)
		})
		if err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			return nil, err
		}
		view := viewCart(s)
		if err != nil {
			// partial failures still return the refreshed cart
			view.Error = pkgerrors.As(err).Message()
		}
		return view, nil
	})
}
