package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fornodoro/backend/api/responses"
	"github.com/fornodoro/backend/api/validators"
	"github.com/fornodoro/backend/internal/banners"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
)

type bannerRequest struct {
	Title     string  `json:"title" validate:"required"`
	ImageURL  string  `json:"image_url" validate:"required"`
	LinkURL   *string `json:"link_url,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
	SortOrder int     `json:"sort_order"`
}

func (r bannerRequest) toInput() banners.Input {
	return banners.Input{
		Title:     r.Title,
		ImageURL:  r.ImageURL,
		LinkURL:   r.LinkURL,
		IsActive:  r.IsActive,
		SortOrder: r.SortOrder,
	}
}

// AdminListBanners returns every banner, including inactive ones.
func AdminListBanners(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminCreateBanner creates a promo banner.
func AdminCreateBanner(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}

		var payload bannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, banner)
	}
}

// AdminUpdateBanner updates a banner in place.
func AdminUpdateBanner(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}

		bannerID, err := uuid.Parse(chi.URLParam(r, "bannerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid banner id"))
			return
		}

		var payload bannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.Update(r.Context(), bannerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, banner)
	}
}

// AdminDeleteBanner removes a banner.
func AdminDeleteBanner(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}

		bannerID, err := uuid.Parse(chi.URLParam(r, "bannerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid banner id"))
			return
		}

		if err := svc.Delete(r.Context(), bannerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
