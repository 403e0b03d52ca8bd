package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fornodoro/backend/api/responses"
	"github.com/fornodoro/backend/api/validators"
	"github.com/fornodoro/backend/internal/catalog"
	"github.com/fornodoro/backend/pkg/enums"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
	"github.com/fornodoro/backend/pkg/logger"
)

type pizzaRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	BasePrice   string  `json:"base_price" validate:"required"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r pizzaRequest) toInput() catalog.PizzaInput {
	return catalog.PizzaInput{
		Name:        r.Name,
		Description: r.Description,
		BasePrice:   r.BasePrice,
		ImageURL:    r.ImageURL,
		IsActive:    r.IsActive,
	}
}

type productRequest struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Price    string  `json:"price" validate:"required"`
	ImageURL *string `json:"image_url,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (r productRequest) toInput() (catalog.ProductInput, error) {
	category, err := enums.ParseProductCategory(r.Category)
	if err != nil {
		return catalog.ProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	return catalog.ProductInput{
		Name:     r.Name,
		Category: category,
		Price:    r.Price,
		ImageURL: r.ImageURL,
		IsActive: r.IsActive,
	}, nil
}

type optionRequest struct {
	Kind       string `json:"kind" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Price      string `json:"price"`
	Multiplier string `json:"multiplier"`
	MaxFlavors int    `json:"max_flavors"`
	IsDefault  bool   `json:"is_default"`
	IsActive   *bool  `json:"is_active,omitempty"`
	SortOrder  int    `json:"sort_order"`
}

func (r optionRequest) toInput() (catalog.OptionInput, error) {
	kind, err := enums.ParsePizzaOptionKind(r.Kind)
	if err != nil {
		return catalog.OptionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid option kind")
	}
	return catalog.OptionInput{
		Kind:       kind,
		Name:       r.Name,
		Price:      r.Price,
		Multiplier: r.Multiplier,
		MaxFlavors: r.MaxFlavors,
		IsDefault:  r.IsDefault,
		IsActive:   r.IsActive,
		SortOrder:  r.SortOrder,
	}, nil
}

// AdminListPizzas returns all flavors including inactive ones.
func AdminListPizzas(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		items, err := svc.ListPizzas(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminCreatePizza adds a flavor to the catalog.
func AdminCreatePizza(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload pizzaRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pizza, err := svc.CreatePizza(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, pizza)
	}
}

// AdminUpdatePizza updates a flavor.
func AdminUpdatePizza(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		pizzaID, ok := catalogIDParam(w, r, logg, "pizzaId")
		if !ok {
			return
		}

		var payload pizzaRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pizza, err := svc.UpdatePizza(r.Context(), pizzaID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pizza)
	}
}

// AdminDeletePizza removes a flavor.
func AdminDeletePizza(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		pizzaID, ok := catalogIDParam(w, r, logg, "pizzaId")
		if !ok {
			return
		}

		if err := svc.DeletePizza(r.Context(), pizzaID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminListProducts returns all products including inactive ones.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		items, err := svc.ListProducts(r.Context(), nil, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminCreateProduct adds a drink or dessert.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct updates a product.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, ok := catalogIDParam(w, r, logg, "productId")
		if !ok {
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product.
func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, ok := catalogIDParam(w, r, logg, "productId")
		if !ok {
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminListOptions returns builder options including inactive ones,
// optionally filtered by kind.
func AdminListOptions(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var kind *enums.PizzaOptionKind
		if raw := r.URL.Query().Get("kind"); raw != "" {
			parsed, err := enums.ParsePizzaOptionKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid option kind"))
				return
			}
			kind = &parsed
		}

		items, err := svc.ListOptions(r.Context(), kind, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminCreateOption adds a builder option (size, crust, dough, extra).
func AdminCreateOption(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload optionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		option, err := svc.CreateOption(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, option)
	}
}

// AdminUpdateOption updates a builder option.
func AdminUpdateOption(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		optionID, ok := catalogIDParam(w, r, logg, "optionId")
		if !ok {
			return
		}

		var payload optionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		option, err := svc.UpdateOption(r.Context(), optionID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, option)
	}
}

// AdminDeleteOption removes a builder option.
func AdminDeleteOption(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		optionID, ok := catalogIDParam(w, r, logg, "optionId")
		if !ok {
			return
		}

		if err := svc.DeleteOption(r.Context(), optionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func catalogIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
