package controllers

import (
	"net/http"

	"github.com/premiumstore/premiumstore-backend/api/middleware"
	"github.com/premiumstore/premiumstore-backend/api/responses"
	"github.com/premiumstore/premiumstore-backend/api/validators"
	"github.com/premiumstore/premiumstore-backend/internal/cart"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
)

type addCartItemPayload struct {
	ProductID int               `json:"product_id" validate:"required,min=1"`
	Quantity  int               `json:"quantity" validate:"omitempty,min=1,max=99"`
	Options   map[string]string `json:"options" validate:"omitempty"`
}

type updateCartItemPayload struct {
	ProductID int               `json:"product_id" validate:"required,min=1"`
	Quantity  string            `json:"quantity" validate:"required"`
	Options   map[string]string `json:"options" validate:"omitempty"`
}

type removeCartItemPayload struct {
	ProductID int               `json:"product_id" validate:"required,min=1"`
	Options   map[string]string `json:"options" validate:"omitempty"`
}

type promoPayload struct {
	Code string `json:"code" validate:"required,min=1,max=32"`
}

// CartFetch returns the session's cart with computed totals.
func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		view, err := svc.Get(ctx, middleware.SessionID(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddItem adds a product, merging into an existing line when the
// product and options match.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.AddItem(ctx, middleware.SessionID(ctx), cart.AddItemInput{
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
			Options:   payload.Options,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartUpdateItem sets a line's quantity. Quantity arrives as a string
// so the storefront's raw input handling survives the trip: invalid
// text keeps the old quantity and zero removes the line.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload updateCartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.UpdateQuantity(ctx, middleware.SessionID(ctx), payload.ProductID, payload.Options, payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartRemoveItem drops a line from the cart.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload removeCartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.RemoveItem(ctx, middleware.SessionID(ctx), payload.ProductID, payload.Options)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartApplyPromo applies a promo code to the session.
func CartApplyPromo(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload promoPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.ApplyPromo(ctx, middleware.SessionID(ctx), payload.Code)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartRemovePromo clears the applied promo.
func CartRemovePromo(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		view, err := svc.RemovePromo(ctx, middleware.SessionID(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
