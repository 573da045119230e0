package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/premiumstore/premiumstore-backend/api/middleware"
	"github.com/premiumstore/premiumstore-backend/api/responses"
	"github.com/premiumstore/premiumstore-backend/api/validators"
	"github.com/premiumstore/premiumstore-backend/internal/orders"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
)

// Checkout places an order from the session's cart.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload orders.CheckoutInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(ctx, middleware.SessionID(ctx), payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderList returns the session's order history, newest first.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		history, err := svc.ListOrders(ctx, middleware.SessionID(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"orders": history,
			"count":  len(history),
		})
	}
}

// OrderDetail returns one order from the session's history.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		order, err := svc.GetOrder(ctx, middleware.SessionID(ctx), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
