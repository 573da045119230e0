package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/premiumstore/premiumstore-backend/api/middleware"
	"github.com/premiumstore/premiumstore-backend/api/responses"
	"github.com/premiumstore/premiumstore-backend/api/validators"
	"github.com/premiumstore/premiumstore-backend/internal/session"
	"github.com/premiumstore/premiumstore-backend/internal/state"
	"github.com/premiumstore/premiumstore-backend/pkg/config"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
)

type signInPayload struct {
	Name  string `json:"name" validate:"required,min=2,max=60"`
	Email string `json:"email" validate:"required,email"`
}

type themePayload struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

type selectProductPayload struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
}

// SessionCreate mints a fresh session token. This is the only
// unauthenticated storefront endpoint; everything else requires the
// returned token in the session header.
func SessionCreate(cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		token, sessionID, err := session.MintToken(cfg, time.Now())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		w.Header().Set(cfg.CookieName, token)
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"token":      token,
			"session_id": sessionID,
			"expires_in": int(cfg.TTL.Seconds()),
		})
	}
}

// SignIn records the mock user for this session. No password, no
// account: the storefront demo just remembers the name and email.
func SignIn(stateStore *session.State, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload signInPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user := session.User{
			Name:  strings.TrimSpace(payload.Name),
			Email: strings.ToLower(strings.TrimSpace(payload.Email)),
		}
		if err := stateStore.SaveUser(ctx, middleware.SessionID(ctx), user); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// SignOut forgets the mock user. Cart and wishlist stay.
func SignOut(stateStore *session.State, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := stateStore.ClearUser(ctx, middleware.SessionID(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "signed_out"})
	}
}

// CurrentUser returns the mock signed-in user, if any.
func CurrentUser(stateStore *session.State, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user, err := stateStore.LoadUser(ctx, middleware.SessionID(ctx))
		if err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
				responses.WriteSuccess(w, map[string]any{"user": nil})
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"user": user})
	}
}

// ThemeGet returns the persisted theme, defaulting to light.
func ThemeGet(snapshots state.SnapshotStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		payload, err := snapshots.Load(ctx, middleware.SessionID(ctx), state.KeyTheme)
		if err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
				responses.WriteSuccess(w, map[string]string{"theme": "light"})
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"theme": string(payload)})
	}
}

// ThemeSet persists the theme choice. Unlike the promo, the theme is
// durable: it survives new sessions on the same profile.
func ThemeSet(snapshots state.SnapshotStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload themePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := snapshots.Save(ctx, middleware.SessionID(ctx), state.KeyTheme, []byte(payload.Theme)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"theme": payload.Theme})
	}
}

// SelectProduct remembers which product the detail view shows.
func SelectProduct(stateStore *session.State, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload selectProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := stateStore.SaveSelectedProduct(ctx, middleware.SessionID(ctx), payload.ProductID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"product_id": payload.ProductID})
	}
}

// SelectedProduct returns the remembered detail-view product id.
func SelectedProduct(stateStore *session.State, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := stateStore.LoadSelectedProduct(ctx, middleware.SessionID(ctx))
		if err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
				responses.WriteSuccess(w, map[string]any{"product_id": nil})
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"product_id": id})
	}
}
