package middleware

import (
	"context"
	"net/http"

	"github.com/premiumstore/premiumstore-backend/api/responses"
	"github.com/premiumstore/premiumstore-backend/internal/session"
	"github.com/premiumstore/premiumstore-backend/pkg/config"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
)

type sessionCtxKey struct{}

// Session validates the session token carried in the session header
// and puts the session id on the request context. Requests without a
// valid token are rejected; clients obtain one from POST /api/v1/session.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(cfg.CookieName)
			if token == "" {
				if cookie, err := r.Cookie(cfg.CookieName); err == nil {
					token = cookie.Value
				}
			}

			sessionID, err := session.ParseToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "valid session required"))
				return
			}

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the session id attached by the Session middleware.
func SessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return id
	}
	return ""
}
