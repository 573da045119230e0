// Package session identifies one browser profile and holds the state
// that lives only as long as the session: the applied promo, the
// product open in the detail view, and the mock signed-in user. The
// cart and wishlist outlive sessions; this package does not.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/premiumstore/premiumstore-backend/pkg/config"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// SessionClaims are the JWT claims carried by a session token. The
// session id rides in the standard subject claim.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// MintToken issues a signed session token for a fresh session id.
func MintToken(cfg config.SessionConfig, now time.Time) (token string, sessionID string, err error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeInternal, "session secret is required")
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeInternal, "session issuer is required")
	}
	if cfg.TTL <= 0 {
		return "", "", pkgerrors.New(pkgerrors.CodeInternal, "session ttl must be positive")
	}

	sessionID = uuid.NewString()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "signing session token")
	}
	return signed, sessionID, nil
}

// ParseToken validates a session token and returns the session id.
func ParseToken(cfg config.SessionConfig, tokenString string) (string, error) {
	if strings.TrimSpace(tokenString) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session token is required")
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token")
	}
	if claims.Subject == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session token missing subject")
	}
	return claims.Subject, nil
}
