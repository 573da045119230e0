package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/redis"
)

// Scopes for session-scoped values.
const (
	scopePromo    = "promo"
	scopeSelected = "selected_product"
	scopeUser     = "user"
)

// User is the mock signed-in account. There is no password and no
// account storage; signing in just remembers who you said you were.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// KV is the narrow key-value surface the state store needs. The
// shared redis client satisfies it.
type KV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(sessionID, scope string) string
}

// State persists session-scoped values with a TTL matching the
// session token lifetime. It implements the promo keeper surface the
// cart depends on.
type State struct {
	kv  KV
	ttl time.Duration
}

// NewState builds a session state store over the provided KV.
func NewState(kv KV, ttl time.Duration) (*State, error) {
	if kv == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	if ttl <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session ttl must be positive")
	}
	return &State{kv: kv, ttl: ttl}, nil
}

// SavePromo stores the applied promo code.
func (s *State) SavePromo(ctx context.Context, sessionID, code string) error {
	return s.set(ctx, sessionID, scopePromo, code)
}

// LoadPromo returns the applied promo code, or CodeNotFound.
func (s *State) LoadPromo(ctx context.Context, sessionID string) (string, error) {
	return s.get(ctx, sessionID, scopePromo)
}

// ClearPromo drops the applied promo.
func (s *State) ClearPromo(ctx context.Context, sessionID string) error {
	return s.del(ctx, sessionID, scopePromo)
}

// SaveSelectedProduct remembers the product open in the detail view.
func (s *State) SaveSelectedProduct(ctx context.Context, sessionID string, productID int) error {
	return s.set(ctx, sessionID, scopeSelected, strconv.Itoa(productID))
}

// LoadSelectedProduct returns the selected product id, or CodeNotFound.
func (s *State) LoadSelectedProduct(ctx context.Context, sessionID string) (int, error) {
	value, err := s.get(ctx, sessionID, scopeSelected)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(value)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode selected product")
	}
	return id, nil
}

// ClearSelectedProduct forgets the detail-view product.
func (s *State) ClearSelectedProduct(ctx context.Context, sessionID string) error {
	return s.del(ctx, sessionID, scopeSelected)
}

// SaveUser stores the mock signed-in user.
func (s *State) SaveUser(ctx context.Context, sessionID string, user User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode user")
	}
	return s.set(ctx, sessionID, scopeUser, string(payload))
}

// LoadUser returns the signed-in user, or CodeNotFound when signed out.
func (s *State) LoadUser(ctx context.Context, sessionID string) (User, error) {
	value, err := s.get(ctx, sessionID, scopeUser)
	if err != nil {
		return User{}, err
	}
	var user User
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode user")
	}
	return user, nil
}

// ClearUser signs the session out.
func (s *State) ClearUser(ctx context.Context, sessionID string) error {
	return s.del(ctx, sessionID, scopeUser)
}

func (s *State) set(ctx context.Context, sessionID, scope, value string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.kv.SessionKey(sessionID, scope), value, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save session state")
	}
	return nil
}

func (s *State) get(ctx context.Context, sessionID, scope string) (string, error) {
	if err := requireSession(sessionID); err != nil {
		return "", err
	}
	value, err := s.kv.Get(ctx, s.kv.SessionKey(sessionID, scope))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return "", pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "session state not set")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load session state")
	}
	return value, nil
}

func (s *State) del(ctx context.Context, sessionID, scope string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.kv.Del(ctx, s.kv.SessionKey(sessionID, scope)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clear session state")
	}
	return nil
}

func requireSession(sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
