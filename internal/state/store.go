// Package state persists whole-store snapshots. Each session owns a
// small set of named blobs (cart, wishlist, theme) that are written
// wholesale on every mutation and read back on session load.
package state

import "context"

// Durable store keys.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeyTheme    = "theme"
)

// SnapshotStore is the durable key-value surface the domain services
// save through. Load returns a CodeNotFound error when no snapshot
// exists for the session/key pair.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID, key string, payload []byte) error
	Load(ctx context.Context, sessionID, key string) ([]byte, error)
	Delete(ctx context.Context, sessionID, key string) error
}
