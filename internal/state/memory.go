package state

import (
	"context"
	"sync"

	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
)

// Memory is a process-local SnapshotStore. It backs tests and can run
// the whole store without a database.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory builds an empty in-memory snapshot store.
func NewMemory() *Memory {
	return &Memory{blobs: map[string][]byte{}}
}

func (m *Memory) Save(_ context.Context, sessionID, key string, payload []byte) error {
	if err := validateSnapshotKey(sessionID, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]byte, len(payload))
	copy(copied, payload)
	m.blobs[sessionID+"/"+key] = copied
	return nil
}

func (m *Memory) Load(_ context.Context, sessionID, key string) ([]byte, error) {
	if err := validateSnapshotKey(sessionID, key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.blobs[sessionID+"/"+key]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "snapshot not found")
	}
	copied := make([]byte, len(payload))
	copy(copied, payload)
	return copied, nil
}

func (m *Memory) Delete(_ context.Context, sessionID, key string) error {
	if err := validateSnapshotKey(sessionID, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, sessionID+"/"+key)
	return nil
}
