package session

import (
	"context"
	"sync"

	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/ethereum/go-ethereum/common"
)

// Storage persists sessions keyed by the wallet that created them
type Storage interface {
	// GetSession returns the stored session of wallet, nil when there is none
	GetSession(ctx context.Context, wallet common.Address) (*types.Session, error)
	// SetSession stores session for wallet. A nil session removes it.
	SetSession(ctx context.Context, wallet common.Address, session *types.Session) error
}

var _ Storage = (*MemoryStorage)(nil)

// MemoryStorage keeps sessions for the life of the process
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[common.Address]types.Session
}

// NewMemoryStorage returns an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: map[common.Address]types.Session{},
	}
}

// GetSession returns a copy of the stored session
func (m *MemoryStorage) GetSession(_ context.Context, wallet common.Address) (*types.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[wallet]
	if !ok {
		return nil, nil
	}

	return &s, nil
}

// SetSession stores a copy of session
func (m *MemoryStorage) SetSession(_ context.Context, wallet common.Address, session *types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session == nil {
		delete(m.sessions, wallet)
		return nil
	}
	m.sessions[wallet] = *session

	return nil
}
