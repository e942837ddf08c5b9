package memory

import (
	"context"
	"sync"

	"github.com/adiwidya/voxgate/server/domain/entities"
	"github.com/adiwidya/voxgate/server/domain/repositories"
)

// KeyStore is an in-memory KeyStore used in development mode and tests.
type KeyStore struct {
	mu    sync.RWMutex
	keys  map[string]entities.AccessKey
	usage map[string]entities.UsageRecord
}

var _ repositories.KeyStore = (*KeyStore)(nil)

// NewKeyStore creates an empty in-memory store.
func NewKeyStore() *KeyStore {
	return &KeyStore{
		keys:  make(map[string]entities.AccessKey),
		usage: make(map[string]entities.UsageRecord),
	}
}

func (s *KeyStore) GetKey(ctx context.Context, keyID string) (*entities.AccessKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[keyID]
	if !ok {
		return nil, repositories.ErrKeyNotFound
	}
	copied := key
	return &copied, nil
}

func (s *KeyStore) PutKey(ctx context.Context, key *entities.AccessKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = *key
	return nil
}

func (s *KeyStore) GetUsage(ctx context.Context, keyID string) (*entities.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.usage[keyID]
	if !ok {
		return nil, repositories.ErrKeyNotFound
	}
	copied := record
	return &copied, nil
}

func (s *KeyStore) PutUsage(ctx context.Context, record *entities.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[record.AccessKeyID] = *record
	return nil
}
