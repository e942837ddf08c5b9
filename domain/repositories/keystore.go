package repositories

import (
	"context"
	"errors"

	"github.com/adiwidya/voxgate/server/domain/entities"
)

// ErrKeyNotFound is returned by KeyStore lookups for unknown access keys.
var ErrKeyNotFound = errors.New("access key not found")

// KeyStore persists access keys and their usage records. Implementations
// only need to be a consistent key-value store; the ledger serializes all
// read-modify-write cycles on usage records itself.
type KeyStore interface {
	// GetKey looks up an access key by its full key string.
	GetKey(ctx context.Context, keyID string) (*entities.AccessKey, error)
	// PutKey creates or replaces an access key.
	PutKey(ctx context.Context, key *entities.AccessKey) error

	// GetUsage returns the usage record for a key, or ErrKeyNotFound when
	// the key has never consumed quota.
	GetUsage(ctx context.Context, keyID string) (*entities.UsageRecord, error)
	// PutUsage creates or replaces a usage record.
	PutUsage(ctx context.Context, record *entities.UsageRecord) error
}
