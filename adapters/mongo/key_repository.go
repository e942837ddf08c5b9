package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adiwidya/voxgate/server/domain/entities"
	"github.com/adiwidya/voxgate/server/domain/repositories"
)

// KeyRepository implements KeyStore on MongoDB. Access keys and usage
// records live in separate collections keyed by the full key string.
type KeyRepository struct {
	keys  *mongo.Collection
	usage *mongo.Collection
}

var _ repositories.KeyStore = (*KeyRepository)(nil)

// NewKeyRepository creates a MongoDB key store.
func NewKeyRepository(db *mongo.Database) *KeyRepository {
	return &KeyRepository{
		keys:  db.Collection("access_keys"),
		usage: db.Collection("usage_records"),
	}
}

func (r *KeyRepository) GetKey(ctx context.Context, keyID string) (*entities.AccessKey, error) {
	var key entities.AccessKey
	err := r.keys.FindOne(ctx, bson.M{"_id": keyID}).Decode(&key)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get access key: %w", err)
	}
	return &key, nil
}

func (r *KeyRepository) PutKey(ctx context.Context, key *entities.AccessKey) error {
	if key == nil || key.ID == "" {
		return errors.New("access key and its ID are required")
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.keys.ReplaceOne(ctx, bson.M{"_id": key.ID}, key, opts); err != nil {
		return fmt.Errorf("failed to put access key: %w", err)
	}
	return nil
}

func (r *KeyRepository) GetUsage(ctx context.Context, keyID string) (*entities.UsageRecord, error) {
	var record entities.UsageRecord
	err := r.usage.FindOne(ctx, bson.M{"access_key_id": keyID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get usage record: %w", err)
	}
	return &record, nil
}

func (r *KeyRepository) PutUsage(ctx context.Context, record *entities.UsageRecord) error {
	if record == nil || record.AccessKeyID == "" {
		return errors.New("usage record and its key ID are required")
	}

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"access_key_id": record.AccessKeyID}
	if _, err := r.usage.ReplaceOne(ctx, filter, record, opts); err != nil {
		return fmt.Errorf("failed to put usage record: %w", err)
	}
	return nil
}
