package entities

import (
	"errors"
	"strings"
	"time"
)

// AccessKeyPrefix is the recognized prefix of issued access keys.
const AccessKeyPrefix = "vg_"

// AccessKey is the caller credential gating quota and tier.
type AccessKey struct {
	ID        string    `json:"id" bson:"_id"`
	Tier      Tier      `json:"tier" bson:"tier"`
	Label     string    `json:"label,omitempty" bson:"label,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Disabled  bool      `json:"disabled" bson:"disabled"`
}

var ErrInvalidKeyFormat = errors.New("access key format not recognized")

// ValidateKeyFormat checks the shape of a key before any store lookup.
func ValidateKeyFormat(key string) error {
	if key == "" || !strings.HasPrefix(key, AccessKeyPrefix) {
		return ErrInvalidKeyFormat
	}
	if len(key) <= len(AccessKeyPrefix) {
		return ErrInvalidKeyFormat
	}
	return nil
}
