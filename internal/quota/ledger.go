package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/domain/entities"
	"github.com/adiwidya/voxgate/server/domain/repositories"
)

// ErrInvalidKey covers unknown, malformed and disabled access keys. No
// quota is consumed for requests failing with it.
var ErrInvalidKey = errors.New("invalid access key")

// ErrQuotaExceeded is the sentinel matched by errors.Is for quota failures.
var ErrQuotaExceeded = errors.New("daily quota exceeded")

// QuotaExceededError carries the reset-time hint surfaced to callers.
type QuotaExceededError struct {
	Limit    int
	ResetsAt time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily quota of %d calls exceeded, resets at %s",
		e.Limit, e.ResetsAt.Format(time.RFC3339))
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// Reservation is one consumed quota unit, taken before pipeline execution
// so that a crash mid-pipeline still counts against the key.
type Reservation struct {
	ID        string
	KeyID     string
	Tier      entities.Tier
	Usage     entities.UsageRecord // snapshot after the increment
	committed atomic.Bool
}

// Ledger tracks calls-per-day per access key against the tier limit.
//
// The read-modify-write of a usage record is the single critical section in
// the system: two concurrent reserves against a key with one remaining unit
// must admit exactly one. Provider calls and safety checks never run under
// the lock.
type Ledger struct {
	store  repositories.KeyStore
	logger *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewLedger creates a ledger over the given store.
func NewLedger(store repositories.KeyStore, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Reserve validates the key, rolls the window over when a new UTC day has
// begun, and consumes one quota unit. Every attempt, successful or failed
// downstream, keeps its unit; retried failures are not refunded.
func (l *Ledger) Reserve(ctx context.Context, key string) (*Reservation, error) {
	if err := entities.ValidateKeyFormat(key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	accessKey, err := l.store.GetKey(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: unknown key", ErrInvalidKey)
		}
		return nil, fmt.Errorf("key lookup failed: %w", err)
	}
	if accessKey.Disabled {
		return nil, fmt.Errorf("%w: key disabled", ErrInvalidKey)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	record, err := l.store.GetUsage(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrKeyNotFound) {
			return nil, fmt.Errorf("usage lookup failed: %w", err)
		}
		record = entities.NewUsageRecord(key, accessKey.Tier, now)
	}

	// Reset-then-increment is a single atomic step under the lock.
	if record.WindowExpired(now) {
		record.ResetWindow(now)
	}

	if record.CallsToday >= record.DailyLimit {
		return nil, &QuotaExceededError{
			Limit:    record.DailyLimit,
			ResetsAt: record.ResetsAt(),
		}
	}

	record.CallsToday++
	if err := l.store.PutUsage(ctx, record); err != nil {
		return nil, fmt.Errorf("usage update failed: %w", err)
	}

	l.logger.Debug("Quota reserved",
		zap.String("key", key),
		zap.Int("calls_today", record.CallsToday),
		zap.Int("daily_limit", record.DailyLimit))

	return &Reservation{
		ID:    uuid.NewString(),
		KeyID: key,
		Tier:  accessKey.Tier,
		Usage: *record,
	}, nil
}

// Commit records the terminal outcome of the reserved attempt. It is
// bookkeeping only: the count was already consumed at Reserve time and is
// never mutated here. Committing the same reservation twice is a no-op.
func (l *Ledger) Commit(ctx context.Context, res *Reservation, outcome entities.Outcome) {
	if res == nil || !res.committed.CompareAndSwap(false, true) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record, err := l.store.GetUsage(ctx, res.KeyID)
	if err != nil {
		l.logger.Warn("Commit skipped, usage record unavailable",
			zap.String("key", res.KeyID), zap.Error(err))
		return
	}

	record.LastOutcome = outcome
	record.LastCallAt = l.now()
	if err := l.store.PutUsage(ctx, record); err != nil {
		l.logger.Warn("Commit failed to persist outcome",
			zap.String("key", res.KeyID), zap.Error(err))
	}
}

// Peek returns the current usage projection for a key without consuming
// quota. A key that never made a call reports a zeroed current window.
func (l *Ledger) Peek(ctx context.Context, key string) (*entities.UsageRecord, error) {
	if err := entities.ValidateKeyFormat(key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	accessKey, err := l.store.GetKey(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: unknown key", ErrInvalidKey)
		}
		return nil, fmt.Errorf("key lookup failed: %w", err)
	}
	if accessKey.Disabled {
		return nil, fmt.Errorf("%w: key disabled", ErrInvalidKey)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	record, err := l.store.GetUsage(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrKeyNotFound) {
			return nil, fmt.Errorf("usage lookup failed: %w", err)
		}
		return entities.NewUsageRecord(key, accessKey.Tier, now), nil
	}

	if record.WindowExpired(now) {
		// Report the fresh window without persisting; the next Reserve
		// performs the actual rollover.
		projected := *record
		projected.ResetWindow(now)
		return &projected, nil
	}
	return record, nil
}
