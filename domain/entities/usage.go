package entities

import (
	"time"
)

// Tier is the quota class bound to an access key.
type Tier string

const (
	TierFree         Tier = "free"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// DailyLimit returns the calls-per-day allowance for the tier.
func (t Tier) DailyLimit() int {
	switch t {
	case TierProfessional:
		return 200
	case TierEnterprise:
		return 2000
	default:
		return 20
	}
}

// Valid reports whether the tier is one of the known quota classes.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierProfessional, TierEnterprise:
		return true
	}
	return false
}

// Outcome classifies how one voice-processing attempt terminated.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeBlocked Outcome = "blocked"
	OutcomeFailed  Outcome = "failed"
)

// UsageRecord tracks one access key's consumption against its daily limit.
//
// CallsToday never exceeds DailyLimit after the ledger commits, and
// WindowStart advances exactly once per UTC calendar day, resetting
// CallsToday to zero atomically with the advance. Records are created on
// first sight of a key and rolled over, never deleted.
type UsageRecord struct {
	AccessKeyID string    `json:"access_key_id" bson:"access_key_id"`
	Tier        Tier      `json:"tier" bson:"tier"`
	DailyLimit  int       `json:"daily_limit" bson:"daily_limit"`
	CallsToday  int       `json:"calls_today" bson:"calls_today"`
	WindowStart time.Time `json:"window_start" bson:"window_start"`
	LastOutcome Outcome   `json:"last_outcome,omitempty" bson:"last_outcome,omitempty"`
	LastCallAt  time.Time `json:"last_call_at,omitempty" bson:"last_call_at,omitempty"`
}

// NewUsageRecord creates a fresh record with the window anchored at the UTC
// midnight that precedes now.
func NewUsageRecord(keyID string, tier Tier, now time.Time) *UsageRecord {
	return &UsageRecord{
		AccessKeyID: keyID,
		Tier:        tier,
		DailyLimit:  tier.DailyLimit(),
		WindowStart: UTCMidnight(now),
	}
}

// Remaining returns the unused quota units in the current window.
func (u *UsageRecord) Remaining() int {
	if u.CallsToday >= u.DailyLimit {
		return 0
	}
	return u.DailyLimit - u.CallsToday
}

// WindowExpired reports whether now falls on a later UTC calendar day than
// the current window.
func (u *UsageRecord) WindowExpired(now time.Time) bool {
	return UTCMidnight(now).After(u.WindowStart)
}

// ResetWindow advances the window to the UTC day containing now and clears
// the counter. Callers must hold the ledger's critical section.
func (u *UsageRecord) ResetWindow(now time.Time) {
	u.WindowStart = UTCMidnight(now)
	u.CallsToday = 0
}

// ResetsAt returns the instant the current window rolls over, usable as a
// retry hint when the quota is exhausted.
func (u *UsageRecord) ResetsAt() time.Time {
	return u.WindowStart.Add(24 * time.Hour)
}

// UTCMidnight truncates t to the start of its UTC calendar day.
func UTCMidnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
