package testutil

import (
	"testing"
	"time"

	"vocabox/internal/domain"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewDevelopmentLogger creates a test logger on which DPanic panics
func NewDevelopmentLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.Development()))
}

// Clock is a manually advanced clock
type Clock struct {
	now time.Time
}

// NewClock creates a clock frozen at now
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// NewTestUser creates a test user
func NewTestUser(userID int64, authorized bool) *domain.User {
	return &domain.User{
		UserID:     userID,
		Authorized: authorized,
		CreatedAt:  time.Now(),
	}
}

// NewTestRecord creates a word record in box due at nextReview
func NewTestRecord(id string, box int, nextReview time.Time) domain.WordRecord {
	return domain.WordRecord{
		ID:          id,
		Word:        "word-" + id,
		Translation: "translation-" + id,
		Box:         box,
		NextReview:  nextReview,
		DateAdded:   nextReview.Add(-time.Hour),
	}
}
