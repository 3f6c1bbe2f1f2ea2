// Package quota enforces the daily cap on generation requests.
package quota

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/clausewise/internal/domain"
	"github.com/kailas-cloud/clausewise/internal/metrics"
)

// Store is the persistence interface for quota counters.
// Implementations must be idempotent (IncrBy can be called repeatedly).
type Store interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Tracker is an in-memory daily request counter with optional persistence.
// Hot path (Check) is in-memory only, no round-trip.
// Record updates in-memory first, then write-behind to store.
type Tracker struct {
	mu           sync.Mutex
	dailyUsed    int64
	dailyLimit   int64
	lastDayReset time.Time
	store        Store
	logger       *zap.Logger
}

// NewTracker creates a quota tracker. dailyLimit of 0 means unlimited.
func NewTracker(dailyLimit int64, logger *zap.Logger) *Tracker {
	return &Tracker{
		dailyLimit:   dailyLimit,
		lastDayReset: truncateToDay(time.Now().UTC()),
		logger:       logger,
	}
}

// WithStore attaches a persistence store and loads today's counter.
func (t *Tracker) WithStore(ctx context.Context, store Store) *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store = store
	val, err := store.Get(ctx, dailyKey(time.Now().UTC()))
	if err != nil {
		t.logger.Warn("Failed to load quota counter from store", zap.Error(err))
		return t
	}
	t.dailyUsed = val
	t.logger.Info("Quota counter loaded from store", zap.Int64("daily_used", val))
	t.updateGauge()
	return t
}

// Check verifies the quota allows a new generation request.
// In-memory only (hot path).
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()
	if t.dailyLimit > 0 && t.dailyUsed >= t.dailyLimit {
		return domain.ErrQuotaExceeded
	}
	return nil
}

// Record registers one consumed generation request.
// Updates the in-memory counter, then write-behind to store (if attached).
func (t *Tracker) Record() {
	t.mu.Lock()
	t.resetIfNeeded()
	t.dailyUsed++
	t.updateGauge()
	store := t.store
	key := dailyKey(time.Now().UTC())
	t.mu.Unlock()

	if store == nil {
		return
	}

	// Write-behind with a background context so store writes never block
	// the request path.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := store.IncrBy(ctx, key, 1); err != nil {
		t.logger.Warn("Failed to persist quota counter", zap.String("key", key), zap.Error(err))
	}
}

// Used returns requests consumed today.
func (t *Tracker) Used() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.dailyUsed
}

// Limit returns the daily request cap (0 means unlimited).
func (t *Tracker) Limit() int64 { return t.dailyLimit }

// Remaining returns requests left today (-1 if unlimited).
func (t *Tracker) Remaining() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()
	return t.remainingLocked()
}

// ResetDate returns the UTC date the counter resets on (tomorrow).
func (t *Tracker) ResetDate() string {
	return truncateToDay(time.Now().UTC()).AddDate(0, 0, 1).Format("2006-01-02")
}

func (t *Tracker) remainingLocked() int64 {
	if t.dailyLimit == 0 {
		return -1 // unlimited
	}
	remaining := t.dailyLimit - t.dailyUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// resetIfNeeded zeroes the counter when the UTC day rolls over.
func (t *Tracker) resetIfNeeded() {
	today := truncateToDay(time.Now().UTC())
	if today.After(t.lastDayReset) {
		t.dailyUsed = 0
		t.lastDayReset = today
		t.updateGauge()
	}
}

func (t *Tracker) updateGauge() {
	if r := t.remainingLocked(); r >= 0 {
		metrics.QuotaRequestsRemaining.Set(float64(r))
	}
}

func dailyKey(t time.Time) string {
	return domain.KeyPrefix + "quota:generation:daily:" + t.Format("2006-01-02")
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
