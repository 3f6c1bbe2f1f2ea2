package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// QuotaReader reports the daily generation quota counters.
type QuotaReader interface {
	Used() int64
	Limit() int64
	Remaining() int64
	ResetDate() string
}
