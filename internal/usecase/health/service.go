// Package health aggregates component liveness for the /health endpoint.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// QuotaStatus is the daily generation quota snapshot.
type QuotaStatus struct {
	RequestsUsed      int64
	MaxRequests       int64
	RequestsRemaining int64
	ResetDate         string
}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Quota  *QuotaStatus
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	quota     QuotaReader
}

// New creates a Service. embedding and quota can be nil.
func New(db DBPinger, embedding EmbeddingChecker, quota QuotaReader) *Service {
	return &Service{db: db, embedding: embedding, quota: quota}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	report := Report{Status: status, Checks: checks}
	if s.quota != nil {
		report.Quota = &QuotaStatus{
			RequestsUsed:      s.quota.Used(),
			MaxRequests:       s.quota.Limit(),
			RequestsRemaining: s.quota.Remaining(),
			ResetDate:         s.quota.ResetDate(),
		}
	}
	return report
}
