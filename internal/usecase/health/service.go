package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Capabilities reports which collaborators are wired. Flags only, no internals.
type Capabilities struct {
	KnowledgeSource    bool
	GroundedCompletion bool
}

// Report aggregates health check results.
type Report struct {
	Status       Status
	Capabilities Capabilities
	Checks       map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	grounded GroundedChecker
	caps     Capabilities
}

// New creates a Service. db and grounded can be nil.
func New(db DBPinger, grounded GroundedChecker, caps Capabilities) *Service {
	return &Service{db: db, grounded: grounded, caps: caps}
}

// Capabilities returns the wired capability flags.
func (s *Service) Capabilities() Capabilities { return s.caps }

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		checks["database"] = result(s.db.Ping(ctx))
	}
	if s.grounded != nil {
		checks["grounded_completion"] = result(s.grounded.HealthCheck(ctx))
	}

	status := Healthy
	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}
	switch {
	case failed > 0 && failed == len(checks) && !s.caps.KnowledgeSource:
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Capabilities: s.caps, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
