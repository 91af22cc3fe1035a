package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// GroundedChecker checks grounded completion service availability.
type GroundedChecker interface {
	HealthCheck(ctx context.Context) error
}
