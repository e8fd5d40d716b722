package postgres

import (
	"context"
	"errors"
	"fmt"

	"palma-lending/internal/core/ports"
)

// NewHealthCheck probes the database and the event journal table. A reachable
// database without the journal is reported as unhealthy.
func NewHealthCheck(pool Pool) ports.HealthChecker {
	return ports.CheckFunc{
		Dependency: "postgresql",
		Probe: func(ctx context.Context) error {
			var present bool
			if err := pool.QueryRow(ctx, `SELECT to_regclass('ledger_events') IS NOT NULL`).Scan(&present); err != nil {
				return fmt.Errorf("probing journal: %w", err)
			}
			if !present {
				return errors.New("ledger_events table missing")
			}
			return nil
		},
	}
}
