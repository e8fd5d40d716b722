package ports

import "context"

// HealthChecker reports whether one backing dependency is usable.
type HealthChecker interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckFunc adapts a probe function to HealthChecker.
type CheckFunc struct {
	Dependency string
	Probe      func(ctx context.Context) error
}

func (c CheckFunc) Name() string { return c.Dependency }

func (c CheckFunc) Ping(ctx context.Context) error { return c.Probe(ctx) }
