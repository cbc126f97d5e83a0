// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels for admin login and user registration.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)

	// Admin metrics
	IncAdminRegistered()
	IncAdminLogin(outcome string) // outcome: "success", "failure", "error"

	// Registration metrics
	IncUserRegistered(outcome string) // outcome: "success", "conflict", "error"
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
