package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveHTTPRequest is a no-op.
func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}

// IncAdminRegistered is a no-op.
func (n *NoopRecorder) IncAdminRegistered() {}

// IncAdminLogin is a no-op.
func (n *NoopRecorder) IncAdminLogin(outcome string) {}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered(outcome string) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}
