package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	HTTPRequests         uint64
	HTTPDurationTotalNs  int64
	HTTPRequestsByStatus map[int]uint64
	AdminsRegistered     uint64
	AdminLogins          map[string]uint64
	UsersRegistered      map[string]uint64
	RateLimited          uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	httpRequests        uint64
	httpDurationTotalNs int64
	adminsRegistered    uint64
	rateLimited         uint64

	mu              sync.Mutex
	httpByStatus    map[int]uint64
	adminLogins     map[string]uint64
	usersRegistered map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		httpByStatus:    make(map[int]uint64),
		adminLogins:     make(map[string]uint64),
		usersRegistered: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		HTTPRequests:         atomic.LoadUint64(&m.httpRequests),
		HTTPDurationTotalNs:  atomic.LoadInt64(&m.httpDurationTotalNs),
		HTTPRequestsByStatus: copyMap(m.httpByStatus),
		AdminsRegistered:     atomic.LoadUint64(&m.adminsRegistered),
		AdminLogins:          copyMap(m.adminLogins),
		UsersRegistered:      copyMap(m.usersRegistered),
		RateLimited:          atomic.LoadUint64(&m.rateLimited),
	}
}

// ObserveHTTPRequest records one served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
	atomic.AddInt64(&m.httpDurationTotalNs, duration.Nanoseconds())

	m.mu.Lock()
	m.httpByStatus[status]++
	m.mu.Unlock()
}

// IncAdminRegistered increments the admin registration counter.
func (m *InMemoryRecorder) IncAdminRegistered() {
	atomic.AddUint64(&m.adminsRegistered, 1)
}

// IncAdminLogin increments the login counter for outcome.
func (m *InMemoryRecorder) IncAdminLogin(outcome string) {
	m.mu.Lock()
	m.adminLogins[outcome]++
	m.mu.Unlock()
}

// IncUserRegistered increments the registration counter for outcome.
func (m *InMemoryRecorder) IncUserRegistered(outcome string) {
	m.mu.Lock()
	m.usersRegistered[outcome]++
	m.mu.Unlock()
}

// IncRateLimited increments the rate-limited counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

func copyMap[K comparable](src map[K]uint64) map[K]uint64 {
	dst := make(map[K]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
