package ws

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limits throttles inbound messages on one connection. Zero
// MessagesPerSecond disables throttling.
type Limits struct {
	MessagesPerSecond float64
	Burst             int
}

func (l Limits) rate() (rate.Limit, int) {
	if l.MessagesPerSecond <= 0 {
		return rate.Inf, 0
	}
	burst := l.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.Limit(l.MessagesPerSecond), burst
}

// limiterSet hands out per-connection limiters and retunes all of them when
// the limits change.
type limiterSet struct {
	mu       sync.Mutex
	limits   Limits
	limiters map[*rate.Limiter]struct{}
}

func newLimiterSet(limits Limits) *limiterSet {
	return &limiterSet{
		limits:   limits,
		limiters: make(map[*rate.Limiter]struct{}),
	}
}

// acquire returns a limiter for a new connection and its release func.
func (s *limiterSet) acquire() (*rate.Limiter, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := rate.NewLimiter(s.limits.rate())
	s.limiters[l] = struct{}{}

	return l, func() {
		s.mu.Lock()
		delete(s.limiters, l)
		s.mu.Unlock()
	}
}

func (s *limiterSet) set(limits Limits) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.limits = limits
	limit, burst := limits.rate()
	for l := range s.limiters {
		l.SetBurst(burst)
		l.SetLimit(limit)
	}
}

func (s *limiterSet) current() Limits {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limits
}

func (s *limiterSet) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

