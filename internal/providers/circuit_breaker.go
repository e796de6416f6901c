package providers

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// BreakerSet holds one circuit breaker per upstream host, created on first
// use.
type BreakerSet struct {
	mu        sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker
	threshold uint32
	timeout   time.Duration
	logger    *logrus.Entry
}

func NewBreakerSet(threshold int, timeout time.Duration, logger *logrus.Entry) *BreakerSet {
	if threshold < 1 {
		threshold = 1
	}
	return &BreakerSet{
		breakers:  make(map[string]*gobreaker.CircuitBreaker),
		threshold: uint32(threshold),
		timeout:   timeout,
		logger:    logger,
	}
}

func (b *BreakerSet) get(host string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if breaker, ok := b.breakers[host]; ok {
		return breaker
	}

	threshold := b.threshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     b.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.WithFields(logrus.Fields{
				"host": name,
				"from": from.String(),
				"to":   to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
	b.breakers[host] = breaker
	return breaker
}

// Execute runs fn behind the breaker for host
func (b *BreakerSet) Execute(host string, fn func() (interface{}, error)) (interface{}, error) {
	return b.get(host).Execute(fn)
}

// State reports the breaker state for host, closed when never used
func (b *BreakerSet) State(host string) gobreaker.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if breaker, ok := b.breakers[host]; ok {
		return breaker.State()
	}
	return gobreaker.StateClosed
}
