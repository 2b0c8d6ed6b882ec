package vector

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker guarding a remote index.
type BreakerSettings struct {
	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32
	// Interval is the cyclic period for clearing counts while closed.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// FailureRatio trips the breaker once exceeded. Defaults to 0.6.
	FailureRatio float64
}

// BreakerIndex wraps a remote Index with a circuit breaker so a degraded
// vector backend fails fast instead of stacking up blocked queries. The
// pipeline itself never retries; the breaker only shortcuts calls that are
// known to be failing.
type BreakerIndex struct {
	inner Index
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerIndex wraps inner with a circuit breaker.
func NewBreakerIndex(inner Index, settings BreakerSettings) *BreakerIndex {
	ratio := settings.FailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "vector-index",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= ratio
		},
	})
	return &BreakerIndex{inner: inner, cb: cb}
}

// Search implements Index.
func (b *BreakerIndex) Search(ctx context.Context, queryVector []float32, topK int, filter map[string]interface{}) ([]Hit, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Search(ctx, queryVector, topK, filter)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Hit), nil
}
