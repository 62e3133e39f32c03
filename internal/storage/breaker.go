package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"atlasdocs/internal/config"
)

// breakerStorage guards Put and Delete with a circuit breaker so a dead object store
// fails fast instead of tying up request goroutines. It never retries.
type breakerStorage struct {
	next  Storage
	cb    *gobreaker.CircuitBreaker[ObjectInfo]
	state prometheus.Gauge
	log   zerolog.Logger
}

// NewBreaker wraps next. The gauge reports 0 closed, 1 half-open, 2 open; reg may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBreaker(next Storage, cfg config.BreakerConfig, reg prometheus.Registerer, log zerolog.Logger) (Storage, error) {
	b := &breakerStorage{
		next: next,
		log:  log,
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blob_breaker_state",
			Help: "Object storage circuit breaker state (0 closed, 1 half-open, 2 open).",
		}),
	}
	if reg != nil {
		if err := reg.Register(b.state); err != nil {
			return nil, err
		}
	}

	minRequests := cfg.MinRequests
	failureRate := cfg.FailureRate

	b.cb = gobreaker.NewCircuitBreaker[ObjectInfo](gobreaker.Settings{
		Name:        "blob-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.IntervalSec) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= failureRate
		},
		// Caller cancellation and key collisions are not backend faults.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrObjectExists)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.state.Set(stateToFloat(to))
			b.log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
	return b, nil
}

func (b *breakerStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	return b.cb.Execute(func() (ObjectInfo, error) {
		return b.next.Put(ctx, key, r, opt)
	})
}

func (b *breakerStorage) PublicURL(key string) string {
	return b.next.PublicURL(key)
}

func (b *breakerStorage) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (ObjectInfo, error) {
		return ObjectInfo{}, b.next.Delete(ctx, key)
	})
	return err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
