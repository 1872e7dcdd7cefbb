package breaker

import (
	"errors"
	"time"

	"github.com/klarkent2022/smart-irrigation/internal/config"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// New returns a breaker that opens after cfg.MaxFailures consecutive failures
// and lets one probe through after cfg.TimeoutSeconds.
func New(name string, cfg config.BreakerConf, logger *zap.Logger) *gobreaker.CircuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return gobreaker.NewCircuitBreaker(st)
}

// Open reports whether err was returned because the breaker refused the call.
func Open(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
