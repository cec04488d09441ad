// Package network provides the HTTP transport for the vessel simulation: the
// server that exposes the engine to external callers and a client wrapped in
// a circuit breaker for reliable operation against a flaky server.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-vesselsim/pkg/config"
	"github.com/opd-ai/go-vesselsim/pkg/logging"
)

// BreakerService wraps outbound operations with circuit breaker
// functionality to prevent cascading failures and provide graceful
// degradation while the simulation server is unreachable.
type BreakerService struct {
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
}

// Operation represents a function that performs one outbound request.
type Operation func() error

// NewBreakerService creates a BreakerService configured from environment
// settings.
func NewBreakerService(envConfig *config.EnvironmentConfig) *BreakerService {
	logger := logging.NewLogger()

	settings := gobreaker.Settings{
		Name:        "vesselsim-client",
		MaxRequests: uint32(envConfig.CircuitBreakerMaxRequests),
		Interval:    envConfig.CircuitBreakerInterval,
		Timeout:     envConfig.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(envConfig.CircuitBreakerMaxConsecutiveFails)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &BreakerService{
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Execute runs an operation through the circuit breaker. If the circuit is
// open the operation is rejected immediately.
func (bs *BreakerService) Execute(ctx context.Context, operation Operation) error {
	_, err := bs.breaker.Execute(func() (interface{}, error) {
		return nil, operation()
	})
	if err != nil {
		bs.logger.LogWithContext(ctx, slog.LevelWarn, "circuit breaker execution failed",
			"error", err,
			"state", bs.breaker.State().String(),
		)
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return nil
}

// ExecuteWithRetry runs an operation with retry and linear backoff. Retries
// stop early when the circuit opens.
func (bs *BreakerService) ExecuteWithRetry(ctx context.Context, operation Operation) error {
	const maxRetries = 3
	baseDelay := 500 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = bs.Execute(ctx, operation); err == nil {
			return nil
		}

		if bs.breaker.State() == gobreaker.StateOpen {
			return err
		}
		if attempt == maxRetries-1 {
			return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, err)
		}

		delay := time.Duration(attempt+1) * baseDelay
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

// State exposes the current breaker state for health reporting.
func (bs *BreakerService) State() gobreaker.State {
	return bs.breaker.State()
}
