package bridge

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/metrics"
)

// Guard runs fn against the current session only when the connection is usable.
// Otherwise fn is not invoked and the zero value is returned, tagged
// OutcomeDisconnected or OutcomeUnauthenticated. Guard never waits for a reconnect.
func Guard[T any](src SessionSource, operation string, logger zerolog.Logger, fn func(Session) Result[T]) Result[T] {
	snap := src.Current()

	if !snap.Connected() {
		logger.Warn().Str("operation", operation).Msg("Function call prevented, client is not connected")
		metrics.GuardRejections.WithLabelValues(operation, "disconnected").Inc()
		return Result[T]{
			Outcome: OutcomeDisconnected,
			Err:     fmt.Errorf("%s: %w: not connected", operation, ErrPreconditionFailed),
		}
	}

	if !snap.Authenticated() || snap.Session == nil {
		logger.Warn().Str("operation", operation).Msg("Function call prevented, client is not authenticated")
		metrics.GuardRejections.WithLabelValues(operation, "unauthenticated").Inc()
		return Result[T]{
			Outcome: OutcomeUnauthenticated,
			Err:     fmt.Errorf("%s: %w: not authenticated", operation, ErrPreconditionFailed),
		}
	}

	return fn(snap.Session)
}
