package bridge

import "fmt"

// Outcome tags the result of a bridge call.
type Outcome int

const (
	// OutcomeOK means the call succeeded and Value is set.
	OutcomeOK Outcome = iota
	// OutcomeNotFound means the referenced torrent id or config key does not exist.
	OutcomeNotFound
	// OutcomeDisconnected means the call was short-circuited because no session is connected.
	OutcomeDisconnected
	// OutcomeUnauthenticated means the daemon is reachable but the session is not authenticated.
	OutcomeUnauthenticated
	// OutcomeRejected means the input was refused, locally or by the daemon.
	OutcomeRejected
	// OutcomeFailed means the call failed; Err carries the cause.
	OutcomeFailed
)

var outcomeNames = map[Outcome]string{
	OutcomeOK:              "ok",
	OutcomeNotFound:        "not found",
	OutcomeDisconnected:    "disconnected",
	OutcomeUnauthenticated: "unauthenticated",
	OutcomeRejected:        "rejected",
	OutcomeFailed:          "failed",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the tagged value returned by every bridge operation.
// Value is only meaningful when Outcome is OutcomeOK, except for config writes
// that failed to persist, where Value still carries the applied value.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeOK
}

// Usable reports whether a session was available for the call.
func (r Result[T]) Usable() bool {
	return r.Outcome != OutcomeDisconnected && r.Outcome != OutcomeUnauthenticated
}

func succeeded[T any](v T) Result[T] {
	return Result[T]{Value: v, Outcome: OutcomeOK}
}

func notFound[T any](err error) Result[T] {
	return Result[T]{Outcome: OutcomeNotFound, Err: err}
}

func rejected[T any](err error) Result[T] {
	return Result[T]{Outcome: OutcomeRejected, Err: err}
}

func failed[T any](err error) Result[T] {
	return Result[T]{Outcome: OutcomeFailed, Err: err}
}
