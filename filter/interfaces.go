package filter

import (
	"context"

	"github.com/s0up4200/trbridge/bridge"
)

// Filter defines the basic interface for torrent filters
type Filter interface {
	// Evaluate checks if a torrent matches the filter criteria
	Evaluate(record bridge.Record) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the filter expression that was compiled
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator evaluates filters against torrents
type Evaluator interface {
	// Evaluate returns the records matching filter, in input order
	Evaluate(ctx context.Context, filter CompiledFilter, records []bridge.Record) ([]bridge.Record, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// WorkerPool defines the interface for concurrent work execution
type WorkerPool interface {
	// Submit queues work, blocking until a slot is free or ctx is done
	Submit(ctx context.Context, work func()) error

	// Stop gracefully stops the worker pool
	Stop(ctx context.Context) error
}
