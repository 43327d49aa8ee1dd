package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/s0up4200/trbridge/bridge"
)

// Manager compiles ad-hoc expressions and named presets and applies them to
// torrent listings
type Manager struct {
	compiler  Compiler
	evaluator *ConcurrentEvaluator
	presets   map[string]CompiledFilter
	fallback  string
	mu        sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithEvaluator sets a custom evaluator
func WithEvaluator(evaluator *ConcurrentEvaluator) ManagerOption {
	return func(m *Manager) {
		m.evaluator = evaluator
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		presets: make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.compiler == nil {
		m.compiler = NewExprCompiler(WithCache(100))
	}
	if m.evaluator == nil {
		m.evaluator = NewConcurrentEvaluator()
	}

	return m
}

// Compile turns a user expression into a filter. Shorthand terms are
// converted first; an empty expression matches everything.
func (m *Manager) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return matchAll{}, nil
	}

	if IsShorthand(expression) {
		converted, err := ConvertShorthand(expression)
		if err != nil {
			return nil, err
		}
		expression = converted
	}

	return m.compiler.Compile(expression)
}

// RegisterPresets compiles all presets, registering none if any fails
func (m *Manager) RegisterPresets(presets map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(presets))

	for name, expression := range presets {
		filter, err := m.Compile(expression)
		if err != nil {
			return fmt.Errorf("failed to compile preset '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	maps.Copy(m.presets, compiled)
	m.mu.Unlock()

	return nil
}

// SetDefault names the preset applied when a listing requests no filter
func (m *Manager) SetDefault(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name != "" {
		if _, exists := m.presets[name]; !exists {
			return fmt.Errorf("%w: %s", ErrUnknownPreset, name)
		}
	}
	m.fallback = name
	return nil
}

// Preset returns a compiled preset by name
func (m *Manager) Preset(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filter, exists := m.presets[name]
	return filter, exists
}

// Presets returns the registered preset names, sorted
func (m *Manager) Presets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.presets))
}

// Select picks the filter for a listing: an explicit expression wins, then a
// named preset, then the default preset.
func (m *Manager) Select(expression, preset string) (CompiledFilter, error) {
	if strings.TrimSpace(expression) != "" {
		return m.Compile(expression)
	}

	m.mu.RLock()
	if preset == "" {
		preset = m.fallback
	}
	m.mu.RUnlock()

	if preset == "" {
		return matchAll{}, nil
	}

	filter, exists := m.Preset(preset)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, preset)
	}
	return filter, nil
}

// Apply filters records with the given filter
func (m *Manager) Apply(ctx context.Context, filter CompiledFilter, records []bridge.Record) ([]bridge.Record, error) {
	if _, ok := filter.(matchAll); ok {
		return records, nil
	}
	return m.evaluator.Evaluate(ctx, filter, records)
}

// Close gracefully shuts down the manager
func (m *Manager) Close(ctx context.Context) error {
	return m.evaluator.Stop(ctx)
}

// matchAll is the filter used when nothing was requested
type matchAll struct{}

func (matchAll) Evaluate(bridge.Record) bool { return true }

func (matchAll) Expression() string { return "" }
