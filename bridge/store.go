package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/metrics"
)

// KeyServerAddress is the store key holding the daemon RPC URL.
const KeyServerAddress = "server_address"

// ChangeHook is called after a key has been set.
type ChangeHook func(ctx context.Context, key, value string)

// Store is a string key/value configuration backed by a single JSON file.
// Keys are fixed at load time; Set never creates new keys.
type Store struct {
	path   string
	logger zerolog.Logger

	mu     sync.RWMutex
	values map[string]string

	hooksMu sync.RWMutex
	hooks   map[string][]ChangeHook
}

// LoadStore reads the configuration file at path.
func LoadStore(path string, logger zerolog.Logger) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error().Str("path", path).Msg("Config file not found")
		}
		return nil, fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrConfigUnavailable, path, err)
	}

	logger.Debug().Str("path", path).Int("keys", len(values)).Msg("Loaded config store")

	return &Store{
		path:   path,
		logger: logger,
		values: values,
		hooks:  make(map[string][]ChangeHook),
	}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value for key and whether it exists.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.values[key]
	if !exists {
		s.logger.Debug().Str("key", key).Msg("Tried to access non-existing config")
	}
	return value, exists
}

// All returns a copy of the whole configuration.
func (s *Store) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.values)
}

// OnChange registers hook to run whenever key is set.
func (s *Store) OnChange(key string, hook ChangeHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()

	s.hooks[key] = append(s.hooks[key], hook)
}

// Set updates an existing key and rewrites the file.
// The in-memory value stays updated even when the write fails.
// Hooks for key run synchronously before Set returns.
func (s *Store) Set(ctx context.Context, key, value string) Result[string] {
	result := s.apply(key, value)
	if result.Outcome == OutcomeNotFound {
		return result
	}

	s.hooksMu.RLock()
	hooks := append([]ChangeHook(nil), s.hooks[key]...)
	s.hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ctx, key, value)
	}

	return result
}

func (s *Store) apply(key, value string) Result[string] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.values[key]; !exists {
		s.logger.Debug().Str("key", key).Msg("Refusing to set non-existing config")
		return notFound[string](fmt.Errorf("config key %q not present", key))
	}

	s.values[key] = value

	if err := s.writeLocked(); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("Cannot write config")
		metrics.ConfigWrites.WithLabelValues("failed").Inc()
		return Result[string]{Value: value, Outcome: OutcomeFailed, Err: err}
	}

	metrics.ConfigWrites.WithLabelValues("ok").Inc()
	return succeeded(value)
}

// writeLocked rewrites the whole file through a temp file in the same
// directory, so a crash never leaves a truncated store. Callers hold s.mu.
func (s *Store) writeLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWriteFailed, err)
	}

	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWriteFailed, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
