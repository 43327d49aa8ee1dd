package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/metrics"
)

// State is the connection state of the manager.
type State int

const (
	// StateDisconnected means no session is reachable.
	StateDisconnected State = iota
	// StateUnauthenticated means the daemon answered but refused the credentials.
	StateUnauthenticated
	// StateAuthenticated means a usable session exists.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is an immutable view of the connection at one point in time.
type Snapshot struct {
	State   State
	Address string
	Session Session
}

// Connected reports whether the daemon was reachable.
func (s Snapshot) Connected() bool {
	return s.State != StateDisconnected
}

// Authenticated reports whether the session accepted the credentials.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}

// SessionSource exposes the current connection snapshot.
type SessionSource interface {
	Current() Snapshot
}

// ConnectionManager owns the session lifecycle.
type ConnectionManager struct {
	store  *Store
	dialer Dialer
	creds  Credentials
	logger zerolog.Logger

	connectMu sync.Mutex
	current   atomic.Pointer[Snapshot]
	attempts  atomic.Int64
}

// NewConnectionManager creates a disconnected manager and subscribes it to
// server address changes in store.
func NewConnectionManager(store *Store, dialer Dialer, creds Credentials, logger zerolog.Logger) *ConnectionManager {
	m := &ConnectionManager{
		store:  store,
		dialer: dialer,
		creds:  creds,
		logger: logger,
	}
	m.current.Store(&Snapshot{State: StateDisconnected})

	store.OnChange(KeyServerAddress, func(ctx context.Context, _, value string) {
		m.logger.Info().Str("address", value).Msg("Server address modified, reconnecting")
		_ = m.Connect(ctx)
	})

	return m
}

// Current returns the latest snapshot.
func (m *ConnectionManager) Current() Snapshot {
	return *m.current.Load()
}

// IsConnected reports whether the daemon is reachable.
func (m *ConnectionManager) IsConnected() bool {
	return m.Current().Connected()
}

// IsAuthenticated reports whether the session is authenticated.
func (m *ConnectionManager) IsAuthenticated() bool {
	return m.Current().Authenticated()
}

// Attempts returns how many times Connect has run.
func (m *ConnectionManager) Attempts() int64 {
	return m.attempts.Load()
}

// Connect performs a single connection attempt against the configured address
// and replaces the current session with the outcome.
func (m *ConnectionManager) Connect(ctx context.Context) error {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	m.attempts.Add(1)

	address, _ := m.store.Get(KeyServerAddress)
	m.logger.Info().Str("address", address).Msg("Connecting to RPC server")

	endpoint, err := ParseEndpoint(address)
	if err != nil {
		m.logger.Error().Err(err).Str("address", address).Msg("Not a valid URL, aborting connection")
		m.replace(&Snapshot{State: StateDisconnected, Address: address})
		metrics.ConnectAttempts.WithLabelValues("invalid_address").Inc()
		return err
	}

	session, err := m.dialer.Dial(ctx, endpoint, m.creds)
	switch {
	case err == nil:
		m.replace(&Snapshot{State: StateAuthenticated, Address: address, Session: session})
		metrics.ConnectAttempts.WithLabelValues("ok").Inc()
		m.logger.Info().Str("address", address).Msg("Connected to RPC server")
		return nil

	case errors.Is(err, ErrAuthRejected):
		m.replace(&Snapshot{State: StateUnauthenticated, Address: address})
		metrics.ConnectAttempts.WithLabelValues("auth_rejected").Inc()
		m.logger.Error().Err(err).Str("address", address).Msg("Authentication failure, aborting connection")
		return err

	default:
		if !errors.Is(err, ErrTransportFailure) {
			err = fmt.Errorf("%w: %w", ErrTransportFailure, err)
		}
		m.replace(&Snapshot{State: StateDisconnected, Address: address})
		metrics.ConnectAttempts.WithLabelValues("transport_failure").Inc()
		m.logger.Error().Err(err).Str("address", address).Msg("Cannot connect to RPC server")
		return err
	}
}

// Close drops the current session.
func (m *ConnectionManager) Close() error {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	prev := m.current.Swap(&Snapshot{State: StateDisconnected})
	metrics.SessionState.Set(float64(StateDisconnected))
	if prev != nil && prev.Session != nil {
		return prev.Session.Close()
	}
	return nil
}

// replace swaps in next and closes the previous session. Callers hold connectMu.
func (m *ConnectionManager) replace(next *Snapshot) {
	prev := m.current.Swap(next)
	metrics.SessionState.Set(float64(next.State))

	if prev != nil && prev.Session != nil && prev.Session != next.Session {
		if err := prev.Session.Close(); err != nil {
			m.logger.Debug().Err(err).Msg("Failed to close previous session")
		}
	}
}

// ParseEndpoint validates a server address. It must be an absolute http or
// https URL with a non-empty host.
func ParseEndpoint(address string) (Endpoint, error) {
	if address == "" {
		return Endpoint{}, fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}

	u, err := url.Parse(address)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Endpoint{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, u.Scheme)
	}
	if u.Hostname() == "" {
		return Endpoint{}, fmt.Errorf("%w: missing host", ErrInvalidAddress)
	}

	endpoint := Endpoint{
		Scheme: u.Scheme,
		Host:   u.Hostname(),
		Path:   u.Path,
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Endpoint{}, fmt.Errorf("%w: bad port %q", ErrInvalidAddress, p)
		}
		endpoint.Port = port
	}

	return endpoint, nil
}
