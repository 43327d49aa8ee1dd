package bridge

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Client is the surface exposed to the HTTP layer and the CLI. Calls are
// serialized so each one runs to completion against the session before the
// next is accepted.
type Client struct {
	store *Store
	conn  *ConnectionManager
	ops   *Operations

	mu sync.Mutex
}

// NewClient wires a store and dialer into a disconnected client.
// Call Connect to establish the first session.
func NewClient(store *Store, dialer Dialer, creds Credentials, logger zerolog.Logger) *Client {
	conn := NewConnectionManager(store, dialer, creds, logger.With().Str("component", "connection").Logger())

	return &Client{
		store: store,
		conn:  conn,
		ops:   NewOperations(conn, logger.With().Str("component", "operations").Logger()),
	}
}

// Connect runs one connection attempt against the configured server address.
func (c *Client) Connect(ctx context.Context) Result[bool] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.Connect(ctx); err != nil {
		return Result[bool]{Outcome: OutcomeFailed, Err: err}
	}
	return succeeded(true)
}

// Close releases the current session.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.Close()
}

// Config returns the whole configuration map.
func (c *Client) Config() map[string]string {
	return c.store.All()
}

// ConfigValue returns the value for key, or OutcomeNotFound.
func (c *Client) ConfigValue(key string) Result[string] {
	value, exists := c.store.Get(key)
	if !exists {
		return notFound[string](nil)
	}
	return succeeded(value)
}

// SetConfig updates an existing key. Setting the server address reconnects
// before returning.
func (c *Client) SetConfig(ctx context.Context, key, value string) Result[string] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store.Set(ctx, key, value)
}

// IsConnected reports whether the daemon is reachable.
func (c *Client) IsConnected() bool {
	return c.conn.IsConnected()
}

// IsAuthenticated reports whether the session is authenticated.
func (c *Client) IsAuthenticated() bool {
	return c.conn.IsAuthenticated()
}

// State returns the current connection state.
func (c *Client) State() State {
	return c.conn.Current().State
}

// List returns every torrent.
func (c *Client) List(ctx context.Context) Result[[]Record] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ops.List(ctx)
}

// Fetch returns one torrent.
func (c *Client) Fetch(ctx context.Context, id int64) Result[Record] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ops.Fetch(ctx, id)
}

// Start starts a torrent.
func (c *Client) Start(ctx context.Context, id int64) Result[Record] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ops.Start(ctx, id)
}

// Stop stops a torrent.
func (c *Client) Stop(ctx context.Context, id int64) Result[Record] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ops.Stop(ctx, id)
}

// Add uploads the torrent file at path into downloadDir.
func (c *Client) Add(ctx context.Context, path, downloadDir string) Result[AddedTorrent] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ops.Add(ctx, path, downloadDir)
}

// Delete removes a torrent.
func (c *Client) Delete(ctx context.Context, id int64) Result[int64] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ops.Delete(ctx, id)
}
