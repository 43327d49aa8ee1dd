package bridge

import (
	"context"
	"net"
	"net/url"
	"strconv"
)

// Session is a live, authenticated handle to the remote daemon.
type Session interface {
	// List returns every torrent in the order the daemon reports them.
	List(ctx context.Context) ([]RemoteTorrent, error)

	// Get returns one torrent, or ErrNotFound.
	Get(ctx context.Context, id int64) (RemoteTorrent, error)

	// Start resumes a torrent.
	Start(ctx context.Context, id int64) error

	// Stop pauses a torrent.
	Stop(ctx context.Context, id int64) error

	// Add uploads torrent metainfo with the given download directory.
	Add(ctx context.Context, metainfo []byte, downloadDir string) (AddedTorrent, error)

	// Remove deletes a torrent (keeping local data), or returns ErrNotFound.
	Remove(ctx context.Context, id int64) error

	// Close releases the session.
	Close() error
}

// Dialer builds sessions. Implementations must return errors wrapping
// ErrTransportFailure for network or handshake failures and ErrAuthRejected
// when the daemon refuses the credentials.
type Dialer interface {
	Dial(ctx context.Context, endpoint Endpoint, creds Credentials) (Session, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, endpoint Endpoint, creds Credentials) (Session, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, endpoint Endpoint, creds Credentials) (Session, error) {
	return f(ctx, endpoint, creds)
}

// Credentials authenticate against the daemon.
type Credentials struct {
	Username string
	Password string
}

// Endpoint is a validated server address split into its parts.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

// URL reassembles the endpoint, optionally embedding credentials.
func (e Endpoint) URL(creds *Credentials) *url.URL {
	host := e.Host
	if e.Port > 0 {
		host = net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
	}

	u := &url.URL{
		Scheme: e.Scheme,
		Host:   host,
		Path:   e.Path,
	}
	if creds != nil && creds.Username != "" {
		u.User = url.UserPassword(creds.Username, creds.Password)
	}
	return u
}

func (e Endpoint) String() string {
	return e.URL(nil).String()
}
