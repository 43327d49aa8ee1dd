package qbittorrent

// Option configures a Dialer.
type Option func(*dialerOptions)

// dialerOptions holds configuration options for the Dialer.
type dialerOptions struct {
	verifyCert bool
	basicUser  string
	basicPass  string
}

func defaultOptions() dialerOptions {
	return dialerOptions{verifyCert: true}
}

// WithBasicAuth sets HTTP basic auth credentials for a reverse proxy in
// front of the Web UI.
func WithBasicAuth(username, password string) Option {
	return func(o *dialerOptions) {
		o.basicUser = username
		o.basicPass = password
	}
}

// WithInsecureSkipVerify disables certificate verification.
// Use with caution and only for development/testing.
func WithInsecureSkipVerify() Option {
	return func(o *dialerOptions) {
		o.verifyCert = false
	}
}
