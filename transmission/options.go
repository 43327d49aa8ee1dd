package transmission

import "time"

// Option configures a Dialer.
type Option func(*dialerOptions)

type dialerOptions struct {
	timeout    time.Duration
	userAgent  string
	verifyCert bool
}

func defaultOptions() dialerOptions {
	return dialerOptions{
		timeout:    30 * time.Second,
		userAgent:  "trbridge",
		verifyCert: true,
	}
}

// WithTimeout sets the HTTP client timeout for every RPC call.
func WithTimeout(timeout time.Duration) Option {
	return func(o *dialerOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *dialerOptions) {
		o.userAgent = userAgent
	}
}

// WithInsecureSkipVerify disables certificate verification.
// Use with caution and only for development/testing.
func WithInsecureSkipVerify() Option {
	return func(o *dialerOptions) {
		o.verifyCert = false
	}
}
