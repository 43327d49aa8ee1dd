package transmission

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"

	"github.com/hekmon/transmissionrpc/v3"
	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/bridge"
)

var errIncompatibleVersion = errors.New("incompatible rpc version")

// Dialer opens Transmission sessions.
type Dialer struct {
	opts   dialerOptions
	logger zerolog.Logger
}

// NewDialer creates a Dialer.
func NewDialer(logger zerolog.Logger, opts ...Option) *Dialer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Dialer{
		opts:   o,
		logger: logger,
	}
}

// Dial connects to endpoint and verifies the RPC version. Refused credentials
// return an error wrapping bridge.ErrAuthRejected; every other failure wraps
// bridge.ErrTransportFailure.
func (d *Dialer) Dial(ctx context.Context, endpoint bridge.Endpoint, creds bridge.Credentials) (bridge.Session, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !d.opts.verifyCert {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	recorder := &statusRecorder{next: transport}
	httpClient := &http.Client{
		Transport: recorder,
		Timeout:   d.opts.timeout,
	}

	client, err := transmissionrpc.New(endpoint.URL(&creds), &transmissionrpc.Config{
		CustomClient: httpClient,
		UserAgent:    d.opts.userAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bridge.ErrTransportFailure, err)
	}

	ok, serverVersion, serverMinimum, err := client.RPCVersion(ctx)
	if err != nil {
		httpClient.CloseIdleConnections()
		if recorder.authRejected() {
			return nil, fmt.Errorf("%w: %w", bridge.ErrAuthRejected, err)
		}
		return nil, fmt.Errorf("%w: %w", bridge.ErrTransportFailure, err)
	}
	if !ok {
		httpClient.CloseIdleConnections()
		return nil, fmt.Errorf("%w: %w: server %d, minimum %d",
			bridge.ErrTransportFailure, errIncompatibleVersion, serverVersion, serverMinimum)
	}

	d.logger.Debug().
		Str("endpoint", endpoint.String()).
		Int64("rpc_version", serverVersion).
		Msg("Transmission session established")

	return &Session{
		client:     client,
		httpClient: httpClient,
		logger:     d.logger,
	}, nil
}
