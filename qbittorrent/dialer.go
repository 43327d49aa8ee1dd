package qbittorrent

import (
	"context"
	"errors"
	"fmt"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/bridge"
)

// Dialer opens qBittorrent Web API sessions.
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

// Dial logs in to the Web UI at endpoint.
func (d *Dialer) Dial(ctx context.Context, endpoint bridge.Endpoint, creds bridge.Credentials) (bridge.Session, error) {
	client := qbittorrent.NewClient(qbittorrent.Config{
		Host:          endpoint.String(),
		Username:      creds.Username,
		Password:      creds.Password,
		BasicUser:     d.opts.basicUser,
		BasicPass:     d.opts.basicPass,
		TLSSkipVerify: !d.opts.verifyCert,
	})

	// Test connection by logging in
	if err := client.LoginCtx(ctx); err != nil {
		if errors.Is(err, qbittorrent.ErrBadCredentials) {
			return nil, fmt.Errorf("%w: %w", bridge.ErrAuthRejected, err)
		}
		return nil, fmt.Errorf("%w: failed to connect to qBittorrent: %w", bridge.ErrTransportFailure, err)
	}

	d.logger.Debug().Str("host", endpoint.String()).Msg("Successfully connected to qBittorrent")

	return &Session{
		client:   client,
		registry: newRegistry(),
		logger:   d.logger,
	}, nil
}
