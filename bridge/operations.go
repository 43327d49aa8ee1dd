package bridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/metrics"
	"github.com/s0up4200/trbridge/torrentfile"
)

// Operations are the guarded remote torrent actions.
type Operations struct {
	src    SessionSource
	logger zerolog.Logger
}

// NewOperations creates Operations reading sessions from src.
func NewOperations(src SessionSource, logger zerolog.Logger) *Operations {
	return &Operations{
		src:    src,
		logger: logger,
	}
}

// List returns every torrent on the daemon.
func (o *Operations) List(ctx context.Context) (res Result[[]Record]) {
	defer func(start time.Time) { observe("list", res.Outcome, start) }(time.Now())

	return Guard(o.src, "list", o.logger, func(s Session) Result[[]Record] {
		torrents, err := s.List(ctx)
		if err != nil {
			return failed[[]Record](transportError(err))
		}

		records, err := MapRecords(torrents)
		if err != nil {
			o.logger.Error().Err(err).Msg("Daemon reported a status outside the known set")
			return failed[[]Record](err)
		}

		o.logger.Debug().Msgf("Retrieved %d torrents from RPC server", len(records))
		return succeeded(records)
	})
}

// Fetch returns one torrent.
func (o *Operations) Fetch(ctx context.Context, id int64) (res Result[Record]) {
	defer func(start time.Time) { observe("fetch", res.Outcome, start) }(time.Now())

	return Guard(o.src, "fetch", o.logger, func(s Session) Result[Record] {
		return o.lookup(ctx, s, id)
	})
}

// Start starts a torrent and returns its settled state.
func (o *Operations) Start(ctx context.Context, id int64) (res Result[Record]) {
	defer func(start time.Time) { observe("start", res.Outcome, start) }(time.Now())

	return Guard(o.src, "start", o.logger, func(s Session) Result[Record] {
		return o.transition(ctx, s, id, s.Start)
	})
}

// Stop stops a torrent and returns its settled state.
func (o *Operations) Stop(ctx context.Context, id int64) (res Result[Record]) {
	defer func(start time.Time) { observe("stop", res.Outcome, start) }(time.Now())

	return Guard(o.src, "stop", o.logger, func(s Session) Result[Record] {
		return o.transition(ctx, s, id, s.Stop)
	})
}

// Add uploads the torrent file at path with the given download directory.
func (o *Operations) Add(ctx context.Context, path, downloadDir string) (res Result[AddedTorrent]) {
	defer func(start time.Time) { observe("add", res.Outcome, start) }(time.Now())

	return Guard(o.src, "add", o.logger, func(s Session) Result[AddedTorrent] {
		data, err := os.ReadFile(path)
		if err != nil {
			o.logger.Debug().Err(err).Str("file", path).Msg("Torrent file unreadable")
			return rejected[AddedTorrent](fmt.Errorf("%w: %w", ErrInvalidTorrent, err))
		}

		info, err := torrentfile.Parse(data)
		if err != nil {
			o.logger.Debug().Err(err).Str("file", path).Msg("Invalid file")
			return rejected[AddedTorrent](fmt.Errorf("%w: %w", ErrInvalidTorrent, err))
		}

		added, err := s.Add(ctx, data, downloadDir)
		if err != nil {
			o.logger.Debug().Err(err).Str("torrent", info.Name).Msg("API error")
			return rejected[AddedTorrent](err)
		}

		if added.Name == "" {
			added.Name = info.Name
		}
		if added.Hash == "" {
			added.Hash = info.InfoHash
		}

		o.logger.Info().
			Int64("id", added.ID).
			Str("torrent", added.Name).
			Str("dir", downloadDir).
			Bool("duplicate", added.Duplicate).
			Msg("Added torrent")
		return succeeded(added)
	})
}

// Delete removes a torrent from the daemon and returns its id.
func (o *Operations) Delete(ctx context.Context, id int64) (res Result[int64]) {
	defer func(start time.Time) { observe("delete", res.Outcome, start) }(time.Now())

	return Guard(o.src, "delete", o.logger, func(s Session) Result[int64] {
		if err := s.Remove(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				o.logger.Debug().Int64("id", id).Msg("No torrent with ID")
				return notFound[int64](err)
			}
			return failed[int64](transportError(err))
		}

		o.logger.Info().Int64("id", id).Msg("Removed torrent")
		return succeeded(id)
	})
}

func (o *Operations) lookup(ctx context.Context, s Session, id int64) Result[Record] {
	torrent, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			o.logger.Debug().Int64("id", id).Msg("No torrent with ID")
			return notFound[Record](err)
		}
		return failed[Record](transportError(err))
	}

	record, err := MapRecord(torrent)
	if err != nil {
		o.logger.Error().Err(err).Int64("id", id).Msg("Daemon reported a status outside the known set")
		return failed[Record](err)
	}
	return succeeded(record)
}

// transition looks the torrent up, applies action and re-fetches it.
func (o *Operations) transition(ctx context.Context, s Session, id int64, action func(context.Context, int64) error) Result[Record] {
	if res := o.lookup(ctx, s, id); !res.OK() {
		return res
	}

	if err := action(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound[Record](err)
		}
		return failed[Record](transportError(err))
	}

	return o.lookup(ctx, s, id)
}

func transportError(err error) error {
	if errors.Is(err, ErrTransportFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransportFailure, err)
}

func observe(operation string, outcome Outcome, start time.Time) {
	metrics.OperationDuration.WithLabelValues(operation, outcome.String()).Observe(time.Since(start).Seconds())
}
