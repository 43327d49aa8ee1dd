package qbittorrent

import (
	"context"
	"fmt"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/bridge"
	"github.com/s0up4200/trbridge/torrentfile"
)

// Session is a logged-in qBittorrent Web API session.
type Session struct {
	client   *qbittorrent.Client
	registry *registry
	logger   zerolog.Logger
}

// List returns all torrents, ids assigned oldest first.
func (s *Session) List(ctx context.Context) ([]bridge.RemoteTorrent, error) {
	torrents, err := s.client.GetTorrentsCtx(ctx, qbittorrent.TorrentFilterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get torrents: %w", err)
	}

	s.logger.Debug().Msgf("Retrieved %d torrents from qBittorrent", len(torrents))

	entries := make([]hashEntry, len(torrents))
	for i, t := range torrents {
		entries[i] = hashEntry{hash: t.Hash, addedOn: t.AddedOn}
	}
	ids := s.registry.observe(entries)

	results := make([]bridge.RemoteTorrent, 0, len(torrents))
	for i, t := range torrents {
		results = append(results, toRemote(ids[i], t))
	}
	return results, nil
}

// Get returns one torrent by id.
func (s *Session) Get(ctx context.Context, id int64) (bridge.RemoteTorrent, error) {
	hash, err := s.resolve(ctx, id)
	if err != nil {
		return bridge.RemoteTorrent{}, err
	}

	torrent, err := s.byHash(ctx, hash)
	if err != nil {
		return bridge.RemoteTorrent{}, err
	}
	if torrent == nil {
		return bridge.RemoteTorrent{}, fmt.Errorf("%w: id %d", bridge.ErrNotFound, id)
	}
	return toRemote(id, *torrent), nil
}

// Start resumes a torrent.
func (s *Session) Start(ctx context.Context, id int64) error {
	hash, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}
	if err := s.client.ResumeCtx(ctx, []string{hash}); err != nil {
		return fmt.Errorf("failed to resume torrent %s: %w", hash, err)
	}
	return nil
}

// Stop pauses a torrent.
func (s *Session) Stop(ctx context.Context, id int64) error {
	hash, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}
	if err := s.client.PauseCtx(ctx, []string{hash}); err != nil {
		return fmt.Errorf("failed to pause torrent %s: %w", hash, err)
	}
	return nil
}

// Add uploads metainfo with downloadDir as save path.
func (s *Session) Add(ctx context.Context, metainfo []byte, downloadDir string) (bridge.AddedTorrent, error) {
	info, err := torrentfile.Parse(metainfo)
	if err != nil {
		return bridge.AddedTorrent{}, fmt.Errorf("%w: %w", bridge.ErrInvalidTorrent, err)
	}
	hash := normalizeHash(info.InfoHash)
	if !validHash(hash) {
		return bridge.AddedTorrent{}, fmt.Errorf("%w: %q", ErrInvalidHash, info.InfoHash)
	}

	existing, err := s.byHash(ctx, hash)
	if err != nil {
		return bridge.AddedTorrent{}, err
	}

	if existing == nil {
		options := map[string]string{}
		if downloadDir != "" {
			options["savepath"] = downloadDir
		}
		if err := s.client.AddTorrentFromMemoryCtx(ctx, metainfo, options); err != nil {
			return bridge.AddedTorrent{}, fmt.Errorf("failed to add torrent: %w", err)
		}
	}

	name := info.Name
	if existing != nil && existing.Name != "" {
		name = existing.Name
	}

	return bridge.AddedTorrent{
		ID:        s.registry.ensure(hash),
		Name:      name,
		Hash:      hash,
		Duplicate: existing != nil,
	}, nil
}

// Remove deletes a torrent, keeping its files.
func (s *Session) Remove(ctx context.Context, id int64) error {
	hash, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}

	torrent, err := s.byHash(ctx, hash)
	if err != nil {
		return err
	}
	if torrent == nil {
		return fmt.Errorf("%w: id %d", bridge.ErrNotFound, id)
	}

	if err := s.client.DeleteTorrentsCtx(ctx, []string{hash}, false); err != nil {
		return fmt.Errorf("failed to delete torrent %s: %w", hash, err)
	}
	return nil
}

// Close is a no-op; the Web API session expires on its own.
func (s *Session) Close() error {
	return nil
}

// resolve maps id to a hash, refreshing the registry once if the id is unknown.
func (s *Session) resolve(ctx context.Context, id int64) (string, error) {
	if hash, ok := s.registry.hash(id); ok {
		return hash, nil
	}
	if _, err := s.List(ctx); err != nil {
		return "", err
	}
	if hash, ok := s.registry.hash(id); ok {
		return hash, nil
	}
	return "", fmt.Errorf("%w: id %d", bridge.ErrNotFound, id)
}

func (s *Session) byHash(ctx context.Context, hash string) (*qbittorrent.Torrent, error) {
	torrents, err := s.client.GetTorrentsCtx(ctx, qbittorrent.TorrentFilterOptions{
		Hashes: []string{hash},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get torrent: %w", err)
	}
	if len(torrents) == 0 {
		return nil, nil
	}
	return &torrents[0], nil
}

func toRemote(id int64, t qbittorrent.Torrent) bridge.RemoteTorrent {
	name := t.Name
	progress := t.Progress
	size := t.Size
	rate := t.DlSpeed
	dir := t.SavePath

	return bridge.RemoteTorrent{
		ID:           &id,
		Name:         &name,
		Status:       remoteStatus(string(t.State)),
		PercentDone:  &progress,
		SizeWhenDone: &size,
		RateDownload: &rate,
		DownloadDir:  &dir,
	}
}
