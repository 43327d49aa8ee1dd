package transmission

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/hekmon/transmissionrpc/v3"
	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/bridge"
	"github.com/s0up4200/trbridge/torrentfile"
)

// Session is an authenticated Transmission RPC session.
type Session struct {
	client     *transmissionrpc.Client
	httpClient *http.Client
	logger     zerolog.Logger
}

// List returns all torrents.
func (s *Session) List(ctx context.Context) ([]bridge.RemoteTorrent, error) {
	torrents, err := s.client.TorrentGet(ctx, torrentFields, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get torrents: %w", err)
	}

	s.logger.Debug().Msgf("Retrieved %d torrents from Transmission", len(torrents))

	results := make([]bridge.RemoteTorrent, 0, len(torrents))
	for _, t := range torrents {
		results = append(results, toRemote(t))
	}
	return results, nil
}

// Get returns one torrent by id.
func (s *Session) Get(ctx context.Context, id int64) (bridge.RemoteTorrent, error) {
	torrents, err := s.client.TorrentGet(ctx, torrentFields, []int64{id})
	if err != nil {
		return bridge.RemoteTorrent{}, fmt.Errorf("failed to get torrent %d: %w", id, err)
	}
	if len(torrents) == 0 {
		return bridge.RemoteTorrent{}, fmt.Errorf("%w: id %d", bridge.ErrNotFound, id)
	}
	return toRemote(torrents[0]), nil
}

// Start resumes a torrent.
func (s *Session) Start(ctx context.Context, id int64) error {
	if err := s.client.TorrentStartIDs(ctx, []int64{id}); err != nil {
		return fmt.Errorf("failed to start torrent %d: %w", id, err)
	}
	return nil
}

// Stop pauses a torrent.
func (s *Session) Stop(ctx context.Context, id int64) error {
	if err := s.client.TorrentStopIDs(ctx, []int64{id}); err != nil {
		return fmt.Errorf("failed to stop torrent %d: %w", id, err)
	}
	return nil
}

// Add uploads metainfo into downloadDir. A torrent whose infohash is already
// on the daemon is reported as a duplicate without being re-added.
func (s *Session) Add(ctx context.Context, metainfo []byte, downloadDir string) (bridge.AddedTorrent, error) {
	if info, err := torrentfile.Parse(metainfo); err == nil {
		existing, err := s.byHash(ctx, info.InfoHash)
		if err != nil {
			return bridge.AddedTorrent{}, err
		}
		if existing != nil {
			s.logger.Debug().Str("hash", info.InfoHash).Msg("Torrent already present")
			added := toAdded(*existing)
			added.Duplicate = true
			return added, nil
		}
	}

	encoded := base64.StdEncoding.EncodeToString(metainfo)

	payload := transmissionrpc.TorrentAddPayload{
		MetaInfo: &encoded,
	}
	if downloadDir != "" {
		payload.DownloadDir = &downloadDir
	}

	torrent, err := s.client.TorrentAdd(ctx, payload)
	if err != nil {
		return bridge.AddedTorrent{}, fmt.Errorf("failed to add torrent: %w", err)
	}

	return toAdded(torrent), nil
}

// byHash returns the torrent with the given infohash, or nil.
func (s *Session) byHash(ctx context.Context, hash string) (*transmissionrpc.Torrent, error) {
	torrents, err := s.client.TorrentGet(ctx, []string{"id", "name", "hashString"}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get torrents: %w", err)
	}
	for i, t := range torrents {
		if t.HashString != nil && strings.EqualFold(*t.HashString, hash) {
			return &torrents[i], nil
		}
	}
	return nil, nil
}

func toAdded(t transmissionrpc.Torrent) bridge.AddedTorrent {
	added := bridge.AddedTorrent{}
	if t.ID != nil {
		added.ID = *t.ID
	}
	if t.Name != nil {
		added.Name = *t.Name
	}
	if t.HashString != nil {
		added.Hash = *t.HashString
	}
	return added
}

// Remove deletes a torrent, keeping its local data. Transmission ignores
// unknown ids, so the torrent is looked up first.
func (s *Session) Remove(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	err := s.client.TorrentRemove(ctx, transmissionrpc.TorrentRemovePayload{
		IDs:             []int64{id},
		DeleteLocalData: false,
	})
	if err != nil {
		return fmt.Errorf("failed to remove torrent %d: %w", id, err)
	}
	return nil
}

// Close drops idle connections to the daemon.
func (s *Session) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}
