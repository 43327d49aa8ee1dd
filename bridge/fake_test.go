package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/stretchr/testify/require"
)

// fakeSession implements Session over an in-memory torrent table.
type fakeSession struct {
	mu       sync.Mutex
	torrents []RemoteTorrent
	nextID   int64
	addErr   error
	listErr  error
	closed   bool

	// Track calls for verification
	calls int
}

func newFakeSession(torrents ...RemoteTorrent) *fakeSession {
	s := &fakeSession{nextID: 100}
	s.torrents = append(s.torrents, torrents...)
	return s
}

func (s *fakeSession) index(id int64) int {
	for i, t := range s.torrents {
		if t.ID != nil && *t.ID == id {
			return i
		}
	}
	return -1
}

func (s *fakeSession) List(ctx context.Context) ([]RemoteTorrent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]RemoteTorrent(nil), s.torrents...), nil
}

func (s *fakeSession) Get(ctx context.Context, id int64) (RemoteTorrent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	i := s.index(id)
	if i < 0 {
		return RemoteTorrent{}, ErrNotFound
	}
	return s.torrents[i], nil
}

func (s *fakeSession) setStatus(id int64, status RemoteStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.torrents[i].Status = status
	return nil
}

func (s *fakeSession) Start(ctx context.Context, id int64) error {
	return s.setStatus(id, RemoteDownloading)
}

func (s *fakeSession) Stop(ctx context.Context, id int64) error {
	return s.setStatus(id, RemoteStopped)
}

func (s *fakeSession) Add(ctx context.Context, metainfo []byte, downloadDir string) (AddedTorrent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.addErr != nil {
		return AddedTorrent{}, s.addErr
	}
	s.nextID++
	id := s.nextID
	s.torrents = append(s.torrents, RemoteTorrent{ID: &id, Status: RemoteDownloadPending, DownloadDir: &downloadDir})
	return AddedTorrent{ID: id}, nil
}

func (s *fakeSession) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.torrents = append(s.torrents[:i], s.torrents[i+1:]...)
	return nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// fakeDialer hands out a fixed session or error and counts dials.
type fakeDialer struct {
	session Session
	err     error

	dials     int
	endpoints []Endpoint
	creds     []Credentials
}

func (d *fakeDialer) Dial(ctx context.Context, endpoint Endpoint, creds Credentials) (Session, error) {
	d.dials++
	d.endpoints = append(d.endpoints, endpoint)
	d.creds = append(d.creds, creds)
	if d.err != nil {
		return nil, d.err
	}
	return d.session, nil
}

func remote(id int64, name string, status RemoteStatus) RemoteTorrent {
	done := 0.5
	size := int64(1 << 20)
	rate := int64(2048)
	dir := "/downloads"
	return RemoteTorrent{
		ID:           &id,
		Name:         &name,
		Status:       status,
		PercentDone:  &done,
		SizeWhenDone: &size,
		RateDownload: &rate,
		DownloadDir:  &dir,
	}
}

func writeStoreFile(t *testing.T, values map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	data, err := json.Marshal(values)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeTorrentFile(t *testing.T, name string) string {
	t.Helper()

	infoBytes, err := bencode.Marshal(metainfo.Info{
		Name:        name,
		PieceLength: 16 * 1024,
		Pieces:      make([]byte, 20),
		Length:      1024,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	mi := metainfo.MetaInfo{InfoBytes: infoBytes}
	require.NoError(t, mi.Write(&buf))

	path := filepath.Join(t.TempDir(), name+".torrent")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// staticSource serves a fixed snapshot to Guard and Operations.
type staticSource struct {
	snap Snapshot
}

func (s staticSource) Current() Snapshot {
	return s.snap
}

func authenticated(session Session) staticSource {
	return staticSource{snap: Snapshot{State: StateAuthenticated, Address: "http://localhost:9091/transmission/rpc", Session: session}}
}
