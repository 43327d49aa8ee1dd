package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/trbridge/bridge"
	"github.com/s0up4200/trbridge/config"
	"github.com/s0up4200/trbridge/filter"
)

// memorySession is an in-memory daemon used behind a real bridge.Client.
type memorySession struct {
	mu       sync.Mutex
	torrents []bridge.RemoteTorrent
	nextID   int64
	dirs     []string
}

func (s *memorySession) index(id int64) int {
	for i, t := range s.torrents {
		if t.ID != nil && *t.ID == id {
			return i
		}
	}
	return -1
}

func (s *memorySession) List(ctx context.Context) ([]bridge.RemoteTorrent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bridge.RemoteTorrent(nil), s.torrents...), nil
}

func (s *memorySession) Get(ctx context.Context, id int64) (bridge.RemoteTorrent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return bridge.RemoteTorrent{}, bridge.ErrNotFound
	}
	return s.torrents[i], nil
}

func (s *memorySession) set(id int64, status bridge.RemoteStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return bridge.ErrNotFound
	}
	s.torrents[i].Status = status
	return nil
}

func (s *memorySession) Start(ctx context.Context, id int64) error {
	return s.set(id, bridge.RemoteDownloading)
}

func (s *memorySession) Stop(ctx context.Context, id int64) error {
	return s.set(id, bridge.RemoteStopped)
}

func (s *memorySession) Add(ctx context.Context, data []byte, downloadDir string) (bridge.AddedTorrent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.dirs = append(s.dirs, downloadDir)
	s.torrents = append(s.torrents, bridge.RemoteTorrent{ID: &id, Status: bridge.RemoteDownloadPending, DownloadDir: &downloadDir})
	return bridge.AddedTorrent{ID: id, Name: "added"}, nil
}

func (s *memorySession) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return bridge.ErrNotFound
	}
	s.torrents = append(s.torrents[:i], s.torrents[i+1:]...)
	return nil
}

func (s *memorySession) Close() error { return nil }

func torrent(id int64, name string, status bridge.RemoteStatus, done float64) bridge.RemoteTorrent {
	dir := "/downloads"
	size := int64(1 << 30)
	return bridge.RemoteTorrent{
		ID:           &id,
		Name:         &name,
		Status:       status,
		PercentDone:  &done,
		SizeWhenDone: &size,
		DownloadDir:  &dir,
	}
}

type testEnv struct {
	server    *Server
	client    *bridge.Client
	session   *memorySession
	storePath string
	dialErr   error
}

func newTestEnv(t *testing.T, cfg config.HTTPConfig, connect bool) *testEnv {
	t.Helper()

	storePath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(storePath, []byte(`{"server_address":"http://localhost:9091/transmission/rpc"}`), 0o644))

	store, err := bridge.LoadStore(storePath, zerolog.Nop())
	require.NoError(t, err)

	env := &testEnv{
		session: &memorySession{
			nextID: 100,
			torrents: []bridge.RemoteTorrent{
				torrent(1, "ubuntu.iso", bridge.RemoteSeeding, 1),
				torrent(2, "debian.iso", bridge.RemoteDownloading, 0.25),
				torrent(3, "arch.iso", bridge.RemoteStopped, 0),
			},
		},
		storePath: storePath,
	}

	dialer := bridge.DialerFunc(func(ctx context.Context, endpoint bridge.Endpoint, creds bridge.Credentials) (bridge.Session, error) {
		if env.dialErr != nil {
			return nil, env.dialErr
		}
		return env.session, nil
	})
	env.client = bridge.NewClient(store, dialer, bridge.Credentials{Username: "u", Password: "p"}, zerolog.Nop())
	if connect {
		require.True(t, env.client.Connect(context.Background()).OK())
	}

	filters := filter.NewManager()
	t.Cleanup(func() { _ = filters.Close(context.Background()) })
	require.NoError(t, filters.RegisterPresets(map[string]string{"done": "isComplete()"}))

	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	if cfg.MaxUploadMB == 0 {
		cfg.MaxUploadMB = 1
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = t.TempDir()
	}

	env.server = NewServer(env.client, filters, cfg, prometheus.NewRegistry(), zerolog.Nop())
	return env
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)

	var env Envelope
	if rec.Code != http.StatusNoContent && rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func torrentBytes(t *testing.T, name string) []byte {
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
	return buf.Bytes()
}

func urlEscape(s string) string {
	return url.QueryEscape(s)
}

func jsonDecode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
