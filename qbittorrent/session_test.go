package qbittorrent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/trbridge/bridge"
	"github.com/s0up4200/trbridge/torrentfile"
)

type webTorrent struct {
	Hash     string  `json:"hash"`
	Name     string  `json:"name"`
	State    string  `json:"state"`
	Progress float64 `json:"progress"`
	Size     int64   `json:"size"`
	DlSpeed  int64   `json:"dlspeed"`
	SavePath string  `json:"save_path"`
	AddedOn  int64   `json:"added_on"`
}

// fakeWebUI serves the subset of the qBittorrent Web API the session uses.
type fakeWebUI struct {
	mu       sync.Mutex
	torrents []webTorrent
	deleted  []string
}

func newFakeWebUI(t *testing.T, torrents ...webTorrent) (*fakeWebUI, *httptest.Server) {
	t.Helper()

	ui := &fakeWebUI{torrents: torrents}
	srv := httptest.NewServer(ui)
	t.Cleanup(srv.Close)
	return ui, srv
}

func (f *fakeWebUI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch strings.TrimPrefix(r.URL.Path, "/api/v2/") {
	case "auth/login":
		_ = r.ParseForm()
		if r.FormValue("username") != "admin" || r.FormValue("password") != "adminadmin" {
			_, _ = io.WriteString(w, "Fails.")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "SID", Value: "session", Path: "/"})
		_, _ = io.WriteString(w, "Ok.")

	case "app/webapiVersion":
		_, _ = io.WriteString(w, "2.9.3")

	case "app/version":
		_, _ = io.WriteString(w, "v4.6.7")

	case "torrents/info":
		out := []webTorrent{}
		hashes := r.URL.Query().Get("hashes")
		for _, t := range f.torrents {
			if hashes == "" || strings.Contains(hashes, t.Hash) {
				out = append(out, t)
			}
		}
		_ = json.NewEncoder(w).Encode(out)

	case "torrents/resume", "torrents/start":
		_ = r.ParseForm()
		f.setStateLocked(r.FormValue("hashes"), "downloading")

	case "torrents/pause", "torrents/stop":
		_ = r.ParseForm()
		f.setStateLocked(r.FormValue("hashes"), "pausedDL")

	case "torrents/delete":
		_ = r.ParseForm()
		hashes := r.FormValue("hashes")
		f.deleted = append(f.deleted, hashes)
		kept := f.torrents[:0]
		for _, t := range f.torrents {
			if !strings.Contains(hashes, t.Hash) {
				kept = append(kept, t)
			}
		}
		f.torrents = kept

	case "torrents/add":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("torrents")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		info, err := torrentfile.Parse(data)
		if err != nil {
			_, _ = io.WriteString(w, "Fails.")
			return
		}
		f.torrents = append(f.torrents, webTorrent{
			Hash:     info.InfoHash,
			Name:     info.Name,
			State:    "queuedDL",
			Size:     info.TotalSize,
			SavePath: r.FormValue("savepath"),
			AddedOn:  9999,
		})
		_, _ = io.WriteString(w, "Ok.")

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeWebUI) setStateLocked(hashes, state string) {
	for i := range f.torrents {
		if strings.Contains(hashes, f.torrents[i].Hash) {
			f.torrents[i].State = state
		}
	}
}

func buildTorrent(t *testing.T, name string) []byte {
	t.Helper()

	infoBytes, err := bencode.Marshal(metainfo.Info{
		Name:        name,
		PieceLength: 16 * 1024,
		Pieces:      make([]byte, 20),
		Length:      2048,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	mi := metainfo.MetaInfo{InfoBytes: infoBytes}
	require.NoError(t, mi.Write(&buf))
	return buf.Bytes()
}

func dialWebUI(t *testing.T, srv *httptest.Server, creds bridge.Credentials) (bridge.Session, error) {
	t.Helper()

	endpoint, err := bridge.ParseEndpoint(srv.URL)
	require.NoError(t, err)
	return NewDialer(zerolog.Nop()).Dial(context.Background(), endpoint, creds)
}

var adminCreds = bridge.Credentials{Username: "admin", Password: "adminadmin"}

func TestDialBadCredentials(t *testing.T) {
	_, srv := newFakeWebUI(t)

	_, err := dialWebUI(t, srv, bridge.Credentials{Username: "admin", Password: "nope"})
	assert.ErrorIs(t, err, bridge.ErrAuthRejected)
}

func TestSessionListAndGet(t *testing.T) {
	_, srv := newFakeWebUI(t,
		webTorrent{Hash: hashB, Name: "newer", State: "uploading", Progress: 1, AddedOn: 200},
		webTorrent{Hash: hashA, Name: "older", State: "pausedDL", Progress: 0.5, Size: 4096, SavePath: "/data", AddedOn: 100},
	)
	session, err := dialWebUI(t, srv, adminCreds)
	require.NoError(t, err)
	ctx := context.Background()

	torrents, err := session.List(ctx)
	require.NoError(t, err)
	records, err := bridge.MapRecords(torrents)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID)
	assert.Equal(t, bridge.StatusSeeding, records[0].Status)
	assert.Equal(t, bridge.Record{
		ID:           1,
		Name:         "older",
		Status:       bridge.StatusStopped,
		PercentDone:  0.5,
		SizeWhenDone: 4096,
		DownloadDir:  "/data",
	}, records[1])

	torrent, err := session.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "older", *torrent.Name)

	_, err = session.Get(ctx, 42)
	assert.ErrorIs(t, err, bridge.ErrNotFound)
}

func TestSessionListWhileMoving(t *testing.T) {
	_, srv := newFakeWebUI(t,
		webTorrent{Hash: hashA, Name: "relocating", State: "moving", AddedOn: 100},
		webTorrent{Hash: hashB, Name: "seeding", State: "uploading", Progress: 1, AddedOn: 200},
	)
	session, err := dialWebUI(t, srv, adminCreds)
	require.NoError(t, err)

	torrents, err := session.List(context.Background())
	require.NoError(t, err)
	records, err := bridge.MapRecords(torrents)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, bridge.StatusChecking, records[0].Status)
	assert.Equal(t, bridge.StatusSeeding, records[1].Status)
}

func TestSessionGetResolvesUnlistedID(t *testing.T) {
	_, srv := newFakeWebUI(t, webTorrent{Hash: hashA, Name: "only", State: "stalledDL"})
	session, err := dialWebUI(t, srv, adminCreds)
	require.NoError(t, err)

	torrent, err := session.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, bridge.RemoteDownloading, torrent.Status)
}

func TestSessionRemove(t *testing.T) {
	ui, srv := newFakeWebUI(t, webTorrent{Hash: hashA, Name: "only", State: "uploading"})
	session, err := dialWebUI(t, srv, adminCreds)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, session.Remove(ctx, 1))
	assert.ErrorIs(t, session.Remove(ctx, 1), bridge.ErrNotFound)
	assert.Len(t, ui.deleted, 1)
}

func TestSessionAdd(t *testing.T) {
	_, srv := newFakeWebUI(t, webTorrent{Hash: hashA, Name: "existing", State: "uploading", AddedOn: 1})
	session, err := dialWebUI(t, srv, adminCreds)
	require.NoError(t, err)
	ctx := context.Background()

	data := buildTorrent(t, "fresh.iso")
	added, err := session.Add(ctx, data, "/downloads/new")
	require.NoError(t, err)
	assert.Equal(t, "fresh.iso", added.Name)
	assert.False(t, added.Duplicate)
	assert.Len(t, added.Hash, 40)

	torrent, err := session.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "/downloads/new", *torrent.DownloadDir)
	assert.Equal(t, bridge.RemoteDownloadPending, torrent.Status)

	again, err := session.Add(ctx, data, "/downloads/new")
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.Equal(t, added.ID, again.ID)
}
