package transmission

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const sessionHeader = "X-Transmission-Session-Id"

type rpcRequest struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments"`
	Tag       *int            `json:"tag,omitempty"`
}

type fakeTorrent struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	HashString   string  `json:"hashString"`
	Status       int64   `json:"status"`
	PercentDone  float64 `json:"percentDone"`
	SizeWhenDone int64   `json:"sizeWhenDone"`
	RateDownload int64   `json:"rateDownload"`
	DownloadDir  string  `json:"downloadDir"`
}

// fakeDaemon speaks enough of the Transmission RPC protocol for the session tests.
type fakeDaemon struct {
	t        *testing.T
	username string
	password string

	mu       sync.Mutex
	torrents []fakeTorrent
	nextID   int64
	methods  []string
	added    []map[string]any
}

func newFakeDaemon(t *testing.T, torrents ...fakeTorrent) (*fakeDaemon, *httptest.Server) {
	t.Helper()

	d := &fakeDaemon{
		t:        t,
		username: "transmission",
		password: "transmission",
		torrents: torrents,
		nextID:   100,
	}
	srv := httptest.NewServer(d)
	t.Cleanup(srv.Close)
	return d, srv
}

func (d *fakeDaemon) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != d.username || pass != d.password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if r.Header.Get(sessionHeader) != "session-token" {
		w.Header().Set(sessionHeader, "session-token")
		w.WriteHeader(http.StatusConflict)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.methods = append(d.methods, req.Method)

	var args struct {
		IDs      []int64 `json:"ids"`
		MetaInfo string  `json:"metainfo"`
		Dir      string  `json:"download-dir"`
	}
	if len(req.Arguments) > 0 {
		require.NoError(d.t, json.Unmarshal(req.Arguments, &args))
	}

	result := map[string]any{}
	switch req.Method {
	case "session-get":
		result["rpc-version"] = 17
		result["rpc-version-minimum"] = 14
		result["version"] = "4.0.6"
	case "torrent-get":
		result["torrents"] = d.selectLocked(args.IDs)
	case "torrent-start":
		d.setStatusLocked(args.IDs, 4)
	case "torrent-stop":
		d.setStatusLocked(args.IDs, 0)
	case "torrent-remove":
		d.removeLocked(args.IDs)
	case "torrent-add":
		d.nextID++
		torrent := fakeTorrent{ID: d.nextID, Name: "added", HashString: "abcdef0123456789abcdef0123456789abcdef01", Status: 3, DownloadDir: args.Dir}
		d.torrents = append(d.torrents, torrent)
		d.added = append(d.added, map[string]any{"metainfo": args.MetaInfo, "download-dir": args.Dir})
		result["torrent-added"] = map[string]any{"id": torrent.ID, "name": torrent.Name, "hashString": torrent.HashString}
	default:
		writeRPC(w, req.Tag, "method name not recognized", result)
		return
	}

	writeRPC(w, req.Tag, "success", result)
}

// writeRPC answers with the request tag echoed back, as the client requires.
func writeRPC(w http.ResponseWriter, tag *int, status string, args map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"result":    status,
		"arguments": args,
		"tag":       tag,
	})
}

func (d *fakeDaemon) selectLocked(ids []int64) []fakeTorrent {
	if len(ids) == 0 {
		return append([]fakeTorrent{}, d.torrents...)
	}
	var out []fakeTorrent
	for _, t := range d.torrents {
		for _, id := range ids {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	if out == nil {
		out = []fakeTorrent{}
	}
	return out
}

func (d *fakeDaemon) setStatusLocked(ids []int64, status int64) {
	for i := range d.torrents {
		for _, id := range ids {
			if d.torrents[i].ID == id {
				d.torrents[i].Status = status
			}
		}
	}
}

func (d *fakeDaemon) removeLocked(ids []int64) {
	kept := d.torrents[:0]
	for _, t := range d.torrents {
		remove := false
		for _, id := range ids {
			remove = remove || t.ID == id
		}
		if !remove {
			kept = append(kept, t)
		}
	}
	d.torrents = kept
}

func (d *fakeDaemon) calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.methods...)
}
