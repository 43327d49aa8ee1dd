// Package api exposes the bridge over HTTP with a JSON envelope of
// {"status": ..., "data": ...}.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/bridge"
	"github.com/s0up4200/trbridge/config"
	"github.com/s0up4200/trbridge/filter"
)

// Bridge is the part of bridge.Client the HTTP layer uses.
type Bridge interface {
	Connect(ctx context.Context) bridge.Result[bool]
	Config() map[string]string
	ConfigValue(key string) bridge.Result[string]
	SetConfig(ctx context.Context, key, value string) bridge.Result[string]
	IsConnected() bool
	IsAuthenticated() bool
	State() bridge.State
	List(ctx context.Context) bridge.Result[[]bridge.Record]
	Fetch(ctx context.Context, id int64) bridge.Result[bridge.Record]
	Start(ctx context.Context, id int64) bridge.Result[bridge.Record]
	Stop(ctx context.Context, id int64) bridge.Result[bridge.Record]
	Add(ctx context.Context, path, downloadDir string) bridge.Result[bridge.AddedTorrent]
	Delete(ctx context.Context, id int64) bridge.Result[int64]
}

// Server holds the HTTP handlers.
type Server struct {
	client   Bridge
	filters  *filter.Manager
	cfg      config.HTTPConfig
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
	handler  http.Handler
}

// NewServer builds the router and middleware chain.
func NewServer(client Bridge, filters *filter.Manager, cfg config.HTTPConfig, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	s := &Server{
		client:   client,
		filters:  filters,
		cfg:      cfg,
		gatherer: gatherer,
		logger:   logger,
	}

	var h http.Handler = s.routes()
	if cfg.RateLimit > 0 {
		h = rateLimitMiddleware(cfg.RateLimit, cfg.RateBurst, h)
	}
	h = metricsMiddleware(h)
	h = loggingMiddleware(h)
	h = corsMiddleware(cfg.CORSOrigin, h)
	h = recoveryMiddleware(h)
	h = requestIDMiddleware(logger, h)
	s.handler = h

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	r.HandleFunc("/status", s.online(s.handleStatus)).Methods(http.MethodGet)
	r.HandleFunc("/connect", s.handleConnect).Methods(http.MethodPost)

	r.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	r.HandleFunc("/config", s.handleSetConfig).Methods(http.MethodPost)
	r.HandleFunc("/config/{key}", s.handleGetConfigValue).Methods(http.MethodGet)

	r.HandleFunc("/torrents", s.online(s.handleListTorrents)).Methods(http.MethodGet)
	r.HandleFunc("/torrents", s.online(s.handleAddTorrent)).Methods(http.MethodPost)
	r.HandleFunc("/torrents/{id}", s.online(s.withID(s.handleGetTorrent))).Methods(http.MethodGet)
	r.HandleFunc("/torrents/{id}", s.online(s.withID(s.handleDeleteTorrent))).Methods(http.MethodDelete)
	r.HandleFunc("/torrents/{id}/start", s.online(s.withID(s.handleStartTorrent))).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/torrents/{id}/stop", s.online(s.withID(s.handleStopTorrent))).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/torrents/{id}/delete", s.online(s.withID(s.handleDeleteTorrent))).Methods(http.MethodGet, http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, StatusNotFound, nil)
	})

	return r
}
