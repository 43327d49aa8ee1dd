package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/bridge"
)

type idHandler func(w http.ResponseWriter, r *http.Request, id int64)

// online rejects requests while the daemon is unreachable or unauthenticated.
func (s *Server) online(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.client.IsConnected() {
			writeJSON(w, r, http.StatusServiceUnavailable, StatusNotConnected, nil)
			return
		}
		if !s.client.IsAuthenticated() {
			writeJSON(w, r, http.StatusServiceUnavailable, StatusNotAuthenticated, nil)
			return
		}
		next(w, r)
	}
}

// withID parses the {id} path variable as a non-negative integer.
func (s *Server) withID(next idHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil || id < 0 {
			writeJSON(w, r, http.StatusBadRequest, StatusInvalidID, nil)
			return
		}
		next(w, r, id)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, StatusSuccess, map[string]string{
		"state": s.client.State().String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, StatusSuccess, nil)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	res := s.client.Connect(r.Context())
	data := map[string]string{"state": s.client.State().String()}

	switch {
	case res.OK():
		writeJSON(w, r, http.StatusOK, StatusSuccess, data)
	case s.client.IsConnected():
		writeJSON(w, r, http.StatusServiceUnavailable, StatusNotAuthenticated, data)
	default:
		writeJSON(w, r, http.StatusServiceUnavailable, StatusNotConnected, data)
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, StatusSuccess, s.client.Config())
}

func (s *Server) handleGetConfigValue(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	writeResult(w, r, s.client.ConfigValue(key), func(v string) any {
		return map[string]string{key: v}
	})
}

// handleSetConfig applies every key in the body. Unknown keys are reported as
// "missing key"; a failed rewrite of the store file as "write error".
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var requested map[string]string
	if err := json.NewDecoder(r.Body).Decode(&requested); err != nil {
		writeJSON(w, r, http.StatusBadRequest, StatusInvalidRequest, errorData{Error: err.Error()})
		return
	}

	logger := zerolog.Ctx(r.Context())
	missingKey, writeFailed := false, false
	for key, value := range requested {
		logger.Debug().Str("key", key).Msg("Requesting config change")

		res := s.client.SetConfig(r.Context(), key, value)
		switch {
		case res.Outcome == bridge.OutcomeNotFound:
			missingKey = true
		case errors.Is(res.Err, bridge.ErrConfigWriteFailed):
			writeFailed = true
		}
	}

	switch {
	case writeFailed:
		writeJSON(w, r, http.StatusInternalServerError, StatusWriteError, s.client.Config())
	case missingKey:
		writeJSON(w, r, http.StatusNotFound, StatusMissingKey, s.client.Config())
	default:
		writeJSON(w, r, http.StatusOK, StatusSuccess, s.client.Config())
	}
}

func (s *Server) handleListTorrents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	selected, err := s.filters.Select(query.Get("filter"), query.Get("preset"))
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, StatusInvalidFilter, errorData{Error: err.Error()})
		return
	}

	res := s.client.List(r.Context())
	if !res.OK() {
		writeResult(w, r, res, identity[[]bridge.Record])
		return
	}

	records, err := s.filters.Apply(r.Context(), selected, res.Value)
	if err != nil {
		writeJSON(w, r, http.StatusInternalServerError, StatusInternalError, errorData{Error: err.Error()})
		return
	}
	writeJSON(w, r, http.StatusOK, StatusSuccess, records)
}

func (s *Server) handleGetTorrent(w http.ResponseWriter, r *http.Request, id int64) {
	writeResult(w, r, s.client.Fetch(r.Context(), id), identity[bridge.Record])
}

func (s *Server) handleStartTorrent(w http.ResponseWriter, r *http.Request, id int64) {
	writeResult(w, r, s.client.Start(r.Context(), id), identity[bridge.Record])
}

func (s *Server) handleStopTorrent(w http.ResponseWriter, r *http.Request, id int64) {
	writeResult(w, r, s.client.Stop(r.Context(), id), identity[bridge.Record])
}

func (s *Server) handleDeleteTorrent(w http.ResponseWriter, r *http.Request, id int64) {
	writeResult(w, r, s.client.Delete(r.Context(), id), func(id int64) any {
		return map[string]int64{"id": id}
	})
}
