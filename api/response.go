package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/bridge"
)

// Envelope statuses
const (
	StatusSuccess          = "success"
	StatusNotConnected     = "not connected"
	StatusNotAuthenticated = "not authenticated"
	StatusNotFound         = "not found"
	StatusInvalidID        = "invalid id format"
	StatusRequestError     = "request error"
	StatusRejected         = "rejected"
	StatusMissingKey       = "missing key"
	StatusWriteError       = "write error"
	StatusInvalidRequest   = "invalid request"
	StatusInvalidFilter    = "invalid filter"
	StatusRateLimited      = "rate limited"
	StatusInternalError    = "internal error"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type errorData struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, status string, data any) {
	if data == nil {
		data = struct{}{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(Envelope{Status: status, Data: data}); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write response")
	}
}

// OutcomeStatus maps a bridge outcome to its HTTP status code and envelope status.
func OutcomeStatus(outcome bridge.Outcome) (int, string) {
	switch outcome {
	case bridge.OutcomeOK:
		return http.StatusOK, StatusSuccess
	case bridge.OutcomeNotFound:
		return http.StatusNotFound, StatusNotFound
	case bridge.OutcomeDisconnected:
		return http.StatusServiceUnavailable, StatusNotConnected
	case bridge.OutcomeUnauthenticated:
		return http.StatusServiceUnavailable, StatusNotAuthenticated
	case bridge.OutcomeRejected:
		return http.StatusUnprocessableEntity, StatusRejected
	default:
		return http.StatusBadGateway, StatusRequestError
	}
}

func writeResult[T any](w http.ResponseWriter, r *http.Request, res bridge.Result[T], data func(T) any) {
	code, status := OutcomeStatus(res.Outcome)
	switch res.Outcome {
	case bridge.OutcomeOK:
		writeJSON(w, r, code, status, data(res.Value))
	case bridge.OutcomeRejected, bridge.OutcomeFailed:
		writeJSON(w, r, code, status, errorData{Error: errString(res.Err)})
	default:
		writeJSON(w, r, code, status, nil)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func identity[T any](v T) any {
	return v
}
