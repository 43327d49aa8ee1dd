package transmission

import (
	"net/http"
	"sync/atomic"
)

// statusRecorder remembers the status code of the last RPC response so
// authentication failures can be told apart from transport failures.
type statusRecorder struct {
	next http.RoundTripper
	last atomic.Int32
}

func (r *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if err != nil {
		r.last.Store(0)
		return nil, err
	}
	r.last.Store(int32(resp.StatusCode))
	return resp, nil
}

func (r *statusRecorder) authRejected() bool {
	code := r.last.Load()
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
