package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/s0up4200/trbridge/bridge"
)

const (
	uploadField   = "torrent"
	locationField = "location"
)

// handleAddTorrent stores the uploaded file under a random name, hands it to
// the bridge and removes it afterwards.
func (s *Server) handleAddTorrent(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadMB << 20
	if r.ContentLength > limit+(1<<20) {
		writeJSON(w, r, http.StatusRequestEntityTooLarge, StatusInvalidRequest, errorData{Error: "upload too large"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, r, http.StatusRequestEntityTooLarge, StatusInvalidRequest, errorData{Error: "upload too large"})
			return
		}
		writeJSON(w, r, http.StatusBadRequest, StatusInvalidRequest, errorData{Error: err.Error()})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile(uploadField)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, StatusInvalidRequest, errorData{Error: fmt.Sprintf("missing %q file", uploadField)})
		return
	}
	defer file.Close()

	path, err := s.saveUpload(file)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to store upload")
		writeJSON(w, r, http.StatusInternalServerError, StatusInternalError, nil)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("file", path).Msg("Failed to remove upload")
		}
	}()

	res := s.client.Add(r.Context(), path, r.FormValue(locationField))
	writeResult(w, r, res, identity[bridge.AddedTorrent])
}

func (s *Server) saveUpload(src io.Reader) (string, error) {
	dir := s.cfg.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, uuid.NewString()+".torrent")
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return path, nil
}
