package api

import (
	"net/http"
)

// handleExtract returns the plain text of a single uploaded document.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+formOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	strip, err := s.stripOption(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	upload, err := s.readUpload(files[0])
	if err != nil {
		writeUploadError(w, err)
		return
	}

	text, err := s.orchestrator.Extract(r.Context(), upload, strip)
	if err != nil {
		s.log.Warn("extract failed", "filename", upload.Filename, "error", err)
		jsonError(w, err.Error(), extractionStatus(err))
		return
	}
	writeText(w, text)
}
