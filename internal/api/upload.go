package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docxmerge/internal/extract"
	"github.com/dgallion1/docxmerge/internal/parser"
	"github.com/dgallion1/docxmerge/internal/pipeline"
)

// formOverhead is the request size allowance on top of the file payload.
const formOverhead = 1024 * 1024

// uploadError carries the HTTP status a rejected upload should produce.
type uploadError struct {
	msg  string
	code int
}

func (e *uploadError) Error() string { return e.msg }

// readUpload validates and reads one multipart file.
func (s *Server) readUpload(fh *multipart.FileHeader) (pipeline.Upload, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return pipeline.Upload{}, &uploadError{
			msg:  fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			code: http.StatusBadRequest,
		}
	}

	f, err := fh.Open()
	if err != nil {
		return pipeline.Upload{}, &uploadError{msg: "failed to open file", code: http.StatusInternalServerError}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return pipeline.Upload{}, &uploadError{msg: "failed to read file", code: http.StatusInternalServerError}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return pipeline.Upload{}, &uploadError{
			msg:  fmt.Sprintf("%s exceeds max size (%d bytes)", filename, s.cfg.MaxUploadBytes),
			code: http.StatusRequestEntityTooLarge,
		}
	}
	return pipeline.Upload{Filename: filename, Data: data}, nil
}

// stripOption reads the optional "strip" form value, falling back to the
// configured default.
func (s *Server) stripOption(r *http.Request) (bool, error) {
	v := r.FormValue("strip")
	if v == "" {
		return s.cfg.StripFieldInstructions, nil
	}
	strip, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid strip value %q", v)
	}
	return strip, nil
}

// extractionStatus maps an extraction failure to an HTTP status.
func extractionStatus(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	if extract.KindOf(err) == extract.KindIO {
		return http.StatusInternalServerError
	}
	// Everything else means the document itself could not be read.
	return http.StatusUnprocessableEntity
}

func writeUploadError(w http.ResponseWriter, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		jsonError(w, ue.msg, ue.code)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
