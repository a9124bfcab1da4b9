package api

import (
	"fmt"
	"net/http"

	"github.com/dgallion1/docxmerge/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleMerge queues a merge of the uploaded "files", kept in form order.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadBytes*int64(s.cfg.MaxFilesPerJob) + 10*formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > s.cfg.MaxFilesPerJob {
		jsonError(w, fmt.Sprintf("too many files (max %d)", s.cfg.MaxFilesPerJob), http.StatusBadRequest)
		return
	}
	strip, err := s.stripOption(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	uploads := make([]pipeline.Upload, 0, len(files))
	for _, fh := range files {
		u, err := s.readUpload(fh)
		if err != nil {
			writeUploadError(w, err)
			return
		}
		uploads = append(uploads, u)
	}

	job := pipeline.NewJob(uploads, strip)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":     job.ID,
		"status":     pipeline.StatusQueued,
		"documents":  len(uploads),
		"poll_url":   fmt.Sprintf("/api/merge/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/merge/%s/result", job.ID),
	})
}

func (s *Server) handleMergeStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleMergeResult returns the merged text once the job has completed.
func (s *Server) handleMergeResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	text, done, err := job.Result()
	switch {
	case !done:
		jsonError(w, "job not finished", http.StatusConflict)
	case err != nil:
		jsonError(w, err.Error(), extractionStatus(err))
	default:
		writeText(w, text)
	}
}
