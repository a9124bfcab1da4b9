package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a merge job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Finished reports whether no further transitions will happen.
func (s JobStatus) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Upload is one uploaded document. Order within a job is the merge order.
type Upload struct {
	Filename string
	Data     []byte
}

// Job tracks the state of a single merge request.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Filenames              []string `json:"filenames"`
	StripFieldInstructions bool     `json:"strip_field_instructions"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	uploads []Upload
	result  string
	err     error
}

// Progress tracks processing progress.
type Progress struct {
	TotalDocuments     int      `json:"total_documents"`
	DocumentsExtracted int      `json:"documents_extracted"`
	Errors             []string `json:"errors"`
}

// NewJob creates a queued job for the given uploads.
func NewJob(uploads []Upload, strip bool) *Job {
	now := time.Now()
	names := make([]string, len(uploads))
	for i, u := range uploads {
		names[i] = u.Filename
	}
	return &Job{
		ID:                     uuid.NewString(),
		Status:                 StatusQueued,
		Phase:                  "queued",
		Filenames:              names,
		StripFieldInstructions: strip,
		Progress:               Progress{TotalDocuments: len(uploads)},
		CreatedAt:              now,
		UpdatedAt:              now,
		uploads:                uploads,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs that have not changed for longer than the
// TTL. Queued and running jobs are kept regardless of age.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Finished() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error message.
func (j *Job) AddError(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Errors = append(j.Progress.Errors, msg)
	j.UpdatedAt = time.Now()
}

// IncrDocumentsExtracted atomically increments the extracted count.
func (j *Job) IncrDocumentsExtracted() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocumentsExtracted++
	j.UpdatedAt = time.Now()
}

// Complete stores the merged text and marks the job completed. Uploaded
// bytes are released.
func (j *Job) Complete(result string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = result
	j.uploads = nil
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed. Uploaded bytes are released.
func (j *Job) Fail(phase string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.err = err
	j.uploads = nil
	j.Progress.Errors = append(j.Progress.Errors, err.Error())
	j.Status = StatusFailed
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Result returns the merged text and the failure, if any. done is false
// while the job is still queued or running.
func (j *Job) Result() (text string, done bool, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.Status.Finished(), j.err
}

// Uploads returns the documents to merge.
func (j *Job) Uploads() []Upload {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.uploads
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID                     string    `json:"job_id"`
	Status                 JobStatus `json:"status"`
	Phase                  string    `json:"phase"`
	Filenames              []string  `json:"filenames"`
	StripFieldInstructions bool      `json:"strip_field_instructions"`
	Progress               Progress  `json:"progress"`
	ResultBytes            int       `json:"result_bytes"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:                     j.ID,
		Status:                 j.Status,
		Phase:                  j.Phase,
		Filenames:              append([]string(nil), j.Filenames...),
		StripFieldInstructions: j.StripFieldInstructions,
		Progress: Progress{
			TotalDocuments:     j.Progress.TotalDocuments,
			DocumentsExtracted: j.Progress.DocumentsExtracted,
			Errors:             errs,
		},
		ResultBytes: len(j.result),
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
