package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/susdigest/internal/report"
)

// JobStatus represents the state of an extraction job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusExtracting JobStatus = "extracting"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial"
	StatusNoData     JobStatus = "no_data"
	StatusFailed     JobStatus = "failed"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	switch s {
	case StatusCompleted, StatusPartial, StatusNoData, StatusFailed, StatusDupSkipped:
		return true
	}
	return false
}

// Job tracks the state of a single uploaded report.
type Job struct {
	mu sync.Mutex

	ID       string
	BatchID  string
	Subject  string
	Filename string
	Force    bool // skip the duplicate check

	Status   JobStatus
	Phase    string
	Progress Progress

	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	fileData []byte
	record   *report.Record
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalChunks  int      `json:"total_chunks"`
	Selected     int      `json:"selected"`
	Processed    int      `json:"processed"`
	Failed       int      `json:"failed"`
	FieldsFilled int      `json:"fields_filled"`
	Errors       []string `json:"errors"`
}

// NewJob creates a queued job for an uploaded file.
func NewJob(filename, subject string, data []byte, force bool) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Subject:   subject,
		Filename:  filename,
		Force:     force,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
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

// Batch returns the jobs submitted under batchID.
func (s *JobStore) Batch(batchID string) []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Job
	for _, j := range s.jobs {
		if j.BatchID == batchID {
			out = append(out, j)
		}
	}
	return out
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetSelected records chunk counts once ranking is done.
func (j *Job) SetSelected(total, selected int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChunks = total
	j.Progress.Selected = selected
	j.UpdatedAt = time.Now()
}

// ChunkDone counts one finished extract call.
func (j *Job) ChunkDone(failed bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Processed++
	if failed {
		j.Progress.Failed++
	}
	j.UpdatedAt = time.Now()
}

// SetSubject records the resolved subject.
func (j *Job) SetSubject(subject string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Subject = subject
}

func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// SetRecord records the merged result.
func (j *Job) SetRecord(r report.Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.record = &r
	j.Progress.FieldsFilled = r.Filled()
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFile drops the upload once it has been parsed.
func (j *Job) releaseFile() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string         `json:"job_id"`
	BatchID     string         `json:"batch_id,omitempty"`
	Subject     string         `json:"subject"`
	Filename    string         `json:"filename"`
	Status      JobStatus      `json:"status"`
	Phase       string         `json:"phase"`
	Progress    Progress       `json:"progress"`
	ContentHash string         `json:"content_hash,omitempty"`
	Record      *report.Record `json:"record,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	progress := j.Progress
	progress.Errors = append([]string{}, j.errors...)
	var rec *report.Record
	if j.record != nil {
		r := *j.record
		rec = &r
	}
	return JobSnapshot{
		ID:          j.ID,
		BatchID:     j.BatchID,
		Subject:     j.Subject,
		Filename:    j.Filename,
		Status:      j.Status,
		Phase:       j.Phase,
		Progress:    progress,
		ContentHash: j.ContentHash,
		Record:      rec,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
