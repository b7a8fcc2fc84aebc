package model

import (
	"fmt"
	"strings"
	"time"

	"ai-chat-assistant/internal/domain"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusError      JobStatus = "error"
)

type JobKind string

const (
	JobKindMessage JobKind = "message"
	JobKindFile    JobKind = "file"
)

// FilePayload describes an uploaded file held by the file storage collaborator.
type FilePayload struct {
	OriginalName string
	StoredRef    string
	Extension    string // lower-cased, with leading dot
	MediaType    string
	Size         int64
}

// Job is one unit of asynchronous AI work. Only the job's background task
// mutates it after creation.
type Job struct {
	ID          string
	Kind        JobKind
	Message     string
	File        *FilePayload
	Status      JobStatus
	Result      string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// NewMessageJob builds a pending message job. The text must be non-blank.
func NewMessageJob(id, text string, now time.Time) (*Job, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty job id", domain.ErrInvalidArgument)
	}
	return &Job{ID: id, Kind: JobKindMessage, Message: text, Status: JobStatusPending, CreatedAt: now}, nil
}

// NewFileJob builds a pending file job.
func NewFileJob(id string, file FilePayload, now time.Time) (*Job, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty job id", domain.ErrInvalidArgument)
	}
	if file.OriginalName == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidArgument)
	}
	f := file
	return &Job{ID: id, Kind: JobKindFile, File: &f, Status: JobStatusPending, CreatedAt: now}, nil
}

func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusError
}

// Start moves a pending job to processing.
func (j *Job) Start() error {
	if j.Status != JobStatusPending {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, j.Status, JobStatusProcessing)
	}
	j.Status = JobStatusProcessing
	return nil
}

// Complete stores the result and moves the job to done.
func (j *Job) Complete(result string, now time.Time) error {
	return j.finish(JobStatusDone, result, now)
}

// Fail stores the failure detail and moves the job to error.
func (j *Job) Fail(detail string, now time.Time) error {
	return j.finish(JobStatusError, detail, now)
}

func (j *Job) finish(to JobStatus, result string, now time.Time) error {
	if j.Status != JobStatusProcessing {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, j.Status, to)
	}
	j.Status = to
	j.Result = result
	t := now
	j.CompletedAt = &t
	return nil
}

// Clone returns a deep copy safe to hand out of the store.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.File != nil {
		f := *j.File
		c.File = &f
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// ContextItem projects a done job into a conversation turn.
func (j *Job) ContextItem() (ContextItem, bool) {
	if j.Status != JobStatusDone {
		return ContextItem{}, false
	}
	it := ContextItem{Kind: j.Kind, CreatedAt: j.CreatedAt}
	switch j.Kind {
	case JobKindMessage:
		it.UserText = j.Message
		it.AIText = j.Result
	case JobKindFile:
		if j.File != nil {
			it.FileName = j.File.OriginalName
			it.FileType = j.File.Extension
			it.FileSize = j.File.Size
		}
		it.AnalysisText = j.Result
	}
	return it, true
}
