package present

import (
	"errors"
	"time"
)

var (
	// errors
	ErrJobNotFound = errors.New("conversion job not found")
)

type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is one queued deck conversion. DeckPath and OutputPath are server-side
// locations and never exposed to API clients.
type Job struct {
	ID          string    `json:"id"`
	DeckName    string    `json:"deck_name"`
	DeckPath    string    `json:"-"`
	OutputPath  string    `json:"-"`
	Rate        int       `json:"rate"`
	Voice       string    `json:"voice,omitempty"`
	NotifyEmail string    `json:"notify_email,omitempty"`
	Status      JobStatus `json:"status"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	Error       string    `json:"error,omitempty"`
	Segments    int       `json:"segments,omitempty"`
	Duration    float64   `json:"duration,omitempty"`
	Warnings    []Warning `json:"warnings,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type JobRepository interface {
	CreateJob(job Job) (Job, error)
	GetJobByID(id string) (Job, error)
	// QueryAllJobs returns jobs ordered by creation time, newest first.
	QueryAllJobs() ([]Job, error)
	UpdateJob(job Job) (Job, error)
}
