package history

import "time"

// Status is the terminal or in-flight state of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one orchestrator execution.
type Run struct {
	ID                 string
	Name               string
	Source             string
	Status             Status
	PartCount          int
	ErrorMessage       string
	NotificationErrors int
	StartedAt          time.Time
	FinishedAt         time.Time
}

// Duration is the wall time of a finished run, or 0 while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Output is one published file of a run.
type Output struct {
	RunID          string
	PartIndex      int
	Format         string
	LocalPath      string
	RemoteLocation string
	SizeBytes      int64
	SHA256         string
	CreatedAt      time.Time
}
