package scheduler

import "context"

// Job is a unit of work executed by the worker pool. Different job types
// can be plugged in (detection jobs today, cleanup jobs later).
type Job interface {
	// Execute runs the job. Context should be respected for cancellation
	// and timeouts.
	Execute(ctx context.Context) error

	// UserID returns the user this job operates on, for logging.
	UserID() string

	// Description returns a human-readable description, for logging.
	Description() string
}
