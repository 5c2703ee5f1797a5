package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"centavo/internal/domain/recurring"
)

// DetectJob runs recurring-pattern detection for a single user. Jobs for
// different users carry no shared state, so the worker pool may run them in
// parallel; same-user serialization lives inside the Detector.
type DetectJob struct {
	userID   int64
	detector *recurring.Detector
}

func NewDetectJob(userID int64, detector *recurring.Detector) *DetectJob {
	return &DetectJob{
		userID:   userID,
		detector: detector,
	}
}

// Execute runs detection. Per-group failures are isolated inside the
// detector; they surface here only as an aggregate error so the worker
// pool records the run as failed.
func (j *DetectJob) Execute(ctx context.Context) error {
	result := j.detector.Detect(ctx, j.userID)
	if len(result.Errors) > 0 {
		return fmt.Errorf("detection finished with %d errors: %s",
			len(result.Errors), strings.Join(result.Errors, "; "))
	}
	return nil
}

func (j *DetectJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

func (j *DetectJob) Description() string {
	return "recurring pattern detection"
}
