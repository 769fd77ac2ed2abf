package model

import "fmt"

const (
	StatusSubmitted = "submitted"
	StatusPolling   = "polling"
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
	StatusTimedOut  = "timed_out"
)

var allowedTransitions = map[string]map[string]bool{
	"": {
		StatusSubmitted: true,
		StatusSkipped:   true, // output already on disk
		StatusFailed:    true, // unknown step or submit error
	},
	StatusSubmitted: {
		StatusPolling:   true,
		StatusCompleted: true, // operation finished before the first poll
		StatusFailed:    true,
	},
	StatusPolling: {
		StatusPolling:   true,
		StatusCompleted: true,
		StatusFailed:    true,
		StatusTimedOut:  true,
	},
	StatusCompleted: {},
	StatusSkipped:   {},
	StatusFailed:    {},
	StatusTimedOut:  {},
}

func IsKnownStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

func IsTerminal(status string) bool {
	next, ok := allowedTransitions[status]
	return ok && status != "" && len(next) == 0
}

func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func TransitionJobStatus(job *GenerationJob, toStatus string, reason string) error {
	from := job.Status
	if !IsKnownStatus(toStatus) {
		return fmt.Errorf("unknown job status %q (step=%d operation=%s)", toStatus, job.StepID, job.OperationID)
	}
	if !CanTransition(from, toStatus) {
		return fmt.Errorf("invalid job status transition: %q -> %q (step=%d operation=%s)", from, toStatus, job.StepID, job.OperationID)
	}
	job.Status = toStatus
	job.Reason = reason
	return nil
}
