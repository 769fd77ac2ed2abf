package model

import "time"

// GenerationJob is one in-flight request to the video service. It lives only
// for the duration of a single step.
type GenerationJob struct {
	StepID      int
	Status      string
	Reason      string
	OperationID string
	SubmittedAt time.Time
	Attempts    int
	Done        bool
	Result      []byte
}

// StepResult is the recorded outcome of one step.
type StepResult struct {
	StepID    int    `json:"step_id"`
	Title     string `json:"title,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Path      string `json:"path,omitempty"`
	Status    string `json:"status"`
	ErrorKind string `json:"error_kind,omitempty"`
	Message   string `json:"message,omitempty"`
	Attempts  int    `json:"attempts,omitempty"`
	Bytes     int    `json:"bytes,omitempty"`
}

func (r StepResult) OK() bool {
	return r.Status == StatusCompleted || r.Status == StatusSkipped
}

// RunResult aggregates a batch in ascending step order. It is printed and discarded.
type RunResult struct {
	RunID     string       `json:"run_id"`
	OutputDir string       `json:"output_dir"`
	Steps     []StepResult `json:"steps"`
	Completed int          `json:"completed"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
}

func (r *RunResult) Add(step StepResult) {
	r.Steps = append(r.Steps, step)
	switch {
	case step.Status == StatusSkipped:
		r.Skipped++
	case step.OK():
		r.Completed++
	default:
		r.Failed++
	}
}
