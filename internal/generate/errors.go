package generate

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindConfiguration covers unknown steps and missing settings; no network call was made.
	KindConfiguration Kind = "configuration"
	// KindService covers submit, poll, download and persist failures.
	KindService Kind = "service"
	// KindTimeout means the poll ceiling was reached before the operation finished.
	KindTimeout Kind = "timeout"
	// KindEmptyResult means the operation finished without a video.
	KindEmptyResult Kind = "empty_result"
)

type StepError struct {
	Kind   Kind
	StepID int
	Err    error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("step %d: %s error", e.StepID, e.Kind)
	}
	return fmt.Sprintf("step %d: %v", e.StepID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first StepError in err's chain, or "" when
// there is none.
func KindOf(err error) Kind {
	var se *StepError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
