package session

import (
	"errors"
	"fmt"

	"github.com/meltforce/fittrack/internal/models"
)

var (
	ErrPlanNotFound         = errors.New("workout plan not found")
	ErrUnknownExercise      = errors.New("exercise is not part of this session")
	ErrSessionPaused        = errors.New("session is paused")
	ErrSessionNotPaused     = errors.New("session is not paused")
	ErrSessionFinished      = errors.New("session is finished")
	ErrSessionClosed        = errors.New("session is closed")
	ErrExerciseNotCompleted = errors.New("exercise is not completed")
	ErrSaveInProgress       = errors.New("a save is already in progress")
	ErrFinishDeclined       = errors.New("finish was not confirmed")
)

// FailureKind classifies a failed finish so callers can show a fitting message.
type FailureKind string

const (
	FailurePermissionDenied FailureKind = "permission-denied"
	FailureUnavailable      FailureKind = "unavailable"
	FailureGeneric          FailureKind = "generic"
)

// FinishError is returned when the final record could not be saved. The
// session keeps its state so the finish can be retried.
type FinishError struct {
	Kind FailureKind
	Err  error
}

func newFinishError(err error) *FinishError {
	kind := FailureGeneric
	switch {
	case errors.Is(err, models.ErrPermissionDenied):
		kind = FailurePermissionDenied
	case errors.Is(err, models.ErrUnavailable):
		kind = FailureUnavailable
	}
	return &FinishError{Kind: kind, Err: err}
}

func (e *FinishError) Error() string {
	return fmt.Sprintf("saving workout (%s): %v", e.Kind, e.Err)
}

func (e *FinishError) Unwrap() error { return e.Err }

// UserMessage is the text shown to the user for this failure.
func (e *FinishError) UserMessage() string {
	switch e.Kind {
	case FailurePermissionDenied:
		return "You do not have permission to save this workout."
	case FailureUnavailable:
		return "Network error. Please check your connection and try again."
	default:
		return "Failed to save workout. Please try again."
	}
}
