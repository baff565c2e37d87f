package lifecycle

import (
	"errors"
	"fmt"

	"github.com/stemcapstone/smartgoals/internal/model"
)

// Error kinds. Callers match them with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotFound         = errors.New("not found")
)

var (
	ErrMissingStartDate  = errors.New("goal has no start date")
	ErrInvalidTransition = errors.New("approval transition not allowed")
	ErrCannotPostpone    = errors.New("only goals started early or not yet due can be postponed")
	ErrGoalAchieved      = errors.New("goal is already achieved")
	ErrGoalNotAchieved   = errors.New("goal is not achieved")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEndBeforeStart    = errors.New("end date must be on or after the start date")
)

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return ErrValidation.Error()
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// LockedError is returned when a goal's approval status forbids the change.
type LockedError struct {
	GoalID string
	Status model.ApprovalStatus
	Action string
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("cannot %s goal %s: goal is %s", e.Action, e.GoalID, e.Status)
}

func (e *LockedError) Unwrap() error {
	return ErrPermissionDenied
}

// TransitionError describes a rejected approval status change.
type TransitionError struct {
	GoalID string
	From   model.ApprovalStatus
	To     model.ApprovalStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("goal %s: cannot move from %s to %s", e.GoalID, e.From, e.To)
}

func (e *TransitionError) Unwrap() []error {
	return []error{ErrValidation, ErrInvalidTransition}
}

func denied(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrPermissionDenied)...)
}
