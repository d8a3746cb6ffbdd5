package voting

import (
	"errors"
	"fmt"
)

var (
	ErrPollNotFound          = errors.New("poll not found")
	ErrVotingNotOpen         = errors.New("voting has not started or has already ended")
	ErrAlreadyVoted          = errors.New("you have already voted on this poll")
	ErrEmptySelection        = errors.New("at least one option must be selected")
	ErrSingleChoiceViolation = errors.New("single choice poll accepts exactly one option")
	ErrChoiceLimitExceeded   = errors.New("too many options selected")
	ErrDuplicateOption       = errors.New("an option was selected more than once")
	ErrUnknownOption         = errors.New("selected option does not belong to this poll")

	// ErrNotFoundOrForbidden deliberately does not tell a missing poll apart
	// from one the caller may not manage.
	ErrNotFoundOrForbidden = errors.New("poll not found or not authorized")
	ErrPollAlreadyEnded    = errors.New("poll already ended")
	ErrPollStateChanged    = errors.New("poll status changed while updating, retry")
	ErrForbidden           = errors.New("insufficient permissions")
)

// ValidationError reports a poll field that breaks a poll invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
