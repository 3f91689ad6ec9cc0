package ledger

import (
	"errors"
	"fmt"
)

// ValidationReason classifies a rejected candidate event.
type ValidationReason string

const (
	ReasonDuplicateTimestamp ValidationReason = "duplicate_timestamp"
	ReasonTimeInFuture       ValidationReason = "time_in_future"
	ReasonDateTooOld         ValidationReason = "date_too_old"
)

// ValidationError rejects a candidate mutation before it touches the ledger.
// It is always recovered locally: the flow stays where it is and the user may
// resubmit.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(reason ValidationReason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Precondition errors: the ledger or flow is not in a state that allows the
// requested operation. The flow returns to idle and the user re-invokes.
var (
	ErrAlreadyWorking   = errors.New("already working: end the current session first")
	ErrNotWorking       = errors.New("not working: start a session first")
	ErrNoRecordsToEdit  = errors.New("no records for this date")
	ErrSessionExpired   = errors.New("correction session expired")
	ErrEventNotFound    = errors.New("attendance event not found")
	ErrUnknownEventKind = errors.New("unknown event kind")
)
