package ledger

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/timesheet/internal/domain"
)

var (
	ErrLockedPeriod       = errors.New("period is locked")
	ErrUnchangedDuplicate = errors.New("duplicated entry must have a different date, start time or end time")
	ErrPlaceholderRow     = errors.New("placeholder rows cannot be changed")
	ErrRowNotFound        = errors.New("row not found")
	ErrRowBusy            = errors.New("row has an operation in progress")
	ErrStaleLoad          = errors.New("result belongs to a superseded load")
	ErrNotLoaded          = errors.New("no period loaded")
)

// FetchError reports a failed load of a user's month.
type FetchError struct {
	Period domain.Period
	UserID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("loading entries for %s (user %s): %v", e.Period.Key(), e.UserID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
