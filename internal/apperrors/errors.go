package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the request cannot proceed in the resource's current state.
var ErrConflict = errors.New("conflicting state")

// ErrForbidden indicates that the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not allowed")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected failure that the caller cannot act on.
var ErrInternal = errors.New("internal error")

// ErrRefreshTokenExpired indicates the presented refresh token is past its expiry.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// Ledger state-conflict errors. These can surface from inside a posting or
// close transaction, so they live here rather than in a service package.

// ErrClosedPeriod indicates an attempt to post into a period that is not open.
var ErrClosedPeriod = errors.New("accounting period is closed")

// ErrPeriodHasDraftEntries indicates a period close was rejected because
// draft entries still reference the period.
var ErrPeriodHasDraftEntries = errors.New("period has draft entries")

// ErrEntryNotDraft indicates a posting or edit attempt on an entry that has
// already left the draft state.
var ErrEntryNotDraft = errors.New("journal entry is not a draft")

// ErrEntryNotPosted indicates a void attempt on an entry that is not posted.
var ErrEntryNotPosted = errors.New("journal entry is not posted")

// ErrDuplicateBatch indicates an accrual run for a date range that already
// has a running or completed batch.
var ErrDuplicateBatch = errors.New("accrual batch already exists for range")

// AppError carries an HTTP status code hint alongside a message and the
// underlying cause. Handlers map Code to the response status; errors.Is still
// matches the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a status code hint and message.
func NewAppError(code int, message string, err error) error {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError builds a 404 AppError that matches ErrNotFound.
func NewNotFoundError(message string) error {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
