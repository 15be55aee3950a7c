package errors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidID     = errors.New("invalid id")
	ErrDuplicateCode = errors.New("code already exists")

	// ErrConditionFailed means a conditional update matched the document but
	// its guard (status, balance) no longer held.
	ErrConditionFailed = errors.New("update condition failed")
)
