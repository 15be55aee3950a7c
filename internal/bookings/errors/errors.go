package errors

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id")
	ErrLockTaken = errors.New("slot lock already held")
)
