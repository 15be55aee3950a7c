package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes. The first block is the domain taxonomy: expected, recoverable,
// user-facing outcomes that callers branch on. STORAGE_FAILURE is the only
// code that represents an unexpected error.
const (
	CodeSlotUnavailable     = "SLOT_UNAVAILABLE"
	CodeStaffUnqualified    = "STAFF_UNQUALIFIED"
	CodeQuotaExceeded       = "QUOTA_EXCEEDED"
	CodeModuleDisabled      = "MODULE_DISABLED"
	CodeInvalidState        = "INVALID_STATE"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeNotFound            = "NOT_FOUND"
	CodeStorageFailure      = "STORAGE_FAILURE"

	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
	return data
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// SlotUnavailable means a concurrent booking raced and won. The caller should
// re-list available slots and offer another time.
func SlotUnavailable(message string) *AppError {
	return New(CodeSlotUnavailable, message, http.StatusConflict)
}

func StaffUnqualified(staffID, category string) *AppError {
	return &AppError{
		Code:       CodeStaffUnqualified,
		Message:    "Staff member is not qualified for this service",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"staff_id": staffID, "category": category},
	}
}

// QuotaExceeded is the plan-upsell error: the tenant hit a plan limit.
func QuotaExceeded(resource string, limit int) *AppError {
	return &AppError{
		Code:       CodeQuotaExceeded,
		Message:    fmt.Sprintf("Plan limit reached for %s", resource),
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"resource": resource, "limit": limit},
	}
}

func ModuleDisabled(module string) *AppError {
	return &AppError{
		Code:       CodeModuleDisabled,
		Message:    fmt.Sprintf("Module %q is not enabled for this tenant", module),
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"module": module},
	}
}

func InvalidState(message string) *AppError {
	return New(CodeInvalidState, message, http.StatusConflict)
}

// InsufficientBalance reports the actual remaining balance so the caller can
// show it.
func InsufficientBalance(balance int64, currency string) *AppError {
	return &AppError{
		Code:       CodeInsufficientBalance,
		Message:    "Redemption amount exceeds remaining balance",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"balance": balance, "currency": currency},
	}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"resource": resource, "id": id},
	}
}

// Storage wraps an underlying persistence error. It is fatal to the current
// request and never silently retried inside the core.
func Storage(message string, err error) *AppError {
	return &AppError{
		Code:       CodeStorageFailure,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError coerces any error into an *AppError; unknown errors become
// storage failures so nothing leaks internals to the client.
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Storage("An unexpected error occurred", err)
}

// HasCode reports whether err is an *AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
