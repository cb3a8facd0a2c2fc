// Package errors provides custom error types for the SplitEase API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches any AppError carrying the same code, so wrapped copies of a
// sentinel still satisfy errors.Is(err, ErrX).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Group errors.
var (
	ErrGroupNotFound     = &AppError{Code: "GROUP_NOT_FOUND", Message: "Group not found", StatusCode: http.StatusNotFound}
	ErrNotGroupMember    = &AppError{Code: "NOT_GROUP_MEMBER", Message: "You are not a member of this group", StatusCode: http.StatusForbidden}
	ErrNotGroupAdmin     = &AppError{Code: "NOT_GROUP_ADMIN", Message: "Only group admins can do this", StatusCode: http.StatusForbidden}
	ErrNotGroupOwner     = &AppError{Code: "NOT_GROUP_OWNER", Message: "Only the group owner can do this", StatusCode: http.StatusForbidden}
	ErrDuplicateMember   = &AppError{Code: "DUPLICATE_MEMBER", Message: "User is already a member of this group", StatusCode: http.StatusConflict}
	ErrCannotRemoveOwner = &AppError{Code: "CANNOT_REMOVE_OWNER", Message: "Cannot remove the group owner", StatusCode: http.StatusBadRequest}
	ErrCannotRemoveSelf  = &AppError{Code: "CANNOT_REMOVE_SELF", Message: "You cannot remove yourself", StatusCode: http.StatusBadRequest}
)

// Expense errors.
var (
	ErrExpenseNotFound = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrNotExpensePayer = &AppError{Code: "NOT_EXPENSE_PAYER", Message: "Only the payer can change this expense", StatusCode: http.StatusForbidden}
	ErrSplitMismatch   = &AppError{Code: "SPLIT_MISMATCH", Message: "Participant shares do not add up to the expense amount", StatusCode: http.StatusBadRequest}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
)

// Settlement errors.
var (
	ErrSettlementNotFound         = &AppError{Code: "SETTLEMENT_NOT_FOUND", Message: "Settlement not found", StatusCode: http.StatusNotFound}
	ErrSelfSettlement             = &AppError{Code: "SELF_SETTLEMENT", Message: "Payer and payee must be different users", StatusCode: http.StatusBadRequest}
	ErrNotSettlementParty         = &AppError{Code: "NOT_SETTLEMENT_PARTY", Message: "Only the payer or payee can complete a settlement", StatusCode: http.StatusForbidden}
	ErrSettlementAlreadyCompleted = &AppError{Code: "SETTLEMENT_ALREADY_COMPLETED", Message: "Settlement is already completed", StatusCode: http.StatusConflict}
)
