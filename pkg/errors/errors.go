package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches by code so predefined values survive wrapping and cloning.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Not-found family, one per entity the API resolves by id or natural key.
var (
	ErrStudentNotFound           = New("STUDENT_NOT_FOUND", http.StatusNotFound, "student not found")
	ErrTeacherNotFound           = New("TEACHER_NOT_FOUND", http.StatusNotFound, "teacher not found")
	ErrProductNotFound           = New("PRODUCT_NOT_FOUND", http.StatusNotFound, "product not found")
	ErrOfferNotFound             = New("OFFER_NOT_FOUND", http.StatusNotFound, "offer not found")
	ErrSubjectNotFound           = New("SUBJECT_NOT_FOUND", http.StatusNotFound, "subject not found")
	ErrSohoNotFound              = New("SOHO_ACCOUNT_NOT_FOUND", http.StatusNotFound, "soho account not found")
	ErrStudentProductNotFound    = New("STUDENT_PRODUCT_NOT_FOUND", http.StatusNotFound, "student product not found")
	ErrTeacherProductNotFound    = New("TEACHER_PRODUCT_NOT_FOUND", http.StatusNotFound, "no suitable teacher product")
	ErrTeacherAssignmentNotFound = New("TEACHER_ASSIGNMENT_NOT_FOUND", http.StatusNotFound, "teacher assignment not found")
	ErrDistributionNotFound      = New("DISTRIBUTION_NOT_FOUND", http.StatusNotFound, "distribution not found")
	ErrUserNotFound              = New("USER_NOT_FOUND", http.StatusNotFound, "user not found")
)

// Conflict and state errors.
var (
	ErrStudentVKIDAlreadyUsed        = New("STUDENT_VK_ID_ALREADY_USED", http.StatusConflict, "vk id already belongs to another student")
	ErrUserAlreadyExists             = New("USER_ALREADY_EXISTS", http.StatusConflict, "user already exists")
	ErrStudentAlreadyEnrolled        = New("STUDENT_ALREADY_ENROLLED", http.StatusBadRequest, "student already enrolled")
	ErrStudentProductAlreadyExpulsed = New("STUDENT_PRODUCT_ALREADY_EXPULSED", http.StatusBadRequest, "student already expulsed from product")
	ErrStudentProductHasNotTeacher   = New("STUDENT_PRODUCT_HAS_NOT_TEACHER", http.StatusBadRequest, "student product has no teacher attached")
)

// Transport-level errors.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid username or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "token required")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "invalid token")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusUnprocessableEntity, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Internal wraps an uncategorised failure with context.
func Internal(err error, message string) *Error {
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, message)
}
