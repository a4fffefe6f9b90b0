package shared

import (
	"errors"
	"net/http"
)

// AppError carries an HTTP status alongside the underlying error so
// handlers can map service failures without inspecting driver errors.
type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, err error, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

func NewBadRequestError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, err, message)
}

// NewNotFoundError covers references to players, boosts, levels and
// prizes that do not exist.
func NewNotFoundError(err error, message string) *AppError {
	return NewAppError(http.StatusNotFound, err, message)
}

// NewConstraintViolationError covers negative amount/score writes and
// duplicate unique catalog values.
func NewConstraintViolationError(err error, message string) *AppError {
	return NewAppError(http.StatusConflict, err, message)
}

func NewInternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, err, "Internal Server Error")
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.StatusCode == http.StatusNotFound
}

func IsConstraintViolation(err error) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.StatusCode == http.StatusConflict
}
