package apperror

import "net/http"

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// BadRequest marks a validation failure: malformed or missing request
// fields, rejected before any collaborator is touched.
func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

// Unavailable marks an upstream collaborator failure after retries are
// exhausted.
func Unavailable(message string, err error) *AppError {
	return New(http.StatusBadGateway, message, err)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}
