package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeValidation   = "validation"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeOutOfRange   = "out_of_range"
	CodeInternal     = "internal"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, errors.New(msg))
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New(msg))
}

func Validation(msg string) *Error {
	return New(http.StatusBadRequest, CodeValidation, errors.New(msg))
}

func Validationf(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, CodeNotFound, errors.New(msg))
}

func Conflict(msg string) *Error {
	return New(http.StatusConflict, CodeConflict, errors.New(msg))
}

func OutOfRange(msg string) *Error {
	return New(http.StatusBadRequest, CodeOutOfRange, errors.New(msg))
}

func Internal(op string, err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, fmt.Errorf("%s: %w", op, err))
}

// IsCode reports whether err carries the given api error code.
func IsCode(err error, code string) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// Map converts storage-layer failures into api errors. Uniqueness races are
// expected and must surface as Conflict, never Internal: the database
// constraint is the authoritative guard behind every application pre-check.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s: %w", op, err))
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return New(http.StatusConflict, CodeConflict, fmt.Errorf("%s: %w", op, err))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return New(http.StatusConflict, CodeConflict, fmt.Errorf("%s: %w", op, err))
		case "23503": // foreign_key_violation
			return New(http.StatusConflict, CodeConflict, fmt.Errorf("%s: %w", op, err))
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "sqlstate 23505") {
		return New(http.StatusConflict, CodeConflict, fmt.Errorf("%s: %w", op, err))
	}
	return Internal(op, err)
}
