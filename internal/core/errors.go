// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenRevoked  = errors.New("token revoked")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrAccountLocked = errors.New("account deactivated")
)

// Order placement error kinds. ErrStorageFailure is only returned after
// the surrounding transaction has been rolled back.
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidReference = errors.New("invalid reference")
	ErrStockConstraint  = errors.New("stock constraint violation")
	ErrStorageFailure   = errors.New("storage failure")
)

type AppError struct {
	Err        error  `json:"-"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
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

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: status,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		field+" already exists",
		http.StatusConflict,
		"DUPLICATE",
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func BadRequestError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		"INVALID_REQUEST",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"token has expired",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		ErrTokenRevoked,
		"token has been revoked",
		http.StatusUnauthorized,
		"TOKEN_REVOKED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"token is invalid",
		http.StatusUnauthorized,
		"TOKEN_INVALID",
	)
}

// OrderError maps an order placement failure onto its transport shape.
// It returns nil for errors that are not one of the placement kinds.
func OrderError(err error) *AppError {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return NewAppError(
			err,
			"order request is invalid",
			http.StatusBadRequest,
			"INVALID_REQUEST",
		)
	case errors.Is(err, ErrInvalidReference):
		return NewAppError(
			err,
			"order references an unknown user or product",
			http.StatusUnprocessableEntity,
			"INVALID_REFERENCE",
		)
	case errors.Is(err, ErrStockConstraint):
		return NewAppError(
			err,
			"requested quantity exceeds available stock",
			http.StatusConflict,
			"STOCK_CONSTRAINT",
		)
	case errors.Is(err, ErrStorageFailure):
		return NewAppError(
			err,
			"order could not be stored, nothing was written",
			http.StatusServiceUnavailable,
			"STORAGE_FAILURE",
		)
	}
	return nil
}
