package domain

import "errors"

// Sentinel errors for the auth core. Handlers match on these with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrDuplicateIdentity  = errors.New("username or email already exists")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotFound           = errors.New("resource not found")
	ErrInternalError      = errors.New("internal error")
)

// AppError carries an HTTP status code and a user-facing message alongside
// the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error

	// Fields holds field-level validation errors, set only for
	// ErrValidationFailed responses.
	Fields []FieldError
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
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

func NewNotFoundError(msg string) *AppError {
	return &AppError{Code: 404, Message: msg, Err: ErrNotFound}
}

func NewInternalError(msg string, err error) *AppError {
	return &AppError{Code: 500, Message: msg, Err: err}
}

// NewInvalidCredentialsError is deliberately the same for unknown email and
// wrong password, so callers cannot probe which emails are registered.
func NewInvalidCredentialsError() *AppError {
	return &AppError{Code: 401, Message: "Invalid credentials", Err: ErrInvalidCredentials}
}

func NewAccountLockedError() *AppError {
	return &AppError{Code: 423, Message: "Account is temporarily locked due to too many failed login attempts", Err: ErrAccountLocked}
}

func NewAccountDeactivatedError() *AppError {
	return &AppError{Code: 403, Message: "Account is deactivated", Err: ErrAccountDeactivated}
}

func NewDuplicateIdentityError(msg string) *AppError {
	return &AppError{Code: 409, Message: msg, Err: ErrDuplicateIdentity}
}

func NewUnauthenticatedError(msg string) *AppError {
	return &AppError{Code: 401, Message: msg, Err: ErrUnauthenticated}
}

func NewForbiddenError(msg string) *AppError {
	return &AppError{Code: 403, Message: msg, Err: ErrForbidden}
}

func NewValidationError(fields ...FieldError) *AppError {
	return &AppError{Code: 400, Message: "Validation failed", Err: ErrValidationFailed, Fields: fields}
}
