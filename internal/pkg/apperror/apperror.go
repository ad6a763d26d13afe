package apperror

import "errors"

// Kind classifies an AppError independently of its message text.
type Kind string

const (
	KindUnknown          Kind = ""
	KindEntityNotFound   Kind = "ENTITY_NOT_FOUND"
	KindItemNotAvailable Kind = "ITEM_NOT_AVAILABLE"
	KindBookOwnItem      Kind = "BOOK_OWN_ITEM"
	KindInvalidDateRange Kind = "INVALID_DATE_RANGE"
	KindIllegalAccess    Kind = "ILLEGAL_ACCESS"
	KindUnsupportedState Kind = "UNSUPPORTED_STATUS"
	KindNotBooker        Kind = "NOT_BOOKER"
	KindForbidden        Kind = "FORBIDDEN"
	KindConflict         Kind = "CONFLICT"
	KindValidation       Kind = "VALIDATION"
)

// AppError is a custom error type that includes an HTTP status code, a kind and an optional cause.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    Kind   // Stable classification for callers
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewKind creates a new classified AppError.
func NewKind(kind Kind, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
// The resulting error keeps the kind of err when err is itself an AppError.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindOf(err),
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first AppError in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}
