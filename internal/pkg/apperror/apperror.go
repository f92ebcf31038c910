package apperror

// Kind classifies an application error independently of transport.
// HTTP handlers map Status onto the wire; clients and logs key off Kind.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindPolicyViolation   Kind = "policy_violation"
	KindInvalidInput      Kind = "invalid_input"
	KindDataAccess        Kind = "data_access"
)

// AppError is a custom error type carrying an HTTP status code and an error kind.
type AppError struct {
	Status  int    // HTTP status code (e.g., 400, 404, 409)
	Kind    Kind   // Stable machine-readable classification
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code, kind and message.
func New(status int, kind Kind, message string) *AppError {
	return &AppError{
		Status:  status,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, status int, kind Kind, message string) *AppError {
	return &AppError{
		Status:  status,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}
