package errors

import "fmt"

// Kind classifies a DomainError along seven categories (§7). It is a
// label only: no code in this module retries or backs off based on it.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindUpstream   Kind = "UPSTREAM"
	KindConflict   Kind = "CONFLICT"
	KindQuota      Kind = "QUOTA"
	KindTransient  Kind = "TRANSIENT"
	KindInternal   Kind = "INTERNAL"
)

// httpStatus is the conventional HTTP status associated with each kind,
// used only for logging/metrics labels — the pipeline has no HTTP surface.
var httpStatus = map[Kind]int{
	KindValidation: 400,
	KindNotFound:   404,
	KindUpstream:   502,
	KindConflict:   409,
	KindQuota:      429,
	KindTransient:  503,
	KindInternal:   500,
}

// DomainError is the structured error the application packages return
// instead of a bare error, so callers can branch on Kind (see Is)
// without string-matching messages.
type DomainError struct {
	Kind       Kind
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(kind Kind, code, message string, err error) *DomainError {
	return &DomainError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus[kind],
		Err:        err,
	}
}

func NewValidation(code, message string, err error) *DomainError {
	return New(KindValidation, code, message, err)
}

func NewNotFound(code, message string) *DomainError {
	return New(KindNotFound, code, message, nil)
}

func NewUpstream(code, message string, err error) *DomainError {
	return New(KindUpstream, code, message, err)
}

func NewConflict(code, message string) *DomainError {
	return New(KindConflict, code, message, nil)
}

// NewQuota reports a marketplace/harvester rate-limit hit (§4.5, §4.6).
func NewQuota(code, message string) *DomainError {
	return New(KindQuota, code, message, nil)
}

// NewTransient reports a retryable failure (network timeout, 5xx from
// an upstream) distinct from Upstream, which is a non-retryable
// rejection from the upstream system.
func NewTransient(code, message string, err error) *DomainError {
	return New(KindTransient, code, message, err)
}

func NewInternal(code, message string, err error) *DomainError {
	return New(KindInternal, code, message, err)
}

// Is reports whether err is a *DomainError of the given kind.
func Is(err error, kind Kind) bool {
	de, ok := err.(*DomainError)
	return ok && de.Kind == kind
}
