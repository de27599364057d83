package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ERROR CODES
// =============================================================================

// Error code constants for structured errors.
const (
	CodeServiceNotFound      = "SERVICE_NOT_FOUND"
	CodeNoViableConstructor  = "NO_VIABLE_CONSTRUCTOR"
	CodeCircularDependency   = "CIRCULAR_DEPENDENCY"
	CodeConstructionFailed   = "CONSTRUCTION_FAILED"
	CodeScopeEnded           = "SCOPE_ENDED"
	CodeDisposalFailed       = "DISPOSAL_FAILED"
	CodeTypeMismatch         = "TYPE_MISMATCH"
	CodeInvalidConstructor   = "INVALID_CONSTRUCTOR"
	CodeAlreadyBuilt         = "ALREADY_BUILT"
	CodeServiceAlreadyExists = "SERVICE_ALREADY_EXISTS"
	CodeContextCancelled     = "CONTEXT_CANCELLED"
)

// =============================================================================
// STRUCTURED ERROR
// =============================================================================

// Error is a structured error with a stable code, an optional cause, and
// free-form context. Two Errors compare equal under errors.Is when their
// codes match, so the sentinel values below can be used for kind checks.
type Error struct {
	// Code is a unique error code.
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Cause is the underlying error that caused this error.
	Cause error `json:"cause,omitempty"`

	// Context contains additional context information.
	Context map[string]interface{} `json:"context,omitempty"`

	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause sets the underlying cause and returns the updated Error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new structured Error.
func NewError(code, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// =============================================================================
// RESOLVER ERRORS
// =============================================================================

// ErrServiceNotFound reports a lookup for an identity with no descriptor.
// The chain, when non-empty, is the resolution path that led to the lookup.
func ErrServiceNotFound(service string, chain []string) *Error {
	err := NewError(CodeServiceNotFound, "no service registered for "+service, nil)
	if len(chain) > 0 {
		err.Message += " (required by " + strings.Join(chain, " -> ") + ")"
		err = err.WithContext("chain", chain)
	}
	return err
}

// ErrNoViableConstructor reports that no constructor of the implementation
// had every parameter resolvable or defaulted. attempted describes each
// candidate and its unresolved parameters.
func ErrNoViableConstructor(impl string, attempted []string) *Error {
	msg := "no viable constructor for " + impl
	if len(attempted) > 0 {
		msg += ": " + strings.Join(attempted, "; ")
	}
	return NewError(CodeNoViableConstructor, msg, nil).WithContext("attempted", attempted)
}

// ErrCircularDependency reports a cycle in the active resolution stack,
// e.g. "A -> B -> A".
func ErrCircularDependency(chain []string) *Error {
	return NewError(CodeCircularDependency, "circular dependency detected: "+strings.Join(chain, " -> "), nil).
		WithContext("chain", chain)
}

// ErrConstructionFailed reports that the selected constructor returned an
// error when invoked.
func ErrConstructionFailed(service string, chain []string, cause error) *Error {
	err := NewError(CodeConstructionFailed, "constructing "+service+" failed", cause)
	if len(chain) > 0 {
		err = err.WithContext("chain", chain)
	}
	return err
}

// ErrDependencyFailed wraps a failure that occurred while resolving a
// dependency of service, so a failure deep in the graph stays attributable
// to the top-level request. The wrapper inherits the cause's code.
func ErrDependencyFailed(service, dependency string, cause error) *Error {
	return NewError(codeOf(cause), "resolving dependency "+dependency+" of "+service+" failed", cause)
}

// ErrScopeEnded reports resolution or scope creation against a torn-down scope.
func ErrScopeEnded(scopeID string) *Error {
	return NewError(CodeScopeEnded, "scope "+scopeID+" has ended", nil)
}

// ErrTypeMismatch reports a constructor whose product is not assignable to
// the registered identity.
func ErrTypeMismatch(impl, service string) *Error {
	return NewError(CodeTypeMismatch, impl+" is not assignable to "+service, nil)
}

// ErrInvalidConstructor reports a registration whose constructor is not a
// usable function.
func ErrInvalidConstructor(detail string) *Error {
	return NewError(CodeInvalidConstructor, "invalid constructor: "+detail, nil)
}

// ErrAlreadyBuilt reports a registration attempted after Build.
func ErrAlreadyBuilt(operation string) *Error {
	return NewError(CodeAlreadyBuilt, "collection is frozen, cannot "+operation+" after build", nil)
}

// ErrContextCancelled reports a resolution abandoned due to caller cancellation.
func ErrContextCancelled(operation string, cause error) *Error {
	return NewError(CodeContextCancelled, "context cancelled during "+operation, cause)
}

// codeOf propagates the code of a structured cause so kind checks keep
// working through dependency-chain wrapping.
func codeOf(err error) string {
	var structured *Error
	if errors.As(err, &structured) {
		return structured.Code
	}
	return CodeConstructionFailed
}

// =============================================================================
// DISPOSAL ERRORS
// =============================================================================

// DisposalError aggregates the failures from tearing down a scope. Disposal
// never stops at the first failure; every tracked instance gets its attempt
// and every error lands here.
type DisposalError struct {
	// ScopeID identifies the scope that was being torn down.
	ScopeID string

	// Errors holds one entry per instance that failed to dispose.
	Errors []error
}

// Error implements the error interface.
func (e *DisposalError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("[%s] scope %s: %d instance(s) failed to dispose: %s",
		CodeDisposalFailed, e.ScopeID, len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *DisposalError) Unwrap() []error {
	return e.Errors
}

// Is matches the disposal sentinel.
func (e *DisposalError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == CodeDisposalFailed
}

// NewDisposalError creates a DisposalError for the given scope. Returns nil
// when there are no failures.
func NewDisposalError(scopeID string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &DisposalError{ScopeID: scopeID, Errors: errs}
}

// =============================================================================
// SENTINEL ERRORS (for use with Is)
// =============================================================================

// Sentinel errors that can be used with errors.Is comparisons.
var (
	// ErrServiceNotFoundSentinel matches any service-not-found error.
	ErrServiceNotFoundSentinel = &Error{Code: CodeServiceNotFound}

	// ErrNoViableConstructorSentinel matches any constructor selection failure.
	ErrNoViableConstructorSentinel = &Error{Code: CodeNoViableConstructor}

	// ErrCircularDependencySentinel matches any circular dependency error.
	ErrCircularDependencySentinel = &Error{Code: CodeCircularDependency}

	// ErrConstructionFailedSentinel matches any construction failure.
	ErrConstructionFailedSentinel = &Error{Code: CodeConstructionFailed}

	// ErrScopeEndedSentinel matches any use of an ended scope.
	ErrScopeEndedSentinel = &Error{Code: CodeScopeEnded}

	// ErrDisposalFailedSentinel matches any aggregated disposal failure.
	ErrDisposalFailedSentinel = &Error{Code: CodeDisposalFailed}

	// ErrTypeMismatchSentinel matches any registration type mismatch.
	ErrTypeMismatchSentinel = &Error{Code: CodeTypeMismatch}

	// ErrInvalidConstructorSentinel matches any invalid constructor registration.
	ErrInvalidConstructorSentinel = &Error{Code: CodeInvalidConstructor}

	// ErrAlreadyBuiltSentinel matches any post-build registration attempt.
	ErrAlreadyBuiltSentinel = &Error{Code: CodeAlreadyBuilt}

	// ErrContextCancelledSentinel matches any cancellation error.
	ErrContextCancelledSentinel = &Error{Code: CodeContextCancelled}
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsServiceNotFound checks if the error is a service not found error.
func IsServiceNotFound(err error) bool {
	return errors.Is(err, ErrServiceNotFoundSentinel)
}

// IsNoViableConstructor checks if the error is a constructor selection failure.
func IsNoViableConstructor(err error) bool {
	return errors.Is(err, ErrNoViableConstructorSentinel)
}

// IsCircularDependency checks if the error is a circular dependency error.
func IsCircularDependency(err error) bool {
	return errors.Is(err, ErrCircularDependencySentinel)
}

// IsConstructionFailed checks if the error is a construction failure.
func IsConstructionFailed(err error) bool {
	return errors.Is(err, ErrConstructionFailedSentinel)
}

// IsScopeEnded checks if the error reports use of an ended scope.
func IsScopeEnded(err error) bool {
	return errors.Is(err, ErrScopeEndedSentinel)
}

// IsDisposalFailed checks if the error is an aggregated disposal failure.
func IsDisposalFailed(err error) bool {
	return errors.Is(err, ErrDisposalFailedSentinel)
}

// Chain extracts the resolution chain carried by a structured error, walking
// the cause chain until one is found.
func Chain(err error) []string {
	var structured *Error
	for errors.As(err, &structured) {
		if chain, ok := structured.Context["chain"].([]string); ok {
			return chain
		}
		err = structured.Cause
		if err == nil {
			break
		}
	}
	return nil
}

// =============================================================================
// STANDARD ERRORS PACKAGE INTEGRATION
// =============================================================================

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
// This is a convenience wrapper around errors.New from the standard library.
func New(text string) error {
	return errors.New(text)
}

// Join returns an error that wraps the given errors.
// This is a convenience wrapper around errors.Join from the standard library.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
