// Package errors defines the error taxonomy used throughout the dexterity router.
//
// Route queries surface only query-level failures (no path, no priceable route,
// bad input, cancellation). Hop-level failures such as a vault refusing to quote
// are carried as QUOTE_FAILED errors inside the evaluator and never abort a query
// on their own.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the router.
const (
	ErrCodeInvalidPath       = "INVALID_PATH"
	ErrCodeNoValidRoute      = "NO_VALID_ROUTE"
	ErrCodeQuoteFailed       = "QUOTE_FAILED"
	ErrCodeTransactionFailed = "TRANSACTION_FAILED"
	ErrCodeInvalidAmount     = "INVALID_AMOUNT"
	ErrCodeInvalidOpcode     = "INVALID_OPCODE"
	ErrCodeVaultNotFound     = "VAULT_NOT_FOUND"
	ErrCodeContextCanceled   = "CONTEXT_CANCELED"
	ErrCodeConfigInvalid     = "CONFIG_INVALID"
	ErrCodeCustom            = "CUSTOM"
)

// RouterError represents an error raised by the routing engine or one of its
// collaborators.
type RouterError struct {
	// Code is a unique error code for this error type.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Details contains additional error context.
	Details map[string]any
}

// Error implements the error interface.
func (e *RouterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *RouterError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches the target. Two RouterErrors match when
// their codes are equal, so errors.Is(err, ErrQuoteFailed) works for any quote
// failure regardless of message.
func (e *RouterError) Is(target error) bool {
	t, ok := target.(*RouterError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause adds a cause to the error.
func (e *RouterError) WithCause(cause error) *RouterError {
	e.Cause = cause
	return e
}

// WithDetails adds details to the error.
func (e *RouterError) WithDetails(details map[string]any) *RouterError {
	e.Details = details
	return e
}

// NewError creates a new RouterError.
func NewError(code, message string) *RouterError {
	return &RouterError{
		Code:    code,
		Message: message,
	}
}

// Sentinels for errors.Is comparisons. Do not mutate.
var (
	ErrInvalidPath       = NewError(ErrCodeInvalidPath, "no path between assets")
	ErrNoValidRoute      = NewError(ErrCodeNoValidRoute, "no route could be priced")
	ErrQuoteFailed       = NewError(ErrCodeQuoteFailed, "quote failed")
	ErrTransactionFailed = NewError(ErrCodeTransactionFailed, "transaction failed")
	ErrInvalidAmount     = NewError(ErrCodeInvalidAmount, "invalid amount")
	ErrInvalidOpcode     = NewError(ErrCodeInvalidOpcode, "invalid opcode")
	ErrVaultNotFound     = NewError(ErrCodeVaultNotFound, "vault not found")
	ErrContextCanceled   = NewError(ErrCodeContextCanceled, "context canceled")
	ErrConfigInvalid     = NewError(ErrCodeConfigInvalid, "invalid configuration")
)

// InvalidPath creates an error for a pair of assets with no path inside the hop budget.
func InvalidPath(from, to string, maxHops int) *RouterError {
	return NewError(ErrCodeInvalidPath,
		fmt.Sprintf("no path from %s to %s within %d hops", from, to, maxHops),
	).WithDetails(map[string]any{"from": from, "to": to, "max_hops": maxHops})
}

// NoValidRoute creates an error for a query where every candidate path failed to price.
func NoValidRoute(from, to string, paths int, cause error) *RouterError {
	return NewError(ErrCodeNoValidRoute,
		fmt.Sprintf("none of %d paths from %s to %s could be priced", paths, from, to),
	).WithCause(cause).WithDetails(map[string]any{"from": from, "to": to, "paths": paths})
}

// QuoteFailed creates an error for a hop where no candidate vault returned a usable quote.
func QuoteFailed(hop int, tokenIn, tokenOut string, cause error) *RouterError {
	return NewError(ErrCodeQuoteFailed,
		fmt.Sprintf("hop %d %s -> %s", hop, tokenIn, tokenOut),
	).WithCause(cause).WithDetails(map[string]any{"hop": hop, "token_in": tokenIn, "token_out": tokenOut})
}

// InvalidAmount creates an error for an unusable input amount.
func InvalidAmount(reason string) *RouterError {
	return NewError(ErrCodeInvalidAmount, reason)
}

// InvalidOpcode creates an error for a malformed opcode buffer or hex string.
func InvalidOpcode(reason string, cause error) *RouterError {
	return NewError(ErrCodeInvalidOpcode, reason).WithCause(cause)
}

// VaultNotFound creates an error for an unknown vault id.
func VaultNotFound(id string) *RouterError {
	return NewError(ErrCodeVaultNotFound, fmt.Sprintf("vault %s not found", id))
}

// ContextCanceled wraps a context error.
func ContextCanceled(cause error) *RouterError {
	return NewError(ErrCodeContextCanceled, "context canceled").WithCause(cause)
}

// ConfigInvalid creates an error for a configuration value out of range.
func ConfigInvalid(reason string) *RouterError {
	return NewError(ErrCodeConfigInvalid, reason)
}

// Custom creates a custom error with the given message.
func Custom(message string) *RouterError {
	return NewError(ErrCodeCustom, message)
}

// CodeOf returns the code of the first RouterError in err's chain, or "".
func CodeOf(err error) string {
	var re *RouterError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
