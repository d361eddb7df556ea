package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrCardNotFound is returned when a card number is not in the catalog
	ErrCardNotFound = errors.New("card not found")

	// ErrDeckNotFound is returned when a deck is not found
	ErrDeckNotFound = errors.New("deck not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable is returned when the record store cannot serve a read or write
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrNotSupported is returned when the configured backend lacks a capability
	ErrNotSupported = errors.New("operation not supported")
)

// CardNotFoundError represents a card not found error with context
type CardNotFoundError struct {
	CardNo string
}

func (e *CardNotFoundError) Error() string {
	return fmt.Sprintf("card '%s' not found", e.CardNo)
}

func (e *CardNotFoundError) Is(target error) bool {
	return target == ErrCardNotFound
}

// NewCardNotFoundError creates a new CardNotFoundError
func NewCardNotFoundError(cardNo string) *CardNotFoundError {
	return &CardNotFoundError{CardNo: cardNo}
}

// DeckNotFoundError represents a deck not found error with context
type DeckNotFoundError struct {
	DeckID int64
}

func (e *DeckNotFoundError) Error() string {
	return fmt.Sprintf("deck with ID %d not found", e.DeckID)
}

func (e *DeckNotFoundError) Is(target error) bool {
	return target == ErrDeckNotFound
}

// NewDeckNotFoundError creates a new DeckNotFoundError
func NewDeckNotFoundError(deckID int64) *DeckNotFoundError {
	return &DeckNotFoundError{DeckID: deckID}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context.
// Search requests only produce it when the request is structurally unusable;
// recoverable problems are normalized instead.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps a failure of the record store with the operation that hit it
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// NewStoreError creates a new StoreError
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// NotSupportedError reports a capability missing from the configured backend
type NotSupportedError struct {
	Operation string
	Backend   string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("%s is not supported by the '%s' backend", e.Operation, e.Backend)
}

func (e *NotSupportedError) Is(target error) bool {
	return target == ErrNotSupported
}

// NewNotSupportedError creates a new NotSupportedError
func NewNotSupportedError(operation, backend string) *NotSupportedError {
	return &NotSupportedError{Operation: operation, Backend: backend}
}
