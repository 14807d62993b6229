package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery marks malformed retrieval input. Never retried.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidInput marks malformed non-retrieval input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTemporary marks provider failures likely to succeed on retry.
	ErrTemporary = errors.New("temporary failure")
	// ErrPermanent marks provider failures that retrying cannot fix.
	ErrPermanent = errors.New("permanent provider failure")
	// ErrGeneration is the terminal failure for a question after the
	// retry budget is exhausted; it wraps the originating cause.
	ErrGeneration = errors.New("generation failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
