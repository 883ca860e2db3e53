package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCatNotFound      = errors.New("cat not found")
	ErrValidation       = errors.New("invalid input")
	ErrExtractionFailed = errors.New("feature extraction failed")
	ErrCommitFailed     = errors.New("commit failed")
	ErrTemporary        = errors.New("temporary failure")
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
