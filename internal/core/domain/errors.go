package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound  = errors.New("word file not found")
	ErrItemNotFound  = errors.New("item not found")
	ErrInvalidFormat = errors.New("invalid file format")
	ErrPersistence   = errors.New("persistence failure")
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
