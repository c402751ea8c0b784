package services

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("product already exists")
	ErrNoUpdateFields   = errors.New("no update fields provided")
	ErrJobNotFound      = errors.New("import job not found")
	ErrImagesDisabled   = errors.New("image uploads are not configured")
)

// ParseError reports input that could not be tokenized as CSV. It aborts
// the whole import before anything is written.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid CSV: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError reports a failed storage call made on behalf of an import.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ValidationError reports a single-record request that failed business validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
