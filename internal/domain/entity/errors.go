package entity

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrUnknownType    = errors.New("unknown record type")
	ErrPersistence    = errors.New("persistence failed")
	ErrLoadCorruption = errors.New("record file corrupted")
	ErrNotFound       = errors.New("record not found")
)

// ValidationError reports the first field that broke a record rule
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid record: %s", e.Reason)
	}
	return fmt.Sprintf("invalid record field %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnknownTypeError carries the Type discriminator that matched no kind
type UnknownTypeError struct {
	Value string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown record type: %q", e.Value)
}

func (e *UnknownTypeError) Is(target error) bool { return target == ErrUnknownType }

// PersistenceError means a durable write failed. Restored reports whether the
// previous file content was put back in place.
type PersistenceError struct {
	Op       string
	Path     string
	Restored bool
	Err      error
}

func (e *PersistenceError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	if e.Restored {
		msg += " (previous content restored)"
	}
	return msg
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// LoadCorruptionError describes unreadable content found while loading.
// Skipped counts the records or lines dropped; the rest of the file still loaded.
type LoadCorruptionError struct {
	Path    string
	Skipped int
	Err     error
}

func (e *LoadCorruptionError) Error() string {
	if e.Skipped > 0 {
		return fmt.Sprintf("load %s: skipped %d invalid entries: %v", e.Path, e.Skipped, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadCorruptionError) Unwrap() error { return e.Err }

func (e *LoadCorruptionError) Is(target error) bool { return target == ErrLoadCorruption }
