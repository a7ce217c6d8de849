package project

import "errors"

var (
	// ErrProjectNotFound indicates the project document doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrCorruptDocument indicates a stored document that exists but does
	// not parse as a project. Kept distinct from ErrProjectNotFound so
	// data loss is never masked as absence.
	ErrCorruptDocument = errors.New("project document corrupt")
	// ErrInvalidInput indicates invalid project or track input.
	ErrInvalidInput = errors.New("invalid project input")
)
