package core

import "errors"

// Common errors.
var (
	ErrNoDocument         = errors.New("no document loaded")
	ErrPageNotFound       = errors.New("page does not exist")
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrDuplicateID        = errors.New("annotation id already exists")
	ErrUnknownKind        = errors.New("unknown annotation kind")
)
