package store

import "errors"

// Sentinel errors shared by the generic entity layer.
var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
)

// Per-collection sentinels for errors.Is checks in handlers.
var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookExists      = errors.New("book already exists")
	ErrReaderNotFound  = errors.New("reader not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrPlanNotFound    = errors.New("plan not found")
)
