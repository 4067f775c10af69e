package repositories

import "errors"

// ErrNotFound is returned when no document matches the query.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("duplicate")
