// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as services
// and handlers to distinguish between failure scenarios without inspecting
// driver-specific errors.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.  Services translate
// it into their own domain errors (e.g. access denied for unknown users).
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint,
// such as registering an already-taken username or email.
var ErrDuplicate = errors.New("duplicate entry")
