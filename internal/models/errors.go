package models

import "errors"

// Store error categories. Backends wrap their driver errors with these so
// callers can branch with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnavailable      = errors.New("store unavailable")
)
