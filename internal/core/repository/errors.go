package repository

import "errors"

// ErrNotFound is wrapped by repositories when a record does not exist,
// so callers can tell a missing row from a store failure.
var ErrNotFound = errors.New("not found")
