// Package storage holds the errors shared by every storage backend.
package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every "does not exist" error of the backends.
var ErrNotFound = errors.New("not found")

var (
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrPostNotFound   = fmt.Errorf("post %w", ErrNotFound)
	ErrAuthorNotFound = errors.New("author not found")
	ErrDuplicateEmail = errors.New("user with this email already exists")
	ErrUserHasPosts   = errors.New("user still has posts")
)

const DefaultLimit = 10

// Page normalizes pagination arguments: negative values fall back to the defaults.
func Page(limit, offset int) (int, int) {
	if limit < 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
