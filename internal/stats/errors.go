package stats

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUserNotFound reports a stats lookup for a user with no recorded
// attempts.
var ErrUserNotFound = errors.New("user not found")

// ErrVersionConflict reports a document save that lost a version race.
var ErrVersionConflict = errors.New("stats document version conflict")

// ValidationError reports a malformed save request. Validation failures
// never touch the document.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// PersistenceError wraps a failed document load or save.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s stats document: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
