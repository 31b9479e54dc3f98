package forum

import (
	"errors"
	"fmt"
)

// ErrUnauthorized means the credential is missing or no longer valid.
// Read paths downgrade to the anonymous view; the stored credential is
// cleared by the session layer.
var ErrUnauthorized = errors.New("unauthorized")

// ActionRejected is returned when a create/update/delete/vote/upload was
// refused by the API. Surfaced to the user as a blocking notice and never
// retried automatically.
type ActionRejected struct {
	Op     string
	Status int
	Detail string
}

func (e *ActionRejected) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s rejected (status %d): %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s rejected (status %d)", e.Op, e.Status)
}

// FetchFailed is returned when a list/detail load failed. Logged, the view
// degrades to an empty state, and the user may retry by re-triggering the
// same selection.
type FetchFailed struct {
	Op  string
	Err error
}

func (e *FetchFailed) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *FetchFailed) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is (or wraps) ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
