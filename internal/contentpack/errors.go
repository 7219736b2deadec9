package contentpack

import (
	"errors"
	"fmt"
)

// ErrMissingField marks an entity skipped because a required field is empty.
var ErrMissingField = errors.New("contentpack: missing required field")

// LoadError reports a file that could not be read or decoded. The rest of
// the pack still loads.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("contentpack: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func missing(field, where string) error {
	return fmt.Errorf("%w: %s in %s", ErrMissingField, field, where)
}
