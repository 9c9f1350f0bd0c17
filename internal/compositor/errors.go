package compositor

import (
	"errors"
	"fmt"
)

// ErrPathConflict matches any PathConflictError via errors.Is.
var ErrPathConflict = errors.New("path conflict")

// PathConflictError reports a path that is a file in one layer and a
// directory in another.
type PathConflictError struct {
	// Profile is the profile whose layer hit the conflict.
	Profile string

	// Path is relative to the staging tree.
	Path string

	// Expected is what the layer wanted ("file" or "directory").
	Expected string

	// Found is what already exists in the staging tree.
	Found string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("%s: %s in profile %s: expected %s, found %s",
		ErrPathConflict, e.Path, e.Profile, e.Expected, e.Found)
}

// Is reports whether target is ErrPathConflict.
func (e *PathConflictError) Is(target error) bool {
	return target == ErrPathConflict
}
