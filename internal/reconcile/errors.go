package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrPathEscapesRoot is returned when a destination resolves outside its client root.
	ErrPathEscapesRoot    = errors.New("destination escapes client root")
	ErrInvalidOptions     = errors.New("invalid plan options")
	ErrUnresolvedConflict = errors.New("unresolved conflict")
	ErrNotMergeable       = errors.New("asset type is not mergeable")
	ErrInvalidResolution  = errors.New("invalid resolution")
)

// PathError reports a destination that normalizes outside the target client's root.
type PathError struct {
	Client string
	Root   string
	Path   string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: client %s root %s, path %s", ErrPathEscapesRoot, e.Client, e.Root, e.Path)
}

func (e *PathError) Is(target error) bool {
	return target == ErrPathEscapesRoot
}
