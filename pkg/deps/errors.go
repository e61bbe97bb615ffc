package deps

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the registry has no such package or version.
	ErrNotFound = errors.New("package not found")
	// ErrTransient means the registry could not be reached or answered
	// with a server error; retrying later may succeed.
	ErrTransient = errors.New("transient registry failure")
)

// NotFoundError reports a package the registry doesn't know, wrapping
// [ErrNotFound] for errors.Is checks.
type NotFoundError struct {
	Name    string
	Version string
}

func (e *NotFoundError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("package %s version %s not found", e.Name, e.Version)
	}
	return fmt.Sprintf("package %s not found", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// BuildError wraps a fatal failure while expanding the root package. Deeper
// failures never surface as a BuildError; they degrade the affected node
// instead.
type BuildError struct {
	Root  string
	Cause error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("checking %s: %v", e.Root, e.Cause)
}

func (e *BuildError) Unwrap() error { return e.Cause }
