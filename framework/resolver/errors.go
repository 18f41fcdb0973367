package resolver

import "fmt"

// ClassNotFoundError is returned when a definition names a class that is
// not in the registry.
type ClassNotFoundError struct {
	Class string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("resolver: class %q not found", e.Class)
}

// MissingTypeError is returned when a constructor parameter has neither a
// declared type nor a default value, and no predefined argument was given.
type MissingTypeError struct {
	Class string
	Param string
}

func (e *MissingTypeError) Error() string {
	if e.Class == "" {
		return fmt.Sprintf("resolver: no type available for parameter %q", e.Param)
	}
	return fmt.Sprintf("resolver: no type available for parameter %q of class %q", e.Param, e.Class)
}

// ArgumentError reports a value that could not be converted to the type of
// the constructor parameter it was bound to.
type ArgumentError struct {
	Param string
	Err   error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("resolver: argument %q: %v", e.Param, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }
