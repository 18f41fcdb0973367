package container

import (
	"fmt"
	"strings"
)

// NotFoundError is returned by Get when nothing is bound under ID and no
// registered class matches it.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("container: no binding registered for [%s]", e.ID)
}

// CircularDependencyError reports an abstract that depends on itself,
// directly or through other bindings.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return "container: circular dependency: " + strings.Join(e.Chain, " -> ")
}
