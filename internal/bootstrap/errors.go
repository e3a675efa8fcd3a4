package bootstrap

import (
	"fmt"
	"strings"

	"github.com/imamik/cloudweave/internal/backend"
)

// UnresolvedPlaceholderError is returned when a template references
// placeholders that have no parameter.
type UnresolvedPlaceholderError struct {
	Names []string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved template placeholders: %s", strings.Join(e.Names, ", "))
}

// MissingParameterError is returned when a parameter required for a role is
// absent or empty.
type MissingParameterError struct {
	Role  backend.Role
	Names []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing %s parameters: %s", e.Role, strings.Join(e.Names, ", "))
}

// InvalidParameterError is returned for values that cannot be carried by a
// shell script at all.
type InvalidParameterError struct {
	Name   string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Name, e.Reason)
}
