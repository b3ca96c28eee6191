package router

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the navigation outcome for an unregistered path or name.
	ErrNotFound = errors.New("route not found")

	ErrDuplicatePath = errors.New("duplicate route path")
	ErrDuplicateName = errors.New("duplicate route name")
	ErrNoHome        = errors.New(`no route registered for "/"`)
	ErrInvalidRoute  = errors.New("invalid route")
)

// NavigationError reports a failed navigation by location or by name.
type NavigationError struct {
	Location string
	Name     string
}

func (e *NavigationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("no route named %q", e.Name)
	}
	return fmt.Sprintf("no route matches %q", e.Location)
}

// Unwrap makes errors.Is(err, ErrNotFound) hold.
func (e *NavigationError) Unwrap() error { return ErrNotFound }

// IsNotFound reports whether err is a failed navigation.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
