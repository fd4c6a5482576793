package gen

import "fmt"

// ConfigurationError reports a malformed implementation element: missing
// inline source, missing external file reference, missing function name or
// a reference that is not an MDL module. It is raised during initialization
// only; generation cannot proceed for the offending implementation.
type ConfigurationError struct {
	// Impl is the name of the offending implementation element.
	Impl   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "implementation '" + e.Impl + "': " + e.Reason
}

func configErrorf(impl, format string, args ...any) error {
	return &ConfigurationError{Impl: impl, Reason: fmt.Sprintf(format, args...)}
}
