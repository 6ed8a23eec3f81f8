package config

import "fmt"

// ConfigurationError reports a missing or invalid mandatory setting. It is a
// pre-flight error: the process should exit non-zero rather than attempt to
// recover at runtime.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}
