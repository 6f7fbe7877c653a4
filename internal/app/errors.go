package app

import (
	"fmt"
	"strings"
)

// ConfigError lists every problem found in the configuration.
type ConfigError struct {
	Issues []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Issues, "; "))
}
