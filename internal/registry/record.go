// Package registry holds compiled tool records and publishes them as
// immutable snapshots.
package registry

import (
	"fmt"
	"strings"
)

// Kind selects how a record's base URL is interpreted at call time.
type Kind string

const (
	// KindGeneric records carry a fixed base URL taken from the document.
	KindGeneric Kind = "generic"
	// KindRegional records carry a base URL template containing RegionPlaceholder.
	KindRegional Kind = "regional"
)

// RegionPlaceholder is substituted with the request region for KindRegional records.
const RegionPlaceholder = "{region}"

// validMethods lists the HTTP verbs a record may carry.
var validMethods = map[string]bool{
	"GET": true, "PUT": true, "POST": true, "DELETE": true,
	"OPTIONS": true, "HEAD": true, "PATCH": true, "TRACE": true,
}

// IsMethod reports whether m (any case) is an HTTP verb usable in a record.
func IsMethod(m string) bool {
	return validMethods[strings.ToUpper(m)]
}

// ToolRecord is one invokable operation compiled from an OpenAPI document.
type ToolRecord struct {
	Name         string `json:"name"`
	Method       string `json:"method"`
	PathTemplate string `json:"path"`
	BaseURL      string `json:"base_url"`
	Kind         Kind   `json:"kind"`
	Source       string `json:"source"`
	OperationID  string `json:"operation_id"`
	Summary      string `json:"summary,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Validate checks the registry invariants for a single record.
func (r ToolRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if r.PathTemplate == "" {
		return fmt.Errorf("tool %q has empty path", r.Name)
	}
	if !validMethods[r.Method] {
		return fmt.Errorf("tool %q has unsupported method %q", r.Name, r.Method)
	}
	switch r.Kind {
	case KindGeneric:
	case KindRegional:
		if !strings.Contains(r.BaseURL, RegionPlaceholder) {
			return fmt.Errorf("tool %q is regional but base URL %q has no %s", r.Name, r.BaseURL, RegionPlaceholder)
		}
	default:
		return fmt.Errorf("tool %q has unknown kind %q", r.Name, r.Kind)
	}
	return nil
}
