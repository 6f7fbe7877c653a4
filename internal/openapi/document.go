// Package openapi compiles OpenAPI documents into tool records.
//
// Only the shape needed to route calls is inspected: the paths object, the
// operations under each path item, their operationId, and the declared
// servers. Everything else in the document is ignored.
package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is a parsed OpenAPI (or Swagger 2) document in generic form,
// together with the order its paths and operations were declared in.
type Document struct {
	fields map[string]any
	order  *pathOrder
}

// NewDocument wraps an already decoded document. Declaration order is
// unknown, so paths and operations compile in sorted order.
func NewDocument(fields map[string]any) Document {
	return Document{fields: fields}
}

// ParseDocument decodes JSON, falling back to YAML.
func ParseDocument(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Document{}, fmt.Errorf("empty document")
	}

	var raw any
	var order *pathOrder
	jsonErr := json.Unmarshal(trimmed, &raw)
	if jsonErr == nil {
		order = jsonPathOrder(trimmed)
	} else {
		if err := yaml.Unmarshal(trimmed, &raw); err != nil {
			return Document{}, fmt.Errorf("document is neither JSON (%v) nor YAML: %w", jsonErr, err)
		}
		raw = normalize(raw)
		order = yamlPathOrder(trimmed)
	}

	fields, ok := raw.(map[string]any)
	if !ok {
		return Document{}, ErrNotMapping
	}
	return Document{fields: fields, order: order}, nil
}

// field returns a top-level value of the document.
func (d Document) field(key string) any {
	return d.fields[key]
}

// normalize converts YAML's map[any]any nodes into map[string]any so the
// compiler can treat JSON and YAML documents alike.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalize(child)
		}
		return t
	default:
		return v
	}
}

// asMap returns v as a mapping, if it is one.
func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// stringField returns m[key] when it is a non-empty string.
func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Title returns info.title, if present.
func (d Document) Title() string {
	info, _ := asMap(d.field("info"))
	return stringField(info, "title")
}

// Version returns info.version, if present.
func (d Document) Version() string {
	info, _ := asMap(d.field("info"))
	return stringField(info, "version")
}
