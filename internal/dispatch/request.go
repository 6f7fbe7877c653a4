// Package dispatch turns a tool invocation into exactly one outbound HTTP call.
package dispatch

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Request is the invocation input for one tool call.
type Request struct {
	Region  string            `json:"region,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	// PathParams fill {name} placeholders in the path template.
	PathParams map[string]any `json:"path_params,omitempty"`
	// Params is the older name for PathParams. Keys in PathParams win.
	Params      map[string]any `json:"params,omitempty"`
	QueryParams map[string]any `json:"query_params,omitempty"`
	// Body is sent as JSON when non-nil.
	Body any `json:"body,omitempty"`
}

// Result is the upstream response, returned verbatim whatever its status.
// Truncated is set when the body was cut at the response size limit.
type Result struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
	Truncated  bool   `json:"truncated,omitempty"`
}

// pathValues merges Params and PathParams into string values.
func (r Request) pathValues() map[string]string {
	values := make(map[string]string, len(r.Params)+len(r.PathParams))
	for k, v := range r.Params {
		values[k] = stringify(v)
	}
	for k, v := range r.PathParams {
		values[k] = stringify(v)
	}
	return values
}

// queryValues encodes QueryParams. Arrays become repeated keys; nil values
// are dropped.
func (r Request) queryValues() url.Values {
	q := url.Values{}
	for k, v := range r.QueryParams {
		switch t := v.(type) {
		case nil:
		case []any:
			for _, item := range t {
				q.Add(k, stringify(item))
			}
		case []string:
			for _, item := range t {
				q.Add(k, item)
			}
		default:
			q.Set(k, stringify(v))
		}
	}
	return q
}

// bodyBytes returns the JSON encoding of Body, or nil when there is none.
func (r Request) bodyBytes() ([]byte, error) {
	switch b := r.Body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(b) == 0 || string(b) == "null" {
			return nil, nil
		}
		return b, nil
	}
	data, err := json.Marshal(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	return data, nil
}

// stringify renders a decoded JSON value as it should appear in a URL.
// Numbers never use exponent notation.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t)
	case map[string]any, []any:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}

// sortedHeaderKeys keeps header application deterministic.
func sortedHeaderKeys(h map[string]string) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
