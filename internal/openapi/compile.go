package openapi

import (
	"strings"

	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// CompileOptions controls how one document is turned into records.
type CompileOptions struct {
	// Source names the document's origin; it is stamped on every record.
	Source string
	// Prefix is joined to operation IDs with "_". Empty means bare IDs.
	Prefix string
	// SourceURL is used to resolve relative server URLs.
	SourceURL string
	Base      BasePolicy
}

// CompileResult holds the records and skip diagnostics for one document.
type CompileResult struct {
	Records     []registry.ToolRecord
	Diagnostics []Diagnostic
	// Warnings are document-level notes that did not prevent compilation.
	Warnings []string
}

// ToolName joins prefix and operationId.
func ToolName(prefix, operationID string) string {
	if prefix == "" {
		return operationID
	}
	return prefix + "_" + operationID
}

// FallbackOperationID derives an ID for operations without operationId:
// the method followed by the path with every "/" replaced by "_".
func FallbackOperationID(method, path string) string {
	return strings.ToLower(method) + "_" + strings.ReplaceAll(path, "/", "_")
}

// Compile extracts one record per well-formed (path, method) entry.
// Path items and operations are visited in the order the document declares
// them, so a later operation reusing an operationId wins.
func Compile(doc Document, opts CompileOptions) (*CompileResult, error) {
	if doc.fields == nil {
		return nil, ErrNotMapping
	}
	paths, ok := asMap(doc.field("paths"))
	if !ok || len(paths) == 0 {
		return nil, ErrNoPaths
	}

	base, kind, warn := resolveBase(doc, opts.Base, opts.SourceURL)
	result := &CompileResult{}
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}

	for _, path := range doc.order.pathKeys(paths) {
		if path == "" {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Path: path, Reason: "empty path key"})
			continue
		}
		item, ok := asMap(paths[path])
		if !ok {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Path: path, Reason: "path item is not a mapping"})
			continue
		}

		for _, method := range doc.order.methodKeys(path, item) {
			if !registry.IsMethod(method) {
				// parameters, summary, servers, $ref and extensions live here too.
				continue
			}
			op, ok := asMap(item[method])
			if !ok {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{Path: path, Method: method, Reason: "operation is not a mapping"})
				continue
			}

			operationID := strings.TrimSpace(stringField(op, "operationId"))
			if operationID == "" {
				operationID = FallbackOperationID(method, path)
			}

			rec := registry.ToolRecord{
				Name:         ToolName(opts.Prefix, operationID),
				Method:       strings.ToUpper(method),
				PathTemplate: path,
				BaseURL:      base,
				Kind:         kind,
				Source:       opts.Source,
				OperationID:  operationID,
				Summary:      stringField(op, "summary"),
				Description:  stringField(op, "description"),
			}
			if err := rec.Validate(); err != nil {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{Path: path, Method: method, Reason: err.Error()})
				continue
			}
			result.Records = append(result.Records, rec)
		}
	}

	if len(result.Records) == 0 {
		return result, ErrEmptyOperations
	}
	return result, nil
}
