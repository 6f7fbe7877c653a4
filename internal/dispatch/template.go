package dispatch

import (
	"sort"
	"strings"

	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// TemplatePath replaces every literal {key} occurrence that has a value.
// Unresolved placeholders stay literal. Values are inserted as-is, without
// escaping, and substitution is a single pass so values are never expanded.
func TemplatePath(template string, values map[string]string) string {
	if len(values) == 0 || !strings.Contains(template, "{") {
		return template
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", values[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// BaseURL returns the record's base URL for the given region. Only regional
// records are affected by region.
func BaseURL(rec registry.ToolRecord, region string) string {
	if rec.Kind != registry.KindRegional {
		return rec.BaseURL
	}
	return strings.ReplaceAll(rec.BaseURL, registry.RegionPlaceholder, region)
}

// joinQuery appends an encoded query to target, merging with any query
// already present.
func joinQuery(target, encoded string) string {
	if encoded == "" {
		return target
	}
	switch {
	case !strings.Contains(target, "?"):
		return target + "?" + encoded
	case strings.HasSuffix(target, "?"), strings.HasSuffix(target, "&"):
		return target + encoded
	default:
		return target + "&" + encoded
	}
}
