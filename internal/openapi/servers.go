package openapi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// BaseMode selects how a source's base URL is resolved.
type BaseMode string

const (
	// BaseFromServers reads the document's declared server URL.
	BaseFromServers BaseMode = "server"
	// BaseFromRegion uses a fixed region-parameterized URL template.
	BaseFromRegion BaseMode = "region"
)

// BasePolicy is the compile-time base URL policy for one source.
type BasePolicy struct {
	Mode           BaseMode
	RegionTemplate string
}

// resolveBase returns the base URL and record kind for a document. warn is
// non-empty when the document declares no usable server.
func resolveBase(doc Document, policy BasePolicy, sourceURL string) (base string, kind registry.Kind, warn string) {
	if policy.Mode == BaseFromRegion {
		return strings.TrimRight(policy.RegionTemplate, "/"), registry.KindRegional, ""
	}

	base = serverURL(doc)
	if base == "" {
		base = swaggerURL(doc)
	}
	if base == "" {
		return "", registry.KindGeneric, "document declares no servers; paths are used as-is"
	}

	if resolved, ok := resolveRelative(base, sourceURL); ok {
		base = resolved
	}
	return strings.TrimRight(base, "/"), registry.KindGeneric, ""
}

// serverURL returns servers[0].url with variables replaced by their defaults.
func serverURL(doc Document) string {
	servers, ok := doc.field("servers").([]any)
	if !ok || len(servers) == 0 {
		return ""
	}
	first, ok := asMap(servers[0])
	if !ok {
		return ""
	}
	u := stringField(first, "url")
	if u == "" {
		return ""
	}
	vars, _ := asMap(first["variables"])
	for name, raw := range vars {
		varMap, ok := asMap(raw)
		if !ok {
			continue
		}
		def, ok := varMap["default"]
		if !ok {
			continue
		}
		u = strings.ReplaceAll(u, "{"+name+"}", fmt.Sprint(def))
	}
	return u
}

// swaggerURL builds a base URL from a Swagger 2 host/basePath/schemes triple.
func swaggerURL(doc Document) string {
	host := stringField(doc.fields, "host")
	basePath := stringField(doc.fields, "basePath")
	if host == "" {
		return basePath
	}
	scheme := "https"
	if schemes, ok := doc.field("schemes").([]any); ok && len(schemes) > 0 {
		if s, ok := schemes[0].(string); ok && s != "" {
			scheme = s
		}
	}
	return scheme + "://" + host + basePath
}

// resolveRelative resolves a relative server URL against the document URL.
func resolveRelative(base, sourceURL string) (string, bool) {
	b, err := url.Parse(base)
	if err != nil || b.IsAbs() || sourceURL == "" {
		return "", false
	}
	src, err := url.Parse(sourceURL)
	if err != nil || !src.IsAbs() {
		return "", false
	}
	return src.ResolveReference(b).String(), true
}
