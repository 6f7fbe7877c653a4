package dispatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

func TestTemplatePath(t *testing.T) {
	tests := []struct {
		name     string
		template string
		values   map[string]string
		want     string
	}{
		{"single", "/buckets/{name}", map[string]string{"name": "demo"}, "/buckets/demo"},
		{"repeated", "/{id}/copy/{id}", map[string]string{"id": "7"}, "/7/copy/7"},
		{"unresolved stays literal", "/buckets/{name}/objects/{key}", map[string]string{"name": "demo"}, "/buckets/demo/objects/{key}"},
		{"no values", "/buckets/{name}", nil, "/buckets/{name}"},
		{"extra values ignored", "/static", map[string]string{"x": "1"}, "/static"},
		{"value not re-expanded", "/{a}/{b}", map[string]string{"a": "{b}", "b": "2"}, "/{b}/2"},
		{"value inserted verbatim", "/objects/{key}", map[string]string{"key": "dir/file name.txt"}, "/objects/dir/file name.txt"},
		{"unterminated brace", "/a/{b", map[string]string{"b": "x"}, "/a/{b"},
		{"doubled braces", "/a/{{name}}", map[string]string{"name": "demo"}, "/a/{demo}"},
		{"stray open brace before placeholder", "/a/{x/{name}", map[string]string{"name": "demo"}, "/a/{x/demo"},
		{"stray close brace", "/a/}{name}", map[string]string{"name": "demo"}, "/a/}demo"},
		{"adjacent placeholders", "/{a}{b}", map[string]string{"a": "1", "b": "2"}, "/12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TemplatePath(tt.template, tt.values))
		})
	}
}

func TestTemplatePath_Property(t *testing.T) {
	keyGen := rapid.StringMatching(`[a-z_]{1,8}`)
	valGen := rapid.StringMatching(`[A-Za-z0-9._-]{0,12}`)

	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(keyGen, 1, 5, rapid.ID[string]).Draw(t, "keys")
		provided := map[string]string{}
		var segments []string
		for _, k := range keys {
			segments = append(segments, "{"+k+"}")
			if rapid.Bool().Draw(t, "provide_"+k) {
				provided[k] = valGen.Draw(t, "value_"+k)
			}
		}
		template := "/" + strings.Join(segments, "/")
		got := TemplatePath(template, provided)

		for _, k := range keys {
			placeholder := "{" + k + "}"
			if _, ok := provided[k]; ok {
				if strings.Contains(got, placeholder) {
					t.Fatalf("placeholder %s left in %q", placeholder, got)
				}
			} else if !strings.Contains(got, placeholder) {
				t.Fatalf("unresolved placeholder %s missing from %q", placeholder, got)
			}
		}
	})
}

func TestBaseURL(t *testing.T) {
	regional := registry.ToolRecord{Kind: registry.KindRegional, BaseURL: "https://s3.{region}.cloud-object-storage.appdomain.cloud"}
	assert.Equal(t, "https://s3.eu-de.cloud-object-storage.appdomain.cloud", BaseURL(regional, "eu-de"))

	generic := registry.ToolRecord{Kind: registry.KindGeneric, BaseURL: "https://api.{region}.example.test"}
	assert.Equal(t, "https://api.{region}.example.test", BaseURL(generic, "eu-de"))
}

func TestJoinQuery(t *testing.T) {
	assert.Equal(t, "/a", joinQuery("/a", ""))
	assert.Equal(t, "/a?x=1", joinQuery("/a", "x=1"))
	assert.Equal(t, "/a?list-type=2&x=1", joinQuery("/a?list-type=2", "x=1"))
	assert.Equal(t, "/a?x=1", joinQuery("/a?", "x=1"))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "123456789", stringify(float64(123456789)))
	assert.Equal(t, "1.5", stringify(1.5))
	assert.Equal(t, "true", stringify(true))
	assert.Equal(t, "", stringify(nil))
	assert.Equal(t, "42", stringify(42))
	assert.Equal(t, `{"a":1}`, stringify(map[string]any{"a": 1}))
}
