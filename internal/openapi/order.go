package openapi

import (
	"bytes"
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
)

// pathOrder is the declaration order of the keys under paths and under each
// path item. A nil pathOrder means sorted order.
type pathOrder struct {
	paths   []string
	methods map[string][]string
}

// pathKeys returns the keys of paths in declaration order.
func (o *pathOrder) pathKeys(paths map[string]any) []string {
	if o == nil {
		return sortedKeys(paths)
	}
	return orderedKeys(o.paths, paths)
}

// methodKeys returns the keys of the path item in declaration order.
func (o *pathOrder) methodKeys(path string, item map[string]any) []string {
	if o == nil {
		return sortedKeys(item)
	}
	return orderedKeys(o.methods[path], item)
}

// orderedKeys returns the recorded keys present in m, each once at its first
// position, followed by any keys of m that were not recorded, sorted.
func orderedKeys(recorded []string, m map[string]any) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range recorded {
		if _, ok := m[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// jsonPathOrder reads key order from a JSON document's token stream. It
// returns nil when paths is missing or not an object.
func jsonPathOrder(data []byte) *pathOrder {
	rootKeys, rootValues, ok := jsonObject(data)
	if !ok {
		return nil
	}
	var pathsRaw json.RawMessage
	for i, k := range rootKeys {
		// encoding/json keeps the last duplicate, so do the same.
		if k == "paths" {
			pathsRaw = rootValues[i]
		}
	}
	keys, items, ok := jsonObject(pathsRaw)
	if !ok {
		return nil
	}

	o := &pathOrder{paths: keys, methods: make(map[string][]string, len(keys))}
	for i, path := range keys {
		if methods, _, ok := jsonObject(items[i]); ok {
			o.methods[path] = methods
		}
	}
	return o
}

// jsonObject splits a JSON object into its keys and raw values, in order.
func jsonObject(data []byte) ([]string, []json.RawMessage, bool) {
	if len(data) == 0 {
		return nil, nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, nil, false
	}
	var keys []string
	var values []json.RawMessage
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, false
		}
		keys = append(keys, key)
		values = append(values, value)
	}
	return keys, values, true
}

// yamlPathOrder reads key order from a YAML document's node tree. It returns
// nil when paths is missing or not a mapping.
func yamlPathOrder(data []byte) *pathOrder {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil || len(root.Content) == 0 {
		return nil
	}
	paths := mappingValue(root.Content[0], "paths")
	if paths == nil {
		return nil
	}

	o := &pathOrder{methods: make(map[string][]string)}
	for i := 0; i+1 < len(paths.Content); i += 2 {
		path := paths.Content[i].Value
		o.paths = append(o.paths, path)
		if item := resolveAlias(paths.Content[i+1]); item.Kind == yaml.MappingNode {
			var methods []string
			for j := 0; j+1 < len(item.Content); j += 2 {
				methods = append(methods, item.Content[j].Value)
			}
			o.methods[path] = methods
		}
	}
	return o
}

// mappingValue returns the mapping node stored under key, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return nil
	}
	var found *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			found = resolveAlias(node.Content[i+1])
		}
	}
	if found == nil || found.Kind != yaml.MappingNode {
		return nil
	}
	return found
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
