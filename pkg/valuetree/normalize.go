package valuetree

import (
	"encoding/json"
	"strings"

	"github.com/helmdeck/helmdeck/pkg/schema"
)

// Normalize makes a raw value safe to render and edit for the given shape.
// Values that round-tripped through a text input sometimes come back as
// JSON-encoded strings; those are parsed back, and containers whose runtime
// type disagrees with the shape are replaced with empty ones. Normalizing
// an already-normalized value is a no-op.
func Normalize(v interface{}, node *schema.Node) interface{} {
	if s, ok := v.(string); ok {
		if parsed, ok := parseEmbeddedJSON(s); ok {
			v = parsed
		}
	}

	if node == nil {
		return v
	}

	switch node.Kind {
	case schema.KindArray:
		arr, ok := v.([]interface{})
		if !ok {
			return []interface{}{}
		}
		out := arr
		for i, el := range arr {
			normalized := Normalize(el, node.Items)
			if !sameValue(normalized, el) {
				if sameSlice(out, arr) {
					out = make([]interface{}, len(arr))
					copy(out, arr)
				}
				out[i] = normalized
			}
		}
		return out

	case schema.KindObject:
		m, ok := v.(map[string]interface{})
		if !ok {
			return map[string]interface{}{}
		}
		out := m
		for _, f := range node.Children {
			el, exists := m[f.Name]
			if !exists {
				continue
			}
			normalized := Normalize(el, f.Node)
			if !sameValue(normalized, el) {
				if sameMap(out, m) {
					out = make(map[string]interface{}, len(m))
					for k, mv := range m {
						out[k] = mv
					}
				}
				out[f.Name] = normalized
			}
		}
		return out
	}

	return v
}

// parseEmbeddedJSON parses s when its trimmed form looks like a JSON
// container. A parse failure keeps the original string; this never errors.
func parseEmbeddedJSON(s string) (interface{}, bool) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 {
		return nil, false
	}

	first, last := trimmed[0], trimmed[len(trimmed)-1]
	if !(first == '{' && last == '}') && !(first == '[' && last == ']') {
		return nil, false
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}
