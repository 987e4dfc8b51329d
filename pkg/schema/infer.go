package schema

import (
	"encoding/json"
	"math"
	"sort"
)

// InferShape derives a Node from a sample value so that configuration with
// no declared schema is still editable. It is total over JSON-representable
// input: anything unrecognized, including null, falls back to a string
// field so the user can at least type into it.
func InferShape(v interface{}) *Node {
	switch val := v.(type) {
	case nil:
		return &Node{Kind: KindString}

	case bool:
		return &Node{Kind: KindBoolean, Default: val}

	case string:
		return &Node{Kind: KindString, Default: val}

	case float64:
		if isWholeNumber(val) {
			return &Node{Kind: KindInteger, Default: val}
		}
		return &Node{Kind: KindNumber, Default: val}

	case int:
		return &Node{Kind: KindInteger, Default: val}

	case int64:
		return &Node{Kind: KindInteger, Default: val}

	case json.Number:
		if _, err := val.Int64(); err == nil {
			return &Node{Kind: KindInteger, Default: val}
		}
		return &Node{Kind: KindNumber, Default: val}

	case []interface{}:
		node := &Node{Kind: KindArray, Default: val}
		if len(val) == 0 {
			node.Items = &Node{Kind: KindString}
		} else {
			// the first element is the structural exemplar
			node.Items = InferShape(val[0])
		}
		return node

	case map[string]interface{}:
		node := &Node{Kind: KindObject}
		for _, key := range sortedKeys(val) {
			node.Children = append(node.Children, Field{
				Name: key,
				Node: InferShape(val[key]),
			})
		}
		return node
	}

	return &Node{Kind: KindString}
}

func isWholeNumber(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
