package valuetree

import "github.com/helmdeck/helmdeck/pkg/schema"

// Seed builds the initial value tree for an edit session: the release's
// current values normalized against the schema, with schema defaults
// filling the gaps. Containers that exist in the current values survive
// even when empty; containers that would exist only because the schema
// mentions them are not synthesized, so flattening the seeded tree never
// overrides fields the user did not touch.
func Seed(node *schema.Node, existing interface{}) interface{} {
	v, ok := seed(node, existing, existing != nil)
	if !ok {
		if node != nil && node.Kind == schema.KindObject {
			return map[string]interface{}{}
		}
		return nil
	}
	return v
}

func seed(node *schema.Node, existing interface{}, has bool) (interface{}, bool) {
	if node == nil {
		return existing, has
	}

	if has {
		v := Normalize(existing, node)

		switch node.Kind {
		case schema.KindObject:
			m := v.(map[string]interface{})
			out := make(map[string]interface{}, len(m))
			for k, mv := range m {
				if child := node.Child(k); child != nil {
					if sv, ok := seed(child, mv, true); ok {
						out[k] = sv
					}
					continue
				}
				// values with no schema field stay editable via inference
				out[k] = mv
			}
			for _, f := range node.Children {
				if _, exists := out[f.Name]; exists {
					continue
				}
				if sv, ok := seed(f.Node, nil, false); ok {
					out[f.Name] = sv
				}
			}
			return out, true

		case schema.KindArray:
			arr := v.([]interface{})
			out := make([]interface{}, len(arr))
			for i, el := range arr {
				sv, ok := seed(node.Items, el, true)
				if !ok {
					sv = el
				}
				out[i] = sv
			}
			return out, true
		}

		return v, true
	}

	if node.Default != nil {
		return Normalize(node.Default, node), true
	}

	if node.Kind == schema.KindObject {
		out := map[string]interface{}{}
		for _, f := range node.Children {
			if sv, ok := seed(f.Node, nil, false); ok {
				out[f.Name] = sv
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	}

	return nil, false
}
