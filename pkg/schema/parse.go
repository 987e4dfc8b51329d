package schema

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

type rawSchema struct {
	Type        json.RawMessage `json:"type"`
	Description string          `json:"description"`
	Default     json.RawMessage `json:"default"`
	Properties  json.RawMessage `json:"properties"`
	Items       json.RawMessage `json:"items"`
	Enum        json.RawMessage `json:"enum"`
}

// ParseDocument parses a chart's values.schema.json into an object Node.
// A missing or empty document yields an object node with no children, not
// an error. Fields whose declared type falls outside the supported set are
// skipped and reported by dotted path so the UI can render them read-only.
func ParseDocument(raw []byte) (*Node, []string, error) {
	root := &Node{Kind: KindObject}
	if len(bytes.TrimSpace(raw)) == 0 {
		return root, nil, nil
	}

	var doc rawSchema
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, errors.Wrap(err, "failed to unmarshal schema document")
	}

	var skipped []string
	children, err := parseProperties(doc.Properties, "", &skipped)
	if err != nil {
		return nil, nil, err
	}
	root.Children = children
	return root, skipped, nil
}

// parseProperties walks a "properties" object at the token level so that
// property order is preserved; encoding/json maps would scramble it.
func parseProperties(raw json.RawMessage, path string, skipped *[]string) ([]Field, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read properties")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("schema properties is not an object")
	}

	var fields []Field
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New("unexpected end of properties")
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read property name")
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return fields, nil
		}

		name, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("unexpected token %v in properties", tok)
		}

		var child json.RawMessage
		if err := dec.Decode(&child); err != nil {
			return nil, errors.Wrapf(err, "failed to decode schema for %q", name)
		}

		childPath := name
		if path != "" {
			childPath = path + "." + name
		}

		node, err := parseNode(child, childPath, skipped)
		if err != nil {
			if errors.Is(err, ErrUnsupportedKind) {
				*skipped = append(*skipped, childPath)
				continue
			}
			return nil, err
		}
		fields = append(fields, Field{Name: name, Node: node})
	}
}

func parseNode(raw json.RawMessage, path string, skipped *[]string) (*Node, error) {
	var rs rawSchema
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal schema node at %q", path)
	}

	kind, err := parseKind(rs)
	if err != nil {
		return nil, err
	}

	node := &Node{
		Kind:        kind,
		Description: rs.Description,
	}

	if len(rs.Default) > 0 {
		var def interface{}
		if err := json.Unmarshal(rs.Default, &def); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal default at %q", path)
		}
		node.Default = def
	}

	switch kind {
	case KindObject:
		children, err := parseProperties(rs.Properties, path, skipped)
		if err != nil {
			return nil, err
		}
		node.Children = children

	case KindArray:
		if len(rs.Items) > 0 {
			items, err := parseNode(rs.Items, path+"[]", skipped)
			if err != nil {
				if errors.Is(err, ErrUnsupportedKind) {
					// elements we cannot describe render as free text
					items = &Node{Kind: KindString}
				} else {
					return nil, err
				}
			}
			node.Items = items
		} else {
			node.Items = &Node{Kind: KindString}
		}

	case KindString:
		if len(rs.Enum) > 0 {
			var values []interface{}
			if err := json.Unmarshal(rs.Enum, &values); err != nil {
				return nil, errors.Wrapf(err, "failed to unmarshal enum at %q", path)
			}
			for _, v := range values {
				if s, ok := v.(string); ok {
					node.Enum = append(node.Enum, s)
				}
			}
		}
	}

	return node, nil
}

// parseKind maps the declared JSON Schema type to a Kind. A node without a
// type falls back on its structure, then on string so it stays editable.
func parseKind(rs rawSchema) (Kind, error) {
	if len(rs.Type) == 0 {
		if len(rs.Properties) > 0 {
			return KindObject, nil
		}
		if len(rs.Items) > 0 {
			return KindArray, nil
		}
		return KindString, nil
	}

	var single string
	if err := json.Unmarshal(rs.Type, &single); err == nil {
		return kindFromType(single)
	}

	// JSON Schema allows a type list; use the first supported entry.
	var multi []string
	if err := json.Unmarshal(rs.Type, &multi); err == nil {
		for _, t := range multi {
			if k, err := kindFromType(t); err == nil {
				return k, nil
			}
		}
	}

	return "", ErrUnsupportedKind
}

func kindFromType(t string) (Kind, error) {
	switch t {
	case "string":
		return KindString, nil
	case "boolean":
		return KindBoolean, nil
	case "integer":
		return KindInteger, nil
	case "number":
		return KindNumber, nil
	case "object":
		return KindObject, nil
	case "array":
		return KindArray, nil
	}
	return "", ErrUnsupportedKind
}
