package schema

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Kind is the closed set of field types the editor understands.
type Kind string

const (
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// ErrUnsupportedKind is returned when a schema document declares a type
// outside the closed Kind set. The field is skipped, not fatal.
var ErrUnsupportedKind = errors.New("unsupported field type")

// Field is one named child of an object node. Children are kept as a slice
// so the schema document's property order survives for display.
type Field struct {
	Name string
	Node *Node
}

// Node describes one configurable field of a chart. Kind determines which
// of Children, Items and Enum are populated; the others stay nil.
type Node struct {
	Kind        Kind
	Description string
	Default     interface{}

	// Children is set only for KindObject.
	Children []Field

	// Items is set only for KindArray and describes every element.
	Items *Node

	// Enum is set only for KindString; non-empty means a closed choice set.
	Enum []string
}

// Child returns the named child node of an object node, or nil.
func (n *Node) Child(name string) *Node {
	for _, f := range n.Children {
		if f.Name == name {
			return f.Node
		}
	}
	return nil
}

// IsScalar reports whether the node holds a leaf value.
func (n *Node) IsScalar() bool {
	switch n.Kind {
	case KindObject, KindArray:
		return false
	}
	return true
}

func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"kind":`)
	kind, err := json.Marshal(string(n.Kind))
	if err != nil {
		return nil, err
	}
	buf.Write(kind)

	if n.Description != "" {
		desc, err := json.Marshal(n.Description)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"description":`)
		buf.Write(desc)
	}

	if n.Default != nil {
		def, err := json.Marshal(n.Default)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"default":`)
		buf.Write(def)
	}

	if n.Kind == KindObject {
		// children render as an array so insertion order survives
		buf.WriteString(`,"children":[`)
		for i, f := range n.Children {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(f.Name)
			if err != nil {
				return nil, err
			}
			child, err := json.Marshal(f.Node)
			if err != nil {
				return nil, err
			}
			buf.WriteString(`{"name":`)
			buf.Write(name)
			buf.WriteString(`,"schema":`)
			buf.Write(child)
			buf.WriteByte('}')
		}
		buf.WriteByte(']')
	}

	if n.Kind == KindArray && n.Items != nil {
		items, err := json.Marshal(n.Items)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"items":`)
		buf.Write(items)
	}

	if n.Kind == KindString && len(n.Enum) > 0 {
		enum, err := json.Marshal(n.Enum)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"enum":`)
		buf.Write(enum)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
