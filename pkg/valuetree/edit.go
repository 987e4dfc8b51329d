package valuetree

import (
	"github.com/pkg/errors"

	"github.com/helmdeck/helmdeck/pkg/schema"
)

var (
	// ErrInvalidPath means a path step contradicts the runtime kind of the
	// container it descends into. Callers are expected to normalize values
	// against their shape first, so hitting this is a wiring bug.
	ErrInvalidPath = errors.New("invalid path")

	// ErrIndexOutOfRange means an array step addressed an element past the
	// end of the array.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// SetField returns a new tree in which the node addressed by path holds
// value. Every ancestor along the path is reconstructed; every subtree off
// the path is shared by reference with the input.
func SetField(tree interface{}, path Path, value interface{}) (interface{}, error) {
	if len(path) == 0 {
		return nil, errors.Wrap(ErrInvalidPath, "path is empty")
	}
	return setAt(tree, path, value)
}

func setAt(tree interface{}, path Path, value interface{}) (interface{}, error) {
	step := path[0]

	if step.IsIndex() {
		arr, ok := tree.([]interface{})
		if !ok {
			return nil, errors.Wrapf(ErrInvalidPath, "step %s descends into %T", step, tree)
		}
		i := step.Index()
		if i < 0 || i >= len(arr) {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", i, len(arr))
		}

		out := make([]interface{}, len(arr))
		copy(out, arr)
		if len(path) == 1 {
			out[i] = value
			return out, nil
		}
		child, err := setAt(arr[i], path[1:], value)
		if err != nil {
			return nil, err
		}
		out[i] = child
		return out, nil
	}

	m, ok := tree.(map[string]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrInvalidPath, "step %q descends into %T", step.Field(), tree)
	}

	out := make(map[string]interface{}, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	if len(path) == 1 {
		out[step.Field()] = value
		return out, nil
	}

	existing, exists := m[step.Field()]
	if !exists {
		return nil, errors.Wrapf(ErrInvalidPath, "field %q does not exist", step.Field())
	}
	child, err := setAt(existing, path[1:], value)
	if err != nil {
		return nil, err
	}
	out[step.Field()] = child
	return out, nil
}

// AppendItem returns a new tree in which the array at arrayPath has one
// more element, default-initialized from the array's item shape.
func AppendItem(tree interface{}, arrayPath Path, items *schema.Node) (interface{}, error) {
	return updateArrayAt(tree, arrayPath, func(arr []interface{}) ([]interface{}, error) {
		out := make([]interface{}, len(arr)+1)
		copy(out, arr)
		out[len(arr)] = defaultItem(items)
		return out, nil
	})
}

// RemoveItem returns a new tree in which the array at arrayPath no longer
// holds the element at index; the remaining elements keep their order.
func RemoveItem(tree interface{}, arrayPath Path, index int) (interface{}, error) {
	return updateArrayAt(tree, arrayPath, func(arr []interface{}) ([]interface{}, error) {
		if index < 0 || index >= len(arr) {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", index, len(arr))
		}
		out := make([]interface{}, 0, len(arr)-1)
		out = append(out, arr[:index]...)
		out = append(out, arr[index+1:]...)
		return out, nil
	})
}

// updateArrayAt rebuilds the path down to an array and applies fn to it,
// sharing every subtree off the path with the input.
func updateArrayAt(tree interface{}, path Path, fn func([]interface{}) ([]interface{}, error)) (interface{}, error) {
	if len(path) == 0 {
		arr, ok := tree.([]interface{})
		if !ok {
			return nil, errors.Wrapf(ErrInvalidPath, "value is %T, not an array", tree)
		}
		out, err := fn(arr)
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	step := path[0]

	if step.IsIndex() {
		arr, ok := tree.([]interface{})
		if !ok {
			return nil, errors.Wrapf(ErrInvalidPath, "step %s descends into %T", step, tree)
		}
		i := step.Index()
		if i < 0 || i >= len(arr) {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", i, len(arr))
		}
		child, err := updateArrayAt(arr[i], path[1:], fn)
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(arr))
		copy(out, arr)
		out[i] = child
		return out, nil
	}

	m, ok := tree.(map[string]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrInvalidPath, "step %q descends into %T", step.Field(), tree)
	}
	existing, exists := m[step.Field()]
	if !exists {
		return nil, errors.Wrapf(ErrInvalidPath, "field %q does not exist", step.Field())
	}
	child, err := updateArrayAt(existing, path[1:], fn)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	out[step.Field()] = child
	return out, nil
}

// defaultItem picks the zero value for a freshly appended array element:
// an empty object for object item shapes, an empty array for nested
// arrays, and an empty string for everything else.
func defaultItem(items *schema.Node) interface{} {
	if items == nil {
		return ""
	}
	switch items.Kind {
	case schema.KindObject:
		return map[string]interface{}{}
	case schema.KindArray:
		return []interface{}{}
	}
	return ""
}
