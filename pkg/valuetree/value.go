package valuetree

import "reflect"

// A value tree is any JSON-compatible value: nil, bool, string, a number,
// a map[string]interface{} or a []interface{}. Trees are never mutated in
// place; every edit produces a new root that shares unmodified subtrees
// with the original, so reference equality is a reliable change signal.

// sameValue reports whether a and b are the same value, by reference for
// containers and by equality for scalars.
func sameValue(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		return ok && sameMap(av, bv)
	case []interface{}:
		bv, ok := b.([]interface{})
		return ok && sameSlice(av, bv)
	}
	return a == b
}

func sameMap(a, b map[string]interface{}) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func sameSlice(a, b []interface{}) bool {
	return len(a) == len(b) && reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
