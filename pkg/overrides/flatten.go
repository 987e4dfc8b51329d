package overrides

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Channel selects which of helm's override flags an assignment targets.
// The generic channel retypes right-hand sides (true/false, null, integers),
// so strings that would be retyped travel on the string channel and values
// the generic grammar cannot express at all (floats, empty containers)
// travel on the JSON channel.
type Channel string

const (
	// ChannelSet is the generic --set flag.
	ChannelSet Channel = "set"
	// ChannelSetString is --set-string; the value always stays a string.
	ChannelSetString Channel = "set-string"
	// ChannelSetJSON is --set-json; the value is a JSON literal.
	ChannelSetJSON Channel = "set-json"
)

// Assignment is one key-path/value override in helm's --set grammar.
type Assignment struct {
	Key     string  `json:"key"`
	Value   string  `json:"value"`
	Channel Channel `json:"channel"`
}

func (a Assignment) String() string {
	return fmt.Sprintf("%s=%s", a.Key, a.Value)
}

// Flatten converts a value tree into the ordered list of override
// assignments that reconstructs it on the receiving side. The walk is a
// stable pre-order traversal (object keys in lexicographic order), so
// flattening an unchanged tree twice yields byte-identical output. Empty
// containers and explicit nulls are emitted rather than omitted, since an
// omitted key would leave the release's prior value in place.
func Flatten(tree interface{}) ([]Assignment, error) {
	root, ok := tree.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("cannot flatten %T, values root must be an object", tree)
	}

	var out []Assignment
	if err := flattenMap(root, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenMap(m map[string]interface{}, prefix string, out *[]Assignment) error {
	if len(m) == 0 && prefix != "" {
		*out = append(*out, Assignment{Key: prefix, Value: "{}", Channel: ChannelSetJSON})
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := escapeKey(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		if err := flattenValue(m[k], key, out); err != nil {
			return err
		}
	}
	return nil
}

func flattenSlice(arr []interface{}, prefix string, out *[]Assignment) error {
	if len(arr) == 0 {
		*out = append(*out, Assignment{Key: prefix, Value: "[]", Channel: ChannelSetJSON})
		return nil
	}

	for i, el := range arr {
		if err := flattenValue(el, fmt.Sprintf("%s[%d]", prefix, i), out); err != nil {
			return err
		}
	}
	return nil
}

func flattenValue(v interface{}, key string, out *[]Assignment) error {
	switch val := v.(type) {
	case nil:
		// explicit null overwrites the prior value, unlike omission
		*out = append(*out, Assignment{Key: key, Value: "null", Channel: ChannelSet})

	case bool:
		*out = append(*out, Assignment{Key: key, Value: strconv.FormatBool(val), Channel: ChannelSet})

	case string:
		a := Assignment{Key: key, Value: escapeValue(val), Channel: ChannelSet}
		if wouldRetype(val) {
			a.Channel = ChannelSetString
		}
		*out = append(*out, a)

	case int:
		*out = append(*out, Assignment{Key: key, Value: strconv.Itoa(val), Channel: ChannelSet})

	case int64:
		*out = append(*out, Assignment{Key: key, Value: strconv.FormatInt(val, 10), Channel: ChannelSet})

	case json.Number:
		if i, err := val.Int64(); err == nil {
			*out = append(*out, Assignment{Key: key, Value: strconv.FormatInt(i, 10), Channel: ChannelSet})
			break
		}
		*out = append(*out, Assignment{Key: key, Value: val.String(), Channel: ChannelSetJSON})

	case float64:
		*out = append(*out, formatNumber(val, key))

	case map[string]interface{}:
		return flattenMap(val, key, out)

	case []interface{}:
		return flattenSlice(val, key, out)

	default:
		// only a bug elsewhere produces a non-JSON value; fail loudly
		// instead of emitting a wrong override
		return errors.Errorf("cannot flatten %T at %s", v, key)
	}
	return nil
}

// formatNumber renders a number as canonical decimal text. Whole numbers
// representable as int64 go through the generic channel; everything else
// rides the JSON channel because helm's generic grammar only parses
// integers. The upper bound is exclusive: 2^63 is exact in float64 while
// MaxInt64 is not (it rounds up to 2^63), so an inclusive MaxInt64 check
// would let int64(f) overflow at the boundary.
func formatNumber(f float64, key string) Assignment {
	if f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 {
		return Assignment{Key: key, Value: strconv.FormatInt(int64(f), 10), Channel: ChannelSet}
	}
	data, _ := json.Marshal(f)
	return Assignment{Key: key, Value: string(data), Channel: ChannelSetJSON}
}

// wouldRetype reports whether the generic channel would parse s as
// something other than the literal string: booleans, null, integers,
// floats, or the empty string.
func wouldRetype(s string) bool {
	if s == "" {
		return true
	}
	if strings.EqualFold(s, "true") || strings.EqualFold(s, "false") || strings.EqualFold(s, "null") {
		return true
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}

// escapeKey escapes the characters that are structural in a key path:
// the segment separator, the assignment separator and the escape itself.
func escapeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		switch r {
		case '\\', '.', ',':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeValue escapes the characters that terminate a value in the --set
// grammar.
func escapeValue(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch r {
		case '\\', ',':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
