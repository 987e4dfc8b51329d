package valuetree

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Step addresses one level of descent into a value tree: a field name into
// an object or an index into an array.
type Step struct {
	field   string
	index   int
	isIndex bool
}

func FieldStep(name string) Step {
	return Step{field: name}
}

func IndexStep(i int) Step {
	return Step{index: i, isIndex: true}
}

func (s Step) IsIndex() bool { return s.isIndex }
func (s Step) Field() string { return s.field }
func (s Step) Index() int    { return s.index }

func (s Step) String() string {
	if s.isIndex {
		return fmt.Sprintf("[%d]", s.index)
	}
	return s.field
}

// Path is an ordered list of steps addressing one node in a value tree.
type Path []Step

func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 && !s.IsIndex() {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// UnmarshalJSON accepts the wire form of a path: a mixed array of field
// names and array indices, e.g. ["tolerations", 0, "key"].
func (p *Path) UnmarshalJSON(data []byte) error {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to unmarshal path")
	}

	steps := make(Path, 0, len(raw))
	for _, el := range raw {
		switch v := el.(type) {
		case string:
			steps = append(steps, FieldStep(v))
		case float64:
			if v < 0 || v != math.Trunc(v) {
				return errors.Errorf("invalid array index %v in path", v)
			}
			steps = append(steps, IndexStep(int(v)))
		default:
			return errors.Errorf("invalid path step %v (%T)", el, el)
		}
	}

	*p = steps
	return nil
}

func (p Path) MarshalJSON() ([]byte, error) {
	raw := make([]interface{}, 0, len(p))
	for _, s := range p {
		if s.IsIndex() {
			raw = append(raw, s.Index())
		} else {
			raw = append(raw, s.Field())
		}
	}
	return json.Marshal(raw)
}
