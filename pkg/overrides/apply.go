package overrides

import (
	"fmt"

	"github.com/pkg/errors"
	"helm.sh/helm/v3/pkg/strvals"
)

// ApplyAssignments replays a flattened assignment list into base through
// the same strvals parsers helm runs for --set, --set-string and
// --set-json. This is both how the upgrade payload is built and the
// round-trip partner for Flatten.
func ApplyAssignments(assignments []Assignment, base map[string]interface{}) error {
	for _, a := range assignments {
		expr := fmt.Sprintf("%s=%s", a.Key, a.Value)

		var err error
		switch a.Channel {
		case ChannelSet:
			err = strvals.ParseInto(expr, base)
		case ChannelSetString:
			err = strvals.ParseIntoString(expr, base)
		case ChannelSetJSON:
			err = strvals.ParseJSON(expr, base)
		default:
			return errors.Errorf("unknown override channel %q", a.Channel)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to apply override %s", a.Key)
		}
	}
	return nil
}

// BuildValues is a convenience wrapper that applies assignments to a fresh
// values map.
func BuildValues(assignments []Assignment) (map[string]interface{}, error) {
	base := map[string]interface{}{}
	if err := ApplyAssignments(assignments, base); err != nil {
		return nil, err
	}
	return base, nil
}
