package session

import (
	"sync"
	"time"

	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"

	"github.com/helmdeck/helmdeck/pkg/overrides"
	"github.com/helmdeck/helmdeck/pkg/schema"
	"github.com/helmdeck/helmdeck/pkg/valuetree"
)

// ErrUpgradeInFlight means the session already handed its values to the
// upgrade collaborator and the call has not resolved yet.
var ErrUpgradeInFlight = errors.New("an upgrade is already in flight for this session")

// Session owns the state of one chart-edit dialog: an immutable schema
// tree and the current value tree. Every edit replaces the value tree
// wholesale; nothing is mutated in place.
type Session struct {
	ID           string
	ReleaseName  string
	Namespace    string
	ChartRef     string
	ChartVersion string
	Schema       *schema.Node
	Skipped      []string
	CreatedAt    time.Time

	mu         sync.Mutex
	values     interface{}
	baseline   uint64
	upgrading  bool
	lastActive time.Time
}

// New seeds a session from the release's current values merged with schema
// defaults. The schema tree is fixed for the session's lifetime.
func New(releaseName, namespace, chartRef, chartVersion string, node *schema.Node, currentValues map[string]interface{}) (*Session, error) {
	seeded := valuetree.Seed(node, currentValues)

	baseline, err := hashValues(seeded)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:           ksuid.New().String(),
		ReleaseName:  releaseName,
		Namespace:    namespace,
		ChartRef:     chartRef,
		ChartVersion: chartVersion,
		Schema:       node,
		CreatedAt:    now,
		values:       seeded,
		baseline:     baseline,
		lastActive:   now,
	}, nil
}

// Values returns the current tree. It is safe to hand out as-is because
// trees are immutable by convention.
func (s *Session) Values() interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values
}

// SetField commits one field edit, coercing the new value to the exact
// type the schema declares for that path.
func (s *Session) SetField(path valuetree.Path, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coerced := coerceToKind(value, s.schemaAt(path))
	next, err := valuetree.SetField(s.values, path, coerced)
	if err != nil {
		return err
	}
	s.values = next
	s.lastActive = time.Now()
	return nil
}

// AppendItem adds a default-initialized element to the array at arrayPath.
func (s *Session) AppendItem(arrayPath valuetree.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items *schema.Node
	if node := s.schemaAt(arrayPath); node != nil {
		items = node.Items
	}
	next, err := valuetree.AppendItem(s.values, arrayPath, items)
	if err != nil {
		return err
	}
	s.values = next
	s.lastActive = time.Now()
	return nil
}

// RemoveItem deletes the element at index from the array at arrayPath.
func (s *Session) RemoveItem(arrayPath valuetree.Path, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := valuetree.RemoveItem(s.values, arrayPath, index)
	if err != nil {
		return err
	}
	s.values = next
	s.lastActive = time.Now()
	return nil
}

// Overrides flattens the current tree into the CLI override grammar.
func (s *Session) Overrides() ([]overrides.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return overrides.Flatten(s.values)
}

// IsDirty reports whether any edit changed the tree since seeding (or
// since the last successful upgrade).
func (s *Session) IsDirty() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := hashValues(s.values)
	if err != nil {
		return false, err
	}
	return h != s.baseline, nil
}

// BeginUpgrade marks the single allowed in-flight upgrade. Further edits
// are the caller's responsibility to queue or reject; further upgrades
// fail until EndUpgrade.
func (s *Session) BeginUpgrade() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.upgrading {
		return ErrUpgradeInFlight
	}
	s.upgrading = true
	return nil
}

// EndUpgrade clears the in-flight marker. On success the current tree
// becomes the new baseline.
func (s *Session) EndUpgrade(succeeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upgrading = false
	if succeeded {
		if h, err := hashValues(s.values); err == nil {
			s.baseline = h
		}
	}
}

// LastActive returns the time of the most recent edit.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// schemaAt walks the schema tree along a value path. Steps into values the
// schema does not describe return nil; edits there pass through uncoerced.
func (s *Session) schemaAt(path valuetree.Path) *schema.Node {
	node := s.Schema
	for _, step := range path {
		if node == nil {
			return nil
		}
		if step.IsIndex() {
			if node.Kind != schema.KindArray {
				return nil
			}
			node = node.Items
			continue
		}
		if node.Kind != schema.KindObject {
			return nil
		}
		node = node.Child(step.Field())
	}
	return node
}

// coerceToKind converts an edited value to the schema's exact scalar type.
// Conversion happens here, at edit-commit time, not during normalization.
func coerceToKind(v interface{}, node *schema.Node) interface{} {
	if node == nil || v == nil {
		return v
	}

	switch node.Kind {
	case schema.KindInteger:
		switch n := v.(type) {
		case float64:
			return int64(n)
		case int:
			return int64(n)
		}
	case schema.KindNumber:
		switch n := v.(type) {
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return v
}

func hashValues(v interface{}) (uint64, error) {
	h, err := hashstructure.Hash(v, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to hash values")
	}
	return h, nil
}
