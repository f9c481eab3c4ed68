package formtabs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NoIndex is passed to PaneClass when the pane index is unknown.
const NoIndex = -1

// PaneClassRule decides the CSS class of each tab pane.
//
// A rule is either unset, a single class applied to every pane, or a
// mapping whose keys are pane indexes (as decimal strings, "0", "1", ...)
// or tab labels.
type PaneClassRule struct {
	all    string
	single bool
	byKey  map[string]string
}

// PaneClassAll returns a rule that applies class to every pane.
func PaneClassAll(class string) PaneClassRule {
	return PaneClassRule{all: class, single: true}
}

// PaneClassMap returns a rule keyed by pane index or tab label.
// The map is copied.
func PaneClassMap(classes map[string]string) PaneClassRule {
	m := make(map[string]string, len(classes))
	for k, v := range classes {
		m[k] = v
	}
	return PaneClassRule{byKey: m}
}

// IsZero reports whether the rule is unset.
func (r PaneClassRule) IsZero() bool {
	return !r.single && r.byKey == nil
}

// Single returns the class when the rule applies one class to every pane.
func (r PaneClassRule) Single() (string, bool) {
	return r.all, r.single
}

// Resolve returns the class for the pane at index with the given label.
//
// A single-class rule wins regardless of arguments. Otherwise the index
// is looked up first, then the label. Pass NoIndex or an empty label to
// skip either lookup.
func (r PaneClassRule) Resolve(index int, label string) (string, bool) {
	if r.single {
		return r.all, true
	}
	if index > NoIndex {
		if class, ok := r.byKey[strconv.Itoa(index)]; ok {
			return class, true
		}
	}
	if label != "" {
		if class, ok := r.byKey[label]; ok {
			return class, true
		}
	}
	return "", false
}

// MarshalJSON encodes a single-class rule as a string and a mapping as an
// object. An unset rule encodes as null.
func (r PaneClassRule) MarshalJSON() ([]byte, error) {
	switch {
	case r.single:
		return json.Marshal(r.all)
	case r.byKey != nil:
		return json.Marshal(r.byKey)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, an object of strings, or null.
func (r *PaneClassRule) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = PaneClassRule{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = PaneClassAll(s)
		return nil
	default:
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("formtabs: pane class rule must be a string or an object of strings: %w", err)
		}
		*r = PaneClassMap(m)
		return nil
	}
}
