// Package profile holds the pure state-transition pieces of the intake
// engine: the fact map, the merge policy, the progress estimate and the
// wrap-up detector. Nothing in this package performs I/O.
package profile

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is the accumulated fact mapping. Key vocabulary is open-ended and
// caller/service-defined; insertion order is preserved through JSON
// round-trips so persisted profiles keep their chronology.
type Map = orderedmap.OrderedMap[string, string]

// New returns an empty profile.
func New() *Map {
	return orderedmap.New[string, string]()
}

// Clone returns an independent copy of m. A nil map clones to an empty one.
func Clone(m *Map) *Map {
	out := New()
	if m == nil {
		return out
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}
