package profile

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// sentinelValues mean "no information" and never enter the profile.
var sentinelValues = map[string]struct{}{
	"null":    {},
	"none":    {},
	"":        {},
	"n/a":     {},
	"unknown": {},
}

// IsSentinel reports whether a candidate value carries no information,
// ignoring case and surrounding whitespace.
func IsSentinel(value string) bool {
	_, ok := sentinelValues[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// Merge folds candidate facts into prior and returns the result as a new
// map; prior is never mutated. Per candidate: sentinel values are dropped,
// values are trimmed, absent keys are inserted, and present keys are
// overwritten only when the new value is strictly longer than the stored
// one (richer information wins; ties keep the old value).
//
// Candidates are applied in sorted key order so the result is fully
// deterministic for identical inputs.
func Merge(prior *Map, candidates map[string]string) *Map {
	merged := Clone(prior)

	keys := make([]string, 0, len(candidates))
	for k := range candidates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if IsSentinel(candidates[key]) {
			continue
		}
		value := strings.TrimSpace(candidates[key])
		current, exists := merged.Get(key)
		if !exists || utf8.RuneCountInString(value) > utf8.RuneCountInString(current) {
			merged.Set(key, value)
		}
	}
	return merged
}
