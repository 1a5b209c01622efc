package scoring

import (
	"sort"
	"strings"
)

// compatibility is the hand-authored affinity between instrument pairs.
// It is read-only.
var compatibility = map[string]map[string]float64{ //nolint:gochecknoglobals // static lookup table
	"guitar": {
		"guitar": 0.6, "piano": 0.8, "drums": 0.95, "saxophone": 0.7,
		"trumpet": 0.65, "violin": 0.6, "vocals": 0.9, "dj": 0.4,
	},
	"piano": {
		"guitar": 0.8, "piano": 0.5, "drums": 0.85, "saxophone": 0.85,
		"trumpet": 0.75, "violin": 0.9, "vocals": 0.9, "dj": 0.5,
	},
	"drums": {
		"guitar": 0.95, "piano": 0.85, "drums": 0.3, "saxophone": 0.8,
		"trumpet": 0.8, "violin": 0.5, "vocals": 0.85, "dj": 0.7,
	},
	"saxophone": {
		"guitar": 0.7, "piano": 0.85, "drums": 0.8, "saxophone": 0.5,
		"trumpet": 0.9, "violin": 0.6, "vocals": 0.75, "dj": 0.6,
	},
	"trumpet": {
		"guitar": 0.65, "piano": 0.75, "drums": 0.8, "saxophone": 0.9,
		"trumpet": 0.5, "violin": 0.55, "vocals": 0.7, "dj": 0.55,
	},
	"violin": {
		"guitar": 0.6, "piano": 0.9, "drums": 0.5, "saxophone": 0.6,
		"trumpet": 0.55, "violin": 0.6, "vocals": 0.8, "dj": 0.45,
	},
	"vocals": {
		"guitar": 0.9, "piano": 0.9, "drums": 0.85, "saxophone": 0.75,
		"trumpet": 0.7, "violin": 0.8, "vocals": 0.6, "dj": 0.8,
	},
	"dj": {
		"guitar": 0.4, "piano": 0.5, "drums": 0.7, "saxophone": 0.6,
		"trumpet": 0.55, "violin": 0.45, "vocals": 0.8, "dj": 0.6,
	},
}

// Compatibility returns the affinity of two instruments. ok is false when
// either instrument is outside the table; such pairs contribute nothing.
func Compatibility(a, b string) (float64, bool) {
	row, ok := compatibility[normalizeTag(a)]
	if !ok {
		return 0, false
	}
	w, ok := row[normalizeTag(b)]
	return w, ok
}

// KnownInstruments lists the instruments covered by the table, sorted.
func KnownInstruments() []string {
	out := make([]string, 0, len(compatibility))
	for name := range compatibility {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
