package dataset

import (
	"strings"

	"golang.org/x/text/cases"
)

// Match modes for Subset.
const (
	MatchContains = "contains"
	MatchEquals   = "equals"
)

// Subset selects records by tag. An empty Tag selects every record; records
// without the tag never match a non-empty Tag.
type Subset struct {
	Name       string `json:"name"`
	Tag        string `json:"tag,omitempty"`
	Match      string `json:"match,omitempty"`
	Value      string `json:"value,omitempty"`
	IgnoreCase bool   `json:"ignore_case,omitempty"`
}

// Matches reports whether r belongs to the subset.
func (s Subset) Matches(r Record) bool {
	if s.Tag == "" {
		return true
	}
	tag, ok := r.Tags[s.Tag]
	if !ok || tag == "" {
		return false
	}
	value := s.Value
	if s.IgnoreCase {
		fold := cases.Fold()
		tag = fold.String(tag)
		value = fold.String(value)
	}
	if s.Match == MatchEquals {
		return tag == value
	}
	return strings.Contains(tag, value)
}

// Select returns the matching records in input order.
func (s Subset) Select(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if s.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
