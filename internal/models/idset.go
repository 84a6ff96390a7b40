package models

import (
	"encoding/json"
	"slices"
)

// IDSet is an insertion-ordered set of entity ids. It serializes as a JSON
// array so stored documents keep their array shape, and duplicates present in
// stored data are dropped on decode.
//
// IDSet values are immutable: With and Without return new sets.
type IDSet struct {
	ids []string
}

// NewIDSet builds a set from ids, keeping the first occurrence of each.
func NewIDSet(ids ...string) IDSet {
	var s IDSet
	for _, id := range ids {
		s = s.With(id)
	}
	return s
}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

// With returns a set that also contains id.
func (s IDSet) With(id string) IDSet {
	if id == "" || s.Contains(id) {
		return s
	}
	out := make([]string, len(s.ids), len(s.ids)+1)
	copy(out, s.ids)
	return IDSet{ids: append(out, id)}
}

// Without returns a set that does not contain id.
func (s IDSet) Without(id string) IDSet {
	if !s.Contains(id) {
		return s
	}
	out := make([]string, 0, len(s.ids)-1)
	for _, existing := range s.ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	if len(out) == 0 {
		return IDSet{}
	}
	return IDSet{ids: out}
}

// Toggle adds id when absent and removes it when present.
func (s IDSet) Toggle(id string) IDSet {
	if s.Contains(id) {
		return s.Without(id)
	}
	return s.With(id)
}

// Len returns the number of ids.
func (s IDSet) Len() int {
	return len(s.ids)
}

// Slice returns a copy of the ids in insertion order. Never nil.
func (s IDSet) Slice() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
