package favorites

import "slices"

// Set is an ordered set of session ids. Order is insertion order and carries no meaning.
type Set []string

// Contains reports whether id is in the set.
func (s Set) Contains(id string) bool {
	return slices.Contains(s, id)
}

// Toggle returns a new set with id removed if present, or appended if absent.
func Toggle(s Set, id string) Set {
	if s.Contains(id) {
		out := make(Set, 0, len(s)-1)
		for _, v := range s {
			if v != id {
				out = append(out, v)
			}
		}
		return out
	}
	out := make(Set, 0, len(s)+1)
	out = append(out, s...)
	return append(out, id)
}
