// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import "strings"

// MatchMode selects how Index.Lookup and Collection.GetEntry compare a query
// name against stored entry names.
type MatchMode int

const (
	// MatchExact requires the entry name to equal the query exactly. This is
	// the spec's "IGNORE" mode: no path-tail matching is attempted.
	MatchExact MatchMode = iota
	// MatchTail additionally matches an entry whose name ends in "/"+query,
	// i.e. the query names a path suffix at a "/" boundary. This is the
	// spec's "MATCH" mode.
	MatchTail
)

// Index is an insertion-ordered sequence of central directory entries with a
// name-based lookup relation. It supports exact matching in O(1) via an
// auxiliary map and path-tail matching via linear scan, per spec.md §4.6:
// archives are small-to-medium (tens of thousands of entries), so a scan for
// the less common lookup mode is an acceptable trade for a simpler index.
type Index struct {
	list   []*CentralEntry
	byName map[string]int // first insertion index per exact name
}

// newIndex returns an empty Index.
func newIndex() *Index {
	return &Index{byName: make(map[string]int)}
}

// Append adds e to the end of the index.
func (idx *Index) Append(e *CentralEntry) {
	if _, exists := idx.byName[e.Name]; !exists {
		idx.byName[e.Name] = len(idx.list)
	}

	idx.list = append(idx.list, e)
}

// Len returns the number of entries in the index.
func (idx *Index) Len() int {
	return len(idx.list)
}

// Entries returns the entries in insertion order. The returned slice shares
// no backing array with the index's internal state, but the *CentralEntry
// pointers are shared; callers must treat them as read-only.
func (idx *Index) Entries() []*CentralEntry {
	out := make([]*CentralEntry, len(idx.list))
	copy(out, idx.list)

	return out
}

// Lookup returns the first entry matching name under mode, and whether one
// was found.
func (idx *Index) Lookup(name string, mode MatchMode) (*CentralEntry, bool) {
	switch mode {
	case MatchExact:
		if i, ok := idx.byName[name]; ok {
			return idx.list[i], true
		}

		return nil, false
	case MatchTail:
		for _, e := range idx.list {
			if pathTailMatches(e.Name, name) {
				return e, true
			}
		}

		return nil, false
	default:
		return nil, false
	}
}

// pathTailMatches reports whether entry name n matches query q under the
// path-tail relation: n == q, or n ends in "/"+q.
func pathTailMatches(n, q string) bool {
	if n == q {
		return true
	}

	return strings.HasSuffix(n, "/"+q)
}
