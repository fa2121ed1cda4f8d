// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// pathMatcher holds compiled include/exclude rules applied against entry
// names. It backs both compression candidate selection on write and entry
// filtering on extract.
type pathMatcher struct {
	matcher *pathrules.Matcher
}

// newPathMatcher compiles rules into a pathMatcher. A nil matcher with a nil
// error is returned for an empty rule set, meaning "match nothing".
func newPathMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*pathMatcher, error) {
	rules = normalizeMatchRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	if opts == (pathrules.MatcherOptions{}) {
		opts = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}
	if opts.DefaultAction == pathrules.ActionUnknown {
		opts.DefaultAction = pathrules.ActionExclude
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCompressPattern, err)
	}

	return &pathMatcher{matcher: matcher}, nil
}

// normalizeMatchRules normalizes rule patterns and drops empty ones.
func normalizeMatchRules(rules []pathrules.Rule) []pathrules.Rule {
	out := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePathForMatching(rule.Pattern)
		if pattern == "" {
			continue
		}

		out = append(out, pathrules.Rule{Action: rule.Action, Pattern: pattern})
	}

	return out
}

// Match reports whether name is included by the compiled rules.
func (m *pathMatcher) Match(name string) bool {
	if m == nil || m.matcher == nil {
		return false
	}

	candidate := NormalizePath(name)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// filterBySize keeps entries whose uncompressed size falls within [min, max]
// (zero bounds are unlimited).
func filterBySize(entries []*CentralEntry, min, max uint32) []*CentralEntry {
	if min == 0 && max == 0 {
		return entries
	}

	out := make([]*CentralEntry, 0, len(entries))
	for _, e := range entries {
		if e.UncompressedSize < min {
			continue
		}
		if max != 0 && e.UncompressedSize > max {
			continue
		}

		out = append(out, e)
	}

	return out
}

// filterByPrefix keeps entries whose normalized name equals prefix or sits
// under it.
func filterByPrefix(entries []*CentralEntry, prefix string) []*CentralEntry {
	prefix = NormalizePath(prefix)
	if prefix == "" {
		return entries
	}

	withSlash := prefix + "/"
	out := make([]*CentralEntry, 0, len(entries))
	for _, e := range entries {
		name := NormalizePath(e.Name)
		if name == prefix || strings.HasPrefix(name, withSlash) {
			out = append(out, e)
		}
	}

	return out
}

// filterDirectories removes entries that represent directories (name ends
// in "/") rather than file payloads.
func filterDirectories(entries []*CentralEntry) []*CentralEntry {
	out := make([]*CentralEntry, 0, len(entries))
	for _, e := range entries {
		if isDirEntryName(e.Name) {
			continue
		}

		out = append(out, e)
	}

	return out
}
