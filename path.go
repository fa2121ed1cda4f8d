// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"path"
	"strings"
)

// NormalizePath converts an archive entry path to canonical "/"-separated
// form: both "/" and "\" separators are accepted on input, "./" segments and
// a leading slash are stripped, and "." is cleaned away.
func NormalizePath(raw string) string {
	raw = normalizePathForMatching(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// normalizePathForMatching trims and slash-normalizes a path for pattern
// matching, without resolving "." or ".." segments.
func normalizePathForMatching(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, `\`, "/")

	return strings.TrimPrefix(p, "./")
}

// isDirEntryName reports whether name denotes a directory entry by ZIP
// convention: its name ends in "/".
func isDirEntryName(name string) bool {
	return strings.HasSuffix(name, "/")
}
