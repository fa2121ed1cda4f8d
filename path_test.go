// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import "testing"

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"a/b/c":    "a/b/c",
		"/a/b/c":   "a/b/c",
		`a\b\c`:    "a/b/c",
		"./a/b":    "a/b",
		"a/./b":    "a/b",
		"a/b/":     "a/b",
		"":         "",
		".":        "",
		"  a/b  ":  "a/b",
	}

	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Fatalf("NormalizePath(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestIsDirEntryName(t *testing.T) {
	t.Parallel()

	if !isDirEntryName("a/b/") {
		t.Fatal("expected trailing-slash name to be a directory entry")
	}
	if isDirEntryName("a/b") {
		t.Fatal("expected non-trailing-slash name to not be a directory entry")
	}
}
