// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"fmt"
	"io"
)

// ListEntries opens the archive at path just long enough to read its
// central directory, then closes it. Useful for a one-shot "what's in this
// archive" query without keeping a Reader around.
func ListEntries(path string) ([]*CentralEntry, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return r.Entries(), nil
}

// ReadComment opens the archive at path and returns its archive-level comment.
func ReadComment(path string) (string, error) {
	r, err := OpenReader(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Close() }()

	return r.Comment(), nil
}

// ReadEntry opens the archive at path, extracts name's full decompressed
// content into memory, and closes the archive. Intended for small
// configuration-style entries, not bulk extraction (use Reader.Extract for that).
func ReadEntry(path string, name string) ([]byte, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	rc, err := r.OpenName(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", name, err)
	}

	return data, nil
}
