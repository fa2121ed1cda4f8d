// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"fmt"
	"io"
)

// Add streams in's content into a new entry, choosing STORED or DEFLATED
// entirely from the Writer's compression policy (WriterOptions.Compress):
// unlike PutNextEntry, the caller never names a method directly.
//
// When in.SizeHint is known (non-zero), the size bound is applied
// immediately: a path match outside [MinCompressSize, MaxCompressSize]
// stores verbatim. When in.SizeHint is zero (unknown ahead of time, e.g. a
// network stream), the size bound cannot be evaluated before streaming
// begins, so the decision rests on the path pattern alone; the entry
// streams raw with no temporary buffering.
func (w *Writer) Add(in Input) error {
	if in.Path == "" {
		return ErrEmptyName
	}

	rc, err := in.Open()
	if err != nil {
		return fmt.Errorf("open input %s: %w", in.Path, err)
	}
	defer func() { _ = rc.Close() }()

	if err := w.PutNextEntry(PutOptions{
		Name:     in.Path,
		Method:   w.resolveMethod(in),
		Level:    in.Level,
		Modified: in.Modified,
	}); err != nil {
		return err
	}

	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("write input %s: %w", in.Path, err)
	}

	return w.CloseEntry()
}

// resolveMethod applies the writer's compression policy to in.
func (w *Writer) resolveMethod(in Input) Method {
	if !w.compress.Match(in.Path) {
		return Stored
	}

	if in.SizeHint > 0 && !w.shouldCompressBySize(uint32(in.SizeHint)) {
		return Stored
	}

	return Deflated
}

// shouldCompressBySize reports whether size falls within the writer's
// configured compression bounds.
func (w *Writer) shouldCompressBySize(size uint32) bool {
	if size < w.minSize {
		return false
	}
	if w.maxSize != 0 && size > w.maxSize {
		return false
	}

	return true
}
