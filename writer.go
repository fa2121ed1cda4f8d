// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/woozymasta/pathrules"
)

// DefaultWriteBuffer is the buffered writer size used by Writer when the
// caller does not request a different one.
const DefaultWriteBuffer = 64 * 1024

// WriterOptions configures Writer construction.
type WriterOptions struct {
	// BufferSize sizes the internal buffered writer. Zero means DefaultWriteBuffer.
	BufferSize int
	// Comment is the archive-level comment written by Finish.
	Comment string
	// Compress selects, by path pattern, which entries Add should DEFLATE
	// rather than STORE. An empty rule set stores every entry verbatim.
	Compress []pathrules.Rule
	// CompressMatcherOptions configures the Compress matcher; the zero
	// value applies case-insensitive matching with a default-exclude policy.
	CompressMatcherOptions pathrules.MatcherOptions
	// MinCompressSize/MaxCompressSize bound which known-size entries Add
	// will compress, even when Compress matches their path. Zero means
	// unbounded on that side. Entries of unknown size (Input.SizeHint == 0)
	// are not subject to this bound: they stream before their final size
	// is known, so the decision rests on Compress alone.
	MinCompressSize uint32
	MaxCompressSize uint32
}

func (o *WriterOptions) applyDefaults() {
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultWriteBuffer
	}
	if o.MaxCompressSize == 0 {
		o.MaxCompressSize = maxClassicSize
	}
}

// PutOptions describes the entry about to be opened via Writer.PutNextEntry.
type PutOptions struct {
	// Name is the entry path, "/"-separated. Required.
	Name string
	// Method is Stored or Deflated. Zero value (Stored) writes verbatim.
	Method Method
	// Level is the DEFLATE compression level (1-9); ignored for Stored.
	// Zero means DefaultCompressionLevel.
	Level int
	// Modified is the entry timestamp; zero value writes the DOS epoch.
	Modified time.Time
	// Extra is an opaque extra-field byte sequence.
	Extra []byte
	// ExternalAttrs is the external file attribute word; zero applies the
	// writer's default (regular file, rw-rw-r--).
	ExternalAttrs uint32
}

// Writer streams a ZIP archive to a seekable sink, one entry at a time.
// Entries are written in two passes per the wire format: a placeholder local
// header followed by payload, then a patch of that same header once the
// payload's size and CRC-32 are known. PutNextEntry implicitly closes any
// entry still open, mirroring how the format itself has no mechanism to
// leave an entry half-written in the middle of an archive.
type Writer struct {
	sink     io.Writer
	seeker   io.Seeker
	bw       *bufio.Writer
	offset   int64
	entries  []*CentralEntry
	cur      *openEntry
	comment  string
	compress *pathMatcher
	minSize  uint32
	maxSize  uint32
	closed   bool
}

// openEntry tracks the entry currently being written.
type openEntry struct {
	local         *LocalEntry
	headerOffset  int64
	cw            *countingWriter
	deflate       *deflateBuf
	crc           *crcAccumulator
	nWritten      uint32
	externalAttrs uint32
}

// NewWriter wraps dst, which must implement io.Seeker so finished entry
// headers can be patched in place once their sizes are known.
func NewWriter(dst io.Writer) (*Writer, error) {
	return NewWriterWithOptions(dst, WriterOptions{})
}

// NewWriterWithOptions is NewWriter with explicit options.
func NewWriterWithOptions(dst io.Writer, opts WriterOptions) (*Writer, error) {
	opts.applyDefaults()

	seeker, ok := dst.(io.Seeker)
	if !ok {
		return nil, ErrNotSeekable
	}

	compress, err := newPathMatcher(opts.Compress, opts.CompressMatcherOptions)
	if err != nil {
		return nil, err
	}

	return &Writer{
		sink:     dst,
		seeker:   seeker,
		bw:       bufio.NewWriterSize(dst, opts.BufferSize),
		comment:  opts.Comment,
		compress: compress,
		minSize:  opts.MinCompressSize,
		maxSize:  opts.MaxCompressSize,
	}, nil
}

// PutNextEntry implicitly closes any currently open entry, then writes a
// placeholder local header for the new one and opens it for writing.
func (w *Writer) PutNextEntry(opts PutOptions) error {
	if w.closed {
		return ErrArchiveFinished
	}
	if opts.Name == "" {
		return ErrEmptyName
	}

	if w.cur != nil {
		if err := w.CloseEntry(); err != nil {
			return err
		}
	}

	local := &LocalEntry{
		Name:           opts.Name,
		Method:         opts.Method,
		Modified:       opts.Modified,
		Extra:          opts.Extra,
		ExtractVersion: extractVersionDefault,
	}

	headerOffset := w.offset
	if err := writeLocalHeader(w.bw, local); err != nil {
		return fmt.Errorf("entry %s: %w", opts.Name, err)
	}

	w.offset += int64(local.HeaderSize())

	cw := &countingWriter{w: w.bw}

	entry := &openEntry{local: local, headerOffset: headerOffset, cw: cw, externalAttrs: opts.ExternalAttrs}
	if local.Method == Deflated {
		deflate, err := newDeflateBuf(cw, opts.Level)
		if err != nil {
			return fmt.Errorf("entry %s: %w", opts.Name, err)
		}

		entry.deflate = deflate
	} else {
		entry.crc = newCRC32()
	}

	w.cur = entry

	return nil
}

// Write streams payload bytes for the currently open entry.
func (w *Writer) Write(p []byte) (int, error) {
	if w.cur == nil {
		return 0, ErrNoEntryOpen
	}

	if w.cur.local.Method == Deflated {
		n, err := w.cur.deflate.Write(p)

		return n, err
	}

	n, err := w.cur.cw.Write(p)
	if n > 0 {
		w.cur.crc.Write(p[:n])
		w.cur.nWritten += uint32(n)
	}

	return n, err
}

// CloseEntry finalizes the currently open entry: it ends compression (if
// any), patches the entry's local header with its final sizes and CRC-32,
// and records a central directory entry for it.
func (w *Writer) CloseEntry() error {
	if w.cur == nil {
		return ErrNoEntryOpen
	}

	cur := w.cur
	w.cur = nil

	var crc32, uncompressedSize uint32

	if cur.local.Method == Deflated {
		var err error

		crc32, uncompressedSize, err = cur.deflate.finish()
		if err != nil {
			return fmt.Errorf("entry %s: %w", cur.local.Name, err)
		}
	} else {
		crc32 = cur.crc.Sum32()
		uncompressedSize = cur.nWritten
	}

	compressedSize, err := checkedUint32(cur.cw.n)
	if err != nil {
		return fmt.Errorf("entry %s: %w", cur.local.Name, err)
	}

	cur.local.CRC32 = crc32
	cur.local.UncompressedSize = uncompressedSize
	cur.local.CompressedSize = compressedSize
	cur.local.Offset = uint32(cur.headerOffset)
	w.offset += int64(compressedSize)

	if err := w.patchLocalHeader(cur); err != nil {
		return err
	}

	central := newCentralEntry(*cur.local, cur.externalAttrs)
	w.entries = append(w.entries, central)

	return nil
}

// patchLocalHeader rewrites the placeholder local header at cur's recorded
// offset now that its sizes and CRC-32 are known. It flushes buffered
// output, seeks to the header, writes the corrected fixed fields plus the
// unchanged name/extra, then seeks back to resume sequential writing.
func (w *Writer) patchLocalHeader(cur *openEntry) error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush before patch: %w", err)
	}

	if _, err := w.seeker.Seek(cur.headerOffset, io.SeekStart); err != nil {
		return fmt.Errorf("seek to entry %s header: %w", cur.local.Name, err)
	}

	if err := writeLocalHeader(w.sink, cur.local); err != nil {
		return fmt.Errorf("patch entry %s header: %w", cur.local.Name, err)
	}

	if _, err := w.seeker.Seek(w.offset, io.SeekStart); err != nil {
		return fmt.Errorf("restore write position after entry %s: %w", cur.local.Name, err)
	}

	return nil
}

// Finish closes any open entry, then writes the central directory and the
// end-of-central-directory record. No further entries may be added.
func (w *Writer) Finish() error {
	if w.closed {
		return ErrArchiveFinished
	}

	if w.cur != nil {
		if err := w.CloseEntry(); err != nil {
			return err
		}
	}

	cdStart := w.offset
	for _, e := range w.entries {
		if err := writeCentralHeader(w.bw, e); err != nil {
			return fmt.Errorf("entry %s: %w", e.Name, err)
		}

		w.offset += int64(e.CentralHeaderSize())
	}

	cdSize, err := checkedUint32(w.offset - cdStart)
	if err != nil {
		return fmt.Errorf("central directory: %w", err)
	}

	cdOffset, err := checkedUint32(cdStart)
	if err != nil {
		return fmt.Errorf("central directory: %w", err)
	}

	eocd := &EndOfCentralDirectory{
		TotalCount:             uint16(len(w.entries)), //nolint:gosec // bounded by archive entry count in practice
		CentralDirectorySize:   cdSize,
		CentralDirectoryOffset: cdOffset,
		Comment:                w.comment,
	}
	if err := writeEOCD(w.bw, eocd); err != nil {
		return fmt.Errorf("end of central directory: %w", err)
	}

	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}

	w.closed = true

	return nil
}

// PutRaw writes local as a complete entry in one pass, copying payload
// verbatim from src. Unlike PutNextEntry, local's CompressedSize,
// UncompressedSize, and CRC32 must already be correct: no back-patch is
// needed because nothing about the entry changes once its header is
// written. This is the fast path for rewriting an archive's entries that
// don't need recompression, such as an unmodified entry carried over by
// Editor.Commit.
func (w *Writer) PutRaw(local LocalEntry, externalAttrs uint32, src io.Reader) error {
	if w.closed {
		return ErrArchiveFinished
	}
	if local.Name == "" {
		return ErrEmptyName
	}

	if w.cur != nil {
		if err := w.CloseEntry(); err != nil {
			return err
		}
	}

	headerOffset := w.offset
	local.Offset = uint32(headerOffset)

	if err := writeLocalHeader(w.bw, &local); err != nil {
		return fmt.Errorf("entry %s: %w", local.Name, err)
	}

	w.offset += int64(local.HeaderSize())

	written, err := io.CopyN(w.bw, src, int64(local.CompressedSize))
	if err != nil {
		return fmt.Errorf("entry %s: copy payload: %w", local.Name, err)
	}
	if written != int64(local.CompressedSize) {
		return fmt.Errorf("entry %s: short payload copy (%d/%d)", local.Name, written, local.CompressedSize)
	}

	w.offset += written

	central := newCentralEntry(local, externalAttrs)
	central.Offset = uint32(headerOffset)
	w.entries = append(w.entries, central)

	return nil
}

// Entries returns the central directory entries written so far, in write order.
func (w *Writer) Entries() []*CentralEntry {
	out := make([]*CentralEntry, len(w.entries))
	copy(out, w.entries)

	return out
}

