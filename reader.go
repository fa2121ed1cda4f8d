// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ReaderOptions configures Reader construction.
type ReaderOptions struct {
	// VerifyLocalHeaders re-reads each entry's local file header on Open and
	// cross-checks it against the central directory record before streaming
	// payload. This costs an extra seek+read per Open but catches archives
	// whose central directory disagrees with the data it describes. Off by
	// default, matching the teacher's posture of trusting its index.
	VerifyLocalHeaders bool
}

func (o *ReaderOptions) applyDefaults() {
	// zero value is already the default configuration
}

// Reader provides read access to a parsed ZIP archive's central directory and
// independent, concurrency-safe streaming access to each entry's payload.
type Reader struct {
	ra     io.ReaderAt
	file   *os.File
	size   int64
	eocd   *EndOfCentralDirectory
	idx    *Index
	opts   ReaderOptions
	mu     sync.Mutex
	closed bool
}

// OpenReader opens the archive at path and parses its central directory.
func OpenReader(path string) (*Reader, error) {
	return OpenReaderWithOptions(path, ReaderOptions{})
}

// OpenReaderWithOptions opens the archive at path using explicit options.
func OpenReaderWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("stat archive: %w", err)
	}

	r, err := NewReaderWithOptions(f, fi.Size(), opts)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	r.file = f

	return r, nil
}

// NewReader parses an archive from an existing random-access source of known
// size. The caller retains ownership of ra and is responsible for closing it
// if it implements io.Closer; Reader.Close then only marks the Reader closed
// and leaves ra open.
func NewReader(ra io.ReaderAt, size int64) (*Reader, error) {
	return NewReaderWithOptions(ra, size, ReaderOptions{})
}

// NewReaderWithOptions is NewReader with explicit options.
func NewReaderWithOptions(ra io.ReaderAt, size int64, opts ReaderOptions) (*Reader, error) {
	opts.applyDefaults()

	eocd, err := locateEOCD(ra, size)
	if err != nil {
		return nil, err
	}

	idx, err := parseCentralDirectory(ra, eocd)
	if err != nil {
		return nil, err
	}

	return &Reader{ra: ra, size: size, eocd: eocd, idx: idx, opts: opts}, nil
}

// parseCentralDirectory reads every central directory record located by eocd
// into an Index, in their on-disk order.
func parseCentralDirectory(ra io.ReaderAt, eocd *EndOfCentralDirectory) (*Index, error) {
	sr := io.NewSectionReader(ra, int64(eocd.CentralDirectoryOffset), int64(eocd.CentralDirectorySize))
	idx := newIndex()

	for i := 0; i < int(eocd.TotalCount); i++ {
		e, err := parseCentralHeader(sr)
		if err != nil {
			return nil, fmt.Errorf("central directory record %d: %w", i, err)
		}

		idx.Append(e)
	}

	return idx, nil
}

// Entries returns the archive's entries in central directory order.
func (r *Reader) Entries() []*CentralEntry {
	return r.idx.Entries()
}

// Len returns the number of entries in the archive.
func (r *Reader) Len() int {
	return r.idx.Len()
}

// Comment returns the archive-level comment.
func (r *Reader) Comment() string {
	return r.eocd.Comment
}

// GetEntry looks up an entry by name under the given match mode.
func (r *Reader) GetEntry(name string, mode MatchMode) (*CentralEntry, bool) {
	return r.idx.Lookup(name, mode)
}

// Open returns a stream of entry's decompressed payload. Independent calls to
// Open, including concurrent ones across distinct entries, are safe: each
// returns its own section reader over the shared source and does not share
// mutable state with any other open entry.
func (r *Reader) Open(entry *CentralEntry) (io.ReadCloser, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}

	if r.opts.VerifyLocalHeaders {
		if err := r.verifyLocalHeader(entry); err != nil {
			return nil, err
		}
	}

	payloadOffset, err := r.payloadOffset(entry)
	if err != nil {
		return nil, err
	}

	sr := io.NewSectionReader(r.ra, payloadOffset, int64(entry.CompressedSize))

	switch entry.Method {
	case Stored:
		return &storedEntryStream{sr: sr, crc: newCRC32(), entry: entry}, nil
	case Deflated:
		return &deflatedEntryStream{inflate: newInflateBuf(sr), entry: entry}, nil
	default:
		return nil, fmt.Errorf("%w: method %d", ErrUnsupportedMethod, entry.Method)
	}
}

// openRaw returns a stream of entry's compressed payload exactly as stored,
// performing no decompression or verification. It is the fast path for
// copying an entry's bytes into another archive unchanged, used by
// Editor.Commit to carry over entries that were not added, replaced, or
// deleted.
func (r *Reader) openRaw(entry *CentralEntry) (io.ReadCloser, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}

	payloadOffset, err := r.payloadOffset(entry)
	if err != nil {
		return nil, err
	}

	sr := io.NewSectionReader(r.ra, payloadOffset, int64(entry.CompressedSize))

	return io.NopCloser(sr), nil
}

// OpenName looks up name under MatchExact and opens it.
func (r *Reader) OpenName(name string) (io.ReadCloser, error) {
	e, ok := r.GetEntry(name, MatchExact)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	return r.Open(e)
}

// payloadOffset reads entry's local header to determine where its compressed
// payload begins: the local header may carry a different (always equal-or-
// larger) name/extra field length than the central copy, so the payload
// offset cannot be derived from the central record alone. A local header
// flagged with a trailing data descriptor is rejected (ErrDataDescriptor).
func (r *Reader) payloadOffset(entry *CentralEntry) (int64, error) {
	localHeader := io.NewSectionReader(r.ra, int64(entry.Offset), localHeaderFixedSize+2*maxFieldLen)

	local, err := parseLocalHeader(localHeader)
	if err != nil && err != ErrUnsupportedMethod {
		return 0, fmt.Errorf("entry %s: local header: %w", entry.Name, err)
	}

	return int64(entry.Offset) + int64(local.HeaderSize()), nil
}

// verifyLocalHeader cross-checks entry's local header against its central
// directory record.
func (r *Reader) verifyLocalHeader(entry *CentralEntry) error {
	localHeader := io.NewSectionReader(r.ra, int64(entry.Offset), localHeaderFixedSize+2*maxFieldLen)

	local, err := parseLocalHeader(localHeader)
	if err != nil && err != ErrDataDescriptor && err != ErrUnsupportedMethod {
		return fmt.Errorf("entry %s: local header: %w", entry.Name, err)
	}
	if local.Name != entry.Name {
		return fmt.Errorf("entry %s: local header name %q disagrees with central directory", entry.Name, local.Name)
	}
	if local.Method != entry.Method {
		return fmt.Errorf("entry %s: local header method disagrees with central directory", entry.Name)
	}

	return nil
}

// Close releases resources owned by the Reader. If it was constructed via
// OpenReader, the underlying file is closed; if constructed from a caller-
// supplied io.ReaderAt via NewReader, that source is left open. Either way,
// later Open calls fail with ErrClosed.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	if r.file != nil {
		return r.file.Close()
	}

	return nil
}

// storedEntryStream streams an uncompressed entry's payload, verifying its
// running CRC-32 and size against the central directory record once the
// stream is exhausted.
type storedEntryStream struct {
	sr       *io.SectionReader
	crc      *crcAccumulator
	entry    *CentralEntry
	nRead    uint32
	verified bool
}

func (s *storedEntryStream) Read(p []byte) (int, error) {
	n, err := s.sr.Read(p)
	if n > 0 {
		s.crc.Write(p[:n])
		s.nRead += uint32(n)
	}

	if err == io.EOF {
		if verr := s.verify(); verr != nil {
			return n, verr
		}
	}

	return n, err
}

func (s *storedEntryStream) verify() error {
	if s.verified {
		return nil
	}

	s.verified = true
	if s.nRead != s.entry.UncompressedSize {
		return fmt.Errorf("%w: entry %s", ErrSizeMismatch, s.entry.Name)
	}
	if s.crc.Sum32() != s.entry.CRC32 {
		return fmt.Errorf("%w: entry %s", ErrCRCMismatch, s.entry.Name)
	}

	return nil
}

func (s *storedEntryStream) Close() error {
	return nil
}

// deflatedEntryStream streams a DEFLATE-compressed entry's decompressed
// payload via an inflateBuf, verifying CRC-32 and size on EOF.
type deflatedEntryStream struct {
	inflate  *inflateBuf
	entry    *CentralEntry
	verified bool
}

func (s *deflatedEntryStream) Read(p []byte) (int, error) {
	n, err := s.inflate.Read(p)
	if err == io.EOF {
		if verr := s.verify(); verr != nil {
			return n, verr
		}
	}

	return n, err
}

func (s *deflatedEntryStream) verify() error {
	if s.verified {
		return nil
	}

	s.verified = true

	crc32, size, err := s.inflate.finish()
	if err != nil {
		return err
	}
	if size != s.entry.UncompressedSize {
		return fmt.Errorf("%w: entry %s", ErrSizeMismatch, s.entry.Name)
	}
	if crc32 != s.entry.CRC32 {
		return fmt.Errorf("%w: entry %s", ErrCRCMismatch, s.entry.Name)
	}

	return nil
}

func (s *deflatedEntryStream) Close() error {
	_, _, err := s.inflate.finish()

	return err
}
