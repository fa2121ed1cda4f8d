// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import "errors"

// Sentinel errors for zipcore operations. Use errors.Is in callers.
var (
	// ErrInvalidSignature means a record's magic signature did not match its expected value.
	ErrInvalidSignature = errors.New("zip: invalid record signature")
	// ErrTruncated means the underlying source ended before a record could be fully read.
	ErrTruncated = errors.New("zip: truncated record")
	// ErrEOCDNotFound means no valid end-of-central-directory record could be located.
	ErrEOCDNotFound = errors.New("zip: end of central directory not found")
	// ErrDataDescriptor means the entry uses the unsupported trailing data-descriptor form.
	ErrDataDescriptor = errors.New("zip: data-descriptor entries are not supported")
	// ErrUnsupportedMethod means the entry's compression method is neither STORED nor DEFLATED.
	ErrUnsupportedMethod = errors.New("zip: unsupported compression method")
	// ErrEmptyName means an entry name was empty.
	ErrEmptyName = errors.New("zip: entry name is empty")
	// ErrFieldTooLarge means a filename, extra field, or comment exceeds its 16-bit length cap.
	ErrFieldTooLarge = errors.New("zip: field exceeds 65535 bytes")
	// ErrSizeOverflow means a size or offset exceeds the 32-bit classic-ZIP limit.
	ErrSizeOverflow = errors.New("zip: size or offset exceeds 4 GiB classic ZIP limit")
	// ErrArchiveFinished means an entry was added, or Finish called again, after Writer.Finish.
	ErrArchiveFinished = errors.New("zip: archive is already finished")
	// ErrNotSeekable means the sink does not implement io.Seeker, required for back-patching.
	ErrNotSeekable = errors.New("zip: writer requires a seekable sink")
	// ErrNoEntryOpen means an operation required an open entry but none was open.
	ErrNoEntryOpen = errors.New("zip: no entry is currently open")
	// ErrEntryNotFound means a lookup by name found no matching entry.
	ErrEntryNotFound = errors.New("zip: entry not found")
	// ErrDuplicateEntry means two entries resolve to the same archive path.
	ErrDuplicateEntry = errors.New("zip: duplicate entry path")
	// ErrClosed means the reader, writer, or collection is already closed.
	ErrClosed = errors.New("zip: already closed")
	// ErrNilSource means a required source stream was nil.
	ErrNilSource = errors.New("zip: source is nil")
	// ErrNilSink means a required destination stream was nil.
	ErrNilSink = errors.New("zip: destination is nil")
	// ErrInvalidExtractPath means an archive entry path is unsafe to extract to disk.
	ErrInvalidExtractPath = errors.New("zip: invalid extract path")
	// ErrInvalidCompressPattern means one or more include/exclude rules failed to compile.
	ErrInvalidCompressPattern = errors.New("zip: invalid path rules")
	// ErrCRCMismatch means an entry's decompressed content did not match its stored CRC-32.
	ErrCRCMismatch = errors.New("zip: CRC-32 mismatch")
	// ErrSizeMismatch means an entry's decompressed content did not match its stored uncompressed size.
	ErrSizeMismatch = errors.New("zip: uncompressed size mismatch")
)
