// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import "time"

// Internal binary layout and format limits.
const (
	localHeaderFixedSize   = 30    // fixed local file header size, before name/extra
	centralHeaderFixedSize = 46    // fixed central directory header size, before name/extra/comment
	eocdFixedSize          = 22    // fixed end-of-central-directory size, before comment
	maxFieldLen            = 65535 // max filename/extra/comment length (16-bit length prefix)
	maxClassicSize         = 1<<32 - 1
)

// Method is the ZIP entry compression method.
type Method uint16

// Supported compression methods. Any other method read from an archive is
// preserved on the entry. A local header with such a method is parsed into
// an entry marked invalid (alongside ErrUnsupportedMethod); a central
// directory record keeps it as read, and Reader.Open rejects the entry.
const (
	// Stored marks a verbatim, uncompressed entry.
	Stored Method = 0
	// Deflated marks a raw-DEFLATE compressed entry.
	Deflated Method = 8
)

// String returns a short human-readable name for m.
func (m Method) String() string {
	switch m {
	case Stored:
		return "stored"
	case Deflated:
		return "deflated"
	default:
		return "unknown"
	}
}

// gpDataDescriptor is bit 3 of the general-purpose bit flag: sizes/CRC follow the payload.
const gpDataDescriptor = 1 << 3

// LocalEntry is the shared attribute set of a ZIP entry, corresponding to the
// on-disk local file header that immediately precedes its compressed data.
//
// CentralEntry embeds LocalEntry and adds the fields only present in the
// central directory record. This mirrors the wire format: every field here
// is duplicated in the central directory, plus a handful more.
type LocalEntry struct {
	// Name is the entry path, "/"-separated, as stored in the archive.
	Name string
	// UncompressedSize is the decompressed byte count.
	UncompressedSize uint32
	// CompressedSize is the on-disk byte count of the entry payload.
	CompressedSize uint32
	// CRC32 is the IEEE CRC-32 of the uncompressed data; zero until known.
	CRC32 uint32
	// Modified is the entry timestamp, truncated to DOS 2-second resolution on write.
	Modified time.Time
	// Method is the compression method used for the payload.
	Method Method
	// Extra is an opaque extra-field byte sequence; may be empty.
	Extra []byte
	// Flags is the raw 16-bit general-purpose bit flag field.
	Flags uint16
	// ExtractVersion is the "version needed to extract" wire field.
	ExtractVersion uint16
	// WriterVersion is the "version made by" wire field (meaningful in the central copy).
	WriterVersion uint16
	// Offset is the absolute byte offset of this entry's local header within the archive.
	// Zero means unknown (e.g. an entry not yet written).
	Offset uint32
	// Valid reports whether this record was fully populated by a successful parse
	// or construction. Callers should not trust the other fields when false.
	Valid bool
}

// HasDataDescriptor reports whether the general-purpose flags mark this entry
// as using the unsupported trailing data-descriptor form.
func (e *LocalEntry) HasDataDescriptor() bool {
	return e.Flags&gpDataDescriptor != 0
}

// HeaderSize returns the on-disk size of this entry's local header, including
// its filename and extra field.
func (e *LocalEntry) HeaderSize() int {
	return localHeaderFixedSize + len(e.Name) + len(e.Extra)
}

// CentralEntry extends LocalEntry with the fields unique to a central
// directory record: an entry comment and file attribute words.
type CentralEntry struct {
	LocalEntry
	// Comment is a UTF-8 per-entry comment, at most 65535 bytes.
	Comment string
	// DiskNumStart is the disk number this entry starts on; always 0 in a
	// valid single-volume archive.
	DiskNumStart uint16
	// InternalAttrs is the internal file attribute word (usually 0).
	InternalAttrs uint16
	// ExternalAttrs is the external file attribute word (host-specific; on
	// UNIX this packs a mode_t into the high 16 bits).
	ExternalAttrs uint32
}

// CentralHeaderSize returns the on-disk size of this entry's central
// directory record, including its filename, extra field, and comment.
func (e *CentralEntry) CentralHeaderSize() int {
	return centralHeaderFixedSize + len(e.Name) + len(e.Extra) + len(e.Comment)
}

// IsCompressed reports whether the entry payload uses DEFLATE.
func (e *LocalEntry) IsCompressed() bool {
	return e.Method == Deflated
}

// EndOfCentralDirectory is the trailer record that locates the central
// directory within the archive.
type EndOfCentralDirectory struct {
	// TotalCount is the number of entries recorded in the central directory.
	TotalCount uint16
	// CentralDirectorySize is the byte size of the central directory.
	CentralDirectorySize uint32
	// CentralDirectoryOffset is the absolute byte offset to the start of the
	// central directory.
	CentralDirectoryOffset uint32
	// Comment is the archive-level comment, at most 65535 bytes.
	Comment string
	// RecordOffset is the absolute byte offset at which this EOCD record was
	// found; zero for a not-yet-located or synthesized record.
	RecordOffset int64
}

// defaultUnixExternalAttrs is applied to written entries when the caller
// supplies no external attribute word: regular file, rw-rw-r--.
const defaultUnixExternalAttrs = 0x81B40000

// hostUnix is the UNIX host code (upper byte of writer_version) written by
// this module's writer, regardless of the build platform: readers ignore it,
// and always declaring UNIX keeps external-attribute interpretation
// (a packed mode_t) self-consistent between writer and reader.
const hostUnix = 0x0300

// writerVersionMadeBy is the "version made by" field this writer always emits.
const writerVersionMadeBy = uint16(hostUnix | 0x0014)

// extractVersionDefault is the "version needed to extract" field this writer emits.
const extractVersionDefault = uint16(0x0014)
