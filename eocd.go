// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"encoding/binary"
	"fmt"
	"io"
)

// eocdSignature is the magic 32-bit value opening an end-of-central-directory record.
const eocdSignature = 0x06054B50

// maxEOCDTail is the largest possible EOCD record: fixed body plus the
// largest legal archive comment. The record is guaranteed to start
// somewhere in the last maxEOCDTail bytes of a well-formed archive.
const maxEOCDTail = eocdFixedSize + maxFieldLen

// locateEOCD scans the tail of a size-byte source for a valid end-of-central-
// directory record and returns it parsed. It tolerates an arbitrary prefix
// before the archive proper (e.g. a self-extracting stub) because it only
// ever looks at the last maxEOCDTail bytes.
func locateEOCD(ra io.ReaderAt, size int64) (*EndOfCentralDirectory, error) {
	tailSize := int64(maxEOCDTail)
	if tailSize > size {
		tailSize = size
	}
	if tailSize < eocdFixedSize {
		return nil, fmt.Errorf("%w: source too small", ErrEOCDNotFound)
	}

	tailStart := size - tailSize
	buf := make([]byte, tailSize)
	if _, err := ra.ReadAt(buf, tailStart); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read eocd tail: %w", err)
	}

	for i := len(buf) - 4; i >= 0; i-- {
		if binary.LittleEndian.Uint32(buf[i:i+4]) != eocdSignature {
			continue
		}
		if i+eocdFixedSize > len(buf) {
			continue
		}

		commentLen := int(binary.LittleEndian.Uint16(buf[i+20 : i+22]))
		candidatePos := tailStart + int64(i)
		if candidatePos+eocdFixedSize+int64(commentLen) != size {
			continue
		}

		eocd := parseEOCDFields(buf[i:i+eocdFixedSize], buf[i+eocdFixedSize:i+eocdFixedSize+commentLen])
		eocd.RecordOffset = candidatePos

		return eocd, nil
	}

	return nil, ErrEOCDNotFound
}

// parseEOCDFields decodes an EOCD record from its fixed body (exactly
// eocdFixedSize bytes, including signature) and comment bytes.
func parseEOCDFields(fixed []byte, comment []byte) *EndOfCentralDirectory {
	return &EndOfCentralDirectory{
		TotalCount:             binary.LittleEndian.Uint16(fixed[10:12]),
		CentralDirectorySize:   binary.LittleEndian.Uint32(fixed[12:16]),
		CentralDirectoryOffset: binary.LittleEndian.Uint32(fixed[16:20]),
		Comment:                string(comment),
	}
}

// writeEOCD serializes e to w. It must be called only after every central
// directory record has already been written.
func writeEOCD(w io.Writer, e *EndOfCentralDirectory) error {
	commentLen, err := checkFieldLen(len(e.Comment))
	if err != nil {
		return fmt.Errorf("archive comment: %w", err)
	}

	if err := writeUint32LE(w, eocdSignature); err != nil {
		return err
	}
	if err := writeUint16LE(w, 0); err != nil { // this_disk
		return err
	}
	if err := writeUint16LE(w, 0); err != nil { // disk_with_cdir
		return err
	}
	if err := writeUint16LE(w, e.TotalCount); err != nil { // entries_on_this_disk
		return err
	}
	if err := writeUint16LE(w, e.TotalCount); err != nil { // total_entries
		return err
	}
	if err := writeUint32LE(w, e.CentralDirectorySize); err != nil {
		return err
	}
	if err := writeUint32LE(w, e.CentralDirectoryOffset); err != nil {
		return err
	}
	if err := writeUint16LE(w, commentLen); err != nil {
		return err
	}
	if _, err := io.WriteString(w, e.Comment); err != nil {
		return err
	}

	return nil
}
