// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"fmt"
	"io"
)

// localHeaderSignature is the magic 32-bit value opening a local file header.
const localHeaderSignature = 0x04034B50

// parseLocalHeader reads one local file header from r, which must be
// positioned at the header's signature. It always returns a non-nil
// *LocalEntry; entry.Valid is false and a sentinel error is returned
// (ErrDataDescriptor, ErrUnsupportedMethod) for conditions the caller may
// choose to treat as non-fatal and skip past rather than abort on. Signature
// mismatch, truncation, and an empty filename are always fatal.
func parseLocalHeader(r io.Reader) (*LocalEntry, error) {
	sig, err := readUint32LE(r)
	if err != nil {
		return nil, err
	}
	if sig != localHeaderSignature {
		return nil, fmt.Errorf("%w: local header", ErrInvalidSignature)
	}

	e := &LocalEntry{}

	e.ExtractVersion, err = readUint16LE(r)
	if err != nil {
		return nil, err
	}
	e.Flags, err = readUint16LE(r)
	if err != nil {
		return nil, err
	}
	method, err := readUint16LE(r)
	if err != nil {
		return nil, err
	}
	e.Method = Method(method)

	dosTime, err := readUint32LE(r)
	if err != nil {
		return nil, err
	}
	e.Modified = dosTimeToTime(dosTime)

	e.CRC32, err = readUint32LE(r)
	if err != nil {
		return nil, err
	}
	e.CompressedSize, err = readUint32LE(r)
	if err != nil {
		return nil, err
	}
	e.UncompressedSize, err = readUint32LE(r)
	if err != nil {
		return nil, err
	}

	nameLen, err := readUint16LE(r)
	if err != nil {
		return nil, err
	}
	extraLen, err := readUint16LE(r)
	if err != nil {
		return nil, err
	}

	nameBytes, err := readExact(r, int(nameLen))
	if err != nil {
		return nil, err
	}
	if len(nameBytes) == 0 {
		return nil, ErrEmptyName
	}
	e.Name = string(nameBytes)

	e.Extra, err = readExact(r, int(extraLen))
	if err != nil {
		return nil, err
	}

	if e.HasDataDescriptor() {
		return e, ErrDataDescriptor
	}
	if e.Method != Stored && e.Method != Deflated {
		return e, fmt.Errorf("%w: method %d", ErrUnsupportedMethod, method)
	}

	e.Valid = true

	return e, nil
}

// writeLocalHeader serializes e as a local file header to w. Callers write a
// zero-sized placeholder before streaming payload, then rewrite the same
// bytes in place once compressed size, uncompressed size, and CRC-32 are
// known (see Writer.CloseEntry).
func writeLocalHeader(w io.Writer, e *LocalEntry) error {
	if e.Name == "" {
		return ErrEmptyName
	}

	nameLen, err := checkFieldLen(len(e.Name))
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}
	extraLen, err := checkFieldLen(len(e.Extra))
	if err != nil {
		return fmt.Errorf("extra field: %w", err)
	}
	if e.CompressedSize > maxClassicSize || e.UncompressedSize > maxClassicSize {
		return fmt.Errorf("%w: entry %s", ErrSizeOverflow, e.Name)
	}

	if err := writeUint32LE(w, localHeaderSignature); err != nil {
		return err
	}
	if err := writeUint16LE(w, e.ExtractVersion); err != nil {
		return err
	}
	if err := writeUint16LE(w, e.Flags); err != nil {
		return err
	}
	if err := writeUint16LE(w, uint16(e.Method)); err != nil {
		return err
	}
	if err := writeUint32LE(w, timeToDOSTime(e.Modified)); err != nil {
		return err
	}
	if err := writeUint32LE(w, e.CRC32); err != nil {
		return err
	}
	if err := writeUint32LE(w, e.CompressedSize); err != nil {
		return err
	}
	if err := writeUint32LE(w, e.UncompressedSize); err != nil {
		return err
	}
	if err := writeUint16LE(w, nameLen); err != nil {
		return err
	}
	if err := writeUint16LE(w, extraLen); err != nil {
		return err
	}
	if _, err := io.WriteString(w, e.Name); err != nil {
		return err
	}
	if _, err := w.Write(e.Extra); err != nil {
		return err
	}

	return nil
}
