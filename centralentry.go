// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"fmt"
	"io"
)

// centralHeaderSignature is the magic 32-bit value opening a central directory record.
const centralHeaderSignature = 0x02014B50

// parseCentralHeader reads one central directory record from r, which must be
// positioned at the header's signature. Unlike parseLocalHeader, any
// structural problem here is fatal: the central directory is the archive's
// authoritative index and a bad record means the index itself cannot be
// trusted. Valid is set true only on complete success.
func parseCentralHeader(r io.Reader) (*CentralEntry, error) {
	sig, err := readUint32LE(r)
	if err != nil {
		return nil, err
	}
	if sig != centralHeaderSignature {
		return nil, fmt.Errorf("%w: central directory header", ErrInvalidSignature)
	}

	e := &CentralEntry{}

	e.WriterVersion, err = readUint16LE(r)
	if err != nil {
		return nil, err
	}
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
	commentLen, err := readUint16LE(r)
	if err != nil {
		return nil, err
	}

	e.DiskNumStart, err = readUint16LE(r)
	if err != nil {
		return nil, err
	}
	e.InternalAttrs, err = readUint16LE(r)
	if err != nil {
		return nil, err
	}
	e.ExternalAttrs, err = readUint32LE(r)
	if err != nil {
		return nil, err
	}
	e.Offset, err = readUint32LE(r)
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

	commentBytes, err := readExact(r, int(commentLen))
	if err != nil {
		return nil, err
	}
	e.Comment = string(commentBytes)

	e.Valid = true

	return e, nil
}

// writeCentralHeader serializes e as a central directory record to w.
func writeCentralHeader(w io.Writer, e *CentralEntry) error {
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
	commentLen, err := checkFieldLen(len(e.Comment))
	if err != nil {
		return fmt.Errorf("comment: %w", err)
	}
	if e.CompressedSize > maxClassicSize || e.UncompressedSize > maxClassicSize {
		return fmt.Errorf("%w: entry %s", ErrSizeOverflow, e.Name)
	}
	if e.Offset > maxClassicSize {
		return fmt.Errorf("%w: entry %s offset", ErrSizeOverflow, e.Name)
	}

	writers := []func() error{
		func() error { return writeUint32LE(w, centralHeaderSignature) },
		func() error { return writeUint16LE(w, e.WriterVersion) },
		func() error { return writeUint16LE(w, e.ExtractVersion) },
		func() error { return writeUint16LE(w, e.Flags) },
		func() error { return writeUint16LE(w, uint16(e.Method)) },
		func() error { return writeUint32LE(w, timeToDOSTime(e.Modified)) },
		func() error { return writeUint32LE(w, e.CRC32) },
		func() error { return writeUint32LE(w, e.CompressedSize) },
		func() error { return writeUint32LE(w, e.UncompressedSize) },
		func() error { return writeUint16LE(w, nameLen) },
		func() error { return writeUint16LE(w, extraLen) },
		func() error { return writeUint16LE(w, commentLen) },
		func() error { return writeUint16LE(w, e.DiskNumStart) },
		func() error { return writeUint16LE(w, e.InternalAttrs) },
		func() error { return writeUint32LE(w, e.ExternalAttrs) },
		func() error { return writeUint32LE(w, e.Offset) },
	}
	for _, step := range writers {
		if err := step(); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, e.Name); err != nil {
		return err
	}
	if _, err := w.Write(e.Extra); err != nil {
		return err
	}
	if _, err := io.WriteString(w, e.Comment); err != nil {
		return err
	}

	return nil
}

// newCentralEntry builds a central directory record from a written local
// entry, applying writer defaults for the central-only fields.
func newCentralEntry(local LocalEntry, externalAttrs uint32) *CentralEntry {
	local.WriterVersion = writerVersionMadeBy
	e := &CentralEntry{LocalEntry: local}
	e.ExternalAttrs = externalAttrs
	if e.ExternalAttrs == 0 {
		e.ExternalAttrs = defaultUnixExternalAttrs
	}
	e.Valid = true

	return e
}
