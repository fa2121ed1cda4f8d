// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestLocalHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	e := &LocalEntry{
		Name:             "dir/file.txt",
		Method:           Deflated,
		Modified:         time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
		CRC32:            0x12345678,
		CompressedSize:   100,
		UncompressedSize: 200,
		Extra:            []byte{1, 2, 3},
		ExtractVersion:   extractVersionDefault,
	}

	var buf bytes.Buffer
	if err := writeLocalHeader(&buf, e); err != nil {
		t.Fatalf("writeLocalHeader: %v", err)
	}

	got, err := parseLocalHeader(&buf)
	if err != nil {
		t.Fatalf("parseLocalHeader: %v", err)
	}
	if !got.Valid {
		t.Fatal("expected a valid parsed entry")
	}
	if got.Name != e.Name || got.Method != e.Method || got.CRC32 != e.CRC32 ||
		got.CompressedSize != e.CompressedSize || got.UncompressedSize != e.UncompressedSize {
		t.Fatalf("got %+v, want fields matching %+v", got, e)
	}
	if !bytes.Equal(got.Extra, e.Extra) {
		t.Fatalf("Extra=%v, want %v", got.Extra, e.Extra)
	}
}

func TestParseLocalHeaderRejectsEmptyName(t *testing.T) {
	t.Parallel()

	e := &LocalEntry{Name: "a.txt", ExtractVersion: extractVersionDefault}

	var buf bytes.Buffer
	if err := writeLocalHeader(&buf, e); err != nil {
		t.Fatalf("writeLocalHeader: %v", err)
	}

	raw := buf.Bytes()
	// zero out the name-length field (offset 26, 2 bytes) to simulate a
	// corrupt header declaring an empty name.
	raw[26], raw[27] = 0, 0

	if _, err := parseLocalHeader(bytes.NewReader(raw)); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err=%v, want ErrEmptyName", err)
	}
}

func TestParseLocalHeaderFlagsDataDescriptor(t *testing.T) {
	t.Parallel()

	e := &LocalEntry{Name: "a.txt", Flags: gpDataDescriptor, ExtractVersion: extractVersionDefault}

	var buf bytes.Buffer
	if err := writeLocalHeader(&buf, e); err != nil {
		t.Fatalf("writeLocalHeader: %v", err)
	}

	got, err := parseLocalHeader(&buf)
	if !errors.Is(err, ErrDataDescriptor) {
		t.Fatalf("err=%v, want ErrDataDescriptor", err)
	}
	if got == nil || got.Valid {
		t.Fatal("expected a non-nil, invalid entry alongside ErrDataDescriptor")
	}
}

func TestParseLocalHeaderRejectsBadSignature(t *testing.T) {
	t.Parallel()

	_, err := parseLocalHeader(bytes.NewReader([]byte{0, 0, 0, 0}))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err=%v, want ErrInvalidSignature", err)
	}
}

func TestCentralHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	local := LocalEntry{
		Name:             "pkg/data.bin",
		Method:           Stored,
		Modified:         time.Date(2020, 2, 29, 1, 2, 0, 0, time.UTC),
		CRC32:            7,
		CompressedSize:   10,
		UncompressedSize: 10,
		Offset:           1024,
	}
	e := newCentralEntry(local, 0)
	e.Comment = "a comment"

	var buf bytes.Buffer
	if err := writeCentralHeader(&buf, e); err != nil {
		t.Fatalf("writeCentralHeader: %v", err)
	}

	got, err := parseCentralHeader(&buf)
	if err != nil {
		t.Fatalf("parseCentralHeader: %v", err)
	}
	if got.Name != e.Name || got.Offset != e.Offset || got.Comment != e.Comment {
		t.Fatalf("got %+v, want fields matching %+v", got, e)
	}
	if got.ExternalAttrs != defaultUnixExternalAttrs {
		t.Fatalf("ExternalAttrs=%#x, want default %#x", got.ExternalAttrs, defaultUnixExternalAttrs)
	}
}

func TestWriteCentralHeaderRejectsEmptyName(t *testing.T) {
	t.Parallel()

	e := &CentralEntry{}
	if err := writeCentralHeader(&bytes.Buffer{}, e); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err=%v, want ErrEmptyName", err)
	}
}

func TestEOCDRoundTripAndLocate(t *testing.T) {
	t.Parallel()

	// Build a minimal archive by hand: one stored entry, central directory,
	// and EOCD, then confirm locateEOCD finds it from raw bytes.
	local := LocalEntry{
		Name:             "a.txt",
		Method:           Stored,
		CompressedSize:   3,
		UncompressedSize: 3,
		CRC32:            crcOf(t, []byte("abc")),
	}

	var archive bytes.Buffer
	if err := writeLocalHeader(&archive, &local); err != nil {
		t.Fatalf("writeLocalHeader: %v", err)
	}
	archive.WriteString("abc")

	cdStart := archive.Len()
	central := newCentralEntry(local, 0)
	central.Offset = 0
	if err := writeCentralHeader(&archive, central); err != nil {
		t.Fatalf("writeCentralHeader: %v", err)
	}
	cdSize := archive.Len() - cdStart

	eocd := &EndOfCentralDirectory{
		TotalCount:             1,
		CentralDirectorySize:   uint32(cdSize),
		CentralDirectoryOffset: uint32(cdStart),
		Comment:                "hello",
	}
	if err := writeEOCD(&archive, eocd); err != nil {
		t.Fatalf("writeEOCD: %v", err)
	}

	data := archive.Bytes()
	got, err := locateEOCD(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("locateEOCD: %v", err)
	}
	if got.TotalCount != 1 || got.CentralDirectorySize != uint32(cdSize) ||
		got.CentralDirectoryOffset != uint32(cdStart) || got.Comment != "hello" {
		t.Fatalf("got %+v, want fields matching %+v", got, eocd)
	}
}

func TestLocateEOCDToleratesArbitraryPrefix(t *testing.T) {
	t.Parallel()

	eocd := &EndOfCentralDirectory{Comment: "prefixed"}

	var archive bytes.Buffer
	archive.WriteString("MZ-self-extracting-stub-bytes-not-part-of-the-zip-format")

	if err := writeEOCD(&archive, eocd); err != nil {
		t.Fatalf("writeEOCD: %v", err)
	}

	data := archive.Bytes()
	got, err := locateEOCD(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("locateEOCD: %v", err)
	}
	if got.Comment != "prefixed" {
		t.Fatalf("Comment=%q, want %q", got.Comment, "prefixed")
	}
}

func TestLocateEOCDNotFound(t *testing.T) {
	t.Parallel()

	data := []byte("definitely not a zip file")
	if _, err := locateEOCD(bytes.NewReader(data), int64(len(data))); !errors.Is(err, ErrEOCDNotFound) {
		t.Fatalf("err=%v, want ErrEOCDNotFound", err)
	}
}

func crcOf(t *testing.T, p []byte) uint32 {
	t.Helper()

	c := newCRC32()
	if _, err := c.Write(p); err != nil {
		t.Fatalf("crc write: %v", err)
	}

	return c.Sum32()
}
