// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

// Package gzip provides single-member GZIP framing over the same DEFLATE
// engine the sibling zip package uses. Multi-member archives are rejected on
// read; concatenated gzip streams are a non-goal here just as they are for
// the ZIP core.
package gzip

import (
	"bufio"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
)

const (
	gzipMagic1    = 0x1F
	gzipMagic2    = 0x8B
	methodDeflate = 8

	flagName    = 1 << 3
	flagComment = 1 << 4

	osUnknown = 255

	headerFixedSize  = 10
	trailerFixedSize = 8
)

var (
	// ErrInvalidHeader means the source did not begin with a valid GZIP header.
	ErrInvalidHeader = errors.New("gzip: invalid header")
	// ErrUnsupportedMethod means the header names a compression method other than DEFLATE.
	ErrUnsupportedMethod = errors.New("gzip: unsupported compression method")
	// ErrMultiMember means at least one byte follows the first member's
	// trailer; only single-member streams are supported.
	ErrMultiMember = errors.New("gzip: multi-member streams are not supported")
	// ErrCRCMismatch means the decompressed content did not match the trailer's CRC-32.
	ErrCRCMismatch = errors.New("gzip: CRC-32 mismatch")
	// ErrSizeMismatch means the decompressed content did not match the trailer's size field.
	ErrSizeMismatch = errors.New("gzip: uncompressed size mismatch")
	// ErrClosed means an operation was attempted on an already-closed stream.
	ErrClosed = errors.New("gzip: already closed")
)

// Header carries the optional metadata fields a GZIP member may declare.
type Header struct {
	// Name is the original filename, if the header declares one.
	Name string
	// Comment is a free-text comment, if the header declares one.
	Comment string
	// Modified is the member's modification time, truncated to 1-second
	// resolution (the wire field is a 32-bit Unix timestamp).
	Modified time.Time
}

// Reader decompresses a single-member GZIP stream, verifying the trailer's
// CRC-32 and size once the payload is exhausted.
type Reader struct {
	Header

	src      *bufio.Reader
	fr       io.ReadCloser
	crc      uint32Hash
	nRead    uint32
	closed   bool
	verified bool
}

// NewReader parses src's GZIP header and returns a Reader positioned to
// stream the member's decompressed payload.
func NewReader(src io.Reader) (*Reader, error) {
	br := bufio.NewReader(src)

	hdr, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	return &Reader{
		Header: hdr,
		src:    br,
		fr:     flate.NewReader(br),
		crc:    newCRC32(),
	}, nil
}

// Read decompresses the member's payload into p, verifying the trailer once
// the stream is exhausted.
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}

	n, err := r.fr.Read(p)
	if n > 0 {
		r.crc.Write(p[:n])
		r.nRead += uint32(n)
	}

	if errors.Is(err, io.EOF) {
		if verr := r.verify(); verr != nil {
			return n, verr
		}
	}

	return n, err
}

// verify reads and checks the 8-byte trailer once, the first time Read
// observes end-of-stream.
func (r *Reader) verify() error {
	if r.verified {
		return nil
	}

	r.verified = true

	trailer := make([]byte, trailerFixedSize)
	if _, err := io.ReadFull(r.src, trailer); err != nil {
		return fmt.Errorf("gzip: read trailer: %w", err)
	}

	wantCRC := le32(trailer[0:4])
	wantSize := le32(trailer[4:8])

	if r.crc.Sum32() != wantCRC {
		return ErrCRCMismatch
	}
	if r.nRead != wantSize {
		return ErrSizeMismatch
	}

	if _, err := r.src.ReadByte(); err == nil {
		return ErrMultiMember
	}

	return nil
}

// Close releases the underlying flate reader. It does not close the
// wrapped source.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true

	return r.fr.Close()
}

// readHeader parses the 10-byte fixed GZIP header plus any optional
// null-terminated filename and comment fields.
func readHeader(br *bufio.Reader) (Header, error) {
	fixed := make([]byte, headerFixedSize)
	if _, err := io.ReadFull(br, fixed); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	if fixed[0] != gzipMagic1 || fixed[1] != gzipMagic2 {
		return Header{}, ErrInvalidHeader
	}
	if fixed[2] != methodDeflate {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedMethod, fixed[2])
	}

	flags := fixed[3]
	mtime := le32(fixed[4:8])

	hdr := Header{}
	if mtime != 0 {
		hdr.Modified = time.Unix(int64(mtime), 0).UTC()
	}

	if flags&flagName != 0 {
		name, err := readCString(br)
		if err != nil {
			return Header{}, fmt.Errorf("%w: filename: %w", ErrInvalidHeader, err)
		}

		hdr.Name = name
	}

	if flags&flagComment != 0 {
		comment, err := readCString(br)
		if err != nil {
			return Header{}, fmt.Errorf("%w: comment: %w", ErrInvalidHeader, err)
		}

		hdr.Comment = comment
	}

	return hdr, nil
}

// readCString reads bytes up to and including a trailing NUL, returning
// everything before it.
func readCString(br *bufio.Reader) (string, error) {
	s, err := br.ReadString(0)
	if err != nil {
		return "", err
	}

	return s[:len(s)-1], nil
}

// Writer compresses a single GZIP member to dst, writing the header on the
// first Write and the trailer on Close.
type Writer struct {
	Header

	dst           io.Writer
	fw            *flate.Writer
	crc           uint32Hash
	nWritten      uint32
	level         int
	headerWritten bool
	closed        bool
}

// NewWriter returns a Writer using the default compression level.
func NewWriter(dst io.Writer, hdr Header) (*Writer, error) {
	return NewWriterLevel(dst, hdr, flate.DefaultCompression)
}

// NewWriterLevel is NewWriter with an explicit DEFLATE level.
func NewWriterLevel(dst io.Writer, hdr Header, level int) (*Writer, error) {
	return &Writer{Header: hdr, dst: dst, level: level, crc: newCRC32()}, nil
}

// Write compresses p into the member's payload, writing the header first if
// this is the first call.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}

	if !w.headerWritten {
		if err := w.writeHeader(); err != nil {
			return 0, err
		}
	}

	n, err := w.fw.Write(p)
	if n > 0 {
		w.crc.Write(p[:n])
		w.nWritten += uint32(n)
	}

	return n, err
}

// writeHeader emits the fixed 10-byte header plus optional filename/comment,
// then opens the DEFLATE stream that follows it.
func (w *Writer) writeHeader() error {
	var flags byte
	if w.Header.Name != "" {
		flags |= flagName
	}
	if w.Header.Comment != "" {
		flags |= flagComment
	}

	var mtime uint32
	if !w.Header.Modified.IsZero() {
		mtime = uint32(w.Header.Modified.Unix()) //nolint:gosec // wire field is intentionally 32-bit
	}

	fixed := []byte{
		gzipMagic1, gzipMagic2, methodDeflate, flags,
		byte(mtime), byte(mtime >> 8), byte(mtime >> 16), byte(mtime >> 24),
		0, osUnknown,
	}
	if _, err := w.dst.Write(fixed); err != nil {
		return fmt.Errorf("gzip: write header: %w", err)
	}

	if flags&flagName != 0 {
		if err := writeCString(w.dst, w.Header.Name); err != nil {
			return fmt.Errorf("gzip: write filename: %w", err)
		}
	}
	if flags&flagComment != 0 {
		if err := writeCString(w.dst, w.Header.Comment); err != nil {
			return fmt.Errorf("gzip: write comment: %w", err)
		}
	}

	fw, err := flate.NewWriter(w.dst, w.level)
	if err != nil {
		return fmt.Errorf("gzip: open deflate stream: %w", err)
	}

	w.fw = fw
	w.headerWritten = true

	return nil
}

func writeCString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}

	_, err := w.Write([]byte{0})

	return err
}

// Sync flushes buffered compressed data to the destination without ending
// the member.
func (w *Writer) Sync() error {
	if w.closed {
		return ErrClosed
	}
	if !w.headerWritten {
		return nil
	}

	return w.fw.Flush()
}

// Close ends the DEFLATE stream and writes the 8-byte trailer (CRC-32
// followed by the uncompressed size modulo 2^32). An empty member (Write
// never called) still gets a valid header, an empty DEFLATE stream, and an
// all-zero trailer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true

	if !w.headerWritten {
		if err := w.writeHeader(); err != nil {
			return err
		}
	}

	if err := w.fw.Close(); err != nil {
		return fmt.Errorf("gzip: close deflate stream: %w", err)
	}

	trailer := make([]byte, trailerFixedSize)
	putLE32(trailer[0:4], w.crc.Sum32())
	putLE32(trailer[4:8], w.nWritten)

	if _, err := w.dst.Write(trailer); err != nil {
		return fmt.Errorf("gzip: write trailer: %w", err)
	}

	return nil
}

// uint32Hash is the running CRC-32 accumulator shared by Reader and Writer.
type uint32Hash struct {
	h uint32
}

func newCRC32() uint32Hash {
	return uint32Hash{}
}

func (c *uint32Hash) Write(p []byte) {
	c.h = crc32.Update(c.h, crc32.IEEETable, p)
}

func (c *uint32Hash) Sum32() uint32 {
	return c.h
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
