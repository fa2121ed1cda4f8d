// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// DefaultCompressionLevel is the DEFLATE level used when a caller does not
// pick one explicitly, matching the reference zlib/flate default.
const DefaultCompressionLevel = 6

// MinCompressionLevel and MaxCompressionLevel bound the accepted DEFLATE
// level range.
const (
	MinCompressionLevel = 1
	MaxCompressionLevel = 9
)

// normalizeCompressionLevel clamps level into the accepted range, mapping
// zero (unset) to DefaultCompressionLevel.
func normalizeCompressionLevel(level int) int {
	if level == 0 {
		return DefaultCompressionLevel
	}
	if level < MinCompressionLevel {
		return MinCompressionLevel
	}
	if level > MaxCompressionLevel {
		return MaxCompressionLevel
	}

	return level
}

// deflateBuf adapts a stream of uncompressed writes into raw DEFLATE output
// on dst, tracking a running CRC-32 and uncompressed byte count as data is
// pushed through it. It is the push side of entry compression.
type deflateBuf struct {
	dst    io.Writer
	fw     *flate.Writer
	crc    *crcAccumulator
	nWrite uint32
	closed bool
}

// newDeflateBuf wraps dst with a DEFLATE encoder at the given level
// (normalized via normalizeCompressionLevel).
func newDeflateBuf(dst io.Writer, level int) (*deflateBuf, error) {
	fw, err := flate.NewWriter(dst, normalizeCompressionLevel(level))
	if err != nil {
		return nil, fmt.Errorf("create deflate writer: %w", err)
	}

	return &deflateBuf{dst: dst, fw: fw, crc: newCRC32()}, nil
}

// Write compresses p, updating the running CRC-32 and uncompressed byte
// count over everything written so far.
func (b *deflateBuf) Write(p []byte) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}

	n, err := b.fw.Write(p)
	if n > 0 {
		b.crc.Write(p[:n])
		b.nWrite += uint32(n)
	}

	return n, err
}

// sync flushes buffered compressed output to dst without ending the DEFLATE
// stream, for callers that need compressed bytes available on disk before
// the entry is closed (e.g. an interactive writer watching progress).
func (b *deflateBuf) sync() error {
	if b.closed {
		return ErrClosed
	}

	return b.fw.Flush()
}

// finish ends the DEFLATE stream, returning the running CRC-32 and
// uncompressed size. The caller is responsible for having already tracked
// the compressed byte count by wrapping dst in a counting writer.
func (b *deflateBuf) finish() (crc32 uint32, size uint32, err error) {
	if b.closed {
		return b.crc.Sum32(), b.nWrite, nil
	}

	b.closed = true
	if cerr := b.fw.Close(); cerr != nil {
		return 0, 0, fmt.Errorf("close deflate stream: %w", cerr)
	}

	return b.crc.Sum32(), b.nWrite, nil
}

// reset rebinds the buffer to a new destination and level, replacing the
// underlying flate.Writer with a freshly allocated one.
func (b *deflateBuf) reset(dst io.Writer, level int) error {
	fw, err := flate.NewWriter(dst, normalizeCompressionLevel(level))
	if err != nil {
		return fmt.Errorf("reset deflate writer: %w", err)
	}

	b.dst = dst
	b.fw = fw
	b.crc = newCRC32()
	b.nWrite = 0
	b.closed = false

	return nil
}

// countingWriter counts bytes written through it, used to capture the
// compressed size produced by a deflateBuf without touching flate internals.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}
