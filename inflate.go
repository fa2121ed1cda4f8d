// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// inflateBuf adapts a raw DEFLATE byte stream into a decompressed byte
// stream, tracking a running CRC-32 and byte count of the output as it is
// consumed. It is the pull side of entry decompression. The source is left
// positioned right after the compressed data only when it implements
// io.ByteReader; any other source is wrapped by flate.NewReader in its own
// read-ahead buffer, which may consume bytes past the end of the stream.
type inflateBuf struct {
	src    io.Reader
	fr     io.ReadCloser
	crc    *crcAccumulator
	nRead  uint32
	closed bool
}

// newInflateBuf wraps src, which must yield exactly one entry's worth of raw
// DEFLATE data, with no trailing bytes consumed beyond the stream's end.
func newInflateBuf(src io.Reader) *inflateBuf {
	return &inflateBuf{
		src: src,
		fr:  flate.NewReader(src),
		crc: newCRC32(),
	}
}

// Read decompresses into p, updating the running CRC-32 and byte count over
// the decompressed bytes delivered so far.
func (b *inflateBuf) Read(p []byte) (int, error) {
	if b.closed {
		return 0, io.EOF
	}

	n, err := b.fr.Read(p)
	if n > 0 {
		b.crc.Write(p[:n])
		b.nRead += uint32(n)
	}

	return n, err
}

// reset rebinds the buffer to a new compressed source, reusing the
// underlying flate.Reader where possible (the klauspost decoder supports
// resetting onto a new io.Reader without reallocating its window).
func (b *inflateBuf) reset(src io.Reader) {
	b.src = src
	if rs, ok := b.fr.(flate.Resetter); ok {
		if err := rs.Reset(src, nil); err == nil {
			b.crc = newCRC32()
			b.nRead = 0
			b.closed = false

			return
		}
	}

	b.fr = flate.NewReader(src)
	b.crc = newCRC32()
	b.nRead = 0
	b.closed = false
}

// finish closes the underlying flate.Reader and returns the CRC-32 and byte
// count of everything read. It must only be called once the stream has been
// fully drained by the caller.
func (b *inflateBuf) finish() (crc32 uint32, size uint32, err error) {
	if b.closed {
		return b.crc.Sum32(), b.nRead, nil
	}

	b.closed = true
	if cerr := b.fr.Close(); cerr != nil {
		return 0, 0, fmt.Errorf("close inflate stream: %w", cerr)
	}

	return b.crc.Sum32(), b.nRead, nil
}

// drainInflate reads decompressed bytes from b into w until EOF, returning
// the number of bytes copied.
func drainInflate(w io.Writer, b *inflateBuf) (int64, error) {
	return io.Copy(w, b)
}
