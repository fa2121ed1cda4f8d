// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

func TestUint16LERoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeUint16LE(&buf, 0xBEEF); err != nil {
		t.Fatalf("writeUint16LE: %v", err)
	}

	got, err := readUint16LE(&buf)
	if err != nil {
		t.Fatalf("readUint16LE: %v", err)
	}
	if got != 0xBEEF {
		t.Fatalf("got %#x, want %#x", got, 0xBEEF)
	}
}

func TestUint32LERoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := writeUint32LE(&buf, 0xDEADBEEF); err != nil {
		t.Fatalf("writeUint32LE: %v", err)
	}

	got, err := readUint32LE(&buf)
	if err != nil {
		t.Fatalf("readUint32LE: %v", err)
	}
	if got != 0xDEADBEEF {
		t.Fatalf("got %#x, want %#x", got, 0xDEADBEEF)
	}
}

func TestReadUint32LETruncated(t *testing.T) {
	t.Parallel()

	_, err := readUint32LE(bytes.NewReader([]byte{1, 2}))
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("err=%v, want ErrTruncated", err)
	}
}

func TestCheckFieldLen(t *testing.T) {
	t.Parallel()

	if _, err := checkFieldLen(maxFieldLen + 1); !errors.Is(err, ErrFieldTooLarge) {
		t.Fatalf("err=%v, want ErrFieldTooLarge", err)
	}

	got, err := checkFieldLen(10)
	if err != nil {
		t.Fatalf("checkFieldLen: %v", err)
	}
	if got != 10 {
		t.Fatalf("got %d, want 10", got)
	}
}

func TestCheckedUint32(t *testing.T) {
	t.Parallel()

	if _, err := checkedUint32(-1); !errors.Is(err, ErrSizeOverflow) {
		t.Fatalf("err=%v, want ErrSizeOverflow for negative value", err)
	}
	if _, err := checkedUint32(int64(maxClassicSize) + 1); !errors.Is(err, ErrSizeOverflow) {
		t.Fatalf("err=%v, want ErrSizeOverflow for over-cap value", err)
	}

	got, err := checkedUint32(42)
	if err != nil {
		t.Fatalf("checkedUint32: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestCRCAccumulator(t *testing.T) {
	t.Parallel()

	crc := newCRC32()
	if _, err := crc.Write([]byte("123456789")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	const wantCheckValue = 0xCBF43926 // the standard CRC-32/ISO-HDLC check value
	if got := crc.Sum32(); got != wantCheckValue {
		t.Fatalf("Sum32=%#x, want %#x", got, wantCheckValue)
	}
}

func TestDOSTimeRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []time.Time{
		time.Date(2024, time.March, 15, 10, 30, 42, 0, time.UTC),
		time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2107, time.December, 31, 23, 59, 58, 0, time.UTC),
	}

	for _, want := range cases {
		dos := timeToDOSTime(want)
		got := dosTimeToTime(dos)

		wantTruncated := want.Truncate(2 * time.Second)
		if !got.Equal(wantTruncated) {
			t.Fatalf("dosTimeToTime(timeToDOSTime(%v))=%v, want %v", want, got, wantTruncated)
		}
	}
}

func TestDOSTimeOutOfRangeClampsToEpoch(t *testing.T) {
	t.Parallel()

	before1980 := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := timeToDOSTime(before1980); got != timeToDOSTime(canonicalDOSEpoch) {
		t.Fatalf("timeToDOSTime(pre-1980)=%#x, want canonical epoch encoding", got)
	}
}

func TestDOSTimeMalformedFieldFallsBackToEpoch(t *testing.T) {
	t.Parallel()

	// day=0 is invalid; dosTimeToTime must not panic or fabricate a date.
	got := dosTimeToTime(0)
	if !got.Equal(canonicalDOSEpoch) {
		t.Fatalf("dosTimeToTime(0)=%v, want canonical epoch", got)
	}
}

func TestInflateDeflateRoundTrip(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 200)

	var compressed bytes.Buffer

	df, err := newDeflateBuf(&compressed, DefaultCompressionLevel)
	if err != nil {
		t.Fatalf("newDeflateBuf: %v", err)
	}
	if _, err := df.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}

	wantCRC, wantSize, err := df.finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if wantSize != uint32(len(payload)) {
		t.Fatalf("wantSize=%d, want %d", wantSize, len(payload))
	}

	inf := newInflateBuf(&compressed)

	got, err := io.ReadAll(inf)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("inflate output does not match original payload")
	}

	gotCRC, gotSize, err := inf.finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if gotCRC != wantCRC {
		t.Fatalf("gotCRC=%#x, want %#x", gotCRC, wantCRC)
	}
	if gotSize != wantSize {
		t.Fatalf("gotSize=%d, want %d", gotSize, wantSize)
	}
}

func TestNormalizeCompressionLevel(t *testing.T) {
	t.Parallel()

	cases := map[int]int{
		0:  DefaultCompressionLevel,
		-5: MinCompressionLevel,
		1:  1,
		9:  9,
		20: MaxCompressionLevel,
	}

	for in, want := range cases {
		if got := normalizeCompressionLevel(in); got != want {
			t.Fatalf("normalizeCompressionLevel(%d)=%d, want %d", in, got, want)
		}
	}
}
