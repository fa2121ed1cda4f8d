// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

/*
Package gzip implements single-member GZIP framing: a 10-byte fixed header
(optionally followed by a NUL-terminated filename and/or comment), a raw
DEFLATE body, and an 8-byte trailer (CRC-32 then uncompressed size modulo
2^32).

	w, err := gzip.NewWriter(dst, gzip.Header{Name: "report.txt"})
	if err != nil {
	    return err
	}
	if _, err := w.Write(data); err != nil {
	    return err
	}
	if err := w.Close(); err != nil {
	    return err
	}

	r, err := gzip.NewReader(src)
	if err != nil {
	    return err
	}
	defer r.Close()
	decoded, err := io.ReadAll(r)

Concatenated multi-member streams are rejected on read (ErrMultiMember):
only the decoded payload of the first member is ever returned, and any
byte following the first member's trailer is treated as an error rather
than silently ignored.
*/
package gzip
