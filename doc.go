// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

/*
Package zip provides read, extract, write, and edit operations for PKZIP
archives. It is designed for streaming workflows: Writer accepts a plain
io.Writer plus io.Seeker, and Reader/Extract stream entry payloads without
loading a whole archive into memory.

Only the classic (pre-ZIP64, single-volume, unencrypted) subset of the
format is supported. Entries whose local header is flagged with a trailing
data descriptor are rejected when opened (ErrDataDescriptor). Encrypted
entries, spanned archives, and ZIP64 extensions are not detected on read.

# Reading

Open an archive and list or read entries:

	r, err := zip.OpenReader("bundle.zip")
	if err != nil {
	    return err
	}
	defer r.Close()

	for _, e := range r.Entries() {
	    rc, err := r.Open(e)
	    if err != nil {
	        return err
	    }
	    _, err = io.Copy(dst, rc)
	    rc.Close()
	    if err != nil {
	        return err
	    }
	}

For metadata-only or single-entry reads without keeping a Reader around:

	entries, err := zip.ListEntries("bundle.zip")
	comment, err := zip.ReadComment("bundle.zip")
	data, err := zip.ReadEntry("bundle.zip", "config.json")

Reader.Open is safe to call concurrently across distinct entries: each call
opens its own independent section over the archive, so extraction can fan
out across goroutines without synchronizing on shared reader state.

# Extracting

Extract selected entries to a directory, fanning work out across workers:

	err := r.Extract(ctx, "out/", zip.ExtractOptions{
	    MaxWorkers: 4,
	    Exclude: []pathrules.Rule{
	        {Action: pathrules.ActionExclude, Pattern: "*.tmp"},
	    },
	})

Extracted paths are always sanitized against path traversal; an entry whose
name escapes the output directory (via "..", an absolute path, or a
Windows drive prefix) fails extraction rather than writing outside it.

# Writing

Writer streams entries to a seekable sink, patching each entry's local
header once its size and CRC-32 are known:

	f, err := os.Create("bundle.zip")
	if err != nil {
	    return err
	}
	defer f.Close()

	w, err := zip.NewWriter(f)
	if err != nil {
	    return err
	}

	if err := w.PutNextEntry(zip.PutOptions{Name: "hello.txt", Method: zip.Deflated}); err != nil {
	    return err
	}
	if _, err := w.Write([]byte("hello\n")); err != nil {
	    return err
	}
	if err := w.Finish(); err != nil {
	    return err
	}

PutNextEntry implicitly closes any entry still open, so CloseEntry only
needs to be called explicitly when an entry must be finalized before
inspecting w.Entries() mid-stream.

# Editing

Editor stages Add/Replace/Delete/DeleteDir operations against an existing
archive and applies them as a single rewrite, carrying over every entry it
does not touch without decompressing and recompressing it:

	editor, err := zip.OpenEditor("bundle.zip", zip.EditOptions{
	    BackupKeep: 1,
	    WriterOptions: zip.WriterOptions{
	        Compress: []pathrules.Rule{{Action: pathrules.ActionInclude, Pattern: "*.json"}},
	    },
	})
	if err != nil {
	    return err
	}
	if err := editor.Replace(zip.Input{
	    Path: "config.json",
	    Open: func() (io.ReadCloser, error) { return os.Open("config.json") },
	}); err != nil {
	    return err
	}
	if err := editor.Commit(); err != nil {
	    return err
	}

Commit moves the source archive aside to a backup before rewriting it, and
restores that backup automatically if the rewrite fails partway through.

# GZIP

The gzip subpackage provides the equivalent single-member GZIP framing
(gzip.Reader/gzip.Writer) over the same DEFLATE engine.
*/
package zip
