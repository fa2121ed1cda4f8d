// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestEditorAddReplaceDeleteCommit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "edit.zip")
	buildTestArchive(t, path, map[string][]byte{
		"keep.txt":   []byte("unchanged"),
		"remove.txt": []byte("goodbye"),
		"old.txt":    []byte("stale content"),
	}, WriterOptions{Comment: "editable archive"})

	editor, err := OpenEditor(path, EditOptions{BackupKeep: 1})
	if err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}

	if err := editor.Add(Input{Path: "new.txt", Open: openBytes([]byte("brand new"))}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := editor.Replace(Input{Path: "old.txt", Open: openBytes([]byte("fresh content"))}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := editor.Delete("remove.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err := editor.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer func() { _ = r.Close() }()

	if r.Comment() != "editable archive" {
		t.Fatalf("Comment()=%q, want carried-over comment", r.Comment())
	}

	want := map[string]string{
		"keep.txt": "unchanged",
		"new.txt":  "brand new",
		"old.txt":  "fresh content",
	}
	if r.Len() != len(want) {
		t.Fatalf("Len()=%d, want %d (remove.txt should be gone)", r.Len(), len(want))
	}

	for name, data := range want {
		rc, err := r.OpenName(name)
		if err != nil {
			t.Fatalf("OpenName(%s): %v", name, err)
		}

		got, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("ReadAll(%s): %v", name, err)
		}
		if string(got) != data {
			t.Fatalf("entry %s = %q, want %q", name, got, data)
		}
	}

	if _, ok := r.GetEntry("remove.txt", MatchExact); ok {
		t.Fatal("remove.txt should have been deleted")
	}

	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("backup should be kept when BackupKeep > 0: %v", err)
	}
}

func TestEditorDeleteDirRemovesSubtree(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deletedir.zip")
	buildTestArchive(t, path, map[string][]byte{
		"assets/a.png":   []byte("a"),
		"assets/b.png":   []byte("b"),
		"src/main.go":    []byte("package main"),
	}, WriterOptions{})

	editor, err := OpenEditor(path, EditOptions{})
	if err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}
	if err := editor.DeleteDir("assets"); err != nil {
		t.Fatalf("DeleteDir: %v", err)
	}
	if err := editor.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer func() { _ = r.Close() }()

	if r.Len() != 1 {
		t.Fatalf("Len()=%d, want 1 (only src/main.go should remain)", r.Len())
	}
	if _, ok := r.GetEntry("src/main.go", MatchExact); !ok {
		t.Fatal("src/main.go should have survived DeleteDir(assets)")
	}
}

func TestEditorAddRejectsDuplicatePath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dup.zip")
	buildTestArchive(t, path, map[string][]byte{"existing.txt": []byte("x")}, WriterOptions{})

	editor, err := OpenEditor(path, EditOptions{})
	if err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}
	if err := editor.Add(Input{Path: "existing.txt", Open: openBytes([]byte("y"))}); err != nil {
		t.Fatalf("Add should stage without error: %v", err)
	}

	if err := editor.Commit(); !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("Commit err=%v, want ErrDuplicateEntry", err)
	}

	// The original archive must still be intact after a failed commit.
	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader after failed commit: %v", err)
	}
	defer func() { _ = r.Close() }()

	if r.Len() != 1 {
		t.Fatalf("Len()=%d, want 1 (archive should be restored from backup)", r.Len())
	}
}

func TestEditorReplaceRejectsMissingPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.zip")
	buildTestArchive(t, path, map[string][]byte{"a.txt": []byte("x")}, WriterOptions{})

	editor, err := OpenEditor(path, EditOptions{})
	if err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}
	if err := editor.Replace(Input{Path: "nope.txt", Open: openBytes([]byte("y"))}); err != nil {
		t.Fatalf("Replace should stage without error: %v", err)
	}

	if err := editor.Commit(); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("Commit err=%v, want ErrEntryNotFound", err)
	}
}

func TestEditorRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	editor, err := OpenEditor(filepath.Join(t.TempDir(), "irrelevant.zip"), EditOptions{})
	if err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}

	if err := editor.Add(Input{Path: "", Open: openBytes(nil)}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err=%v, want ErrEmptyName", err)
	}
}

func TestOpenEditorRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := OpenEditor("", EditOptions{}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err=%v, want ErrEmptyName", err)
	}
}

func TestEditorCarriesOverUnmodifiedEntryVerbatim(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "carryover.zip")
	payload := bytes.Repeat([]byte("carried over unchanged "), 100)
	buildTestArchive(t, path, map[string][]byte{"big.txt": payload}, WriterOptions{})

	before, err := ListEntries(path)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}

	editor, err := OpenEditor(path, EditOptions{})
	if err != nil {
		t.Fatalf("OpenEditor: %v", err)
	}
	if err := editor.Add(Input{Path: "extra.txt", Open: openBytes([]byte("extra"))}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := editor.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	after, err := ListEntries(path)
	if err != nil {
		t.Fatalf("ListEntries after commit: %v", err)
	}

	var afterBig *CentralEntry
	for _, e := range after {
		if e.Name == "big.txt" {
			afterBig = e
		}
	}
	if afterBig == nil {
		t.Fatal("big.txt missing after commit")
	}
	if afterBig.CompressedSize != before[0].CompressedSize || afterBig.CRC32 != before[0].CRC32 {
		t.Fatalf("carried-over entry changed: got %+v, want unchanged from %+v", afterBig, before[0])
	}

	data, err := ReadEntry(path, "big.txt")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatal("carried-over payload content changed")
	}
}
