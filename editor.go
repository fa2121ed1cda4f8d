// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Input describes one entry to add or replace via Editor.
type Input struct {
	// Path is the archive-internal name.
	Path string
	// Open returns a fresh stream of the entry's uncompressed content.
	Open func() (io.ReadCloser, error)
	// Level is the DEFLATE level used when the writer's compression policy
	// selects Deflated for this entry. Ignored when it selects Stored.
	Level int
	// Modified is the entry timestamp.
	Modified time.Time
	// SizeHint is the content length in bytes, if known ahead of time. Zero
	// means unknown; the writer's compression policy then decides from the
	// path pattern alone, since the size bound can't be evaluated before
	// streaming begins.
	SizeHint int64
}

// EditOptions configures Editor.Commit.
type EditOptions struct {
	// BackupKeep is how many prior archive generations to retain as
	// path+".bak", path+".bak.1", etc. Zero removes the backup on success.
	BackupKeep int
	// WriterOptions governs the rewritten archive, in particular its
	// compression policy for Added/Replaced entries (WriterOptions.Compress).
	// Carried-over entries bypass this policy entirely: their existing
	// compression is preserved verbatim by Writer.PutRaw.
	WriterOptions WriterOptions
}

func (o *EditOptions) applyDefaults() {
	if o.BackupKeep < 0 {
		o.BackupKeep = 0
	}
}

// editOperationKind identifies a staged Editor operation.
type editOperationKind uint8

const (
	editOperationAdd editOperationKind = iota + 1
	editOperationReplace
	editOperationDelete
	editOperationDeleteDir
)

type editOperation struct {
	kind   editOperationKind
	inputs []Input
	paths  []string
}

// planItem is a single resolved entry in a commit's final layout: either a
// byte-for-byte carryover from the source archive, or a fresh input to
// compress and write.
type planItem struct {
	path   string
	source *CentralEntry
	input  *Input
}

// Editor accumulates Add/Replace/Delete/DeleteDir operations against an
// on-disk archive and applies them as a single rewrite on Commit. The
// source archive is moved aside to a backup before the rewrite begins and
// restored if the rewrite fails partway through.
type Editor struct {
	path string
	opts EditOptions
	ops  []editOperation
}

// OpenEditor prepares a staged editor for the archive at path. The archive
// is not opened until Commit.
func OpenEditor(path string, opts EditOptions) (*Editor, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyName
	}

	opts.applyDefaults()

	return &Editor{path: path, opts: opts}, nil
}

// Add schedules new entries; Commit fails if any path already exists.
func (e *Editor) Add(inputs ...Input) error {
	normalized, err := normalizeEditorInputs(inputs)
	if err != nil {
		return err
	}
	if len(normalized) == 0 {
		return nil
	}

	e.ops = append(e.ops, editOperation{kind: editOperationAdd, inputs: normalized})

	return nil
}

// Replace schedules existing entries to be overwritten; Commit fails if any
// path is not already present.
func (e *Editor) Replace(inputs ...Input) error {
	normalized, err := normalizeEditorInputs(inputs)
	if err != nil {
		return err
	}
	if len(normalized) == 0 {
		return nil
	}

	e.ops = append(e.ops, editOperation{kind: editOperationReplace, inputs: normalized})

	return nil
}

// Delete schedules exact-path removal.
func (e *Editor) Delete(paths ...string) error {
	normalized, err := normalizeEditorPaths(paths)
	if err != nil {
		return err
	}
	if len(normalized) == 0 {
		return nil
	}

	e.ops = append(e.ops, editOperation{kind: editOperationDelete, paths: normalized})

	return nil
}

// DeleteDir schedules removal of every entry under prefix.
func (e *Editor) DeleteDir(prefixes ...string) error {
	normalized, err := normalizeEditorPaths(prefixes)
	if err != nil {
		return err
	}
	if len(normalized) == 0 {
		return nil
	}

	e.ops = append(e.ops, editOperation{kind: editOperationDeleteDir, paths: normalized})

	return nil
}

// Commit applies every staged operation as one rewrite transaction.
func (e *Editor) Commit() error {
	backupPath := e.path + ".bak"
	if err := prepareBackupSlot(backupPath, e.opts.BackupKeep); err != nil {
		return err
	}

	if err := os.Rename(e.path, backupPath); err != nil {
		return fmt.Errorf("move archive to backup: %w", err)
	}

	if err := e.commitFromBackup(backupPath); err != nil {
		if rollbackErr := rollbackFromBackup(e.path, backupPath); rollbackErr != nil {
			return fmt.Errorf("%w (rollback failed: %w)", err, rollbackErr)
		}

		return err
	}

	if e.opts.BackupKeep == 0 {
		if err := removeIfExists(backupPath); err != nil {
			return fmt.Errorf("remove backup: %w", err)
		}
	}

	return nil
}

// commitFromBackup rewrites the archive from its backed-up source.
func (e *Editor) commitFromBackup(backupPath string) error {
	src, err := OpenReader(backupPath)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer func() { _ = src.Close() }()

	plan, err := buildEditPlan(src.Entries(), e.ops)
	if err != nil {
		return err
	}

	dst, err := os.OpenFile(e.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create destination archive: %w", err)
	}

	writerOpts := e.opts.WriterOptions
	writerOpts.Comment = src.Comment()

	if err := writeEditPlan(dst, src, plan, writerOpts); err != nil {
		_ = dst.Close()

		return err
	}

	if err := dst.Sync(); err != nil {
		_ = dst.Close()

		return fmt.Errorf("sync destination archive: %w", err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("close destination archive: %w", err)
	}

	return nil
}

// writeEditPlan streams every planned entry into a fresh Writer over dst.
// Carried-over entries are copied verbatim (no decompress/recompress round
// trip); fresh inputs go through Writer.Add, which applies opts' compression
// policy the same way a plain Writer session would.
func writeEditPlan(dst *os.File, src *Reader, plan []planItem, opts WriterOptions) error {
	w, err := NewWriterWithOptions(dst, opts)
	if err != nil {
		return err
	}

	for _, item := range plan {
		if item.source != nil {
			if err := copySourceEntry(w, src, item.source); err != nil {
				return err
			}

			continue
		}

		if err := w.Add(*item.input); err != nil {
			return err
		}
	}

	return w.Finish()
}

// copySourceEntry copies one entry's raw compressed payload from src into w
// without touching its compression.
func copySourceEntry(w *Writer, src *Reader, entry *CentralEntry) error {
	rc, err := src.openRaw(entry)
	if err != nil {
		return fmt.Errorf("entry %s: %w", entry.Name, err)
	}
	defer func() { _ = rc.Close() }()

	return w.PutRaw(entry.LocalEntry, entry.ExternalAttrs, rc)
}

// normalizeEditorInputs validates and canonicalizes an Add/Replace input list.
func normalizeEditorInputs(inputs []Input) ([]Input, error) {
	out := make([]Input, 0, len(inputs))
	for _, in := range inputs {
		name := NormalizePath(in.Path)
		if name == "" {
			return nil, fmt.Errorf("%w: input path %q", ErrEmptyName, in.Path)
		}

		in.Path = name
		out = append(out, in)
	}

	return out, nil
}

// normalizeEditorPaths validates and canonicalizes a Delete/DeleteDir path list.
func normalizeEditorPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, raw := range paths {
		name := NormalizePath(raw)
		if name == "" {
			return nil, fmt.Errorf("%w: %q", ErrEmptyName, raw)
		}

		out = append(out, name)
	}

	return out, nil
}

// buildEditPlan applies staged operations over the source archive's entries
// and returns the final, sorted write plan.
func buildEditPlan(sourceEntries []*CentralEntry, ops []editOperation) ([]planItem, error) {
	state := make(map[string]planItem, len(sourceEntries))
	for _, e := range sourceEntries {
		key := editorPathKey(e.Name)
		if _, exists := state[key]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEntry, e.Name)
		}

		state[key] = planItem{path: e.Name, source: e}
	}

	for _, op := range ops {
		switch op.kind {
		case editOperationAdd:
			if err := applyEditAdd(state, op.inputs); err != nil {
				return nil, err
			}
		case editOperationReplace:
			if err := applyEditReplace(state, op.inputs); err != nil {
				return nil, err
			}
		case editOperationDelete:
			applyEditDelete(state, op.paths)
		case editOperationDeleteDir:
			applyEditDeleteDir(state, op.paths)
		default:
			return nil, fmt.Errorf("unknown edit operation kind: %d", op.kind)
		}
	}

	plan := make([]planItem, 0, len(state))
	for _, item := range state {
		plan = append(plan, item)
	}

	sort.Slice(plan, func(i, j int) bool { return plan[i].path < plan[j].path })

	return plan, nil
}

func applyEditAdd(state map[string]planItem, inputs []Input) error {
	for i := range inputs {
		key := editorPathKey(inputs[i].Path)
		if _, exists := state[key]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateEntry, inputs[i].Path)
		}

		state[key] = planItem{path: inputs[i].Path, input: &inputs[i]}
	}

	return nil
}

func applyEditReplace(state map[string]planItem, inputs []Input) error {
	for i := range inputs {
		key := editorPathKey(inputs[i].Path)
		if _, exists := state[key]; !exists {
			return fmt.Errorf("%w: %q", ErrEntryNotFound, inputs[i].Path)
		}

		state[key] = planItem{path: inputs[i].Path, input: &inputs[i]}
	}

	return nil
}

func applyEditDelete(state map[string]planItem, paths []string) {
	for _, p := range paths {
		delete(state, editorPathKey(p))
	}
}

func applyEditDeleteDir(state map[string]planItem, prefixes []string) {
	for _, prefix := range prefixes {
		prefixKey := editorPathKey(prefix)
		for key := range state {
			if key == prefixKey || strings.HasPrefix(key, prefixKey+"/") {
				delete(state, key)
			}
		}
	}
}

func editorPathKey(p string) string {
	return NormalizePath(p)
}

// prepareBackupSlot rotates or removes existing backup generations before a
// new commit begins.
func prepareBackupSlot(backupPath string, keep int) error {
	switch keep {
	case 0, 1:
		return removeIfExists(backupPath)
	default:
		oldest := fmt.Sprintf("%s.%d", backupPath, keep-1)
		if err := removeIfExists(oldest); err != nil {
			return err
		}

		for i := keep - 2; i >= 1; i-- {
			from := fmt.Sprintf("%s.%d", backupPath, i)
			to := fmt.Sprintf("%s.%d", backupPath, i+1)
			if err := renameIfExists(from, to); err != nil {
				return err
			}
		}

		return renameIfExists(backupPath, backupPath+".1")
	}
}

func renameIfExists(from, to string) error {
	_, err := os.Stat(from)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", from, err)
	}

	if err := removeIfExists(to); err != nil {
		return err
	}

	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s to %s: %w", from, to, err)
	}

	return nil
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("remove %s: %w", path, err)
}

func rollbackFromBackup(path, backupPath string) error {
	_ = os.Remove(path)

	if err := os.Rename(backupPath, path); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	return nil
}
