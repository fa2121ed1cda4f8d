// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/woozymasta/pathrules"
)

// extractCopyBufferSize sizes the per-worker copy buffer used during extraction.
const extractCopyBufferSize = 64 * 1024

// ExtractOptions configures Reader.Extract.
type ExtractOptions struct {
	// Entries restricts extraction to this subset; nil means every entry.
	Entries []*CentralEntry
	// Include/Exclude select entries by name pattern; nil Include matches
	// everything not explicitly excluded.
	Include []pathrules.Rule
	Exclude []pathrules.Rule
	// MaxWorkers bounds extraction concurrency; zero means GOMAXPROCS.
	MaxWorkers int
	// OnEntryDone is called after each entry finishes extracting.
	OnEntryDone func(entry *CentralEntry, written int64, outputPath string)
}

// extractWorkItem pairs an entry with its resolved, sanitized output path.
type extractWorkItem struct {
	entry   *CentralEntry
	relPath string
	relDir  string
}

// Extract writes selected entries to dstDir, fanning work out across
// MaxWorkers goroutines. Each worker opens its own independent stream via
// Reader.Open, so entries extract concurrently without contending on shared
// reader state. On failure it returns the first error encountered; entries
// that had already started may leave partial files behind.
func (r *Reader) Extract(ctx context.Context, dstDir string, opts ExtractOptions) error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()

	if closed {
		return ErrClosed
	}

	entries := opts.Entries
	if entries == nil {
		entries = r.Entries()
	}

	entries, err := applyExtractFilters(entries, opts)
	if err != nil {
		return err
	}
	entries = filterDirectories(entries)

	if len(entries) == 0 {
		return nil
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	workItems, err := prepareExtractWorkItems(entries)
	if err != nil {
		return err
	}
	if err := prepareExtractDirs(dstRootAbs, workItems); err != nil {
		return err
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(workItems) {
		workers = len(workItems)
	}

	return r.runExtractWorkers(ctx, dstRootAbs, workItems, workers, opts.OnEntryDone)
}

// applyExtractFilters narrows entries by the Include/Exclude patterns.
func applyExtractFilters(entries []*CentralEntry, opts ExtractOptions) ([]*CentralEntry, error) {
	if len(opts.Include) == 0 && len(opts.Exclude) == 0 {
		return entries, nil
	}

	rules := make([]pathrules.Rule, 0, len(opts.Include)+len(opts.Exclude))
	for _, r := range opts.Include {
		rules = append(rules, pathrules.Rule{Action: pathrules.ActionInclude, Pattern: r.Pattern})
	}
	for _, r := range opts.Exclude {
		rules = append(rules, pathrules.Rule{Action: pathrules.ActionExclude, Pattern: r.Pattern})
	}

	defaultAction := pathrules.ActionExclude
	if len(opts.Include) == 0 {
		defaultAction = pathrules.ActionInclude
	}

	matcher, err := newPathMatcher(rules, pathrules.MatcherOptions{DefaultAction: defaultAction})
	if err != nil {
		return nil, err
	}
	if matcher == nil {
		return entries, nil
	}

	out := make([]*CentralEntry, 0, len(entries))
	for _, e := range entries {
		if matcher.Match(e.Name) {
			out = append(out, e)
		}
	}

	return out, nil
}

// prepareExtractWorkItems sanitizes entry names into filesystem-relative paths.
func prepareExtractWorkItems(entries []*CentralEntry) ([]extractWorkItem, error) {
	items := make([]extractWorkItem, 0, len(entries))
	for _, e := range entries {
		sanitized, err := sanitizeExtractPath(e.Name)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.Name, err)
		}

		relPath := filepath.FromSlash(sanitized)
		relDir := filepath.Dir(relPath)
		if relDir == "." {
			relDir = ""
		}

		items = append(items, extractWorkItem{entry: e, relPath: relPath, relDir: relDir})
	}

	return items, nil
}

// prepareExtractDirs creates every unique parent directory work items need.
func prepareExtractDirs(dstRootAbs string, items []extractWorkItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.relDir == "" {
			continue
		}

		dirPath := filepath.Join(dstRootAbs, item.relDir)
		if _, ok := seen[dirPath]; ok {
			continue
		}

		seen[dirPath] = struct{}{}
		if err := os.MkdirAll(dirPath, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dirPath, err)
		}
	}

	return nil
}

// runExtractWorkers fans workItems out across workers goroutines.
func (r *Reader) runExtractWorkers(
	ctx context.Context,
	dstRootAbs string,
	items []extractWorkItem,
	workers int,
	onEntryDone func(entry *CentralEntry, written int64, outputPath string),
) error {
	taskCh := make(chan extractWorkItem, len(items))
	errCh := make(chan error, len(items))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			copyBuf := make([]byte, extractCopyBufferSize)
			for task := range taskCh {
				err := r.extractOne(dstRootAbs, task, copyBuf, onEntryDone)
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for _, item := range items {
		select {
		case <-ctx.Done():
			close(taskCh)
			wg.Wait()

			return ctx.Err()
		case taskCh <- item:
		}
	}

	close(taskCh)
	wg.Wait()
	close(errCh)

	var first error
	for err := range errCh {
		if err != nil && first == nil {
			first = err
		}
	}

	return first
}

// extractOne writes a single work item's decompressed payload to disk.
func (r *Reader) extractOne(
	dstRootAbs string,
	task extractWorkItem,
	copyBuf []byte,
	onEntryDone func(entry *CentralEntry, written int64, outputPath string),
) error {
	outPath := filepath.Join(dstRootAbs, task.relPath)

	rc, err := r.Open(task.entry)
	if err != nil {
		return fmt.Errorf("open %s: %w", task.entry.Name, err)
	}
	defer func() { _ = rc.Close() }()

	file, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", outPath, err)
	}

	written, copyErr := io.CopyBuffer(file, rc, copyBuf)
	closeErr := file.Close()

	if copyErr != nil {
		return fmt.Errorf("write %s: %w", outPath, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", outPath, closeErr)
	}

	if onEntryDone != nil {
		onEntryDone(task.entry, written, outPath)
	}

	return nil
}

