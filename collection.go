// SPDX-License-Identifier: MIT
// Copyright (c) 2026 zipcore contributors

package zip

import "io"

// Collection is the read-only facade shared by every archive-backed entry
// source this package exposes: a named, ordered set of entries that can be
// opened for streaming and looked up by name. ZipCollection implements it
// directly over a parsed archive. EntrySource exists so a caller can present
// a plain directory tree (or any other entry store) through the same
// interface, e.g. to diff an archive against its unpacked form.
type Collection interface {
	// Entries returns the collection's entries in a stable order.
	Entries() []*CentralEntry
	// GetEntry looks up an entry by name under the given match mode.
	GetEntry(name string, mode MatchMode) (*CentralEntry, bool)
	// Open returns a stream of entry's content.
	Open(entry *CentralEntry) (io.ReadCloser, error)
}

// EntrySource adapts a non-archive entry store (a directory tree, an
// in-memory map, a network-backed store) to the Collection interface. A
// conforming implementation can be read by anything written against
// Collection without depending on this package's archive internals.
type EntrySource interface {
	Collection
	// Close releases any resources the source holds open.
	Close() error
}

// ZipCollection adapts a Reader to the Collection interface.
type ZipCollection struct {
	r *Reader
}

// NewZipCollection wraps r as a Collection.
func NewZipCollection(r *Reader) *ZipCollection {
	return &ZipCollection{r: r}
}

// Entries returns the archive's entries in central directory order.
func (c *ZipCollection) Entries() []*CentralEntry {
	return c.r.Entries()
}

// GetEntry looks up an entry by name under the given match mode.
func (c *ZipCollection) GetEntry(name string, mode MatchMode) (*CentralEntry, bool) {
	return c.r.GetEntry(name, mode)
}

// Open returns a stream of entry's decompressed content.
func (c *ZipCollection) Open(entry *CentralEntry) (io.ReadCloser, error) {
	return c.r.Open(entry)
}

// Close closes the underlying Reader.
func (c *ZipCollection) Close() error {
	return c.r.Close()
}
