// Package vfs is component C1: it maps paths to stable FileIDs, stores file
// contents, and exposes lock-free read snapshots to many concurrent
// readers while serializing writes through a single path. Grounded on
// internal/core/file_content_store.go's "immutable snapshot behind an
// atomic.Value, writes funneled through one path" design, simplified from
// the teacher's channel-actor form to a mutex (the core has no need for
// FileContentStore's buffered-channel backpressure — writes here are rare
// editor events, not a bulk indexing pipeline).
package vfs

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
)

// FileRecord holds one file's text plus the pre-split line-offset table
// used to turn a byte offset into (line, column) without rescanning, the
// same shape as the teacher's FileContent (LineOffsets + FastHash).
type FileRecord struct {
	ID          ids.FileID
	Path        string
	Text        string
	LineOffsets []uint32 // LineOffsets[i] = byte offset where line i starts
	Hash        uint64   // xxhash of Text, for early-cutoff comparisons
}

// Snapshot is an immutable view of the VFS at one revision. Multiple
// snapshots may be held and read concurrently; none of them observe
// writes that happen after they were taken.
type Snapshot struct {
	Revision uint64
	files    map[ids.FileID]*FileRecord
	byPath   map[string]ids.FileID
	roots    []string
}

// File returns the record for id, or (nil, false) if id is unknown at
// this revision (never loaded, or deleted before this snapshot was taken).
func (s *Snapshot) File(id ids.FileID) (*FileRecord, bool) {
	f, ok := s.files[id]
	return f, ok
}

// FileByPath resolves a path to a FileID at this revision.
func (s *Snapshot) FileByPath(path string) (ids.FileID, bool) {
	id, ok := s.byPath[path]
	return id, ok
}

// Roots returns the configured workspace source roots.
func (s *Snapshot) Roots() []string { return s.roots }

// AllFiles returns every (FileID, path) pair visible at this revision.
// Order is unspecified; callers that need determinism should sort.
func (s *Snapshot) AllFiles() map[ids.FileID]string {
	out := make(map[ids.FileID]string, len(s.files))
	for id, f := range s.files {
		out[id] = f.Path
	}
	return out
}

// VFS is the single-writer/many-reader file store (spec.md §5). Writes
// (SetFileText/DeleteFile/SetRoots) are serialized by mu; Snapshot() hands
// out a read-only *Snapshot via atomic.Value, so readers never block a
// writer and never see a half-updated state.
type VFS struct {
	interner *ids.Interner

	mu       sync.Mutex // serializes writers only
	revision atomic.Uint64
	current  atomic.Value // *Snapshot
}

func New(interner *ids.Interner) *VFS {
	v := &VFS{interner: interner}
	v.current.Store(&Snapshot{
		files:  make(map[ids.FileID]*FileRecord),
		byPath: make(map[string]ids.FileID),
	})
	return v
}

// Snapshot returns the current immutable view. Safe to call from any
// number of goroutines concurrently with writers.
func (v *VFS) Snapshot() *Snapshot {
	return v.current.Load().(*Snapshot)
}

// SetFileText ingests (or updates) a file's text and bumps the revision.
// Line endings are preserved verbatim in Text; offsets are computed over
// both "\n" and "\r\n" so later components needn't special-case either
// (spec.md §6: "lines separated by \n or \r\n").
func (v *VFS) SetFileText(path string, text string) ids.FileID {
	id := v.interner.InternFile(path)

	v.mu.Lock()
	defer v.mu.Unlock()

	prev := v.current.Load().(*Snapshot)
	next := cloneSnapshot(prev)

	rec := &FileRecord{
		ID:          id,
		Path:        path,
		Text:        text,
		LineOffsets: computeLineOffsets(text),
		Hash:        xxhash.Sum64String(text),
	}
	next.files[id] = rec
	next.byPath[path] = id
	next.Revision = v.revision.Add(1)

	v.current.Store(next)
	return id
}

// DeleteFile removes a file from the VFS. Its FileID remains interned
// (never reused) but is no longer reachable from any snapshot taken after
// this call.
func (v *VFS) DeleteFile(path string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	prev := v.current.Load().(*Snapshot)
	id, ok := prev.byPath[path]
	if !ok {
		return
	}

	next := cloneSnapshot(prev)
	delete(next.files, id)
	delete(next.byPath, path)
	next.Revision = v.revision.Add(1)

	v.current.Store(next)
}

// SetRoots replaces the workspace's source roots (used to partition the
// include graph into projects; see internal/includegraph).
func (v *VFS) SetRoots(roots []string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	prev := v.current.Load().(*Snapshot)
	next := cloneSnapshot(prev)
	next.roots = append([]string{}, roots...)
	next.Revision = v.revision.Add(1)

	v.current.Store(next)
}

// Revision returns the VFS's current revision number.
func (v *VFS) Revision() uint64 { return v.revision.Load() }

func cloneSnapshot(prev *Snapshot) *Snapshot {
	next := &Snapshot{
		files:  make(map[ids.FileID]*FileRecord, len(prev.files)),
		byPath: make(map[string]ids.FileID, len(prev.byPath)),
		roots:  prev.roots,
	}
	for k, val := range prev.files {
		next.files[k] = val
	}
	for k, val := range prev.byPath {
		next.byPath[k] = val
	}
	return next
}

// computeLineOffsets returns the byte offset of the start of each line.
// Offsets[0] is always 0. Both "\n" and "\r\n" terminators advance to the
// byte right after the "\n", so raw-line-count invariants (spec.md §8:
// "preprocessed line count equals raw line count") hold regardless of
// line-ending style.
func computeLineOffsets(text string) []uint32 {
	offsets := make([]uint32, 1, strings.Count(text, "\n")+1)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, uint32(i+1))
		}
	}
	return offsets
}

// LineCol converts a byte offset into a 0-based (line, column) pair using
// the precomputed LineOffsets table (binary search, O(log n)).
func (f *FileRecord) LineCol(offset int) (line, col int) {
	lo, hi := 0, len(f.LineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if int(f.LineOffsets[mid]) <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, offset - int(f.LineOffsets[lo])
}
