// Package query is component C11: the incremental query engine that
// wires every leaf component (C1-C10) into one memoized, single-writer/
// many-reader database (spec.md §4.8, §5). Grounded on the
// single-writer/atomic-snapshot discipline internal/vfs.VFS already
// implements (itself modeled on the teacher's
// internal/core/file_content_store.go), and on golang.org/x/sync's
// presence in the example corpus for request coalescing (see the
// Database.sf field).
package query

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/body"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/config"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/dataqueries"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/defmap"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/includegraph"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/metrics"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/preprocessor"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/resolver"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/splog"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/syntax"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/vfs"
)

// Database owns every per-revision cache and is the sole entry point the
// query egress surface (spec.md §6) is built from. Mutation only ever
// reaches it through db.VFS (SetFileText/DeleteFile/SetRoots); every
// method here is a read, safe to call from multiple goroutines.
type Database struct {
	VFS      *vfs.VFS
	Interner *ids.Interner
	Config   *config.Config
	Stats    *metrics.QueryStats

	mu       sync.Mutex
	revision uint64

	pre      map[ids.FileID]*preprocessor.Result
	trees    map[ids.FileID]*itemtree.ItemTree
	defmaps  map[ids.FileID]*defmap.FileDefMap
	graph    *includegraph.Graph
	resolver *resolver.Resolver
	store    *dataqueries.Store

	// inFlight guards against re-entrant recursive preprocessing for a
	// macro-collection chain that cycles back to a file already being
	// computed in the current call (spec.md §8 scenario 6: include
	// cycles terminate rather than recursing forever).
	inFlight map[ids.FileID]bool

	// sf collapses concurrent cache-miss recomputation requests for the
	// same key onto one execution (spec.md §4.8's Go-specific note: the
	// query engine uses golang.org/x/sync/singleflight the way the rest
	// of the corpus uses it for request coalescing), so two goroutines
	// racing to preprocess the same just-edited file don't both redo the
	// work.
	sf singleflight.Group
}

// New builds an empty Database. cfg supplies include directories and the
// macro-expansion depth cap; config.Default() is a valid zero-config
// fallback (spec.md §1: the core never requires a config file).
func New(cfg *config.Config) *Database {
	interner := ids.NewInterner()
	db := &Database{
		Interner: interner,
		Config:   cfg,
		Stats:    metrics.NewQueryStats(),
		VFS:      vfs.New(interner),
	}
	db.resetCachesLocked()
	return db
}

func (db *Database) resetCachesLocked() {
	db.pre = map[ids.FileID]*preprocessor.Result{}
	db.trees = map[ids.FileID]*itemtree.ItemTree{}
	db.defmaps = map[ids.FileID]*defmap.FileDefMap{}
	db.graph = nil
	db.resolver = resolver.New(db, nil)
	db.store = dataqueries.NewStore(db, db.Interner, db.resolver)
}

// ensureFreshLocked wipes every per-revision cache the moment the VFS revision
// moves (spec.md §4.8: "on any file change... queries downstream are
// lazily recomputed"; this Database recomputes wholesale rather than
// tracking a fine-grained dependency DAG, the same tradeoff
// internal/includegraph.Build documents for rebuilding the include graph
// from scratch). Must be called with db.mu held.
func (db *Database) ensureFreshLocked() {
	rev := db.VFS.Revision()
	if rev == db.revision {
		return
	}
	db.revision = rev
	db.Stats.RecordRevision()
	db.resetCachesLocked()
}

// PreprocessFile runs (or returns the memoized) preprocessing result for
// f (spec.md §4.1's preprocess_file). Recursively preprocesses and merges
// macros from every #include encountered, guarding against include
// cycles via inFlight.
func (db *Database) PreprocessFile(f ids.FileID) (*preprocessor.Result, error) {
	db.mu.Lock()
	db.ensureFreshLocked()
	if r, ok := db.pre[f]; ok {
		db.mu.Unlock()
		db.Stats.RecordHit()
		return r, nil
	}
	if db.inFlight == nil {
		db.inFlight = map[ids.FileID]bool{}
	}
	if db.inFlight[f] {
		// A cycle: return an empty-but-valid result rather than
		// recursing forever (spec.md §8 scenario 6). Not cached, so the
		// file currently further up the call stack still completes
		// normally and its own (correct) result gets cached once that
		// frame returns.
		db.mu.Unlock()
		return &preprocessor.Result{Macros: preprocessor.MacroMap{}}, nil
	}
	db.inFlight[f] = true
	db.mu.Unlock()

	defer func() {
		db.mu.Lock()
		delete(db.inFlight, f)
		db.mu.Unlock()
	}()

	snap := db.VFS.Snapshot()
	rec, ok := snap.File(f)
	if !ok {
		return nil, ErrUnknownFile
	}

	splog.Preprocessor("preprocessing %s", rec.Path)
	result := preprocessor.PreprocessFile(
		preprocessor.FileInput{ID: f, Path: rec.Path, Text: rec.Text},
		preprocessor.Options{
			MaxExpansionDepth: db.Config.MacroExpansionDepth,
			Resolver:          &includeResolver{db: db, snap: snap},
			CollectMacros: func(target preprocessor.FileInput) preprocessor.MacroMap {
				r, err := db.PreprocessFile(target.ID)
				if err != nil {
					return nil
				}
				return r.Macros
			},
		},
	)

	db.mu.Lock()
	db.pre[f] = result
	db.mu.Unlock()
	db.Stats.RecordMiss()
	return result, nil
}

// ItemTree returns f's memoized item tree (spec.md §4.2), lowering it
// from the parsed preprocessed text on first access. Satisfies
// resolver.FileProvider / dataqueries.Files / body.Files.
func (db *Database) ItemTree(f ids.FileID) (*itemtree.ItemTree, bool) {
	db.mu.Lock()
	db.ensureFreshLocked()
	if t, ok := db.trees[f]; ok {
		db.mu.Unlock()
		db.Stats.RecordHit()
		return t, true
	}
	db.mu.Unlock()

	v, err, _ := db.sf.Do(fmt.Sprintf("tree:%d", f), func() (any, error) {
		pre, err := db.PreprocessFile(f)
		if err != nil {
			return nil, err
		}
		cst := syntax.Parse(pre.Text, pre.DeprecatedAt)
		var macroInputs []itemtree.MacroInput
		for _, m := range pre.Macros {
			if m.File != f {
				continue
			}
			macroInputs = append(macroInputs, itemtree.MacroInput{Name: m.Name, IsFunctional: m.Params != nil})
		}
		tree := itemtree.Build(f, cst, macroInputs, db.Interner)

		db.mu.Lock()
		db.trees[f] = tree
		db.mu.Unlock()
		db.Stats.RecordMiss()
		return tree, nil
	})
	if err != nil {
		return nil, false
	}
	return v.(*itemtree.ItemTree), true
}

// FileDefMap returns f's memoized per-file name table (spec.md §4.3).
func (db *Database) FileDefMap(f ids.FileID) (*defmap.FileDefMap, bool) {
	return db.DefMap(f)
}

// DefMap is FileDefMap's implementation, named to satisfy
// resolver.FileProvider directly (its method is called DefMap).
func (db *Database) DefMap(f ids.FileID) (*defmap.FileDefMap, bool) {
	db.mu.Lock()
	db.ensureFreshLocked()
	if dm, ok := db.defmaps[f]; ok {
		db.mu.Unlock()
		db.Stats.RecordHit()
		return dm, true
	}
	db.mu.Unlock()

	tree, ok := db.ItemTree(f)
	if !ok {
		return nil, false
	}
	dm := defmap.Build(tree)

	db.mu.Lock()
	db.defmaps[f] = dm
	db.mu.Unlock()
	db.Stats.RecordMiss()
	return dm, true
}

// Graph returns the whole-workspace include graph (spec.md §4.5),
// rebuilt wholesale from every known file's preprocessing result.
func (db *Database) Graph() (*includegraph.Graph, error) {
	db.mu.Lock()
	db.ensureFreshLocked()
	if db.graph != nil {
		g := db.graph
		db.mu.Unlock()
		db.Stats.RecordHit()
		return g, nil
	}
	db.mu.Unlock()

	v, err, _ := db.sf.Do("graph", func() (any, error) {
		snap := db.VFS.Snapshot()
		var all []includegraph.FileIncludes
		for f, path := range snap.AllFiles() {
			pre, err := db.PreprocessFile(f)
			if err != nil {
				return nil, err
			}
			all = append(all, includegraph.FileIncludes{File: f, Path: path, Includes: pre.Includes})
		}
		g := includegraph.Build(all)

		db.mu.Lock()
		db.graph = g
		db.mu.Unlock()
		db.Stats.RecordMiss()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*includegraph.Graph), nil
}

// ProjectSubgraph returns the project subgraph f belongs to (spec.md
// §4.5): its root plus every file reachable from that root.
func (db *Database) ProjectSubgraph(f ids.FileID) (*includegraph.Subgraph, error) {
	g, err := db.Graph()
	if err != nil {
		return nil, err
	}
	root, ok := g.ProjectRoot(f)
	if !ok {
		return nil, ErrAmbiguousProject
	}
	return g.ProjectSubgraph(root), nil
}

// Resolver exposes the identifier resolver wired to the current include
// graph, for internal/facade's direct use — facades are thin compositions
// over the query engine's own components (spec.md §6), not a parallel
// implementation of scope resolution.
func (db *Database) Resolver() (*resolver.Resolver, error) {
	return db.resolverFor()
}

// Store exposes the current revision's data-query store, for the same
// reason Resolver does.
func (db *Database) Store() (*dataqueries.Store, error) {
	if _, err := db.resolverFor(); err != nil {
		return nil, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.store, nil
}

// resolverFor returns the resolver wired to this Database's graph,
// rebuilding it if the graph was just (re)computed.
func (db *Database) resolverFor() (*resolver.Resolver, error) {
	g, err := db.Graph()
	if err != nil {
		return nil, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.resolver.Graph = g
	return db.resolver, nil
}

// FunctionData returns fn's memoized semantic data (spec.md §4.4).
func (db *Database) FunctionData(id ids.FunctionID) (*dataqueries.FunctionData, error) {
	loc, ok := db.Interner.FunctionLoc(id)
	if !ok {
		return nil, ErrUnknownID
	}
	tree, ok := db.ItemTree(loc.Container.File)
	if !ok {
		return nil, ErrUnknownFile
	}
	fn := tree.Functions[id]
	if fn == nil {
		return nil, ErrUnknownID
	}
	if _, err := db.resolverFor(); err != nil {
		return nil, err
	}
	db.mu.Lock()
	store := db.store
	db.mu.Unlock()
	return store.FunctionData(fn), nil
}

// MethodmapData returns mm's memoized semantic data (spec.md §4.4),
// including its flattened, resolved-inheritance member arena.
func (db *Database) MethodmapData(id ids.MethodmapID) (*dataqueries.MethodmapData, error) {
	loc, ok := db.Interner.MethodmapLoc(id)
	if !ok {
		return nil, ErrUnknownID
	}
	tree, ok := db.ItemTree(loc.Container.File)
	if !ok {
		return nil, ErrUnknownFile
	}
	mm := tree.Methodmaps[id]
	if mm == nil {
		return nil, ErrUnknownID
	}
	if _, err := db.resolverFor(); err != nil {
		return nil, err
	}
	db.mu.Lock()
	store := db.store
	db.mu.Unlock()
	return store.MethodmapData(loc.Container.File, tree, mm), nil
}

// BodyWithSourceMap lowers id's function body into an expression arena
// plus source map (spec.md §4.7), never cached across calls (lowering a
// body is cheap relative to preprocessing; re-lowering on every call
// keeps this path simple and always consistent with the current
// revision).
func (db *Database) BodyWithSourceMap(id ids.FunctionID) (*body.Body, *body.SourceMap, error) {
	loc, ok := db.Interner.FunctionLoc(id)
	if !ok {
		return nil, nil, ErrUnknownID
	}
	tree, ok := db.ItemTree(loc.Container.File)
	if !ok {
		return nil, nil, ErrUnknownFile
	}
	fn := tree.Functions[id]
	if fn == nil {
		return nil, nil, ErrUnknownID
	}
	pre, err := db.PreprocessFile(loc.Container.File)
	if err != nil {
		return nil, nil, err
	}
	b, sm, _ := body.Lower(fn, pre.Text)
	return b, sm, nil
}

// Infer runs inference over id's function body (spec.md §4.7).
func (db *Database) Infer(id ids.FunctionID) (*body.InferenceResult, error) {
	loc, ok := db.Interner.FunctionLoc(id)
	if !ok {
		return nil, ErrUnknownID
	}
	tree, ok := db.ItemTree(loc.Container.File)
	if !ok {
		return nil, ErrUnknownFile
	}
	fn := tree.Functions[id]
	if fn == nil {
		return nil, ErrUnknownID
	}
	pre, err := db.PreprocessFile(loc.Container.File)
	if err != nil {
		return nil, err
	}
	b, _, blocks := body.Lower(fn, pre.Text)
	r, err := db.resolverFor()
	if err != nil {
		return nil, err
	}
	db.mu.Lock()
	store := db.store
	db.mu.Unlock()
	return body.Infer(loc.Container.File, tree, fn, b, blocks, r, store), nil
}
