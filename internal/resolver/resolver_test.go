package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/defmap"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/includegraph"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/preprocessor"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/syntax"
)

// memProvider is an in-memory FileProvider built straight from source text,
// standing in for internal/query's Database in these tests.
type memProvider struct {
	trees   map[ids.FileID]*itemtree.ItemTree
	defmaps map[ids.FileID]*defmap.FileDefMap
}

func newMemProvider() *memProvider {
	return &memProvider{trees: map[ids.FileID]*itemtree.ItemTree{}, defmaps: map[ids.FileID]*defmap.FileDefMap{}}
}

func (m *memProvider) add(interner *ids.Interner, file ids.FileID, text string) {
	cst := syntax.Parse(text, nil)
	tree := itemtree.Build(file, cst, nil, interner)
	m.trees[file] = tree
	m.defmaps[file] = defmap.Build(tree)
}

func (m *memProvider) DefMap(file ids.FileID) (*defmap.FileDefMap, bool) {
	dm, ok := m.defmaps[file]
	return dm, ok
}

func (m *memProvider) ItemTree(file ids.FileID) (*itemtree.ItemTree, bool) {
	tree, ok := m.trees[file]
	return tree, ok
}

func TestResolveIdent_BlockLocalWinsOverFileScope(t *testing.T) {
	interner := ids.NewInterner()
	files := newMemProvider()
	file := interner.InternFile("plugin.sp")
	files.add(interner, file, "int g_Value;")

	block := &defmap.BlockDefMap{Block: 1, ByName: map[string]defmap.LocalRef{"g_Value": {Name: "g_Value", Expr: 42}}}
	r := New(files, includegraph.NewGraph())

	res, ok := r.ResolveIdent(Scope{File: file, Blocks: []*defmap.BlockDefMap{block}}, "g_Value")
	require.True(t, ok)
	assert.Equal(t, KindLocal, res.Kind)
	assert.Equal(t, ids.ExprID(42), res.LocalExpr)
}

func TestResolveIdent_FunctionParamBeforeFileScope(t *testing.T) {
	interner := ids.NewInterner()
	files := newMemProvider()
	file := interner.InternFile("plugin.sp")
	files.add(interner, file, "int count;")

	r := New(files, includegraph.NewGraph())
	res, ok := r.ResolveIdent(Scope{File: file, Params: []itemtree.Param{{Name: "count"}}}, "count")
	require.True(t, ok)
	assert.Equal(t, KindLocal, res.Kind)
}

func TestResolveIdent_FileScopeFindsFunctionVariantAndMethodmap(t *testing.T) {
	interner := ids.NewInterner()
	files := newMemProvider()
	file := interner.InternFile("plugin.sp")
	text := "public void OnPluginStart() {}\n" +
		"enum State { State_None, State_Active }\n" +
		"methodmap Weapon < Handle {}\n"
	files.add(interner, file, text)

	r := New(files, includegraph.NewGraph())

	res, ok := r.ResolveIdent(Scope{File: file}, "OnPluginStart")
	require.True(t, ok)
	assert.Equal(t, KindFunction, res.Kind)
	require.Len(t, res.Functions, 1)

	res, ok = r.ResolveIdent(Scope{File: file}, "State_Active")
	require.True(t, ok)
	assert.Equal(t, KindVariant, res.Kind)

	res, ok = r.ResolveIdent(Scope{File: file}, "Weapon")
	require.True(t, ok)
	assert.Equal(t, KindMethodmap, res.Kind)

	_, ok = r.ResolveIdent(Scope{File: file}, "DoesNotExist")
	assert.False(t, ok)
}

func TestResolveIdent_TransitiveIncludeMergesFunctionOverloads(t *testing.T) {
	interner := ids.NewInterner()
	files := newMemProvider()
	plugin := interner.InternFile("plugin.sp")
	shared := interner.InternFile("shared.inc")
	other := interner.InternFile("other.inc")
	files.add(interner, plugin, "")
	files.add(interner, shared, "void Helper() {}")
	files.add(interner, other, "void Helper() {}")

	graph := includegraph.Build([]includegraph.FileIncludes{
		{File: plugin, Path: "plugin.sp", Includes: []preprocessor.IncludeEdge{{Target: shared}}},
		{File: shared, Path: "shared.inc", Includes: []preprocessor.IncludeEdge{{Target: other}}},
		{File: other, Path: "other.inc"},
	})

	r := New(files, graph)
	res, ok := r.ResolveIdent(Scope{File: plugin}, "Helper")
	require.True(t, ok)
	assert.Equal(t, KindFunction, res.Kind)
	require.Len(t, res.Functions, 2)
}

func TestResolveIdent_MembersScopeBeforeFileScope(t *testing.T) {
	interner := ids.NewInterner()
	files := newMemProvider()
	file := interner.InternFile("plugin.sp")
	files.add(interner, file, "int Ammo;")

	members := func(name string) (MemberRef, bool) {
		if name == "Ammo" {
			return MemberRef{IsFunction: false}, true
		}
		return MemberRef{}, false
	}
	r := New(files, includegraph.NewGraph())
	res, ok := r.ResolveIdent(Scope{File: file, Members: members}, "Ammo")
	require.True(t, ok)
	assert.Equal(t, KindGlobal, res.Kind)
}
