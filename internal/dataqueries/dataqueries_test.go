package dataqueries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/defmap"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/includegraph"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/resolver"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/syntax"
)

type memProvider struct {
	trees   map[ids.FileID]*itemtree.ItemTree
	defmaps map[ids.FileID]*defmap.FileDefMap
}

func newMemProvider() *memProvider {
	return &memProvider{trees: map[ids.FileID]*itemtree.ItemTree{}, defmaps: map[ids.FileID]*defmap.FileDefMap{}}
}

func (m *memProvider) add(interner *ids.Interner, file ids.FileID, text string) *itemtree.ItemTree {
	cst := syntax.Parse(text, nil)
	tree := itemtree.Build(file, cst, nil, interner)
	m.trees[file] = tree
	m.defmaps[file] = defmap.Build(tree)
	return tree
}

func (m *memProvider) DefMap(file ids.FileID) (*defmap.FileDefMap, bool) {
	dm, ok := m.defmaps[file]
	return dm, ok
}

func (m *memProvider) ItemTree(file ids.FileID) (*itemtree.ItemTree, bool) {
	tree, ok := m.trees[file]
	return tree, ok
}

func TestFunctionData_CollectsSignatureAndFlags(t *testing.T) {
	interner := ids.NewInterner()
	files := newMemProvider()
	file := interner.InternFile("plugin.sp")
	tree := files.add(interner, file, "public native void Frob(int a, const char[] b = \"x\");")

	r := resolver.New(files, includegraph.NewGraph())
	store := NewStore(files, interner, r)

	fn := tree.Functions[tree.TopLevel[0].Function]
	data := store.FunctionData(fn)
	assert.Equal(t, "Frob", data.Name)
	require.Len(t, data.Params, 2)
	assert.True(t, data.Params[1].HasDefault)
	assert.Equal(t, syntax.FuncNative, data.Kind)

	// Memoized: the same *FunctionData pointer comes back.
	assert.Same(t, data, store.FunctionData(fn))
}

func TestMethodmapData_LocalOverridesInherited(t *testing.T) {
	interner := ids.NewInterner()
	files := newMemProvider()
	file := interner.InternFile("plugin.sp")
	text := "methodmap Base\n{\n\tpublic Base() { return view_as<Base>(0); }\n\tpublic void Foo() {}\n}\n" +
		"methodmap Child < Base\n{\n\tpublic void Foo() {}\n\tpublic void Bar() {}\n}\n"
	tree := files.add(interner, file, text)

	r := resolver.New(files, includegraph.NewGraph())
	store := NewStore(files, interner, r)

	base := tree.Methodmaps[tree.TopLevel[0].Methodmap]
	child := tree.Methodmaps[tree.TopLevel[1].Methodmap]

	baseData := store.MethodmapData(file, tree, base)
	require.Len(t, baseData.Items, 2) // constructor + Foo

	childData := store.MethodmapData(file, tree, child)
	require.Contains(t, childData.ItemsMap, "Foo")
	require.Contains(t, childData.ItemsMap, "Bar")
	// Constructor is never copied down.
	_, hasCtor := childData.ItemsMap["Base"]
	assert.False(t, hasCtor)

	fooIdx := childData.ItemsMap["Foo"]
	assert.True(t, childData.Items[fooIdx].IsLocal, "Child's own Foo overrides Base's inherited Foo")
}

func TestMethodmapData_UnresolvedInheritName(t *testing.T) {
	interner := ids.NewInterner()
	files := newMemProvider()
	file := interner.InternFile("plugin.sp")
	tree := files.add(interner, file, "methodmap Orphan < GhostBase\n{\n}\n")

	r := resolver.New(files, includegraph.NewGraph())
	store := NewStore(files, interner, r)

	mm := tree.Methodmaps[tree.TopLevel[0].Methodmap]
	data := store.MethodmapData(file, tree, mm)
	require.NotNil(t, data.UnresolvedInherit)
	assert.False(t, data.UnresolvedInherit.Exists)
}

func TestMethodmapData_InheritsNonMethodmapName(t *testing.T) {
	interner := ids.NewInterner()
	files := newMemProvider()
	file := interner.InternFile("plugin.sp")
	tree := files.add(interner, file, "int NotAMethodmap;\nmethodmap Bad < NotAMethodmap\n{\n}\n")

	r := resolver.New(files, includegraph.NewGraph())
	store := NewStore(files, interner, r)

	mm := tree.Methodmaps[tree.TopLevel[1].Methodmap]
	data := store.MethodmapData(file, tree, mm)
	require.NotNil(t, data.UnresolvedInherit)
	assert.True(t, data.UnresolvedInherit.Exists)
}

func TestGlobalData_IsStableAcrossCalls(t *testing.T) {
	interner := ids.NewInterner()
	files := newMemProvider()
	file := interner.InternFile("plugin.sp")
	tree := files.add(interner, file, "int g_Count;")

	store := NewStore(files, interner, resolver.New(files, includegraph.NewGraph()))
	v := tree.Variables[tree.TopLevel[0].Variable]

	g1 := store.GlobalData(v)
	g2 := store.GlobalData(v)
	assert.Same(t, g1, g2)
	assert.Equal(t, "g_Count", g1.Name)
}

func TestEnumDataAndVariantData(t *testing.T) {
	interner := ids.NewInterner()
	files := newMemProvider()
	file := interner.InternFile("plugin.sp")
	tree := files.add(interner, file, "enum State { State_None, State_Active }")

	store := NewStore(files, interner, resolver.New(files, includegraph.NewGraph()))
	e := tree.Enums[tree.TopLevel[0].Enum]
	data := store.EnumData(e)
	require.Len(t, data.Variants, 2)

	vd := store.VariantData(tree.Variants[data.Variants[0]])
	assert.Equal(t, "State_None", vd.Name)
}
