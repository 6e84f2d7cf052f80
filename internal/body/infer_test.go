package body

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/dataqueries"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/defmap"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/includegraph"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/resolver"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/sperrors"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/syntax"
)

// memFiles is the same narrow FileProvider stand-in resolver_test.go and
// dataqueries_test.go use in place of internal/query's Database.
type memFiles struct {
	trees   map[ids.FileID]*itemtree.ItemTree
	defmaps map[ids.FileID]*defmap.FileDefMap
}

func newMemFiles() *memFiles {
	return &memFiles{trees: map[ids.FileID]*itemtree.ItemTree{}, defmaps: map[ids.FileID]*defmap.FileDefMap{}}
}

func (m *memFiles) add(interner *ids.Interner, file ids.FileID, text string) *itemtree.ItemTree {
	cst := syntax.Parse(text, nil)
	tree := itemtree.Build(file, cst, nil, interner)
	m.trees[file] = tree
	m.defmaps[file] = defmap.Build(tree)
	return tree
}

func (m *memFiles) DefMap(file ids.FileID) (*defmap.FileDefMap, bool) {
	dm, ok := m.defmaps[file]
	return dm, ok
}

func (m *memFiles) ItemTree(file ids.FileID) (*itemtree.ItemTree, bool) {
	tree, ok := m.trees[file]
	return tree, ok
}

// setup builds a one-file environment and lowers+infers fnName's body.
func setup(t *testing.T, text, fnName string) (*InferenceResult, *Body) {
	t.Helper()
	interner := ids.NewInterner()
	files := newMemFiles()
	file := interner.InternFile("plugin.sp")
	tree := files.add(interner, file, text)

	graph := includegraph.Build(nil)
	r := resolver.New(files, graph)
	store := dataqueries.NewStore(files, interner, r)

	var fn *itemtree.Function
	for _, f := range tree.Functions {
		if f.Name == fnName {
			fn = f
		}
	}
	require.NotNil(t, fn, "function %q not found", fnName)

	b, _, blocks := Lower(fn, text)
	result := Infer(file, tree, fn, b, blocks, r, store)
	return result, b
}

func TestInfer_UnresolvedConstructor_EnumStruct(t *testing.T) {
	text := "enum struct Player {}\n" +
		"void F() { Player p = new Player(); }"
	result, _ := setup(t, text, "F")

	require.Len(t, result.Diagnostics, 1)
	err, ok := result.Diagnostics[0].(*sperrors.UnresolvedConstructorError)
	require.True(t, ok)
	assert.Equal(t, sperrors.ExistsEnumStruct, err.Exists)
	assert.Empty(t, result.MethodResolutions)
}

func TestInfer_MethodmapConstructorResolves(t *testing.T) {
	text := "methodmap Weapon < Handle\n{\n\tpublic Weapon(int id) { return view_as<Weapon>(id); }\n}\n" +
		"void F() { Weapon w = new Weapon(1); }"
	result, b := setup(t, text, "F")

	require.Empty(t, result.Diagnostics)
	require.Len(t, result.MethodResolutions, 1)
	for exprID, fnID := range result.MethodResolutions {
		e := b.Expr(exprID)
		assert.Equal(t, ExprNew, e.Kind)
		assert.NotZero(t, fnID)
	}
}

func TestInfer_PropertyFieldAccessResolves(t *testing.T) {
	text := "methodmap Weapon < Handle\n{\n" +
		"\tproperty int Ammo\n\t{\n\t\tpublic get() { return 0; }\n\t\tpublic set(int value) {}\n\t}\n}\n" +
		"void F(Weapon w) { int a = w.Ammo; }"
	result, _ := setup(t, text, "F")

	require.Empty(t, result.Diagnostics)
	require.Len(t, result.AttributeResolutions, 1)
	for _, res := range result.AttributeResolutions {
		assert.Equal(t, AttrProperty, res.Kind)
		assert.NotZero(t, res.Property)
	}
}

func TestInfer_MethodCallOnFieldNameYieldsDiagnostic(t *testing.T) {
	text := "methodmap Weapon < Handle\n{\n" +
		"\tproperty int Ammo\n\t{\n\t\tpublic get() { return 0; }\n\t\tpublic set(int value) {}\n\t}\n}\n" +
		"void F(Weapon w) { w.Ammo(); }"
	result, _ := setup(t, text, "F")

	require.Len(t, result.Diagnostics, 1)
	err, ok := result.Diagnostics[0].(*sperrors.UnresolvedMethodCallError)
	require.True(t, ok)
	assert.Equal(t, sperrors.ExistsMethodWithSameName, err.Exists)
}

func TestInfer_EnumStructFieldAccess(t *testing.T) {
	text := "enum struct Player\n{\n\tint Health;\n}\n" +
		"void F(Player p) { int h = p.Health; }"
	result, _ := setup(t, text, "F")

	require.Empty(t, result.Diagnostics)
	require.Len(t, result.AttributeResolutions, 1)
	for _, res := range result.AttributeResolutions {
		assert.Equal(t, AttrField, res.Kind)
	}
}
