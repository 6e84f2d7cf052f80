package defmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/syntax"
)

func TestBuild_LooksUpEveryTopLevelKind(t *testing.T) {
	interner := ids.NewInterner()
	file := interner.InternFile("plugin.sp")
	text := "public void OnPluginStart() {}\n" +
		"static int g_Count;\n" +
		"enum State { State_None, State_Active }\n" +
		"methodmap Weapon < Handle {}\n" +
		"typedef Callback = function void (int result);\n"
	cst := syntax.Parse(text, nil)
	tree := itemtree.Build(file, cst, []itemtree.MacroInput{{Name: "MAX_CLIENTS"}}, interner)

	dm := Build(tree)

	fnItem, ok := dm.Lookup("OnPluginStart")
	require.True(t, ok)
	assert.Equal(t, itemtree.ItemFunction, fnItem.Kind)

	varItem, ok := dm.Lookup("g_Count")
	require.True(t, ok)
	assert.Equal(t, itemtree.ItemVariable, varItem.Kind)

	enumItem, ok := dm.Lookup("State")
	require.True(t, ok)
	assert.Equal(t, itemtree.ItemEnum, enumItem.Kind)

	mmItem, ok := dm.Lookup("Weapon")
	require.True(t, ok)
	assert.Equal(t, itemtree.ItemMethodmap, mmItem.Kind)

	tdItem, ok := dm.Lookup("Callback")
	require.True(t, ok)
	assert.Equal(t, itemtree.ItemTypedef, tdItem.Kind)

	macroItem, ok := dm.Lookup("MAX_CLIENTS")
	require.True(t, ok)
	assert.Equal(t, itemtree.ItemMacro, macroItem.Kind)

	_, ok = dm.Lookup("DoesNotExist")
	assert.False(t, ok)
}

func TestBuild_LaterDeclarationWinsOnCollision(t *testing.T) {
	interner := ids.NewInterner()
	file := interner.InternFile("plugin.sp")
	text := "int g_Value;\nchar g_Value[64];"
	cst := syntax.Parse(text, nil)
	tree := itemtree.Build(file, cst, nil, interner)

	dm := Build(tree)
	item, ok := dm.Lookup("g_Value")
	require.True(t, ok)
	require.Equal(t, itemtree.ItemVariable, item.Kind)

	v := tree.Variables[item.Variable]
	require.NotNil(t, v)
	assert.Equal(t, "char", v.TypeRef)
	assert.Equal(t, []int{64}, v.Dimensions)
}

func TestBlockDefMap_LookupMissesFallThrough(t *testing.T) {
	bm := &BlockDefMap{Block: 1, ByName: map[string]LocalRef{"x": {Name: "x", Expr: 3}}}
	ref, ok := bm.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, ids.ExprID(3), ref.Expr)

	_, ok = bm.Lookup("y")
	assert.False(t, ok)
}
