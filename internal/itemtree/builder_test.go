package itemtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/syntax"
)

func TestBuild_FunctionAndVariableTopLevel(t *testing.T) {
	interner := ids.NewInterner()
	file := interner.InternFile("plugin.sp")
	cst := syntax.Parse("public void OnPluginStart()\n{\n}\nstatic int g_Count;", nil)

	tree := Build(file, cst, nil, interner)
	require.Len(t, tree.TopLevel, 2)
	assert.Equal(t, ItemFunction, tree.TopLevel[0].Kind)
	assert.Equal(t, ItemVariable, tree.TopLevel[1].Kind)

	fn := tree.Functions[tree.TopLevel[0].Function]
	require.NotNil(t, fn)
	assert.Equal(t, "OnPluginStart", fn.Name)
	assert.True(t, fn.HasBody)

	v := tree.Variables[tree.TopLevel[1].Variable]
	require.NotNil(t, v)
	assert.Equal(t, "g_Count", v.Name)
}

func TestBuild_UnnamedEnumSynthesizesName(t *testing.T) {
	interner := ids.NewInterner()
	file := interner.InternFile("plugin.sp")
	cst := syntax.Parse("enum\n{\n\tFoo,\n\tBar\n}", nil)

	tree := Build(file, cst, nil, interner)
	require.Len(t, tree.TopLevel, 1)
	e := tree.Enums[tree.TopLevel[0].Enum]
	require.NotNil(t, e)
	assert.True(t, e.IsUnnamed)
	assert.Regexp(t, `^unnamed_enum_\d+$`, e.Name)
	require.Len(t, e.Variants, 2)
	assert.Equal(t, "Foo", tree.Variants[e.Variants[0]].Name)
}

func TestBuild_MethodmapPropertiesAndConstructor(t *testing.T) {
	interner := ids.NewInterner()
	file := interner.InternFile("plugin.sp")
	text := "methodmap Weapon < Handle\n{\n" +
		"\tpublic Weapon(int id)\n\t{\n\t\treturn view_as<Weapon>(id);\n\t}\n" +
		"\tproperty int Ammo\n\t{\n\t\tpublic get() { return 0; }\n\t\tpublic set(int value) {}\n\t}\n" +
		"}"
	cst := syntax.Parse(text, nil)

	tree := Build(file, cst, nil, interner)
	require.Len(t, tree.TopLevel, 1)
	mm := tree.Methodmaps[tree.TopLevel[0].Methodmap]
	require.NotNil(t, mm)
	assert.Equal(t, "Weapon", mm.Name)
	assert.Equal(t, "Handle", mm.Inherits)
	require.Len(t, mm.Methods, 1)
	require.Len(t, mm.Properties, 1)

	ctor := tree.Functions[mm.Methods[0]]
	require.NotNil(t, ctor)
	assert.Equal(t, syntax.SpecialConstructor, ctor.Special)
	assert.Equal(t, mm.ID, ctor.OwnerMethodmap)

	prop := tree.Properties[mm.Properties[0]]
	require.NotNil(t, prop)
	assert.Equal(t, "Ammo", prop.Name)
	require.NotNil(t, prop.Getter)
	require.NotNil(t, prop.Setter)
	assert.Equal(t, "get", tree.Functions[*prop.Getter].Name)
	assert.Equal(t, "set", tree.Functions[*prop.Setter].Name)
}

func TestBuild_EnumStructFieldsAndMethods(t *testing.T) {
	interner := ids.NewInterner()
	file := interner.InternFile("plugin.sp")
	cst := syntax.Parse("enum struct Vec2\n{\n\tfloat x;\n\tfloat y;\n\n\tfloat Length()\n\t{\n\t\treturn 0.0;\n\t}\n}", nil)

	tree := Build(file, cst, nil, interner)
	es := tree.EnumStructs[tree.TopLevel[0].EnumStruct]
	require.NotNil(t, es)
	require.Len(t, es.Fields, 2)
	assert.Equal(t, "x", es.Fields[0].Name)
	require.Len(t, es.Methods, 1)
	assert.Equal(t, "Length", tree.Functions[es.Methods[0]].Name)
}

func TestBuild_DeprecatedPropagatesFromSyntax(t *testing.T) {
	interner := ids.NewInterner()
	file := interner.InternFile("plugin.sp")
	text := "\n\nint OldFunc()\n{\n\treturn 0;\n}"
	cst := syntax.Parse(text, map[int]string{1: "use NewFunc instead"})

	tree := Build(file, cst, nil, interner)
	fn := tree.Functions[tree.TopLevel[0].Function]
	require.NotNil(t, fn)
	assert.True(t, fn.Deprecated)
	assert.Equal(t, "use NewFunc instead", fn.DeprecatedText)
}

func TestBuild_MacrosAppendToTopLevel(t *testing.T) {
	interner := ids.NewInterner()
	file := interner.InternFile("plugin.sp")
	cst := syntax.Parse("", nil)

	tree := Build(file, cst, []MacroInput{{Name: "MAX_CLIENTS", IsFunctional: false}}, interner)
	require.Len(t, tree.TopLevel, 1)
	assert.Equal(t, ItemMacro, tree.TopLevel[0].Kind)
	m := tree.Macros[tree.TopLevel[0].Macro]
	require.NotNil(t, m)
	assert.Equal(t, "MAX_CLIENTS", m.Name)
}

func TestBuild_TwoFilesGetDistinctFunctionIDs(t *testing.T) {
	interner := ids.NewInterner()
	fileA := interner.InternFile("a.sp")
	fileB := interner.InternFile("b.sp")
	cstA := syntax.Parse("void F() {}", nil)
	cstB := syntax.Parse("void F() {}", nil)

	treeA := Build(fileA, cstA, nil, interner)
	treeB := Build(fileB, cstB, nil, interner)
	idA := treeA.TopLevel[0].Function
	idB := treeB.TopLevel[0].Function
	assert.NotEqual(t, idA, idB)
}
