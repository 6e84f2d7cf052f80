package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleFunctionDecl(t *testing.T) {
	text := "public void OnPluginStart()\n{\n\tPrintToServer(\"hi\");\n}"
	f := Parse(text, nil)
	require.Len(t, f.Decls, 1)
	d := f.Decls[0]
	assert.Equal(t, DeclFunction, d.Kind)
	assert.Equal(t, "OnPluginStart", d.Name)
	assert.Equal(t, "void", d.ReturnType)
	assert.Equal(t, VisPublic, d.Visibility)
	require.NotNil(t, d.Body)
}

func TestParse_NativeForwardDecls(t *testing.T) {
	text := "native int GetClientCount(bool inGameOnly = false);\nforward void OnClientPutInServer(int client);"
	f := Parse(text, nil)
	require.Len(t, f.Decls, 2)
	assert.Equal(t, FuncNative, f.Decls[0].FuncKind)
	assert.Nil(t, f.Decls[0].Body)
	require.Len(t, f.Decls[0].Params, 1)
	assert.True(t, f.Decls[0].Params[0].HasDefault)
	assert.Equal(t, FuncForward, f.Decls[1].FuncKind)
}

func TestParse_GlobalVariableDecl(t *testing.T) {
	text := "static char g_Buffer[64];"
	f := Parse(text, nil)
	require.Len(t, f.Decls, 1)
	d := f.Decls[0]
	assert.Equal(t, DeclVariable, d.Kind)
	assert.Equal(t, "g_Buffer", d.Name)
	assert.Equal(t, "char", d.TypeRef)
	assert.Equal(t, VisStatic, d.Visibility)
	assert.Equal(t, []int{64}, d.Dimensions)
}

func TestParse_EnumWithVariants(t *testing.T) {
	text := "enum State\n{\n\tState_None = 0,\n\tState_Active,\n\tState_Done\n}"
	f := Parse(text, nil)
	require.Len(t, f.Decls, 1)
	d := f.Decls[0]
	assert.Equal(t, DeclEnum, d.Kind)
	assert.Equal(t, "State", d.Name)
	assert.False(t, d.IsUnnamed)
	require.Len(t, d.Children, 3)
	assert.Equal(t, "State_None", d.Children[0].Name)
	assert.Equal(t, "State_Done", d.Children[2].Name)
}

func TestParse_UnnamedEnum(t *testing.T) {
	text := "enum\n{\n\tFoo,\n\tBar\n}"
	f := Parse(text, nil)
	require.Len(t, f.Decls, 1)
	assert.True(t, f.Decls[0].IsUnnamed)
}

func TestParse_MethodmapWithInheritanceAndConstructor(t *testing.T) {
	text := "methodmap Weapon < Handle\n{\n" +
		"\tpublic Weapon(int id)\n\t{\n\t\treturn view_as<Weapon>(id);\n\t}\n" +
		"\tpublic void Fire()\n\t{\n\t}\n" +
		"\tproperty int Ammo\n\t{\n\t\tpublic get() { return 0; }\n\t\tpublic set(int value) {}\n\t}\n" +
		"}"
	f := Parse(text, nil)
	require.Len(t, f.Decls, 1)
	mm := f.Decls[0]
	assert.Equal(t, DeclMethodmap, mm.Kind)
	assert.Equal(t, "Weapon", mm.Name)
	assert.Equal(t, "Handle", mm.Inherits)
	require.Len(t, mm.Children, 3)

	ctor := mm.Children[0]
	assert.Equal(t, "Weapon", ctor.Name)
	assert.Equal(t, SpecialConstructor, ctor.Special)

	fire := mm.Children[1]
	assert.Equal(t, "Fire", fire.Name)
	assert.Equal(t, SpecialNone, fire.Special)

	prop := mm.Children[2]
	assert.Equal(t, DeclProperty, prop.Kind)
	assert.Equal(t, "Ammo", prop.Name)
	assert.Equal(t, "int", prop.PropertyType)
	require.Len(t, prop.Children, 2)
	assert.Equal(t, "get", prop.Children[0].Name)
	assert.Equal(t, "set", prop.Children[1].Name)
}

func TestParse_EnumStructFieldsAndMethods(t *testing.T) {
	text := "enum struct Vec2\n{\n\tfloat x;\n\tfloat y;\n\n\tfloat Length()\n\t{\n\t\treturn 0.0;\n\t}\n}"
	f := Parse(text, nil)
	require.Len(t, f.Decls, 1)
	es := f.Decls[0]
	assert.Equal(t, DeclEnumStruct, es.Kind)
	require.Len(t, es.Children, 3)
	assert.Equal(t, DeclEnumStructField, es.Children[0].Kind)
	assert.Equal(t, "x", es.Children[0].Name)
	assert.Equal(t, DeclFunction, es.Children[2].Kind)
	assert.Equal(t, "Length", es.Children[2].Name)
}

func TestParse_TypedefAndTypeset(t *testing.T) {
	text := "typedef Callback = function void (int result);\n" +
		"typeset Handler\n{\n\tfunction void (int a);\n\tfunction void (int a, int b);\n}"
	f := Parse(text, nil)
	require.Len(t, f.Decls, 2)
	td := f.Decls[0]
	assert.Equal(t, DeclTypedef, td.Kind)
	assert.Equal(t, "Callback", td.Name)
	assert.Equal(t, "void", td.ReturnType)
	require.Len(t, td.Params, 1)

	ts := f.Decls[1]
	assert.Equal(t, DeclTypeset, ts.Kind)
	assert.Equal(t, "Handler", ts.Name)
	require.Len(t, ts.Children, 2)
	assert.Len(t, ts.Children[0].Params, 1)
	assert.Len(t, ts.Children[1].Params, 2)
}

func TestParse_DeprecatedAttachesToFollowingDecl(t *testing.T) {
	// Blank lines 0-1 stand in for where the preprocessor would have
	// blanked a `#pragma deprecated <msg>` directive line; DeprecatedAt is
	// keyed by that directive's own preprocessed line index (line 1 here),
	// matching preprocessor.Result.DeprecatedAt's documented contract.
	text := "\n\nint OldFunc()\n{\n\treturn 0;\n}"
	deprecated := map[int]string{1: "use NewFunc instead"}
	f := Parse(text, deprecated)
	require.Len(t, f.Decls, 1)
	assert.True(t, f.Decls[0].Deprecated)
	assert.Equal(t, "use NewFunc instead", f.Decls[0].DeprecatedText)
}

func TestParse_StructFields(t *testing.T) {
	text := "struct Point\n{\n\tpublic int x;\n\tpublic int y;\n}"
	f := Parse(text, nil)
	require.Len(t, f.Decls, 1)
	s := f.Decls[0]
	assert.Equal(t, DeclStruct, s.Kind)
	require.Len(t, s.Children, 2)
	assert.Equal(t, DeclStructField, s.Children[0].Kind)
	assert.Equal(t, "x", s.Children[0].Name)
	assert.Equal(t, VisPublic, s.Children[0].Visibility)
}

func TestParse_MalformedDeclDoesNotDerailFile(t *testing.T) {
	// A stray top-level ';' before a valid declaration must not swallow
	// the declaration that follows it.
	text := ";;;\nint Good()\n{\n\treturn 1;\n}"
	f := Parse(text, nil)
	require.Len(t, f.Decls, 1)
	assert.Equal(t, "Good", f.Decls[0].Name)
}

func TestParseFreeRunning_FallsBackWithoutGrammarSpans(t *testing.T) {
	// parseFreeRunning is the path Parse takes when topLevelSpans returns
	// nothing (grammar unavailable); it must recognize the same
	// declarations parsing through the grammar would.
	text := "public void OnPluginStart()\n{\n\tPrintToServer(\"hi\");\n}"
	f := parseFreeRunning(tokenize(text), nil)
	require.Len(t, f.Decls, 1)
	d := f.Decls[0]
	assert.Equal(t, DeclFunction, d.Kind)
	assert.Equal(t, "OnPluginStart", d.Name)
}

func TestParseSpans_SeeksToGrammarSpanAndPreservesDeprecated(t *testing.T) {
	// Two declarations, second one flagged deprecated on its own line;
	// parseSpans must land the parser on each span's own tokens and keep
	// curLine accurate enough for deprecatedFor's line-indexed lookup.
	text := "int First()\n{\n\treturn 0;\n}\n\nint Second()\n{\n\treturn 1;\n}"
	toks := tokenize(text)
	firstStart := 0
	secondStart := len("int First()\n{\n\treturn 0;\n}\n\n")
	spans := []tsSpan{
		{start: firstStart, end: len("int First()\n{\n\treturn 0;\n}")},
		{start: secondStart, end: len(text)},
	}
	deprecated := map[int]string{4: "use Third instead"}
	f := parseSpans(toks, deprecated, spans)
	require.Len(t, f.Decls, 2)
	assert.Equal(t, "First", f.Decls[0].Name)
	assert.False(t, f.Decls[0].Deprecated)
	assert.Equal(t, "Second", f.Decls[1].Name)
	assert.True(t, f.Decls[1].Deprecated)
	assert.Equal(t, "use Third instead", f.Decls[1].DeprecatedText)
}
