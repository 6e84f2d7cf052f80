package facade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/config"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/query"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}

func newTestDB() *query.Database {
	cfg := config.Default()
	cfg.Roots = []string{"/proj"}
	return query.New(cfg)
}

func TestHoverAt_TopLevelFunction(t *testing.T) {
	db := newTestDB()
	db.VFS.SetFileText("/proj/plugin.sp", "int Add(int a, int b) { return a + b; }\n")

	hover, err := HoverAt(db, fileOf(t, db, "/proj/plugin.sp"), Position{Line: 0, Column: 4})
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.Contains(t, hover.Text, "Add")
}

func TestDefinitionAt_FollowsIdentToGlobal(t *testing.T) {
	db := newTestDB()
	text := "int gCount = 0;\nint Read() { return gCount; }\n"
	file := db.VFS.SetFileText("/proj/plugin.sp", text)

	locs, err := DefinitionAt(db, file, Position{Line: 1, Column: 21})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, 0, locs[0].Range.Start.Line)
}

func TestReferencesAt_FindsEveryUseAcrossFiles(t *testing.T) {
	db := newTestDB()
	db.VFS.SetFileText("/proj/include/util.inc", "int Helper() { return 1; }\n")
	main := db.VFS.SetFileText("/proj/plugin.sp",
		"#include \"include/util.inc\"\nint F() { return Helper(); }\nint G() { return Helper(); }\n")

	locs, err := ReferencesAt(db, main, Position{Line: 1, Column: 18})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(locs), 3)
}

func TestRenameAt_ProducesOneEditPerReference(t *testing.T) {
	db := newTestDB()
	main := db.VFS.SetFileText("/proj/plugin.sp",
		"int gCount = 0;\nint Read() { return gCount; }\nint Write() { gCount = 1; return gCount; }\n")

	edit, err := RenameAt(db, main, Position{Line: 0, Column: 4}, "gTotal")
	require.NoError(t, err)
	require.NotNil(t, edit)
	assert.GreaterOrEqual(t, len(edit.Edits), 3)
	for _, e := range edit.Edits {
		assert.Equal(t, "gTotal", e.NewText)
	}
}

func TestDocumentSymbols_MethodmapNestsMethodsAndProperties(t *testing.T) {
	db := newTestDB()
	file := db.VFS.SetFileText("/proj/plugin.sp",
		"methodmap Weapon < Handle\n{\n\tpublic Weapon(int id) { return view_as<Weapon>(id); }\n\tproperty int Ammo { public get() { return 0; } }\n}\n")

	symbols, err := DocumentSymbols(db, file)
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "Weapon", symbols[0].Name)
	assert.Equal(t, SymbolMethodmap, symbols[0].Kind)
	assert.NotEmpty(t, symbols[0].Children)
}

func TestSemanticTokens_ClassifiesFunctionAndParameter(t *testing.T) {
	db := newTestDB()
	file := db.VFS.SetFileText("/proj/plugin.sp", "int Add(int a, int b) { return a + b; }\n")

	tokens, err := SemanticTokens(db, file)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens)

	var sawFunction, sawParam bool
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenFunction:
			sawFunction = true
		case TokenParameter:
			sawParam = true
		}
	}
	assert.True(t, sawFunction)
	assert.True(t, sawParam)
}

func TestCompletionsAt_OffersLocalsParamsAndGlobals(t *testing.T) {
	db := newTestDB()
	file := db.VFS.SetFileText("/proj/plugin.sp",
		"int gCount = 0;\nint Add(int a, int b) { int total = a + b; return total; }\n")

	items, err := CompletionsAt(db, file, Position{Line: 1, Column: 30})
	require.NoError(t, err)

	names := map[string]bool{}
	for _, it := range items {
		names[it.Name] = true
	}
	assert.True(t, names["total"])
	assert.True(t, names["a"])
	assert.True(t, names["gCount"])
	assert.True(t, names["Add"])
}

func TestCompletionsAt_RanksByTypedPrefix(t *testing.T) {
	db := newTestDB()
	file := db.VFS.SetFileText("/proj/plugin.sp",
		"int GetClientCount() { return 0; }\nint SomethingElse() { return 0; }\nint gVal = GetCl;\n")

	// Cursor sits right after "GetCl" on line 2; GetClientCount should rank
	// ahead of SomethingElse since it shares the typed prefix.
	items, err := CompletionsAt(db, file, Position{Line: 2, Column: 16})
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, "GetClientCount", items[0].Name)
}

func TestOutgoingCalls_FindsCalleeInSameFile(t *testing.T) {
	db := newTestDB()
	file := db.VFS.SetFileText("/proj/plugin.sp",
		"int Helper() { return 1; }\nint F() { return Helper(); }\n")

	tree, ok := db.ItemTree(file)
	require.True(t, ok)
	var callerID uint32
	for fid, fn := range tree.Functions {
		if fn.Name == "F" {
			callerID = uint32(fid)
		}
	}
	require.NotZero(t, callerID)

	for fid, fn := range tree.Functions {
		if fn.Name != "F" {
			continue
		}
		calls, err := OutgoingCalls(db, fid)
		require.NoError(t, err)
		require.Len(t, calls, 1)
		assert.Equal(t, "Helper", calls[0].Name)
		_ = fn
	}
}

func fileOf(t *testing.T, db *query.Database, path string) ids.FileID {
	t.Helper()
	snap := db.VFS.Snapshot()
	fid, ok := snap.FileByPath(path)
	require.True(t, ok)
	return fid
}
