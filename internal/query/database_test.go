package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/config"
)

// TestMain guards every test in this package against goroutine leaks, the
// same discipline the teacher applies to internal/core (this package's
// Database is called from many goroutines at once; each call takes its
// mutex).
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}

func newTestDB() *Database {
	cfg := config.Default()
	cfg.Roots = []string{"/proj"}
	return New(cfg)
}

func TestPreprocessFile_MergesIncludedMacros(t *testing.T) {
	db := newTestDB()
	db.VFS.SetFileText("/proj/include/const.inc", "#define LIMIT 10\n")
	main := db.VFS.SetFileText("/proj/plugin.sp", "#include \"include/const.inc\"\nint x = LIMIT;\n")

	result, err := db.PreprocessFile(main)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "10")
	require.Len(t, result.Includes, 1)
}

func TestPreprocessFile_IncludeCycleTerminates(t *testing.T) {
	db := newTestDB()
	a := db.VFS.SetFileText("/proj/a.inc", "#include \"b.inc\"\n#define A 1\n")
	db.VFS.SetFileText("/proj/b.inc", "#include \"a.inc\"\n#define B 2\n")

	result, err := db.PreprocessFile(a)
	require.NoError(t, err)
	assert.Equal(t, "1", result.Macros["A"].Body[0].Text)
}

func TestFunctionData_ResolvesAcrossFile(t *testing.T) {
	db := newTestDB()
	id := db.VFS.SetFileText("/proj/plugin.sp", "int Add(int a, int b) { return a + b; }\n")

	tree, ok := db.ItemTree(id)
	require.True(t, ok)
	var fnID uint32
	for fid, fn := range tree.Functions {
		if fn.Name == "Add" {
			fnID = uint32(fid)
		}
	}
	require.NotZero(t, fnID)

	for fid, fn := range tree.Functions {
		if fn.Name == "Add" {
			data, err := db.FunctionData(fid)
			require.NoError(t, err)
			assert.Equal(t, "int", data.ReturnType)
			assert.Len(t, data.Params, 2)
			_ = fn
		}
	}
}

func TestGraph_ProjectSubgraphCoversIncludeClosure(t *testing.T) {
	db := newTestDB()
	db.VFS.SetFileText("/proj/include/util.inc", "int Helper() { return 1; }\n")
	main := db.VFS.SetFileText("/proj/plugin.sp", "#include \"include/util.inc\"\n")

	sub, err := db.ProjectSubgraph(main)
	require.NoError(t, err)
	assert.Len(t, sub.Files, 2)
}

func TestRevisionChange_InvalidatesCaches(t *testing.T) {
	db := newTestDB()
	id := db.VFS.SetFileText("/proj/plugin.sp", "int X() { return 1; }\n")

	tree1, _ := db.ItemTree(id)
	db.VFS.SetFileText("/proj/plugin.sp", "int X() { return 2; }\nint Y() { return 3; }\n")
	tree2, _ := db.ItemTree(id)

	assert.NotEqual(t, len(tree1.Functions), len(tree2.Functions))
}

func TestBodyWithSourceMapAndInfer(t *testing.T) {
	db := newTestDB()
	id := db.VFS.SetFileText("/proj/plugin.sp",
		"methodmap Weapon < Handle\n{\n\tpublic Weapon(int id) { return view_as<Weapon>(id); }\n}\n"+
			"void F() { Weapon w = new Weapon(1); }\n")

	tree, ok := db.ItemTree(id)
	require.True(t, ok)
	var fnID uint32
	for fid, fn := range tree.Functions {
		if fn.Name == "F" {
			fnID = uint32(fid)
		}
	}
	require.NotZero(t, fnID)

	for fid, fn := range tree.Functions {
		if fn.Name != "F" {
			continue
		}
		b, sm, err := db.BodyWithSourceMap(fid)
		require.NoError(t, err)
		assert.NotNil(t, b)
		assert.NotNil(t, sm)

		inferred, err := db.Infer(fid)
		require.NoError(t, err)
		assert.Empty(t, inferred.Diagnostics)
		assert.Len(t, inferred.MethodResolutions, 1)
		_ = fn
	}
}
