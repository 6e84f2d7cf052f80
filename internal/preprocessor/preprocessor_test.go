package preprocessor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
)

func TestPreprocessFile_ObjectLikeMacro(t *testing.T) {
	file := FileInput{ID: 1, Path: "a.sp", Text: "#define N 10\nint a[N];"}
	res := PreprocessFile(file, Options{})

	assert.Equal(t, "\nint a[10];", res.Text)
	require.Contains(t, res.Offsets, 1)
	offs := res.Offsets[1]
	require.Len(t, offs, 1)
	assert.Equal(t, 1, offs[0].Diff) // len("10") - len("N") == +1
}

func TestPreprocessFile_FunctionLikeMacroStringize(t *testing.T) {
	// Real SourcePawn macro parameter lists are positional (`%0`..`%9`),
	// not named — see original_source/crates/preprocessor/src/lib.rs's
	// Params state, which only recognizes integer literals and commas.
	file := FileInput{ID: 1, Path: "a.sp", Text: "#define S(%1) #%1\nchar s[] = S(hi);"}
	res := PreprocessFile(file, Options{})

	assert.Equal(t, "\nchar s[] = \"hi\";", res.Text)
}

func TestPreprocessFile_ConditionalCompilation(t *testing.T) {
	file := FileInput{ID: 1, Path: "a.sp", Text: "#if 0\nint dead;\n#else\nint live;\n#endif"}
	res := PreprocessFile(file, Options{})

	assert.NotContains(t, res.Text, "dead")
	assert.Contains(t, res.Text, "live")
	require.Len(t, res.InactiveRanges, 1)
	assert.Equal(t, LineRange{Start: 1, End: 1}, res.InactiveRanges[0])
}

func TestPreprocessFile_ElifChain(t *testing.T) {
	file := FileInput{
		ID:   1,
		Path: "a.sp",
		Text: "#define V 2\n#if V == 1\nint one;\n#elif V == 2\nint two;\n#else\nint other;\n#endif",
	}
	res := PreprocessFile(file, Options{})

	assert.Contains(t, res.Text, "two")
	assert.NotContains(t, res.Text, "one;")
	assert.NotContains(t, res.Text, "other")
}

func TestPreprocessFile_UndefRemovesMacro(t *testing.T) {
	file := FileInput{ID: 1, Path: "a.sp", Text: "#define N 10\n#undef N\nint a = N;"}
	res := PreprocessFile(file, Options{})

	assert.Contains(t, res.Text, "int a = N;")
}

func TestPreprocessFile_IncludeResolved(t *testing.T) {
	resolver := stubResolver{
		files: map[string]FileInput{
			"a": {ID: 2, Path: "a.inc", Text: "int fromA;"},
		},
	}
	file := FileInput{ID: 1, Path: "b.sp", Text: "#include <a>\nint b;"}
	res := PreprocessFile(file, Options{Resolver: resolver})

	require.Len(t, res.Includes, 1)
	assert.Equal(t, ids.FileID(2), res.Includes[0].Target)
	assert.True(t, res.Includes[0].ChevronForm)
	assert.Empty(t, res.Errors)
}

func TestPreprocessFile_UnresolvedIncludeRecordsError(t *testing.T) {
	file := FileInput{ID: 1, Path: "b.sp", Text: "#include <missing>\n"}
	res := PreprocessFile(file, Options{Resolver: stubResolver{}})

	require.Len(t, res.Errors, 1)
}

func TestPreprocessFile_TryIncludeSwallowsMissing(t *testing.T) {
	file := FileInput{ID: 1, Path: "b.sp", Text: "#tryinclude <missing>\n"}
	res := PreprocessFile(file, Options{Resolver: stubResolver{}})

	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Includes)
}

func TestPreprocessFile_PragmaFlags(t *testing.T) {
	file := FileInput{ID: 1, Path: "a.sp", Text: "#pragma semicolon 1\n#pragma newdecls required\nint a;"}
	res := PreprocessFile(file, Options{})

	assert.True(t, res.Pragmas.SemicolonRequired)
	assert.True(t, res.Pragmas.NewdeclsRequired)
}

func TestPreprocessFile_RecursiveMacroDepthBounded(t *testing.T) {
	file := FileInput{ID: 1, Path: "a.sp", Text: "#define A B\n#define B A\nint x = A;"}
	require.NotPanics(t, func() {
		PreprocessFile(file, Options{MaxExpansionDepth: 4})
	})
}

func TestPreprocessFile_MacroOverflowCommaAbsorbedByLastArg(t *testing.T) {
	file := FileInput{ID: 1, Path: "a.sp", Text: "#define PAIR(%0,%1) %0 %1\nint x = PAIR(1, 2, 3);"}
	res := PreprocessFile(file, Options{})
	// Second slot absorbs the overflow: "2, 3" rather than erroring.
	assert.Contains(t, res.Text, "1 2, 3")
}

type stubResolver struct {
	files map[string]FileInput
}

func (r stubResolver) Resolve(fromDir, includeName string, chevron bool) (FileInput, bool) {
	f, ok := r.files[includeName]
	return f, ok
}
