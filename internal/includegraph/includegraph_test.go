package includegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/preprocessor"
)

func TestBuild_SingleParentWalksToRoot(t *testing.T) {
	// plugin.sp includes shared.inc includes base.inc; base.inc's single
	// parent is shared.inc, so the walk moves up to it and stops there:
	// shared.inc's parent is a .sp file, which makes shared.inc its own root.
	plugin, shared, base := ids.FileID(1), ids.FileID(2), ids.FileID(3)
	g := Build([]FileIncludes{
		{File: plugin, Path: "plugin.sp", Includes: []preprocessor.IncludeEdge{{Target: shared}}},
		{File: shared, Path: "shared.inc", Includes: []preprocessor.IncludeEdge{{Target: base}}},
		{File: base, Path: "base.inc"},
	})

	root, ok := g.ProjectRoot(base)
	require.True(t, ok)
	assert.Equal(t, shared, root)
}

func TestBuild_IncWithSPParentIsOwnRoot(t *testing.T) {
	plugin, shared := ids.FileID(1), ids.FileID(2)
	g := Build([]FileIncludes{
		{File: plugin, Path: "plugin.sp", Includes: []preprocessor.IncludeEdge{{Target: shared}}},
		{File: shared, Path: "shared.inc"},
	})

	root, ok := g.ProjectRoot(shared)
	require.True(t, ok)
	assert.Equal(t, shared, root)
}

func TestBuild_MultipleSPParentsIsAmbiguous(t *testing.T) {
	a, b, shared := ids.FileID(1), ids.FileID(2), ids.FileID(3)
	g := Build([]FileIncludes{
		{File: a, Path: "a.sp", Includes: []preprocessor.IncludeEdge{{Target: shared}}},
		{File: b, Path: "b.sp", Includes: []preprocessor.IncludeEdge{{Target: shared}}},
		{File: shared, Path: "shared.sp"},
	})

	_, ok := g.ProjectRoot(shared)
	assert.False(t, ok)
}

func TestBuild_NoParentsIsItsOwnRoot(t *testing.T) {
	g := Build([]FileIncludes{{File: ids.FileID(1), Path: "standalone.sp"}})
	root, ok := g.ProjectRoot(ids.FileID(1))
	require.True(t, ok)
	assert.Equal(t, ids.FileID(1), root)
}

func TestProjectSubgraph_ReachesEveryTransitiveInclude(t *testing.T) {
	plugin, a, b, c := ids.FileID(1), ids.FileID(2), ids.FileID(3), ids.FileID(4)
	g := Build([]FileIncludes{
		{File: plugin, Path: "plugin.sp", Includes: []preprocessor.IncludeEdge{{Target: a}, {Target: b}}},
		{File: a, Path: "a.inc", Includes: []preprocessor.IncludeEdge{{Target: c}}},
		{File: b, Path: "b.inc"},
		{File: c, Path: "c.inc"},
	})

	sub := g.ProjectSubgraph(plugin)
	assert.ElementsMatch(t, []ids.FileID{plugin, a, b, c}, sub.Files)
}

func TestProjectRoot_IncludeCycleTerminates(t *testing.T) {
	a, b := ids.FileID(1), ids.FileID(2)
	g := Build([]FileIncludes{
		{File: a, Path: "a.inc", Includes: []preprocessor.IncludeEdge{{Target: b}}},
		{File: b, Path: "b.inc", Includes: []preprocessor.IncludeEdge{{Target: a}}},
	})

	root, ok := g.ProjectRoot(a)
	require.True(t, ok)
	assert.Contains(t, []ids.FileID{a, b}, root)
}
