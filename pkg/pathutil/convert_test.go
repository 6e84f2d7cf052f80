package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "simple relative path",
			absPath:  "/home/user/project/src/main.sp",
			rootDir:  "/home/user/project",
			expected: "src/main.sp",
		},
		{
			name:     "nested relative path",
			absPath:  "/home/user/project/include/core/handles.inc",
			rootDir:  "/home/user/project",
			expected: "include/core/handles.inc",
		},
		{
			name:     "root level file",
			absPath:  "/home/user/project/plugin.sp",
			rootDir:  "/home/user/project",
			expected: "plugin.sp",
		},
		{
			name:     "same directory",
			absPath:  "/home/user/project",
			rootDir:  "/home/user/project",
			expected: ".",
		},
		{
			name:     "already relative path",
			absPath:  "src/main.sp",
			rootDir:  "/home/user/project",
			expected: "src/main.sp",
		},
		{
			name:     "path outside root - fallback to absolute",
			absPath:  "/other/location/file.sp",
			rootDir:  "/home/user/project",
			expected: "/other/location/file.sp",
		},
		{
			name:     "empty root directory",
			absPath:  "/home/user/project/file.sp",
			rootDir:  "",
			expected: "/home/user/project/file.sp",
		},
		{
			name:     "empty absolute path",
			absPath:  "",
			rootDir:  "/home/user/project",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToRelative(tt.absPath, tt.rootDir)

			if runtime.GOOS == "windows" {
				result = filepath.ToSlash(result)
				expected := filepath.ToSlash(tt.expected)
				if result != expected {
					t.Errorf("ToRelative() = %v, want %v", result, expected)
				}
			} else {
				if result != tt.expected {
					t.Errorf("ToRelative() = %v, want %v", result, tt.expected)
				}
			}
		})
	}
}

func TestToRelativeAll(t *testing.T) {
	rootDir := "/home/user/project"
	input := []string{
		"/home/user/project/src/main.sp",
		"/home/user/project/include/core.inc",
		"/other/location/file.sp",
	}

	results := ToRelativeAll(input, rootDir)

	expected := []string{
		"src/main.sp",
		"include/core.inc",
		"/other/location/file.sp",
	}

	if len(results) != len(expected) {
		t.Fatalf("Expected %d results, got %d", len(expected), len(results))
	}
	for i, got := range results {
		if got != expected[i] {
			t.Errorf("Result %d: got %v, want %v", i, got, expected[i])
		}
	}
}

func TestToRelativeAllEmptySlice(t *testing.T) {
	results := ToRelativeAll(nil, "/home/user/project")
	if len(results) != 0 {
		t.Errorf("Expected empty slice, got %d elements", len(results))
	}
}
