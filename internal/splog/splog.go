// Package splog provides the core's leveled debug logging. It follows the
// shape of the teacher's internal/debug package: a build-time-overridable
// flag, a mutex-guarded writer (os.Stderr unless SetOutput replaces it)
// that receives lines only while debug logging is enabled, and one
// helper per subsystem so call sites read like a sentence
// ("splog.Preprocessor(...)") instead of a generic Logf(component, ...).
package splog

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// EnableDebug can be overridden at build time:
//
//	go build -ldflags "-X github.com/standardbeagle/sourcepawn-studio-go/internal/splog.EnableDebug=true"
var EnableDebug = "false"

var (
	mu       sync.Mutex
	output   io.Writer
	quietFor bool // suppressed for e.g. an LSP stdio transport sharing our stdout
)

// SetOutput sets the writer debug lines are sent to. Pass nil to disable.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetQuietMode suppresses all output regardless of EnableDebug or a
// configured writer; used when an external transport (an LSP server, in
// the shipped binary) owns stdio and debug lines would corrupt it.
func SetQuietMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	quietFor = enabled
}

func enabled() bool {
	return EnableDebug == "true" || os.Getenv("SPLS_DEBUG") == "1"
}

func logf(component, format string, args ...any) {
	if !enabled() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if quietFor || output == nil {
		return
	}
	fmt.Fprintf(output, "[%s] "+format+"\n", append([]any{component}, args...)...)
}

func Preprocessor(format string, args ...any)  { logf("preprocessor", format, args...) }
func ItemTree(format string, args ...any)      { logf("itemtree", format, args...) }
func Resolver(format string, args ...any)      { logf("resolver", format, args...) }
func Query(format string, args ...any)         { logf("query", format, args...) }
func IncludeGraph(format string, args ...any)  { logf("includegraph", format, args...) }
func VFS(format string, args ...any)           { logf("vfs", format, args...) }
func Body(format string, args ...any)          { logf("body", format, args...) }

func init() {
	// Default to stderr so a CLI driver's stdout (e.g. piped JSON) stays
	// clean; SetOutput(nil) still disables entirely.
	output = os.Stderr
}
