// Command spls is a CLI driver over the semantic analysis core: it loads
// a SourcePawn workspace into internal/query.Database and exposes the
// query/facade surface (spec.md §6) as subcommands, the same role the
// teacher's cmd/lci plays over internal/indexing — a thin urfave/cli
// wrapper, no business logic of its own.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/config"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/facade"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/query"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/splog"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/workspace"
	"github.com/standardbeagle/sourcepawn-studio-go/pkg/pathutil"
)

func main() {
	app := &cli.App{
		Name:                   "spls",
		Usage:                  "SourcePawn semantic analysis core",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Workspace root directory",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				splog.EnableDebug = "true"
			}
			return nil
		},
		Commands: []*cli.Command{
			loadCommand,
			symbolsCommand,
			hoverCommand,
			definitionCommand,
			referencesCommand,
			watchCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openWorkspace loads the workspace at the "root" flag's path into a
// fresh Database via config.Load: .spproject.kdl if present, else
// .spproject.toml, else config.Default with root as the sole root.
func openWorkspace(ctx context.Context, c *cli.Context) (*query.Database, int, error) {
	root := c.String("root")

	cfg, err := config.Load(root)
	if err != nil {
		return nil, 0, fmt.Errorf("loading project config: %w", err)
	}

	db := query.New(cfg)
	count, err := workspace.Load(ctx, db.VFS, cfg)
	if err != nil {
		return nil, 0, fmt.Errorf("loading workspace: %w", err)
	}
	return db, count, nil
}

var loadCommand = &cli.Command{
	Name:  "load",
	Usage: "Load the workspace and print file/cache statistics",
	Action: func(c *cli.Context) error {
		db, count, err := openWorkspace(c.Context, c)
		if err != nil {
			return err
		}
		stats := db.Stats.Snapshot()
		fmt.Printf("loaded %d files\n", count)
		fmt.Printf("cache hits=%d misses=%d hit_rate=%.2f revisions=%d\n",
			stats.Hits, stats.Misses, stats.HitRate(), stats.Revisions)
		return nil
	},
}

var symbolsCommand = &cli.Command{
	Name:      "symbols",
	Usage:     "Print the document symbols of a file",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		db, _, err := openWorkspace(c.Context, c)
		if err != nil {
			return err
		}
		file, err := fileArg(db, c)
		if err != nil {
			return err
		}
		symbols, err := facade.DocumentSymbols(db, file)
		if err != nil {
			return err
		}
		for _, s := range symbols {
			printSymbol(s, 0)
		}
		return nil
	},
}

func printSymbol(s facade.Symbol, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	fmt.Printf("%s (%d:%d-%d:%d)\n", s.Name, s.Range.Start.Line, s.Range.Start.Column, s.Range.End.Line, s.Range.End.Column)
	for _, child := range s.Children {
		printSymbol(child, depth+1)
	}
}

var hoverCommand = &cli.Command{
	Name:      "hover",
	Usage:     "Print the hover text at a line:column position",
	ArgsUsage: "<path> <line> <column>",
	Action: func(c *cli.Context) error {
		db, _, err := openWorkspace(c.Context, c)
		if err != nil {
			return err
		}
		file, pos, err := fileAndPosArgs(db, c)
		if err != nil {
			return err
		}
		hover, err := facade.HoverAt(db, file, pos)
		if err != nil {
			return err
		}
		if hover == nil {
			fmt.Println("no hover information")
			return nil
		}
		fmt.Println(hover.Text)
		return nil
	},
}

var definitionCommand = &cli.Command{
	Name:      "definition",
	Usage:     "Print the declaration site(s) for a line:column position",
	ArgsUsage: "<path> <line> <column>",
	Action: func(c *cli.Context) error {
		db, _, err := openWorkspace(c.Context, c)
		if err != nil {
			return err
		}
		file, pos, err := fileAndPosArgs(db, c)
		if err != nil {
			return err
		}
		locs, err := facade.DefinitionAt(db, file, pos)
		if err != nil {
			return err
		}
		printLocations(db, c, locs)
		return nil
	},
}

var referencesCommand = &cli.Command{
	Name:      "references",
	Usage:     "Print every reference to the identifier at a line:column position",
	ArgsUsage: "<path> <line> <column>",
	Action: func(c *cli.Context) error {
		db, _, err := openWorkspace(c.Context, c)
		if err != nil {
			return err
		}
		file, pos, err := fileAndPosArgs(db, c)
		if err != nil {
			return err
		}
		locs, err := facade.ReferencesAt(db, file, pos)
		if err != nil {
			return err
		}
		printLocations(db, c, locs)
		return nil
	},
}

var watchCommand = &cli.Command{
	Name:  "watch",
	Usage: "Load the workspace and keep it synced with on-disk changes until interrupted",
	Action: func(c *cli.Context) error {
		db, count, err := openWorkspace(c.Context, c)
		if err != nil {
			return err
		}
		fmt.Printf("loaded %d files, watching %s (ctrl-c to stop)\n", count, c.String("root"))

		cfg, err := config.Load(c.String("root"))
		if err != nil {
			return err
		}
		w, err := workspace.NewWatcher(db.VFS, cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		w.Start(ctx)
		<-ctx.Done()
		w.Stop()
		return nil
	},
}

func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}

func fileArg(db *query.Database, c *cli.Context) (ids.FileID, error) {
	if c.Args().Len() < 1 {
		return 0, fmt.Errorf("missing <path> argument")
	}
	path := c.Args().Get(0)
	abs, err := absPath(path)
	if err != nil {
		return 0, err
	}
	snap := db.VFS.Snapshot()
	id, ok := snap.FileByPath(abs)
	if !ok {
		return 0, fmt.Errorf("%s is not loaded in this workspace", path)
	}
	return id, nil
}

func fileAndPosArgs(db *query.Database, c *cli.Context) (ids.FileID, facade.Position, error) {
	file, err := fileArg(db, c)
	if err != nil {
		return 0, facade.Position{}, err
	}
	if c.Args().Len() < 3 {
		return 0, facade.Position{}, fmt.Errorf("missing <line> <column> arguments")
	}
	line, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return 0, facade.Position{}, fmt.Errorf("invalid line %q: %w", c.Args().Get(1), err)
	}
	column, err := strconv.Atoi(c.Args().Get(2))
	if err != nil {
		return 0, facade.Position{}, fmt.Errorf("invalid column %q: %w", c.Args().Get(2), err)
	}
	return file, facade.Position{Line: line, Column: column}, nil
}

func printLocations(db *query.Database, c *cli.Context, locs []facade.Location) {
	if len(locs) == 0 {
		fmt.Println("no results")
		return
	}
	root, err := absPath(c.String("root"))
	if err != nil {
		root = c.String("root")
	}
	snap := db.VFS.Snapshot()
	for _, loc := range locs {
		path := fmt.Sprintf("file#%d", loc.File)
		if rec, ok := snap.File(loc.File); ok {
			path = pathutil.ToRelative(rec.Path, root)
		}
		fmt.Printf("%s:%d:%d\n", path, loc.Range.Start.Line, loc.Range.Start.Column)
	}
}
