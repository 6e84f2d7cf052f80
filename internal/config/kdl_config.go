package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load `.spproject.kdl` from projectRoot. Returns
// (nil, nil) when the file does not exist — callers fall back to
// Default(). Mirrors config.LoadKDL in the teacher, including resolving
// relative paths against the directory the config file lives in rather
// than the process's working directory.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ".spproject.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .spproject.kdl: %w", err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	resolved := make([]string, 0, len(cfg.Roots))
	for _, r := range cfg.Roots {
		if filepath.IsAbs(r) {
			resolved = append(resolved, filepath.Clean(r))
		} else {
			resolved = append(resolved, filepath.Clean(filepath.Join(projectRoot, r)))
		}
	}
	if len(resolved) == 0 {
		resolved = []string{filepath.Clean(projectRoot)}
	}
	cfg.Roots = resolved

	cfg.GlobalIncludeDirs = resolveAll(projectRoot, cfg.GlobalIncludeDirs)
	cfg.ProjectIncludeDirs = resolveAll(projectRoot, cfg.ProjectIncludeDirs)

	return cfg, nil
}

func resolveAll(base string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = filepath.Clean(p)
		} else {
			out[i] = filepath.Clean(filepath.Join(base, p))
		}
	}
	return out
}

// parseKDL parses the KDL document body. Recognized top-level nodes:
//
//	project { root "." }
//	include { global "/opt/sourcemod/scripting/include" project "include" }
//	exclude { "**/.git/**" }
//	preprocessor { macro_expansion_depth 6 }
func parseKDL(content string) (*Config, error) {
	cfg := Default()
	cfg.Roots = nil // the KDL document is authoritative on roots; Default()'s cwd is just a fallback
	cfg.Exclude = nil

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				if nodeName(cn) == "root" {
					if s, ok := firstStringArg(cn); ok {
						cfg.Roots = append(cfg.Roots, s)
					}
				}
			}
		case "include":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "global":
					cfg.GlobalIncludeDirs = append(cfg.GlobalIncludeDirs, collectStringArgs(cn)...)
				case "project":
					cfg.ProjectIncludeDirs = append(cfg.ProjectIncludeDirs, collectStringArgs(cn)...)
				}
			}
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		case "preprocessor":
			for _, cn := range n.Children {
				if nodeName(cn) == "macro_expansion_depth" {
					if v, ok := firstIntArg(cn); ok {
						cfg.MacroExpansionDepth = v
					}
				}
			}
		}
	}

	if len(cfg.Exclude) == 0 {
		cfg.Exclude = defaultExclusions()
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

// collectStringArgs supports both inline (`exclude "a" "b"`) and block
// (`exclude { "a" \n "b" }`) KDL forms, matching the teacher's
// collectStringArgs in internal/config/kdl_config.go.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
