package knowledge

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// knownFile is one entry of the well-known knowledge file table.
type knownFile struct {
	path     string
	tier     int
	category SourceCategory
}

// knownFiles is looked up in order; the order is the discovery order used to
// break ties between files of the same tier.
var knownFiles = []knownFile{
	// Tier 1: explicit AI/agent instructions.
	{"CLAUDE.md", 1, SourceAIInstructions},
	{"AGENTS.md", 1, SourceAIInstructions},
	{"AGENT.md", 1, SourceAIInstructions},
	{"GEMINI.md", 1, SourceAIInstructions},
	{".cursorrules", 1, SourceAIInstructions},
	{".windsurfrules", 1, SourceAIInstructions},
	{".clinerules", 1, SourceAIInstructions},
	{".github/copilot-instructions.md", 1, SourceAIInstructions},

	// Tier 2: conventions and architecture.
	{"CONVENTIONS.md", 2, SourceConventions},
	{"docs/CONVENTIONS.md", 2, SourceConventions},
	{"STYLEGUIDE.md", 2, SourceConventions},
	{"docs/STYLEGUIDE.md", 2, SourceConventions},
	{"CODING_GUIDELINES.md", 2, SourceConventions},
	{"ARCHITECTURE.md", 2, SourceArchitecture},
	{"docs/ARCHITECTURE.md", 2, SourceArchitecture},

	// Tier 3: general project documents.
	{"CONTRIBUTING.md", 3, SourceContributing},
	{".github/CONTRIBUTING.md", 3, SourceContributing},
	{"docs/CONTRIBUTING.md", 3, SourceContributing},
	{"README.md", 3, SourceReadme},
	{"SECURITY.md", 3, SourceSecurity},
	{".github/SECURITY.md", 3, SourceSecurity},

	// Tier 4: machine-readable config.
	{".eslintrc", 4, SourceLinting},
	{".eslintrc.json", 4, SourceLinting},
	{".eslintrc.js", 4, SourceLinting},
	{".eslintrc.cjs", 4, SourceLinting},
	{".eslintrc.yml", 4, SourceLinting},
	{".eslintrc.yaml", 4, SourceLinting},
	{"eslint.config.js", 4, SourceLinting},
	{"eslint.config.mjs", 4, SourceLinting},
	{"biome.json", 4, SourceLinting},
	{".golangci.yml", 4, SourceLinting},
	{".golangci.yaml", 4, SourceLinting},
	{"ruff.toml", 4, SourceLinting},
	{"tsconfig.json", 4, SourceTypeScript},
	{".prettierrc", 4, SourceFormatting},
	{".prettierrc.json", 4, SourceFormatting},
	{".prettierrc.yml", 4, SourceFormatting},
	{".prettierrc.yaml", 4, SourceFormatting},
	{".editorconfig", 4, SourceFormatting},
	{"rustfmt.toml", 4, SourceFormatting},
}

// docExtensions are the file types collected from the documentation directory.
var docExtensions = map[string]bool{
	".md":  true,
	".mdx": true,
	".txt": true,
}

// DiscoverConfig controls file discovery.
type DiscoverConfig struct {
	DocsDir  string   // documentation directory scanned recursively, relative to root
	MaxDepth int      // directory levels scanned below and including DocsDir
	Exclude  []string // doublestar globs matched against relative paths
}

// DefaultDiscoverConfig returns sensible defaults for discovery.
func DefaultDiscoverConfig() DiscoverConfig {
	return DiscoverConfig{
		DocsDir:  "docs",
		MaxDepth: 3,
	}
}

// Discover returns the knowledge-bearing files under root, sorted by
// priority tier. A missing file or unreadable docs directory only shrinks
// the result; an empty result means there is nothing to extract.
func Discover(root string, cfg DiscoverConfig, logger *slog.Logger) ([]DiscoveredFile, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat repository root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", root)
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultDiscoverConfig().MaxDepth
	}

	seen := map[string]bool{}
	var files []DiscoveredFile
	add := func(rel string, tier int, category SourceCategory) {
		if seen[rel] || isExcluded(rel, cfg.Exclude) {
			return
		}
		abs := filepath.Join(root, filepath.FromSlash(rel))
		fi, err := os.Stat(abs)
		if err != nil || !fi.Mode().IsRegular() {
			return
		}
		seen[rel] = true
		files = append(files, DiscoveredFile{
			AbsolutePath:   abs,
			RelativePath:   rel,
			PriorityTier:   tier,
			SourceCategory: category,
		})
	}

	for _, kf := range knownFiles {
		add(kf.path, kf.tier, kf.category)
	}

	if cfg.DocsDir != "" {
		docsRel := path.Clean(filepath.ToSlash(cfg.DocsDir))
		for _, rel := range scanDocs(root, docsRel, cfg.MaxDepth, logger) {
			add(rel, 3, SourceDocumentation)
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].PriorityTier < files[j].PriorityTier
	})
	return files, nil
}

// scanDocs walks docsRel breadth-first within each directory (files before
// subdirectories, both in name order) and returns matching relative paths.
// Hidden directories are skipped and descent stops at maxDepth levels.
func scanDocs(root, docsRel string, maxDepth int, logger *slog.Logger) []string {
	var out []string
	var walk func(rel string, depth int)
	walk = func(rel string, depth int) {
		entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("skipping documentation directory", "dir", rel, "error", err)
			}
			return
		}
		var dirs []fs.DirEntry
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() {
				if !strings.HasPrefix(name, ".") {
					dirs = append(dirs, e)
				}
				continue
			}
			if docExtensions[strings.ToLower(path.Ext(name))] {
				out = append(out, path.Join(rel, name))
			}
		}
		if depth >= maxDepth {
			return
		}
		for _, d := range dirs {
			walk(path.Join(rel, d.Name()), depth+1)
		}
	}
	walk(docsRel, 1)
	return out
}

// isExcluded reports whether rel matches any of the doublestar patterns.
func isExcluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
