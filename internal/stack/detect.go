// Package stack detects the technologies a repository is built with from its
// dependency manifests.
package stack

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/julianshen/fragminer/internal/knowledge"
)

// manifest pairs a root-level file with the parser that reads it.
type manifest struct {
	file  string
	parse func(data []byte) ([]knowledge.StackItem, error)
}

// manifests are read in this order; the order decides which entry wins when
// two manifests name the same technology.
var manifests = []manifest{
	{"package.json", parsePackageJSON},
	{"go.mod", parseGoMod},
	{"Cargo.toml", parseCargoManifest},
	{"pyproject.toml", parsePyproject},
	{"requirements.txt", parseRequirements},
}

// Detect reads the dependency manifests at the top of root and returns the
// recognised technologies, unique by name. A missing manifest is skipped
// silently and a malformed one is logged and skipped.
func Detect(root string, logger *slog.Logger) ([]knowledge.StackItem, error) {
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

	seen := map[string]bool{}
	var items []knowledge.StackItem
	for _, m := range manifests {
		data, err := os.ReadFile(filepath.Join(root, m.file))
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("skipping unreadable manifest", "file", m.file, "error", err)
			}
			continue
		}
		found, err := m.parse(data)
		if err != nil {
			logger.Warn("skipping malformed manifest", "file", m.file, "error", err)
			continue
		}
		for _, item := range found {
			if seen[item.Name] {
				continue
			}
			seen[item.Name] = true
			items = append(items, item)
		}
	}
	logger.Debug("detected stack", "root", root, "count", len(items))
	return items, nil
}

// match appends an item for every table entry whose package lookup succeeds.
func match(table []known, lookup func(pkg string) (string, bool)) []knowledge.StackItem {
	var items []knowledge.StackItem
	for _, k := range table {
		spec, ok := lookup(k.pkg)
		if !ok {
			continue
		}
		items = append(items, knowledge.StackItem{
			Name:     k.name,
			Version:  NormalizeVersion(spec),
			Category: k.category,
		})
	}
	return items
}
