package stack

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"

	"github.com/julianshen/fragminer/internal/knowledge"
)

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func parsePackageJSON(data []byte) ([]knowledge.StackItem, error) {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json: %w", err)
	}
	return match(npmPackages, func(name string) (string, bool) {
		if v, ok := pkg.Dependencies[name]; ok {
			return v, true
		}
		v, ok := pkg.DevDependencies[name]
		return v, ok
	}), nil
}

func parseGoMod(data []byte) ([]knowledge.StackItem, error) {
	f, err := modfile.ParseLax("go.mod", data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing go.mod: %w", err)
	}
	var items []knowledge.StackItem
	if f.Go != nil {
		items = append(items, knowledge.StackItem{
			Name:     "go",
			Version:  NormalizeVersion(f.Go.Version),
			Category: CategoryLanguage,
		})
	}
	return append(items, match(goModules, func(base string) (string, bool) {
		for _, r := range f.Require {
			if matchesModule(r.Mod.Path, base) {
				return r.Mod.Version, true
			}
		}
		return "", false
	})...), nil
}

// matchesModule reports whether path is base or base with a major version
// suffix such as "/v5".
func matchesModule(path, base string) bool {
	if path == base {
		return true
	}
	suffix, ok := strings.CutPrefix(path, base+"/v")
	if !ok || suffix == "" {
		return false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type cargoManifest struct {
	Package struct {
		RustVersion string `toml:"rust-version"`
	} `toml:"package"`
	Dependencies    map[string]any `toml:"dependencies"`
	DevDependencies map[string]any `toml:"dev-dependencies"`
}

func parseCargoManifest(data []byte) ([]knowledge.StackItem, error) {
	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing Cargo.toml: %w", err)
	}
	items := []knowledge.StackItem{{
		Name:     "rust",
		Version:  NormalizeVersion(m.Package.RustVersion),
		Category: CategoryLanguage,
	}}
	return append(items, match(crates, func(name string) (string, bool) {
		if v, ok := m.Dependencies[name]; ok {
			return tableVersion(v), true
		}
		v, ok := m.DevDependencies[name]
		return tableVersion(v), ok
	})...), nil
}

// tableVersion reads a TOML dependency value written either as a version
// string or as an inline table with a "version" key.
func tableVersion(v any) string {
	switch d := v.(type) {
	case string:
		return d
	case map[string]any:
		if s, ok := d["version"].(string); ok {
			return s
		}
	}
	return ""
}

type pyprojectManifest struct {
	Project struct {
		RequiresPython       string              `toml:"requires-python"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
			Group        map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func parsePyproject(data []byte) ([]knowledge.StackItem, error) {
	var m pyprojectManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing pyproject.toml: %w", err)
	}

	deps := map[string]string{}
	add := func(name, spec string) {
		name = normalizePythonName(name)
		if _, ok := deps[name]; !ok {
			deps[name] = spec
		}
	}
	addRequirement := func(line string) {
		if name, spec, ok := parseRequirement(line); ok {
			add(name, spec)
		}
	}

	for _, line := range m.Project.Dependencies {
		addRequirement(line)
	}
	for _, extra := range sortedKeys(m.Project.OptionalDependencies) {
		for _, line := range m.Project.OptionalDependencies[extra] {
			addRequirement(line)
		}
	}
	poetry := m.Tool.Poetry
	for _, name := range sortedKeys(poetry.Dependencies) {
		add(name, tableVersion(poetry.Dependencies[name]))
	}
	for _, group := range sortedKeys(poetry.Group) {
		groupDeps := poetry.Group[group].Dependencies
		for _, name := range sortedKeys(groupDeps) {
			add(name, tableVersion(groupDeps[name]))
		}
	}

	pythonVersion := m.Project.RequiresPython
	if pythonVersion == "" {
		pythonVersion = deps["python"]
	}
	return pythonItems(pythonVersion, deps), nil
}

func parseRequirements(data []byte) ([]knowledge.StackItem, error) {
	deps := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if name, spec, ok := parseRequirement(line); ok {
			if _, dup := deps[name]; !dup {
				deps[name] = spec
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading requirements.txt: %w", err)
	}
	return pythonItems("", deps), nil
}

func pythonItems(pythonVersion string, deps map[string]string) []knowledge.StackItem {
	items := []knowledge.StackItem{{
		Name:     "python",
		Version:  NormalizeVersion(pythonVersion),
		Category: CategoryLanguage,
	}}
	return append(items, match(pythonPackages, func(name string) (string, bool) {
		v, ok := deps[name]
		return v, ok
	})...)
}

// requirementLine splits a PEP 508 requirement into name and version spec,
// ignoring extras.
var requirementLine = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(?:\[[^\]]*\])?\s*(.*)$`)

func parseRequirement(line string) (name, spec string, ok bool) {
	if i := strings.Index(line, " #"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, ";"); i >= 0 {
		line = line[:i]
	}
	m := requirementLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return normalizePythonName(m[1]), strings.TrimSpace(m[2]), true
}

func normalizePythonName(name string) string {
	return strings.NewReplacer("_", "-", ".", "-").Replace(strings.ToLower(name))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
