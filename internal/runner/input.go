// internal/runner/input.go
package runner

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// batchFile is the YAML form of a batch file.
type batchFile struct {
	Repos []string `yaml:"repos"`
}

// ResolveRepos determines the repository identifiers to process.
// Priority: args > batchPath > stdinReader.
// stdinReader may be nil if stdin is a TTY (no pipe).
func ResolveRepos(args []string, batchPath string, stdinReader io.Reader) ([]string, error) {
	var repos []string
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			repos = append(repos, a)
		}
	}
	if len(repos) > 0 {
		return repos, nil
	}

	if batchPath != "" {
		return ReadBatchFile(batchPath)
	}

	if stdinReader != nil {
		data, err := io.ReadAll(stdinReader)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		if repos := parseTextList(data); len(repos) > 0 {
			return repos, nil
		}
	}

	return nil, fmt.Errorf("no repositories provided: pass them as arguments, use --file, or pipe to stdin")
}

// ReadBatchFile reads repository identifiers from path. Files ending in
// .yml or .yaml hold a "repos" list; anything else is plain text with one
// identifier per line, where blank lines and "#" comments are ignored.
func ReadBatchFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var repos []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		var f batchFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing batch file %s: %w", path, err)
		}
		for _, r := range f.Repos {
			if r = strings.TrimSpace(r); r != "" {
				repos = append(repos, r)
			}
		}
	default:
		repos = parseTextList(data)
	}

	if len(repos) == 0 {
		return nil, fmt.Errorf("batch file is empty: %s", path)
	}
	return repos, nil
}

func parseTextList(data []byte) []string {
	var repos []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			repos = append(repos, line)
		}
	}
	return repos
}
