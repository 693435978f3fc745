// internal/runner/input_test.go
package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBatch(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolveReposFromArgs(t *testing.T) {
	repos, err := ResolveRepos([]string{"acme/widgets", " ", "./local"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/widgets", "./local"}, repos)
}

func TestResolveReposFromFile(t *testing.T) {
	path := writeBatch(t, "repos.txt", "acme/widgets\n")

	repos, err := ResolveRepos(nil, path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/widgets"}, repos)
}

func TestResolveReposFromStdin(t *testing.T) {
	reader := strings.NewReader("acme/widgets\n# skip\nacme/gadgets\n")
	repos, err := ResolveRepos(nil, "", reader)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/widgets", "acme/gadgets"}, repos)
}

func TestResolveReposArgsTakePrecedence(t *testing.T) {
	path := writeBatch(t, "repos.txt", "from/file\n")
	repos, err := ResolveRepos([]string{"from/args"}, path, strings.NewReader("from/stdin"))
	require.NoError(t, err)
	assert.Equal(t, []string{"from/args"}, repos)
}

func TestResolveReposFileTakesPrecedenceOverStdin(t *testing.T) {
	path := writeBatch(t, "repos.txt", "from/file\n")
	repos, err := ResolveRepos(nil, path, strings.NewReader("from/stdin"))
	require.NoError(t, err)
	assert.Equal(t, []string{"from/file"}, repos)
}

func TestResolveReposNoInput(t *testing.T) {
	_, err := ResolveRepos(nil, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no repositories")

	_, err = ResolveRepos(nil, "", strings.NewReader("  \n# only comments\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no repositories")
}

func TestReadBatchFileText(t *testing.T) {
	path := writeBatch(t, "repos.txt", `# frontend
acme/widgets
  https://gitlab.com/acme/gadgets.git   # mirrored

git@github.com:acme/tools.git
`)
	repos, err := ReadBatchFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"acme/widgets",
		"https://gitlab.com/acme/gadgets.git",
		"git@github.com:acme/tools.git",
	}, repos)
}

func TestReadBatchFileYAML(t *testing.T) {
	path := writeBatch(t, "repos.yaml", "repos:\n  - acme/widgets\n  - \"\"\n  - https://gitlab.com/acme/gadgets\n")
	repos, err := ReadBatchFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/widgets", "https://gitlab.com/acme/gadgets"}, repos)
}

func TestReadBatchFileInvalidYAML(t *testing.T) {
	path := writeBatch(t, "repos.yml", "repos: [unclosed\n")
	_, err := ReadBatchFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing batch file")
}

func TestReadBatchFileEmpty(t *testing.T) {
	path := writeBatch(t, "repos.txt", "\n# nothing\n")
	_, err := ReadBatchFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestReadBatchFileMissing(t *testing.T) {
	_, err := ReadBatchFile("/nonexistent/repos.txt")
	require.Error(t, err)
}
