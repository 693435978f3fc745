package stack

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/fragminer/internal/knowledge"
)

// ---------- helpers ----------

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func names(items []knowledge.StackItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Display()
	}
	return out
}

// ---------- tests ----------

func TestDetectNoManifests(t *testing.T) {
	items, err := Detect(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDetectMissingRoot(t *testing.T) {
	_, err := Detect(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}

func TestDetectPackageJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{
  "name": "widgets",
  "dependencies": {
    "react": "^18.2.0",
    "next": "14.1.0",
    "@prisma/client": "^5.10.0",
    "left-pad": "1.0.0"
  },
  "devDependencies": {
    "typescript": "~5.4.2",
    "prisma": "^5.10.0",
    "vitest": "latest"
  }
}`)

	items, err := Detect(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"typescript@5.4.2",
		"next@14.1.0",
		"react@18.2.0",
		"prisma@5.10.0",
		"vitest",
	}, names(items))

	assert.Equal(t, CategoryLanguage, items[0].Category)
	assert.Equal(t, CategoryFramework, items[1].Category)
	assert.Equal(t, CategoryDatabase, items[3].Category)
	assert.Equal(t, CategoryTesting, items[4].Category)
}

func TestDetectGoMod(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), `module example.com/widgets

go 1.22

require (
	github.com/jackc/pgx/v5 v5.5.4
	github.com/labstack/echo/v4 v4.11.4
	github.com/stretchr/testify v1.9.0
	github.com/spf13/cobra-extra v0.1.0
)
`)

	items, err := Detect(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"go@1.22", "echo@4.11.4", "pgx@5.5.4", "testify@1.9.0"}, names(items))
}

func TestDetectCargoToml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), `[package]
name = "widgets"
rust-version = "1.75"

[dependencies]
tokio = { version = "1.36", features = ["full"] }
serde = "1.0"
axum = { git = "https://github.com/tokio-rs/axum" }

[dev-dependencies]
sqlx = "0.7"
`)

	items, err := Detect(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust@1.75", "tokio@1.36", "axum", "serde@1.0", "sqlx@0.7"}, names(items))
}

func TestDetectPyproject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `[project]
name = "widgets"
requires-python = ">=3.11"
dependencies = [
  "FastAPI[all]>=0.110.0",
  "Pydantic==2.6.4 ; python_version >= '3.11'",
]

[project.optional-dependencies]
test = ["pytest>=8.0"]
`)

	items, err := Detect(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"python@3.11", "fastapi@0.110.0", "pydantic@2.6.4", "pytest@8.0"}, names(items))
}

func TestDetectPoetry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `[tool.poetry.dependencies]
python = "^3.12"
django = "^5.0"

[tool.poetry.group.dev.dependencies]
pytest = { version = "^8.1" }
`)

	items, err := Detect(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"python@3.12", "django@5.0", "pytest@8.1"}, names(items))
}

func TestDetectRequirementsTxt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "requirements.txt"), `# web
flask==3.0.2  # pinned
-r dev.txt
SQLAlchemy>=2.0

`)

	items, err := Detect(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "flask@3.0.2", "sqlalchemy@2.0"}, names(items))
}

func TestDetectDeduplicatesAcrossManifests(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), "[project]\nrequires-python = \">=3.10\"\ndependencies = [\"pytest>=7\"]\n")
	writeFile(t, filepath.Join(dir, "requirements.txt"), "pytest==8.0.0\nflask\n")

	items, err := Detect(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"python@3.10", "pytest@7", "flask"}, names(items))

	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.Name], it.Name)
		seen[it.Name] = true
	}
}

func TestDetectSkipsMalformedManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"dependencies": {`)
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/x\n\ngo 1.21\n")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	items, err := Detect(dir, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"go@1.21"}, names(items))
	assert.Contains(t, buf.String(), "skipping malformed manifest")
	assert.Contains(t, buf.String(), "package.json")
}

func TestMatchesModule(t *testing.T) {
	assert.True(t, matchesModule("github.com/gin-gonic/gin", "github.com/gin-gonic/gin"))
	assert.True(t, matchesModule("github.com/jackc/pgx/v5", "github.com/jackc/pgx"))
	assert.False(t, matchesModule("github.com/jackc/pgx/v", "github.com/jackc/pgx"))
	assert.False(t, matchesModule("github.com/jackc/pgxpool", "github.com/jackc/pgx"))
	assert.False(t, matchesModule("github.com/jackc/pgx/vx", "github.com/jackc/pgx"))
}

func TestParseRequirement(t *testing.T) {
	name, spec, ok := parseRequirement("Django_REST.framework[extra] >= 3.14 ; python_version > '3'")
	require.True(t, ok)
	assert.Equal(t, "django-rest-framework", name)
	assert.Equal(t, ">= 3.14", spec)

	_, _, ok = parseRequirement("==1.0")
	assert.False(t, ok)
}
