package knowledge

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "CONVENTIONS.md"), "# Conventions\n\n## Rules\n\nAlways use early returns. Keep functions small and focused.\n")
	writeFile(t, filepath.Join(dir, ".eslintrc.json"), "{\n  \"rules\": {\n    \"no-console\": \"error\"\n  }\n}\n")
	writeFile(t, filepath.Join(dir, "README.md"), "Widgets must be registered before use.\nSee below.\n\n## Testing\n\nRun `make test`; every package must keep coverage above eighty percent.\n")
	writeFile(t, filepath.Join(dir, "LICENSE"), "MIT License\n\nCopyright (c) 2024 Example Corp.\n")
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultDiscoverConfig(), cfg.Discover)
	assert.Equal(t, DefaultExtractorConfig(), cfg.Extract)
	assert.Nil(t, cfg.Reader)
	assert.Nil(t, cfg.Logger)
}

func TestRunEndToEnd(t *testing.T) {
	dir := writeFixtureRepo(t)
	stack := []StackItem{{Name: "typescript", Version: "5.4.0", Category: "language"}}

	result, err := Run(context.Background(), dir, stack, testIdentity, DefaultConfig())
	require.NoError(t, err)
	require.False(t, result.Empty())

	require.Len(t, result.Files, 3)
	require.Len(t, result.Fragments, 3)

	rules := result.Fragments[0]
	assert.Equal(t, "CONVENTIONS.md", rules.Source.File)
	assert.Equal(t, 3, rules.Source.Line)
	assert.Equal(t, CategoryConventions, rules.Category)
	assert.Equal(t, TypeRule, rules.Type)
	assert.Equal(t, ConfidenceHigh, rules.Confidence)
	assert.Equal(t, []string{"typescript@5.4.0"}, rules.Stack)
	assert.Equal(t, []string{"typescript"}, rules.Tags)

	readme := result.Fragments[1]
	assert.Equal(t, "README.md", readme.Source.File)
	assert.Equal(t, "Testing", readme.Title)
	assert.Equal(t, CategoryTesting, readme.Category)
	assert.Equal(t, ConfidenceMedium, readme.Confidence)

	eslint := result.Fragments[2]
	assert.Equal(t, ".eslintrc.json", eslint.Title)
	assert.Equal(t, 1, eslint.Source.Line)
	assert.Equal(t, ConfidenceLow, eslint.Confidence)

	var eslintBlocks []RawBlock
	for _, b := range result.Blocks {
		if b.SourceFile == ".eslintrc.json" {
			eslintBlocks = append(eslintBlocks, b)
		}
	}
	require.Len(t, eslintBlocks, 1)
	assert.Equal(t, ".eslintrc.json", eslintBlocks[0].SectionTitle)
	assert.Equal(t, 5, eslintBlocks[0].LineEnd)
}

func TestRunIsDeterministic(t *testing.T) {
	dir := writeFixtureRepo(t)

	first, err := Run(context.Background(), dir, nil, testIdentity, DefaultConfig())
	require.NoError(t, err)
	second, err := Run(context.Background(), dir, nil, testIdentity, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, first.Fragments, second.Fragments)
}

func TestRunIDsStableWhenLaterLinesChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CLAUDE.md")
	head := "## Errors\n\nAlways wrap errors with context before returning them.\n\n"
	writeFile(t, path, head+"## Tests\n\nTests must be table driven and run in parallel.\n")

	before, err := Run(context.Background(), dir, nil, testIdentity, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, before.Fragments, 2)

	writeFile(t, path, head+"## Tests\n\nTests must be table driven, hermetic and run in parallel with -race.\n")
	after, err := Run(context.Background(), dir, nil, testIdentity, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, after.Fragments, 2)

	assert.Equal(t, before.Fragments[0].ID, after.Fragments[0].ID)
	assert.Equal(t, before.Fragments[1].ID, after.Fragments[1].ID)
	assert.NotEqual(t, before.Fragments[1].Description, after.Fragments[1].Description)
}

func TestRunNothingToExtract(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")

	result, err := Run(context.Background(), dir, nil, testIdentity, DefaultConfig())
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Empty(t, result.Files)
}

func TestRunMissingRoot(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "missing"), nil, testIdentity, DefaultConfig())
	assert.Error(t, err)
}

func TestExtractFromRoot(t *testing.T) {
	dir := writeFixtureRepo(t)
	blocks, err := Extract(context.Background(), dir, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, "Rules", blocks[0].SectionTitle)
}
