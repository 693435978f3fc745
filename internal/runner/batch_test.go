// internal/runner/batch_test.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/fragminer/internal/knowledge"
	"github.com/julianshen/fragminer/internal/repo"
)

// ---------- helpers ----------

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixtureRepos builds one working tree per name and returns an AcquireFunc
// that serves them as github.com/acme/<name>.
func fixtureRepos(t *testing.T, names ...string) AcquireFunc {
	t.Helper()
	roots := map[string]string{}
	for _, name := range names {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "CLAUDE.md"),
			fmt.Sprintf("## Errors in %s\n\nAlways wrap errors with context before returning them.\n", name))
		writeFile(t, filepath.Join(dir, "package.json"), `{"dependencies": {"next": "^14.1.0"}}`)
		roots["acme/"+name] = dir
	}
	return func(_ context.Context, identifier string, _ repo.Options) (*repo.Repository, error) {
		root, ok := roots[identifier]
		if !ok {
			return nil, fmt.Errorf("repository %s not found", identifier)
		}
		owner, name, _ := strings.Cut(identifier, "/")
		return &repo.Repository{
			Root:     root,
			Identity: knowledge.Identity{Owner: owner, Name: name, URL: "https://github.com/" + identifier},
		}, nil
	}
}

type staticResolver struct {
	branch string
	calls  atomic.Int32
}

func (s *staticResolver) DefaultBranch(_ context.Context, _ knowledge.Identity) (string, error) {
	s.calls.Add(1)
	return s.branch, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

// ---------- tests ----------

func TestDefaultBatchConfig(t *testing.T) {
	cfg := DefaultBatchConfig()
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, repo.DefaultOptions(), cfg.Repo)
	assert.Equal(t, knowledge.DefaultConfig(), cfg.Pipeline)
	assert.Nil(t, cfg.Resolver)
}

func TestBatchRunSingleRepository(t *testing.T) {
	cfg := DefaultBatchConfig()
	cfg.Logger = quietLogger()
	b := NewBatch(cfg, fixtureRepos(t, "widgets"), nil)

	res := b.RunOne(context.Background(), "acme/widgets")
	require.NoError(t, res.Err)
	assert.Equal(t, "acme/widgets", res.Identity.Repo())
	assert.Equal(t, []knowledge.StackItem{{Name: "next", Version: "14.1.0", Category: "framework"}}, res.Stack)
	assert.Equal(t, 1, res.Files)
	require.Len(t, res.Fragments, 1)
	assert.Equal(t, []string{"next@14.1.0"}, res.Fragments[0].Stack)
	assert.Equal(t, knowledge.CategoryErrorHandling, res.Fragments[0].Category)
	assert.Equal(t, "https://github.com/acme/widgets/blob/HEAD/CLAUDE.md#L1", res.Fragments[0].Source.URL)
}

func TestBatchRunPreservesInputOrder(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f"}
	serve := fixtureRepos(t, names...)
	slow := func(ctx context.Context, identifier string, opts repo.Options) (*repo.Repository, error) {
		// Earlier inputs finish last.
		idx := strings.Index("abcdef", strings.TrimPrefix(identifier, "acme/"))
		time.Sleep(time.Duration(len(names)-idx) * 5 * time.Millisecond)
		return serve(ctx, identifier, opts)
	}

	cfg := DefaultBatchConfig()
	cfg.Concurrency = 3
	cfg.Logger = quietLogger()
	var ids []string
	for _, n := range names {
		ids = append(ids, "acme/"+n)
	}

	results := NewBatch(cfg, slow, nil).Run(context.Background(), ids)
	require.Len(t, results, len(ids))
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, ids[i], r.Identifier)
		assert.Equal(t, ids[i], r.Identity.Repo())
	}
}

func TestBatchRunIsolatesFailures(t *testing.T) {
	cfg := DefaultBatchConfig()
	cfg.Logger = quietLogger()
	b := NewBatch(cfg, fixtureRepos(t, "widgets", "gadgets"), nil)

	results := b.Run(context.Background(), []string{"acme/widgets", "acme/missing", "acme/gadgets"})
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Len(t, results[0].Fragments, 1)

	require.Error(t, results[1].Err)
	assert.Contains(t, results[1].Err.Error(), "acquire")
	assert.Empty(t, results[1].Fragments)

	assert.NoError(t, results[2].Err)
	assert.Len(t, results[2].Fragments, 1)
}

func TestBatchRunDetectFailure(t *testing.T) {
	cfg := DefaultBatchConfig()
	cfg.Logger = quietLogger()
	detect := func(string, *slog.Logger) ([]knowledge.StackItem, error) {
		return nil, errors.New("manifest exploded")
	}

	res := NewBatch(cfg, fixtureRepos(t, "widgets"), detect).RunOne(context.Background(), "acme/widgets")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "detect stack")
}

func TestBatchRunFillsRefFromResolver(t *testing.T) {
	resolver := &staticResolver{branch: "trunk"}
	cfg := DefaultBatchConfig()
	cfg.Logger = quietLogger()
	cfg.Resolver = resolver

	res := NewBatch(cfg, fixtureRepos(t, "widgets"), nil).RunOne(context.Background(), "acme/widgets")
	require.NoError(t, res.Err)
	assert.Equal(t, "trunk", res.Identity.Ref)
	require.Len(t, res.Fragments, 1)
	assert.Equal(t, "https://github.com/acme/widgets/blob/trunk/CLAUDE.md#L1", res.Fragments[0].Source.URL)
	assert.Equal(t, int32(1), resolver.calls.Load())
}

func TestBatchRunCancelledContext(t *testing.T) {
	cfg := DefaultBatchConfig()
	cfg.Logger = quietLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewBatch(cfg, fixtureRepos(t, "widgets"), nil).Run(ctx, []string{"acme/widgets"})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestBuildDocument(t *testing.T) {
	results := []RepoResult{
		{
			Identifier: "acme/widgets",
			Identity:   knowledge.Identity{Owner: "acme", Name: "widgets", URL: "https://github.com/acme/widgets", Ref: "main"},
			Stack:      []knowledge.StackItem{{Name: "next", Version: "14.1.0", Category: "framework"}},
			Files:      2,
			Fragments:  []knowledge.KnowledgeFragment{{ID: "abc"}},
			Duration:   1500 * time.Millisecond,
		},
		{Identifier: "acme/missing", Err: errors.New("acquire: not found")},
	}

	doc := BuildDocument(results, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, doc.Repos, 2)
	assert.Equal(t, "acme/widgets", doc.Repos[0].Repo)
	assert.Equal(t, "main", doc.Repos[0].Ref)
	assert.Equal(t, []string{"next@14.1.0"}, doc.Repos[0].Stack)
	assert.Equal(t, int64(1500), doc.Repos[0].DurationMs)
	assert.Equal(t, 1, doc.Repos[0].Fragments)

	assert.Equal(t, "acme/missing", doc.Repos[1].Repo)
	assert.Equal(t, "acquire: not found", doc.Repos[1].Error)
	assert.Equal(t, []string{}, doc.Repos[1].Stack)

	assert.Len(t, doc.Fragments, 1)
	assert.Equal(t, 1, doc.Failed())
}
