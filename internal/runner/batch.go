// internal/runner/batch.go
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianshen/fragminer/internal/knowledge"
	"github.com/julianshen/fragminer/internal/output"
	"github.com/julianshen/fragminer/internal/remote"
	"github.com/julianshen/fragminer/internal/repo"
	"github.com/julianshen/fragminer/internal/stack"
)

// AcquireFunc matches the signature of repo.Acquire.
type AcquireFunc func(ctx context.Context, identifier string, opts repo.Options) (*repo.Repository, error)

// DetectFunc matches the signature of stack.Detect.
type DetectFunc func(root string, logger *slog.Logger) ([]knowledge.StackItem, error)

// BatchConfig controls a run over many repositories.
type BatchConfig struct {
	Concurrency int // repositories processed in parallel
	Repo        repo.Options
	Pipeline    knowledge.Config
	Resolver    remote.Resolver // nil disables default-branch lookups
	Logger      *slog.Logger    // nil uses slog.Default()
}

// DefaultBatchConfig returns sensible defaults for batch runs.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Concurrency: 4,
		Repo:        repo.DefaultOptions(),
		Pipeline:    knowledge.DefaultConfig(),
	}
}

// RepoResult is the outcome for one repository. Err is set when the
// repository could not be processed; the other fields are then partial.
type RepoResult struct {
	Identifier string
	Identity   knowledge.Identity
	Stack      []knowledge.StackItem
	Files      int
	Fragments  []knowledge.KnowledgeFragment
	Duration   time.Duration
	Err        error
}

// Batch runs acquire -> detect stack -> extract for each repository.
type Batch struct {
	cfg     BatchConfig
	acquire AcquireFunc
	detect  DetectFunc
	logger  *slog.Logger
}

// NewBatch creates a Batch. nil acquire and detect use repo.Acquire and
// stack.Detect.
func NewBatch(cfg BatchConfig, acquire AcquireFunc, detect DetectFunc) *Batch {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultBatchConfig().Concurrency
	}
	if acquire == nil {
		acquire = repo.Acquire
	}
	if detect == nil {
		detect = stack.Detect
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{cfg: cfg, acquire: acquire, detect: detect, logger: logger}
}

// Run processes every identifier and returns one result per identifier in
// input order. A failing repository never affects the others.
func (b *Batch) Run(ctx context.Context, identifiers []string) []RepoResult {
	results := make([]RepoResult, len(identifiers))

	var g errgroup.Group
	g.SetLimit(b.cfg.Concurrency)
	for i, identifier := range identifiers {
		i, identifier := i, identifier // per-iteration copies (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			results[i] = b.RunOne(ctx, identifier)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// RunOne processes a single repository.
func (b *Batch) RunOne(ctx context.Context, identifier string) RepoResult {
	start := time.Now()
	res := b.runOne(ctx, identifier)
	res.Duration = time.Since(start)

	if res.Err != nil {
		b.logger.Error("repository failed", "repo", identifier, "error", res.Err)
	} else {
		b.logger.Info("repository done", "repo", res.Identity.Repo(),
			"files", res.Files, "fragments", len(res.Fragments), "duration", res.Duration)
	}
	return res
}

func (b *Batch) runOne(ctx context.Context, identifier string) RepoResult {
	res := RepoResult{Identifier: identifier}

	repoOpts := b.cfg.Repo
	if repoOpts.Logger == nil {
		repoOpts.Logger = b.logger
	}
	r, err := b.acquire(ctx, identifier, repoOpts)
	if err != nil {
		res.Err = fmt.Errorf("acquire: %w", err)
		return res
	}
	defer func() {
		if err := r.Close(); err != nil {
			b.logger.Warn("cleanup failed", "repo", identifier, "error", err)
		}
	}()

	logger := b.logger.With("repo", r.Identity.Repo())
	res.Identity = remote.FillRef(ctx, b.cfg.Resolver, r.Identity, logger)

	res.Stack, err = b.detect(r.Root, logger)
	if err != nil {
		res.Err = fmt.Errorf("detect stack: %w", err)
		return res
	}

	pipelineCfg := b.cfg.Pipeline
	pipelineCfg.Logger = logger
	result, err := knowledge.Run(ctx, r.Root, res.Stack, res.Identity, pipelineCfg)
	if err != nil {
		res.Err = err
		return res
	}
	res.Files = len(result.Files)
	res.Fragments = result.Fragments
	return res
}

// BuildDocument collects results into an output document.
func BuildDocument(results []RepoResult, generatedAt time.Time) *output.Document {
	doc := output.NewDocument(generatedAt)
	for _, r := range results {
		summary := output.RepoSummary{
			Repo:       r.Identifier,
			URL:        r.Identity.URL,
			Ref:        r.Identity.Ref,
			Files:      r.Files,
			Fragments:  len(r.Fragments),
			DurationMs: r.Duration.Milliseconds(),
		}
		if r.Identity.Name != "" {
			summary.Repo = r.Identity.Repo()
		}
		for _, s := range r.Stack {
			summary.Stack = append(summary.Stack, s.Display())
		}
		if r.Err != nil {
			summary.Error = r.Err.Error()
		}
		doc.Add(summary, r.Fragments)
	}
	return doc
}
