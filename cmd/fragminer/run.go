// cmd/fragminer/run.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/julianshen/fragminer/internal/config"
	"github.com/julianshen/fragminer/internal/knowledge"
	"github.com/julianshen/fragminer/internal/output"
	"github.com/julianshen/fragminer/internal/remote"
	"github.com/julianshen/fragminer/internal/repo"
	"github.com/julianshen/fragminer/internal/runner"
	"github.com/julianshen/fragminer/internal/store"
)

// session carries what every extraction command needs after start-up.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func newSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if _, err := output.NewFormatter(cfg.Output.Format); err != nil {
		return nil, err
	}
	return &session{
		cfg:    cfg,
		logger: newLogger(cmd.ErrOrStderr(), opts.verbose),
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
		now:    time.Now,
	}, nil
}

// newBatch wires the configured collaborators into a batch runner.
func (s *session) newBatch(repoOpts repo.Options) (*runner.Batch, error) {
	resolver, err := newResolver(s.cfg.Remote, s.logger)
	if err != nil {
		return nil, err
	}

	bc := runner.DefaultBatchConfig()
	bc.Concurrency = s.cfg.Batch.Concurrency
	bc.Repo = repoOpts
	bc.Resolver = resolver
	bc.Logger = s.logger
	bc.Pipeline = knowledge.Config{
		Discover: knowledge.DiscoverConfig{
			DocsDir:  s.cfg.Discovery.DocsDir,
			MaxDepth: s.cfg.Discovery.MaxDepth,
			Exclude:  s.cfg.Discovery.Exclude,
		},
		Extract: knowledge.ExtractorConfig{
			Concurrency: s.cfg.Extraction.Concurrency,
		},
	}
	return runner.NewBatch(bc, nil, nil), nil
}

// newResolver builds the GitHub/GitLab default-branch resolver. A token that
// cannot be resolved falls back to anonymous requests.
func newResolver(cfg config.RemoteConfig, logger *slog.Logger) (remote.Resolver, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	router := &remote.Router{}

	ghToken, err := cfg.GitHub.ResolveToken()
	if err != nil {
		logger.Debug("github token unavailable, using anonymous requests", "error", err)
	}
	gh, err := remote.NewGitHub(cfg.GitHub.BaseURL, ghToken, nil)
	if err != nil {
		return nil, err
	}
	router.GitHub = gh
	if host := hostOf(cfg.GitHub.BaseURL); host != "" {
		router.GitHubHosts = append(router.GitHubHosts, host)
	}

	glToken, err := cfg.GitLab.ResolveToken()
	if err != nil {
		logger.Debug("gitlab token unavailable, using anonymous requests", "error", err)
	}
	gl, err := remote.NewGitLab(cfg.GitLab.BaseURL, glToken, nil)
	if err != nil {
		return nil, err
	}
	router.GitLab = gl
	if host := hostOf(cfg.GitLab.BaseURL); host != "" {
		router.GitLabHosts = append(router.GitLabHosts, host)
	}

	cached, err := remote.NewCached(router, cfg.CacheSize, cfg.RequestsPerSecond)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func hostOf(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// emit writes the document, prints the console summary and persists the
// fragments when a store is configured.
func (s *session) emit(ctx context.Context, results []runner.RepoResult) error {
	doc := runner.BuildDocument(results, s.now())

	formatter, err := output.NewFormatter(s.cfg.Output.Format)
	if err != nil {
		return err
	}
	data, err := formatter.Format(doc)
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if path := s.cfg.Output.Path; path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		s.logger.Info("output written", "path", path, "format", s.cfg.Output.Format)
	} else if _, err := s.stdout.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if s.cfg.Store.DSN != "" {
		if err := s.save(ctx, results); err != nil {
			return err
		}
	}

	fmt.Fprint(s.stderr, output.NewSummaryRenderer(isTerminal(s.stderr)).Render(doc))
	return nil
}

func (s *session) save(ctx context.Context, results []runner.RepoResult) error {
	st, err := store.Open(s.cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		runID, err := st.SaveRun(ctx, r.Identity.Repo(), r.Fragments)
		if err != nil {
			return fmt.Errorf("saving %s: %w", r.Identity.Repo(), err)
		}
		s.logger.Debug("fragments stored", "repo", r.Identity.Repo(), "run", runID, "fragments", len(r.Fragments))
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
