// Package repo turns a repository identifier into a directory on disk plus
// the identity fragments are attributed to.
package repo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/julianshen/fragminer/internal/knowledge"
)

// Options controls how remote repositories are fetched.
type Options struct {
	CloneDepth int    // 0 clones full history
	Branch     string // empty checks out the remote default branch
	TempDir    string // parent for clones; empty uses os.TempDir()
	Logger     *slog.Logger
}

// DefaultOptions returns shallow-clone options.
func DefaultOptions() Options {
	return Options{CloneDepth: 1}
}

// Repository is an acquired working tree.
type Repository struct {
	Root     string
	Identity knowledge.Identity
	cloned   bool
}

// Cloned reports whether Root is a temporary clone owned by this Repository.
func (r *Repository) Cloned() bool {
	return r.cloned
}

// Close removes the temporary clone, if any. Local trees are left alone.
func (r *Repository) Close() error {
	if !r.cloned || r.Root == "" {
		return nil
	}
	if err := os.RemoveAll(r.Root); err != nil {
		return fmt.Errorf("removing clone %s: %w", r.Root, err)
	}
	return nil
}

// Acquire resolves identifier to a working tree. An existing directory is
// used in place; anything else is parsed as a remote and cloned into a
// temporary directory that Close removes.
func Acquire(ctx context.Context, identifier string, opts Options) (*Repository, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if info, err := os.Stat(identifier); err == nil && info.IsDir() {
		return openLocal(ctx, identifier, logger)
	}

	remote, err := ParseRemote(identifier)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(opts.TempDir, "fragminer-*")
	if err != nil {
		return nil, fmt.Errorf("creating clone directory: %w", err)
	}
	logger.Info("cloning repository", "repo", remote.Identity.Repo(), "url", remote.CloneURL)
	if err := NewGitRunner(dir).Clone(ctx, remote.CloneURL, dir, opts.CloneDepth, opts.Branch); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("cloning %s: %w", identifier, err)
	}

	id := remote.Identity
	id.Ref = opts.Branch
	if id.Ref == "" {
		if branch, err := NewGitRunner(dir).CurrentBranch(ctx); err == nil {
			id.Ref = branch
		}
	}
	return &Repository{Root: dir, Identity: id, cloned: true}, nil
}

func openLocal(ctx context.Context, dir string, logger *slog.Logger) (*Repository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	git := NewGitRunner(abs)
	id := knowledge.Identity{Owner: "local", Name: filepath.Base(abs)}
	if remoteURL, err := git.RemoteURL(ctx); err == nil && remoteURL != "" {
		if parsed, err := IdentityFromRemoteURL(remoteURL); err == nil {
			id = parsed
		} else {
			logger.Debug("ignoring unparseable origin remote", "dir", abs, "remote", remoteURL, "error", err)
		}
	}
	if id.URL != "" {
		if branch, err := git.CurrentBranch(ctx); err == nil {
			id.Ref = branch
		}
	}
	return &Repository{Root: abs, Identity: id}, nil
}
