// Package remote looks up repository metadata on code hosts so fragment
// deep links can point at a real branch.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/julianshen/fragminer/internal/knowledge"
)

// ErrUnsupportedHost is returned for identities on hosts no resolver serves.
var ErrUnsupportedHost = errors.New("unsupported code host")

// Resolver returns the default branch of a hosted repository.
type Resolver interface {
	DefaultBranch(ctx context.Context, id knowledge.Identity) (string, error)
}

// Router dispatches to the GitHub or GitLab resolver by URL host. A nil
// field disables that host.
type Router struct {
	GitHub      Resolver
	GitLab      Resolver
	GitHubHosts []string // extra hosts served by GitHub, e.g. an Enterprise server
	GitLabHosts []string // extra hosts served by GitLab besides *gitlab*
}

// DefaultBranch implements Resolver.
func (r *Router) DefaultBranch(ctx context.Context, id knowledge.Identity) (string, error) {
	u, err := url.Parse(id.URL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("repository %s has no remote URL", id.Repo())
	}
	host := strings.ToLower(u.Hostname())

	switch {
	case r.GitHub != nil && (host == "github.com" || contains(r.GitHubHosts, host)):
		return r.GitHub.DefaultBranch(ctx, id)
	case r.GitLab != nil && (strings.Contains(host, "gitlab") || contains(r.GitLabHosts, host)):
		return r.GitLab.DefaultBranch(ctx, id)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedHost, host)
}

func contains(hosts []string, host string) bool {
	for _, h := range hosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

// FillRef returns id with Ref set to the default branch when id has a URL
// but no Ref. Lookup failures leave Ref empty so links fall back to HEAD.
func FillRef(ctx context.Context, r Resolver, id knowledge.Identity, logger *slog.Logger) knowledge.Identity {
	if r == nil || id.URL == "" || id.Ref != "" {
		return id
	}
	if logger == nil {
		logger = slog.Default()
	}
	branch, err := r.DefaultBranch(ctx, id)
	if err != nil {
		logger.Debug("default branch lookup failed", "repo", id.Repo(), "error", err)
		return id
	}
	id.Ref = branch
	return id
}
