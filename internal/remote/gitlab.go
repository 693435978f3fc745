package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xanzy/go-gitlab"

	"github.com/julianshen/fragminer/internal/knowledge"
)

// GitLab resolves default branches through the GitLab REST API.
type GitLab struct {
	client *gitlab.Client
}

// NewGitLab creates a GitLab resolver for the instance at baseURL (empty
// means gitlab.com). A nil httpClient uses the library default.
func NewGitLab(baseURL, token string, httpClient *http.Client) (*GitLab, error) {
	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, gitlab.WithHTTPClient(httpClient))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &GitLab{client: client}, nil
}

// DefaultBranch implements Resolver. Nested groups are part of Owner.
func (g *GitLab) DefaultBranch(ctx context.Context, id knowledge.Identity) (string, error) {
	project, _, err := g.client.Projects.GetProject(id.Repo(), nil, gitlab.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("gitlab: get project %s: %w", id.Repo(), err)
	}
	if project.DefaultBranch == "" {
		return "", fmt.Errorf("gitlab: project %s has no default branch", id.Repo())
	}
	return project.DefaultBranch, nil
}
