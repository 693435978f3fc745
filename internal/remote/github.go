package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v68/github"

	"github.com/julianshen/fragminer/internal/knowledge"
)

// GitHub resolves default branches through the GitHub REST API.
type GitHub struct {
	client *github.Client
}

// NewGitHub creates a GitHub resolver. An empty baseURL targets github.com;
// otherwise it names a GitHub Enterprise server. An empty token makes
// anonymous requests. A nil httpClient uses http.DefaultClient.
func NewGitHub(baseURL, token string, httpClient *http.Client) (*GitHub, error) {
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring github base url: %w", err)
		}
	}
	return &GitHub{client: client}, nil
}

// DefaultBranch implements Resolver.
func (g *GitHub) DefaultBranch(ctx context.Context, id knowledge.Identity) (string, error) {
	repo, _, err := g.client.Repositories.Get(ctx, id.Owner, id.Name)
	if err != nil {
		return "", fmt.Errorf("github: get repository %s: %w", id.Repo(), err)
	}
	branch := repo.GetDefaultBranch()
	if branch == "" {
		return "", fmt.Errorf("github: repository %s has no default branch", id.Repo())
	}
	return branch, nil
}
