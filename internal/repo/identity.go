package repo

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/julianshen/fragminer/internal/knowledge"
)

// DefaultHost is used to expand "owner/name" shorthand.
const DefaultHost = "github.com"

var (
	shorthand = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
	scpLike   = regexp.MustCompile(`^(?:[A-Za-z0-9_.-]+@)?([A-Za-z0-9_.-]+):(.+)$`)
)

// Remote is a parsed clone source.
type Remote struct {
	CloneURL string
	Identity knowledge.Identity
}

// ParseRemote parses a repository identifier that is not a local directory:
// "owner/name" shorthand, an https or ssh URL, an scp-like
// "git@host:owner/name.git" address, or a file:// URL.
func ParseRemote(identifier string) (Remote, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Remote{}, fmt.Errorf("empty repository identifier")
	}

	if shorthand.MatchString(identifier) {
		if strings.HasPrefix(identifier, "./") || strings.HasPrefix(identifier, "../") {
			return Remote{}, fmt.Errorf("local path %s does not exist", identifier)
		}
		id, err := identityFromPath(DefaultHost, identifier)
		if err != nil {
			return Remote{}, err
		}
		return Remote{CloneURL: id.URL + ".git", Identity: id}, nil
	}

	if strings.Contains(identifier, "://") {
		u, err := url.Parse(identifier)
		if err != nil {
			return Remote{}, fmt.Errorf("parsing repository URL %q: %w", identifier, err)
		}
		switch u.Scheme {
		case "https", "http", "ssh", "git":
			id, err := identityFromPath(u.Hostname(), u.Path)
			if err != nil {
				return Remote{}, err
			}
			return Remote{CloneURL: identifier, Identity: id}, nil
		case "file":
			dir := strings.TrimSuffix(path.Clean(u.Path), ".git")
			return Remote{
				CloneURL: identifier,
				Identity: knowledge.Identity{Owner: path.Base(path.Dir(dir)), Name: path.Base(dir)},
			}, nil
		default:
			return Remote{}, fmt.Errorf("unsupported repository URL scheme %q", u.Scheme)
		}
	}

	if m := scpLike.FindStringSubmatch(identifier); m != nil {
		id, err := identityFromPath(m[1], m[2])
		if err != nil {
			return Remote{}, err
		}
		return Remote{CloneURL: identifier, Identity: id}, nil
	}

	return Remote{}, fmt.Errorf("unrecognised repository identifier %q", identifier)
}

// IdentityFromRemoteURL derives an identity from a configured git remote,
// such as the output of "git config --get remote.origin.url".
func IdentityFromRemoteURL(remote string) (knowledge.Identity, error) {
	r, err := ParseRemote(remote)
	if err != nil {
		return knowledge.Identity{}, err
	}
	return r.Identity, nil
}

// identityFromPath splits "owner/name(.git)" under host. Owners may contain
// slashes for nested groups.
func identityFromPath(host, p string) (knowledge.Identity, error) {
	p = strings.TrimSuffix(strings.Trim(p, "/"), ".git")
	i := strings.LastIndex(p, "/")
	if host == "" || i <= 0 || i == len(p)-1 {
		return knowledge.Identity{}, fmt.Errorf("repository path %q does not name owner/name", p)
	}
	return knowledge.Identity{
		Owner: p[:i],
		Name:  p[i+1:],
		URL:   fmt.Sprintf("https://%s/%s", host, p),
	}, nil
}
