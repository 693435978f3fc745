// internal/output/formatter.go
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianshen/fragminer/internal/knowledge"
)

// Document is the serialized result of one run over one or more
// repositories.
type Document struct {
	GeneratedAt time.Time                     `json:"generated_at" yaml:"generated_at"`
	Repos       []RepoSummary                 `json:"repos" yaml:"repos"`
	Fragments   []knowledge.KnowledgeFragment `json:"fragments" yaml:"fragments"`
}

// RepoSummary describes what a run did with one repository.
type RepoSummary struct {
	Repo       string   `json:"repo" yaml:"repo"`
	URL        string   `json:"url,omitempty" yaml:"url,omitempty"`
	Ref        string   `json:"ref,omitempty" yaml:"ref,omitempty"`
	Stack      []string `json:"stack" yaml:"stack"`
	Files      int      `json:"files" yaml:"files"`
	Fragments  int      `json:"fragments" yaml:"fragments"`
	DurationMs int64    `json:"duration_ms" yaml:"duration_ms"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewDocument creates an empty Document stamped with generatedAt in UTC.
func NewDocument(generatedAt time.Time) *Document {
	return &Document{
		GeneratedAt: generatedAt.UTC(),
		Repos:       []RepoSummary{},
		Fragments:   []knowledge.KnowledgeFragment{},
	}
}

// Add appends one repository's summary and fragments.
func (d *Document) Add(summary RepoSummary, fragments []knowledge.KnowledgeFragment) {
	if summary.Stack == nil {
		summary.Stack = []string{}
	}
	d.Repos = append(d.Repos, summary)
	d.Fragments = append(d.Fragments, fragments...)
}

// Failed returns the number of repositories that ended with an error.
func (d *Document) Failed() int {
	n := 0
	for _, r := range d.Repos {
		if r.Error != "" {
			n++
		}
	}
	return n
}

// Formatter formats a Document into output bytes.
type Formatter interface {
	Format(doc *Document) ([]byte, error)
}

// Formats lists the names accepted by NewFormatter.
var Formats = []string{"json", "yaml", "markdown"}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return NewJSONFormatter(), nil
	case "yaml", "yml":
		return NewYAMLFormatter(), nil
	case "markdown", "md":
		return NewMarkdownFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", name, strings.Join(Formats, ", "))
	}
}
