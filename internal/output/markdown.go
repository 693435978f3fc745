// internal/output/markdown.go
package output

import (
	"fmt"
	"strings"

	"github.com/julianshen/fragminer/internal/knowledge"
)

// MarkdownFormatter outputs a Document as human-readable Markdown, one
// section per category.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the Document as Markdown.
func (f *MarkdownFormatter) Format(doc *Document) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Knowledge fragments\n\n")
	repoLabel := "repositories"
	if len(doc.Repos) == 1 {
		repoLabel = "repository"
	}
	b.WriteString(fmt.Sprintf("*Generated %s from %d %s.*\n",
		doc.GeneratedAt.Format("2006-01-02 15:04 MST"), len(doc.Repos), repoLabel))

	if len(doc.Repos) > 0 {
		b.WriteString("\n| Repository | Stack | Files | Fragments | Status |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, r := range doc.Repos {
			status := "ok"
			if r.Error != "" {
				status = "error: " + escapeCell(r.Error)
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %s |\n",
				r.Repo, escapeCell(strings.Join(r.Stack, ", ")), r.Files, r.Fragments, status))
		}
	}

	if len(doc.Fragments) == 0 {
		b.WriteString("\nNo knowledge fragments found.\n")
		return []byte(b.String()), nil
	}

	for _, group := range groupByCategory(doc.Fragments) {
		b.WriteString(fmt.Sprintf("\n## %s\n", group.category))
		for _, frag := range group.fragments {
			writeFragment(&b, frag)
		}
	}
	return []byte(b.String()), nil
}

func writeFragment(b *strings.Builder, frag knowledge.KnowledgeFragment) {
	b.WriteString(fmt.Sprintf("\n### %s\n\n", frag.Title))

	location := fmt.Sprintf("%s:%d", frag.Source.File, frag.Source.Line)
	if frag.Source.URL != "" {
		location = fmt.Sprintf("[%s](%s)", location, frag.Source.URL)
	}
	b.WriteString(fmt.Sprintf("*%s · %s confidence · %s · %s*\n\n",
		frag.Type, frag.Confidence, frag.Source.Repo, location))

	for _, line := range strings.Split(frag.Description, "\n") {
		if line == "" {
			b.WriteString(">\n")
			continue
		}
		b.WriteString("> " + line + "\n")
	}

	if len(frag.Tags) > 0 {
		tags := make([]string, len(frag.Tags))
		for i, t := range frag.Tags {
			tags[i] = "`" + t + "`"
		}
		b.WriteString("\nTags: " + strings.Join(tags, ", ") + "\n")
	}
}

type categoryGroup struct {
	category  knowledge.Category
	fragments []knowledge.KnowledgeFragment
}

// groupByCategory keeps categories in order of first appearance.
func groupByCategory(fragments []knowledge.KnowledgeFragment) []categoryGroup {
	index := map[knowledge.Category]int{}
	var groups []categoryGroup
	for _, f := range fragments {
		i, ok := index[f.Category]
		if !ok {
			i = len(groups)
			index[f.Category] = i
			groups = append(groups, categoryGroup{category: f.Category})
		}
		groups[i].fragments = append(groups[i].fragments, f)
	}
	return groups
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
