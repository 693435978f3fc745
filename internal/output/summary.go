// internal/output/summary.go
package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianshen/fragminer/internal/knowledge"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"})
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))

	confidenceStyles = map[knowledge.Confidence]lipgloss.Style{
		knowledge.ConfidenceHigh:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}),
		knowledge.ConfidenceMedium: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}),
		knowledge.ConfidenceLow:    mutedStyle,
	}
)

// confidenceOrder is the display order of confidence counts.
var confidenceOrder = []knowledge.Confidence{
	knowledge.ConfidenceHigh,
	knowledge.ConfidenceMedium,
	knowledge.ConfidenceLow,
}

// SummaryRenderer prints a short console report of a Document.
type SummaryRenderer struct {
	styled bool
}

// NewSummaryRenderer creates a SummaryRenderer. styled enables colors and
// should only be set when writing to a terminal.
func NewSummaryRenderer(styled bool) *SummaryRenderer {
	return &SummaryRenderer{styled: styled}
}

// Render returns the summary text.
func (r *SummaryRenderer) Render(doc *Document) string {
	var b strings.Builder

	b.WriteString(r.style(headingStyle, fmt.Sprintf("%s from %s",
		plural(len(doc.Fragments), "fragment", "fragments"),
		plural(len(doc.Repos), "repository", "repositories"))))
	b.WriteString("\n")

	for _, repo := range doc.Repos {
		if repo.Error != "" {
			b.WriteString(fmt.Sprintf("  %s %s\n", repo.Repo, r.style(errorStyle, "failed: "+repo.Error)))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", repo.Repo,
			r.style(mutedStyle, fmt.Sprintf("%d files, %d fragments, %dms", repo.Files, repo.Fragments, repo.DurationMs))))
	}

	if len(doc.Fragments) == 0 {
		return b.String()
	}

	b.WriteString(r.style(headingStyle, "By category"))
	b.WriteString("\n")
	for _, c := range countCategories(doc.Fragments) {
		b.WriteString(fmt.Sprintf("  %-16s %d\n", c.category, c.count))
	}

	confidence := map[knowledge.Confidence]int{}
	for _, f := range doc.Fragments {
		confidence[f.Confidence]++
	}
	b.WriteString(r.style(headingStyle, "By confidence"))
	b.WriteString("\n")
	for _, c := range confidenceOrder {
		label := fmt.Sprintf("%-16s", c)
		b.WriteString(fmt.Sprintf("  %s %d\n", r.style(confidenceStyles[c], label), confidence[c]))
	}
	return b.String()
}

func (r *SummaryRenderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

type categoryCount struct {
	category knowledge.Category
	count    int
}

// countCategories orders by count descending, then by name.
func countCategories(fragments []knowledge.KnowledgeFragment) []categoryCount {
	counts := map[knowledge.Category]int{}
	for _, f := range fragments {
		counts[f.Category]++
	}
	out := make([]categoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, categoryCount{category: c, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].category < out[j].category
	})
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
