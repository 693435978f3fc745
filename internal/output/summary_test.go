// internal/output/summary_test.go
package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/julianshen/fragminer/internal/knowledge"
)

func TestSummaryRendererPlain(t *testing.T) {
	doc := NewDocument(generatedAt)
	high := sampleFragment()
	low := sampleFragment()
	low.Category = knowledge.CategoryTesting
	low.Confidence = knowledge.ConfidenceLow
	other := sampleFragment()
	doc.Add(RepoSummary{Repo: "acme/widgets", Files: 4, Fragments: 3, DurationMs: 12}, []knowledge.KnowledgeFragment{high, low, other})
	doc.Add(RepoSummary{Repo: "acme/broken", Error: "clone failed"}, nil)

	s := NewSummaryRenderer(false).Render(doc)
	assert.True(t, strings.HasPrefix(s, "3 fragments from 2 repositories\n"))
	assert.Contains(t, s, "  acme/widgets 4 files, 3 fragments, 12ms\n")
	assert.Contains(t, s, "  acme/broken failed: clone failed\n")
	assert.Contains(t, s, "  conventions      2\n  testing          1\n")
	assert.Contains(t, s, "  high             2\n  medium           0\n  low              1\n")
	assert.NotContains(t, s, "\x1b[")
}

func TestSummaryRendererNoFragments(t *testing.T) {
	doc := NewDocument(generatedAt)
	doc.Add(RepoSummary{Repo: "acme/empty"}, nil)

	s := NewSummaryRenderer(false).Render(doc)
	assert.True(t, strings.HasPrefix(s, "0 fragments from 1 repository\n"))
	assert.NotContains(t, s, "By category")
}

func TestSummaryRendererStyledKeepsText(t *testing.T) {
	s := NewSummaryRenderer(true).Render(sampleDocument())
	assert.Contains(t, s, "1 fragment from 1 repository")
	assert.Contains(t, s, "conventions")
}

func TestCountCategoriesOrder(t *testing.T) {
	mk := func(c knowledge.Category) knowledge.KnowledgeFragment {
		return knowledge.KnowledgeFragment{Category: c}
	}
	counts := countCategories([]knowledge.KnowledgeFragment{
		mk(knowledge.CategoryTesting), mk(knowledge.CategoryAPIDesign), mk(knowledge.CategoryTesting),
	})
	assert.Equal(t, []categoryCount{
		{knowledge.CategoryTesting, 2},
		{knowledge.CategoryAPIDesign, 1},
	}, counts)
}
