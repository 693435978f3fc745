package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	descriptionLength = 500
	titleLength       = 100
	idLength          = 12
)

// fencedCode captures the body of the first triple-backtick block.
var fencedCode = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")

// leadingPunct strips list markers, heading hashes, quotes and ordinals from
// the start of a line used as a title.
var leadingPunct = regexp.MustCompile(`^(?:[#>*+\-\s]|\d+[.)]\s)+`)

// Classify turns filtered blocks into fragments. It never fails: every
// derived field has a default.
func Classify(blocks []RawBlock, stack []StackItem, id Identity) []KnowledgeFragment {
	if len(blocks) == 0 {
		return nil
	}
	display := make([]string, len(stack))
	for i, s := range stack {
		display[i] = s.Display()
	}
	fragments := make([]KnowledgeFragment, 0, len(blocks))
	for _, b := range blocks {
		fragments = append(fragments, classifyBlock(b, display, stack, id))
	}
	return fragments
}

func classifyBlock(b RawBlock, display []string, stack []StackItem, id Identity) KnowledgeFragment {
	category := DetectCategory(b.SectionTitle, b.Content)
	return KnowledgeFragment{
		ID:          FragmentID(id.Key(), b.SourceFile, b.LineStart),
		Stack:       append([]string{}, display...),
		Category:    category,
		Type:        DetectType(b.Content),
		Title:       deriveTitle(b, category),
		Description: truncateRunes(b.Content, descriptionLength),
		Example:     extractExample(b.Content),
		Source: FragmentSource{
			Repo: id.Repo(),
			File: b.SourceFile,
			Line: b.LineStart,
			URL:  SourceURL(id, b.SourceFile, b.LineStart),
		},
		Confidence: DetectConfidence(b.SourceCategory, b.PriorityTier),
		Tags:       detectTags(b.Content, stack),
	}
}

// DetectCategory applies title overrides first and falls back to keyword
// scoring over the content. The default is conventions.
func DetectCategory(title, content string) Category {
	if title != PreambleTitle {
		if c, ok := firstMatch(title, titleOverrides); ok {
			return c
		}
	}
	return bestLabel(content, categoryKeywords, CategoryConventions)
}

// DetectType scores the content against the type table. The default is
// convention.
func DetectType(content string) FragmentType {
	return bestLabel(content, typeKeywords, TypeConvention)
}

// DetectConfidence derives trust from the originating file alone:
// instruction, convention and architecture files are high, other files up
// to tier 3 are medium, and everything else is low.
func DetectConfidence(category SourceCategory, tier int) Confidence {
	switch category {
	case SourceAIInstructions, SourceConventions, SourceArchitecture:
		return ConfidenceHigh
	}
	if tier <= 3 {
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// detectTags returns stack names followed by technology terms found in
// content, without duplicates.
func detectTags(content string, stack []StackItem) []string {
	seen := map[string]bool{}
	tags := []string{}
	add := func(tag string) {
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	for _, s := range stack {
		add(s.Name)
	}
	for _, t := range techTerms {
		if t.pattern.MatchString(content) {
			add(t.tag)
		}
	}
	return tags
}

func deriveTitle(b RawBlock, category Category) string {
	if b.SectionTitle != PreambleTitle && b.SectionTitle != "" {
		title := strings.TrimSpace(strings.TrimLeft(b.SectionTitle, "# "))
		if title != "" {
			return truncateRunes(title, titleLength)
		}
	}
	for _, line := range strings.Split(b.Content, "\n") {
		line = strings.TrimSpace(leadingPunct.ReplaceAllString(line, ""))
		if line != "" {
			return truncateRunes(line, titleLength)
		}
	}
	return fmt.Sprintf("%s — %s", b.SourceFile, category)
}

func extractExample(content string) string {
	m := fencedCode.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimRight(m[1], "\n")
}

// FragmentID fingerprints a location: the first 12 hex characters of
// SHA-256 over "<repo>:<file>:<line>".
func FragmentID(repoKey, file string, line int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", repoKey, file, line)))
	return hex.EncodeToString(sum[:])[:idLength]
}

// SourceURL builds a deep link to the line for GitHub-style and GitLab
// remotes. It returns "" when the repository has no remote URL.
func SourceURL(id Identity, file string, line int) string {
	if id.URL == "" {
		return ""
	}
	ref := id.Ref
	if ref == "" {
		ref = "HEAD"
	}
	base := strings.TrimSuffix(strings.TrimSuffix(id.URL, "/"), ".git")
	blob := "/blob/"
	if u, err := url.Parse(base); err == nil && strings.Contains(u.Host, "gitlab") {
		blob = "/-/blob/"
	}
	return fmt.Sprintf("%s%s%s/%s#L%d", base, blob, ref, file, line)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
