package knowledge

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minProseLength   = 50
	minConfigLength  = 30
	minPreambleLines = 3
)

// noiseTitle matches section titles of change logs and session logs. A
// version tag only counts when it is the whole title, optionally followed by
// a release date.
var noiseTitle = regexp.MustCompile(`(?i)^\s*(?:session|seneste session|tidligere session|changelog|change log|version history|v\d+(?:\.\d+)*(?:\s*[-(]?\s*\d{4}-\d{2}-\d{2}\)?)?\s*$)`)

// positiveSignals are the cues that mark a block as carrying guidance.
// A single match is enough.
var positiveSignals = []*regexp.Regexp{
	// English normative words.
	regexp.MustCompile(`(?i)\b(must|should|always|never|avoid|prefer|requires?|required)\b`),
	// Danish normative words.
	regexp.MustCompile(`(?i)\b(skal|altid|aldrig|undgå|foretrækker|påkrævet|obligatorisk)`),
	// Domain vocabulary, English and Danish.
	regexp.MustCompile(`(?i)\b(patterns?|conventions?|rules?|standards?|best[- ]practices?)\b`),
	regexp.MustCompile(`(?i)\b(mønstre|mønster|konventioner|konvention|regler|regel|retningslinjer|bedste praksis)`),
	// Fenced code block.
	regexp.MustCompile("```"),
	// Bold emphasis.
	regexp.MustCompile(`\*\*[^*\n]+\*\*`),
	// Checklist item.
	regexp.MustCompile(`(?m)^\s*[-*]\s+\[[ xX]\]`),
	// Bullet list item.
	regexp.MustCompile(`(?m)^\s*[-*+]\s+\S`),
	// Warning, checkmark and cross emoji.
	regexp.MustCompile(`[⚠✅❌⛔🚫✔✓✗✘]`),
}

// keepBlock decides whether a trimmed block carries reusable knowledge.
// structured selects the looser length threshold used for whole-file config.
func keepBlock(content, sectionTitle string, structured bool) bool {
	minLen := minProseLength
	if structured {
		minLen = minConfigLength
	}
	if utf8.RuneCountInString(content) < minLen {
		return false
	}

	if sectionTitle == PreambleTitle && countNonBlankLines(content) < minPreambleLines {
		return false
	}

	lower := strings.ToLower(content)
	if strings.Contains(lower, "mit license") ||
		strings.Contains(lower, "apache license") ||
		strings.HasPrefix(lower, "copyright") {
		return false
	}

	if noiseTitle.MatchString(sectionTitle) {
		return false
	}

	for _, re := range positiveSignals {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

func countNonBlankLines(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
