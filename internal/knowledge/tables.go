package knowledge

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// labelPatterns pairs a label with the patterns that vote for it. Tables of
// labelPatterns are ordered: on equal scores the earlier entry wins.
type labelPatterns[L ~string] struct {
	label    L
	patterns []*regexp.Regexp
}

// keywords compiles case-insensitive whole-word matchers. Word boundaries
// are only asserted next to ASCII word characters because RE2's \b does
// not treat letters such as å or ø as word characters.
func keywords(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		expr := regexp.QuoteMeta(w)
		if r, _ := utf8.DecodeRuneInString(w); isASCIIWord(r) {
			expr = `\b` + expr
		}
		if r, _ := utf8.DecodeLastRuneInString(w); isASCIIWord(r) {
			expr += `\b`
		}
		out = append(out, regexp.MustCompile(`(?i)`+expr))
	}
	return out
}

func isASCIIWord(r rune) bool {
	return r < unicode.MaxASCII && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}

// categoryKeywords drives content scoring. The order is the tie-break
// order and must not change without updating the classifier tests.
var categoryKeywords = []labelPatterns[Category]{
	{CategoryErrorHandling, keywords(
		"error", "errors", "exception", "exceptions", "try/catch", "catch", "throw",
		"panic", "recover", "fallback", "retry", "fejl", "fejlhåndtering")},
	{CategoryAuthPattern, keywords(
		"auth", "authentication", "authorization", "login", "logout", "jwt", "oauth",
		"session", "permission", "permissions", "role", "roles", "rbac", "godkendelse", "adgang")},
	{CategoryTesting, keywords(
		"test", "tests", "testing", "unit test", "jest", "vitest", "mock", "mocks",
		"coverage", "e2e", "fixture", "fixtures", "playwright", "cypress", "tdd", "testdækning")},
	{CategoryFileStructure, keywords(
		"folder", "folders", "directory", "directories", "file structure", "project structure",
		"colocate", "mappe", "mapper", "filstruktur", "mappestruktur")},
	{CategoryNaming, keywords(
		"naming", "name", "names", "camelcase", "pascalcase", "kebab-case", "snake_case",
		"prefix", "suffix", "navngivning", "navne")},
	{CategorySecurity, keywords(
		"security", "secure", "xss", "csrf", "injection", "sanitize", "secret", "secrets",
		"encrypt", "encryption", "vulnerability", "sikkerhed")},
	{CategoryPerformance, keywords(
		"performance", "cache", "caching", "memoize", "memo", "lazy", "optimize", "optimise",
		"bundle size", "latency", "ydeevne")},
	{CategoryConventions, keywords(
		"convention", "conventions", "style", "formatting", "consistent", "consistency",
		"lint", "konvention", "konventioner")},
	{CategoryArchitecture, keywords(
		"architecture", "layer", "layers", "module", "modules", "service", "services",
		"dependency injection", "domain", "arkitektur")},
	{CategoryAPIDesign, keywords(
		"api", "endpoint", "endpoints", "rest", "graphql", "route handler", "request",
		"response", "status code")},
	{CategoryDatabase, keywords(
		"database", "sql", "query", "queries", "migration", "migrations", "schema", "prisma",
		"orm", "transaction", "databasen")},
	{CategoryDeployment, keywords(
		"deploy", "deployment", "ci/cd", "docker", "kubernetes", "pipeline", "release",
		"vercel", "staging", "production")},
	{CategoryImports, keywords(
		"import", "imports", "export", "exports", "barrel", "path alias", "alias")},
	{CategoryUIPatterns, keywords(
		"ui", "component", "components", "tailwind", "css", "layout", "responsive",
		"accessibility", "a11y", "styling", "design system")},
	{CategoryGitWorkflow, keywords(
		"git", "commit", "commits", "branch", "branches", "pull request", "merge", "rebase",
		"conventional commits")},
}

// titleOverrides are tested against the section title only, in order. The
// first match decides the category without looking at the content.
var titleOverrides = []labelPatterns[Category]{
	{CategoryConventions, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(rules?|conventions?|standards?|guidelines?)\b`),
		regexp.MustCompile(`(?i)\b(regler|konventioner|retningslinjer)`),
	}},
	{CategoryAuthPattern, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(auth\w*|login|roles?|permissions?)\b`),
	}},
	{CategoryTesting, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btest(s|ing)?\b`),
	}},
	{CategoryErrorHandling, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\berrors?\b|\bfejl`),
	}},
	{CategorySecurity, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bsecurity\b|\bsikkerhed`),
	}},
	{CategoryGitWorkflow, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(git|commits?|branch(es|ing)?)\b`),
	}},
	{CategoryDatabase, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(database|db|migrations?)\b`),
	}},
	{CategoryDeployment, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(deploy(ment)?|ci/cd)\b`),
	}},
	{CategoryArchitecture, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\barchitecture\b|\barkitektur`),
	}},
	{CategoryNaming, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bnaming\b|\bnavngivning`),
	}},
	{CategoryFileStructure, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(file|folder|directory|project) structure\b|\b(filstruktur|mappestruktur)`),
	}},
}

// mustNotNegated matches "must" unless the next word is "not", so that
// "must not" only votes for anti-pattern.
var mustNotNegated = regexp.MustCompile(`(?i)\bmust\b(?:\s*$|[^\s\w]|\s+(?:[^n\s]|n[^o]|no[^t]|not\w))`)

// typeKeywords drives type scoring, with the same tie-break contract as
// categoryKeywords.
var typeKeywords = []labelPatterns[FragmentType]{
	{TypeRule, append(keywords(
		"always", "required", "require", "requires", "mandatory", "shall", "need to",
		"skal", "altid", "påkrævet", "obligatorisk", "✅"), mustNotNegated)},
	{TypeAntiPattern, keywords(
		"never", "avoid", "don't", "do not", "must not", "mustn't", "forbidden", "❌", "🚫",
		"aldrig", "undgå", "må ikke", "ikke brug")},
	{TypePattern, keywords(
		"pattern", "patterns", "approach", "technique", "strategy",
		"mønster", "mønstre", "tilgang", "teknik")},
	{TypeConvention, keywords(
		"convention", "conventions", "standard", "standards", "style", "prefer", "preferred",
		"konvention", "konventioner", "stil", "foretrækker", "foretrukken")},
}

// techTerm is a technology tag detected in content.
type techTerm struct {
	tag     string
	pattern *regexp.Regexp
}

// techTerms are added to fragment tags in table order.
var techTerms = []techTerm{
	{"middleware", regexp.MustCompile(`(?i)\bmiddlewares?\b`)},
	{"migration", regexp.MustCompile(`(?i)\bmigrations?\b`)},
	{"monorepo", regexp.MustCompile(`(?i)\bmono-?repos?\b|\bturborepo\b|\bnx workspace\b`)},
	{"server-component", regexp.MustCompile(`(?i)\bserver[- ]components?\b|\bRSCs?\b`)},
	{"server-action", regexp.MustCompile(`(?i)\bserver[- ]actions?\b|['"]use server['"]`)},
	{"client-component", regexp.MustCompile(`(?i)\bclient[- ]components?\b|['"]use client['"]`)},
	{"hooks", regexp.MustCompile(`\b[Hh]ooks?\b|\buse[A-Z]\w*\(`)},
	{"api-route", regexp.MustCompile(`(?i)\bapi[- ]routes?\b|\broute handlers?\b`)},
	{"ssr", regexp.MustCompile(`\bSSR\b|(?i:\bserver[- ]side rendering\b)`)},
	{"tailwind", regexp.MustCompile(`(?i)\btailwind`)},
	{"prisma", regexp.MustCompile(`(?i)\bprisma\b`)},
	{"drizzle", regexp.MustCompile(`(?i)\bdrizzle\b`)},
	{"zod", regexp.MustCompile(`(?i)\bzod\b`)},
	{"graphql", regexp.MustCompile(`(?i)\bgraphql\b`)},
	{"docker", regexp.MustCompile(`(?i)\bdocker(file)?\b`)},
	{"i18n", regexp.MustCompile(`(?i)\bi18n\b|\binternationali[sz]ation\b`)},
	{"typescript", regexp.MustCompile(`(?i)\btypescript\b`)},
}

// bestLabel scores every entry of table by counting non-overlapping matches
// of its patterns in content and returns the highest-scoring label. Ties go
// to the earlier entry; an all-zero score returns fallback.
func bestLabel[L ~string](content string, table []labelPatterns[L], fallback L) L {
	best, bestScore := fallback, 0
	for _, entry := range table {
		score := 0
		for _, re := range entry.patterns {
			score += len(re.FindAllStringIndex(content, -1))
		}
		if score > bestScore {
			best, bestScore = entry.label, score
		}
	}
	return best
}

// firstMatch returns the label of the first entry with a pattern matching s.
func firstMatch[L ~string](s string, table []labelPatterns[L]) (L, bool) {
	if strings.TrimSpace(s) == "" {
		var zero L
		return zero, false
	}
	for _, entry := range table {
		for _, re := range entry.patterns {
			if re.MatchString(s) {
				return entry.label, true
			}
		}
	}
	var zero L
	return zero, false
}
