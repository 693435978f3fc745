// Package knowledge finds best-practice text embedded in a repository's docs and
// config files and classifies it into knowledge fragments.
package knowledge

import "fmt"

// SourceCategory classifies a discovered file by what kind of knowledge it
// is expected to hold.
type SourceCategory string

const (
	SourceAIInstructions SourceCategory = "ai-instructions"
	SourceConventions    SourceCategory = "conventions"
	SourceArchitecture   SourceCategory = "architecture"
	SourceContributing   SourceCategory = "contributing"
	SourceReadme         SourceCategory = "readme"
	SourceSecurity       SourceCategory = "security"
	SourceLinting        SourceCategory = "linting"
	SourceTypeScript     SourceCategory = "typescript"
	SourceFormatting     SourceCategory = "formatting"
	SourceDocumentation  SourceCategory = "documentation"
)

// IsStructured reports whether files of this category are machine-readable
// config that is kept whole instead of being split into sections.
func (c SourceCategory) IsStructured() bool {
	switch c {
	case SourceLinting, SourceTypeScript, SourceFormatting:
		return true
	}
	return false
}

// PreambleTitle is the section title given to content before the first heading.
const PreambleTitle = "preamble"

// DiscoveredFile is a knowledge-bearing file found by Discover.
type DiscoveredFile struct {
	AbsolutePath   string
	RelativePath   string // POSIX-style, relative to the repository root
	PriorityTier   int    // 1 (AI instructions) .. 4 (machine-readable config)
	SourceCategory SourceCategory
}

// RawBlock is a contiguous span of a discovered file that survived the
// signal filter. Line numbers are 1-based and inclusive on both ends.
type RawBlock struct {
	Content        string
	SourceFile     string
	SourceCategory SourceCategory
	PriorityTier   int
	SectionTitle   string
	LineStart      int
	LineEnd        int
}

// StackItem is one detected technology of the repository. It is passed
// through to fragments unchanged.
type StackItem struct {
	Name     string `json:"name" yaml:"name"`
	Version  string `json:"version,omitempty" yaml:"version,omitempty"`
	Category string `json:"category" yaml:"category"`
}

// Display returns "name" or "name@version".
func (s StackItem) Display() string {
	if s.Version == "" {
		return s.Name
	}
	return s.Name + "@" + s.Version
}

// Identity names the repository fragments were extracted from.
type Identity struct {
	Owner string
	Name  string
	URL   string // https remote without ".git"; empty for local-only trees
	Ref   string // branch or commit used for deep links; empty means unknown
}

// Repo returns "owner/name".
func (i Identity) Repo() string {
	return fmt.Sprintf("%s/%s", i.Owner, i.Name)
}

// Key is the string fragment ids are derived from: the URL when known,
// otherwise "owner/name".
func (i Identity) Key() string {
	if i.URL != "" {
		return i.URL
	}
	return i.Repo()
}

// Category is the knowledge category assigned to a fragment.
type Category string

const (
	CategoryErrorHandling Category = "error-handling"
	CategoryAuthPattern   Category = "auth-pattern"
	CategoryTesting       Category = "testing"
	CategoryFileStructure Category = "file-structure"
	CategoryNaming        Category = "naming"
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
	CategoryConventions   Category = "conventions"
	CategoryArchitecture  Category = "architecture"
	CategoryAPIDesign     Category = "api-design"
	CategoryDatabase      Category = "database"
	CategoryDeployment    Category = "deployment"
	CategoryImports       Category = "imports"
	CategoryUIPatterns    Category = "ui-patterns"
	CategoryGitWorkflow   Category = "git-workflow"
)

// FragmentType says how a fragment should be applied.
type FragmentType string

const (
	TypeRule        FragmentType = "rule"
	TypePattern     FragmentType = "pattern"
	TypeAntiPattern FragmentType = "anti-pattern"
	TypeConvention  FragmentType = "convention"
)

// Confidence is the trust tier of a fragment, derived from its source file.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// FragmentSource locates a fragment in its repository.
type FragmentSource struct {
	Repo string `json:"repo" yaml:"repo"`
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// KnowledgeFragment is the classified output record. Its field names are
// the wire contract consumed by downstream prompt tooling.
type KnowledgeFragment struct {
	ID          string         `json:"id" yaml:"id"`
	Stack       []string       `json:"stack" yaml:"stack"`
	Category    Category       `json:"category" yaml:"category"`
	Type        FragmentType   `json:"type" yaml:"type"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Example     string         `json:"example,omitempty" yaml:"example,omitempty"`
	Source      FragmentSource `json:"source" yaml:"source"`
	Confidence  Confidence     `json:"confidence" yaml:"confidence"`
	Tags        []string       `json:"tags" yaml:"tags"`
}
