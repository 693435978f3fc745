package knowledge

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"
)

// SourceReader abstracts file reading for testability.
type SourceReader interface {
	ReadFile(path string) ([]byte, error)
}

type osReader struct{}

func (osReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ExtractorConfig controls the extraction stage.
type ExtractorConfig struct {
	Concurrency int // parallel file reads
}

// DefaultExtractorConfig returns sensible defaults for extraction.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{Concurrency: 4}
}

// Extractor reads discovered files and splits them into filtered blocks.
type Extractor struct {
	cfg    ExtractorConfig
	reader SourceReader
	logger *slog.Logger
}

// NewExtractor creates an Extractor. A nil reader reads from the local
// filesystem and a nil logger uses slog.Default().
func NewExtractor(cfg ExtractorConfig, reader SourceReader, logger *slog.Logger) *Extractor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultExtractorConfig().Concurrency
	}
	if reader == nil {
		reader = osReader{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, reader: reader, logger: logger}
}

// fileBlocks carries one file's blocks back from a worker together with the
// file's discovery index so the merged result can be re-ordered.
type fileBlocks struct {
	index  int
	blocks []RawBlock
}

// Extract reads every file concurrently and returns the surviving blocks in
// discovery order, then in-file order. Files that cannot be read or parsed
// are logged and skipped; the only error is context cancellation.
func (e *Extractor) Extract(ctx context.Context, files []DiscoveredFile) ([]RawBlock, error) {
	if len(files) == 0 {
		return nil, nil
	}

	p := pool.NewWithResults[fileBlocks]().WithMaxGoroutines(e.cfg.Concurrency)
	for i, f := range files {
		i, f := i, f // per-iteration copies (pre-Go 1.22 loop semantics)
		p.Go(func() fileBlocks {
			if ctx.Err() != nil {
				return fileBlocks{index: i}
			}
			return fileBlocks{index: i, blocks: e.extractFile(f)}
		})
	}
	results := p.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	var blocks []RawBlock
	for _, r := range results {
		blocks = append(blocks, r.blocks...)
	}
	return blocks, nil
}

func (e *Extractor) extractFile(f DiscoveredFile) []RawBlock {
	data, err := e.reader.ReadFile(f.AbsolutePath)
	if err != nil {
		e.logger.Warn("skipping unreadable file", "file", f.RelativePath, "error", err)
		return nil
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if f.SourceCategory.IsStructured() {
		if err := validateConfig(f.RelativePath, []byte(text)); err != nil {
			e.logger.Warn("skipping malformed config file", "file", f.RelativePath, "error", err)
			return nil
		}
		return wholeFileBlock(f, text)
	}
	return sectionBlocks(f, text)
}

// wholeFileBlock emits the entire file as one block titled by its path.
func wholeFileBlock(f DiscoveredFile, text string) []RawBlock {
	lines := strings.Split(text, "\n")
	start, end, ok := trimBlankLines(lines, 0, len(lines)-1)
	if !ok {
		return nil
	}
	content := strings.Join(lines[start:end+1], "\n")
	if !keepBlock(strings.TrimSpace(content), f.RelativePath, true) {
		return nil
	}
	return []RawBlock{newBlock(f, content, f.RelativePath, start, end)}
}

// section is a heading-delimited span of lines, indexes 0-based inclusive.
type section struct {
	title string
	start int
	end   int
}

var (
	headingLine   = regexp.MustCompile(`^(#{1,3})[ \t]+(\S.*)$`)
	closingHashes = regexp.MustCompile(`[ \t]+#+[ \t]*$`)
	fenceLine     = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// sectionBlocks splits markdown/prose into heading sections and keeps the
// ones that pass the signal filter.
func sectionBlocks(f DiscoveredFile, text string) []RawBlock {
	lines := strings.Split(text, "\n")
	var blocks []RawBlock
	for _, s := range splitSections(lines) {
		start, end, ok := trimBlankLines(lines, s.start, s.end)
		if !ok {
			continue
		}
		content := strings.Join(lines[start:end+1], "\n")
		if !keepBlock(strings.TrimSpace(content), s.title, false) {
			continue
		}
		blocks = append(blocks, newBlock(f, content, s.title, start, end))
	}
	return blocks
}

// splitSections cuts lines at level 1-3 headings outside fenced code. A
// fence closes only on a run of the same character at least as long as the
// opening one.
// Lines before the first heading form the preamble section.
func splitSections(lines []string) []section {
	var sections []section
	cur := section{title: PreambleTitle, start: 0}
	fence := ""
	for i, line := range lines {
		if m := fenceLine.FindStringSubmatch(line); m != nil {
			switch {
			case fence == "":
				fence = m[1]
			case m[1][0] == fence[0] && len(m[1]) >= len(fence):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		m := headingLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if i > cur.start || cur.title != PreambleTitle {
			cur.end = i - 1
			sections = append(sections, cur)
		}
		cur = section{title: headingTitle(m[2]), start: i}
	}
	cur.end = len(lines) - 1
	return append(sections, cur)
}

func headingTitle(raw string) string {
	return strings.TrimSpace(closingHashes.ReplaceAllString(raw, ""))
}

// trimBlankLines narrows [start, end] to exclude leading and trailing blank
// lines. ok is false when nothing but blank lines remain.
func trimBlankLines(lines []string, start, end int) (int, int, bool) {
	for start <= end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end >= start && strings.TrimSpace(lines[end]) == "" {
		end--
	}
	return start, end, start <= end
}

func newBlock(f DiscoveredFile, content, title string, start, end int) RawBlock {
	return RawBlock{
		Content:        content,
		SourceFile:     f.RelativePath,
		SourceCategory: f.SourceCategory,
		PriorityTier:   f.PriorityTier,
		SectionTitle:   title,
		LineStart:      start + 1,
		LineEnd:        end + 1,
	}
}
