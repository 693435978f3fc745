package knowledge

import (
	"context"
	"fmt"
	"log/slog"
)

// Config holds all pipeline configuration.
type Config struct {
	Discover DiscoverConfig
	Extract  ExtractorConfig
	Reader   SourceReader // nil reads from the local filesystem
	Logger   *slog.Logger // nil uses slog.Default()
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Discover: DefaultDiscoverConfig(),
		Extract:  DefaultExtractorConfig(),
	}
}

// Result is the output of one pipeline run over one repository.
type Result struct {
	Files     []DiscoveredFile
	Blocks    []RawBlock
	Fragments []KnowledgeFragment
}

// Empty reports whether the run found nothing to extract.
func (r *Result) Empty() bool {
	return r == nil || len(r.Fragments) == 0
}

// Extract runs discovery and extraction over root.
func Extract(ctx context.Context, root string, cfg Config) ([]RawBlock, error) {
	_, blocks, err := discoverAndExtract(ctx, root, cfg)
	return blocks, err
}

// Run executes the full pipeline: discover -> extract (with filtering) ->
// classify. An error means root itself is unusable or ctx was cancelled;
// per-file problems only shrink the result.
func Run(ctx context.Context, root string, stack []StackItem, id Identity, cfg Config) (*Result, error) {
	files, blocks, err := discoverAndExtract(ctx, root, cfg)
	if err != nil {
		return nil, err
	}
	return &Result{
		Files:     files,
		Blocks:    blocks,
		Fragments: Classify(blocks, stack, id),
	}, nil
}

func discoverAndExtract(ctx context.Context, root string, cfg Config) ([]DiscoveredFile, []RawBlock, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files, err := Discover(root, cfg.Discover, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("discover: %w", err)
	}
	if len(files) == 0 {
		logger.Info("no knowledge files found", "root", root)
		return nil, nil, nil
	}
	logger.Debug("discovered knowledge files", "count", len(files))

	blocks, err := NewExtractor(cfg.Extract, cfg.Reader, logger).Extract(ctx, files)
	if err != nil {
		return nil, nil, fmt.Errorf("extract: %w", err)
	}
	logger.Debug("extracted blocks", "count", len(blocks))
	return files, blocks, nil
}
