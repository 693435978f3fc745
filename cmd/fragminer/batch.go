// cmd/fragminer/batch.go
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/julianshen/fragminer/internal/repo"
	"github.com/julianshen/fragminer/internal/runner"
)

func batchCmd(opts *rootOptions) *cobra.Command {
	var (
		fileFlag        string
		strictFlag      bool
		concurrencyFlag int
		depthFlag       int
	)

	cmd := &cobra.Command{
		Use:   "batch [repos...]",
		Short: "Extract knowledge fragments from many repositories",
		Long: `Extract knowledge fragments from every repository given as an argument,
listed in a batch file (--file), or piped on stdin one per line. A failing
repository is reported and skipped; use --strict to exit non-zero when any
repository fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}

			repos, err := runner.ResolveRepos(args, fileFlag, pipedInput(cmd.InOrStdin()))
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("concurrency") {
				s.cfg.Batch.Concurrency = concurrencyFlag
			}
			if cmd.Flags().Changed("strict") {
				s.cfg.Batch.Strict = strictFlag
			}

			batch, err := s.newBatch(repo.Options{CloneDepth: depthFlag})
			if err != nil {
				return err
			}
			results := batch.Run(cmd.Context(), repos)

			if err := s.emit(cmd.Context(), results); err != nil {
				return err
			}
			if code := runner.ExitCodeFromResults(results, s.cfg.Batch.Strict); code != 0 {
				return &runner.ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fileFlag, "file", "", "read repositories from a text or YAML batch file")
	cmd.Flags().BoolVar(&strictFlag, "strict", false, "exit with code 1 when any repository fails")
	cmd.Flags().IntVar(&concurrencyFlag, "concurrency", 4, "repositories processed in parallel")
	cmd.Flags().IntVar(&depthFlag, "depth", 1, "clone depth, 0 for full history")

	return cmd
}

// pipedInput returns r unless it is an interactive terminal, in which case
// nothing is being piped and nil is returned.
func pipedInput(r io.Reader) io.Reader {
	f, ok := r.(*os.File)
	if !ok {
		return r
	}
	if stat, err := f.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
		return f
	}
	return nil
}
