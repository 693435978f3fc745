// cmd/fragminer/extract.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/julianshen/fragminer/internal/repo"
	"github.com/julianshen/fragminer/internal/runner"
)

func extractCmd(opts *rootOptions) *cobra.Command {
	var (
		branchFlag string
		depthFlag  int
	)

	cmd := &cobra.Command{
		Use:   "extract <repo>",
		Short: "Extract knowledge fragments from one repository",
		Long: `Extract knowledge fragments from a local directory, an owner/name GitHub
shorthand, or a git URL. Remote repositories are shallow-cloned into a
temporary directory that is removed afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			batch, err := s.newBatch(repo.Options{CloneDepth: depthFlag, Branch: branchFlag})
			if err != nil {
				return err
			}

			result := batch.RunOne(cmd.Context(), args[0])
			if result.Err != nil {
				return fmt.Errorf("extracting %s: %w", args[0], result.Err)
			}
			if len(result.Fragments) == 0 {
				fmt.Fprintf(s.stderr, "No knowledge fragments found in %s.\n", result.Identity.Repo())
			}
			return s.emit(cmd.Context(), []runner.RepoResult{result})
		},
	}

	cmd.Flags().StringVar(&branchFlag, "branch", "", "branch to clone (default: the remote default branch)")
	cmd.Flags().IntVar(&depthFlag, "depth", 1, "clone depth, 0 for full history")

	return cmd
}
