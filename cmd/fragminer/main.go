// cmd/fragminer/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/julianshen/fragminer/internal/config"
	"github.com/julianshen/fragminer/internal/runner"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
	format     string
	output     string
	storeDSN   string
	noRemote   bool
}

func versionString() string {
	return fmt.Sprintf("fragminer %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "fragminer",
		Short: "Extract best-practice knowledge fragments from repositories",
		Long: `fragminer reads a repository's AI instruction files, contributing guides,
docs and lint/format config, and turns the guidance they contain into
classified knowledge fragments.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default ~/.config/fragminer/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "", "output format: json, yaml, markdown")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "write output to a file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&opts.storeDSN, "store", "", "persist fragments to a database (sqlite path, postgres:// or mysql:// URL)")
	rootCmd.PersistentFlags().BoolVar(&opts.noRemote, "no-remote", false, "skip default-branch lookups on GitHub/GitLab")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(extractCmd(opts))
	rootCmd.AddCommand(batchCmd(opts))

	return rootCmd
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfgPath := opts.configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.output != "" {
		cfg.Output.Path = opts.output
	}
	if opts.storeDSN != "" {
		cfg.Store.DSN = opts.storeDSN
	}
	if opts.noRemote {
		cfg.Remote.Enabled = false
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
