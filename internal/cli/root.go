package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the deafbeat CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "deafbeat",
		Short: "deafbeat - seeded loops and the signals that follow them",
		Long: `Turn a seed into a deterministic 32-step composition, export its timeline
document and derive per-frame visual signals from it.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(cmd, opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewSignalsCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// setupLogging routes slog to stderr: debug when verbose, warnings only
// otherwise so engine progress logs don't interleave with command output.
func setupLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
