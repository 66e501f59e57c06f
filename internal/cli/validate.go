package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/deafbeat/internal/config"
)

// ValidateResult is the resolved configuration.
type ValidateResult struct {
	Path   string        `json:"path"`
	Config config.Config `json:"config"`
}

func (r ValidateResult) String() string {
	c := r.Config
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s\n", r.Path)
	fmt.Fprintf(&b, "  sample_rate: %d\n", c.SampleRate)
	fmt.Fprintf(&b, "  fps:         %d\n", c.FPS)
	fmt.Fprintf(&b, "  max_events:  %d\n", c.MaxEvents)
	fmt.Fprintf(&b, "  max_frames:  %d\n", c.MaxFrames)
	fmt.Fprintf(&b, "  workers:     %d\n", c.Workers)
	if c.Label != "" {
		fmt.Fprintf(&b, "  label:       %s\n", c.Label)
	}
	fmt.Fprintf(&b, "  seeds:       %d", len(c.Seeds))
	for _, s := range c.SeedValues() {
		fmt.Fprintf(&b, "\n    0x%016x", s)
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.cue>",
		Short: "Validate a configuration file",
		Long: `Check a CUE configuration against the deafbeat schema and print the
resolved values, defaults included.

Exit codes:
  0  valid
  1  schema violation or unparseable seed
  2  file missing or not valid CUE`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			cfg, err := config.Load(args[0])
			if err != nil {
				return configError(f, err)
			}
			return f.Success(ValidateResult{Path: args[0], Config: cfg})
		},
	}
	return cmd
}
