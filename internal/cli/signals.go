package cli

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/deafbeat/internal/signal"
	"github.com/roach88/deafbeat/internal/timeline"
)

// SignalsOptions holds flags for the signals command.
type SignalsOptions struct {
	*RootOptions
	FPS        int
	From       int
	To         int
	Workers    int
	BPM        float64
	ConfigPath string
}

// SignalsResult carries the computed frames.
type SignalsResult struct {
	FPS      int            `json:"fps"`
	Fallback bool           `json:"fallback"`
	Frames   []signal.Frame `json:"frames"`
}

func (r SignalsResult) String() string {
	var b strings.Builder
	b.WriteString("frame\tlevel\tglitch\thue\tsparkle")
	for _, fr := range r.Frames {
		fmt.Fprintf(&b, "\n%d\t%.6f\t%.6f\t%.6f\t%.6f", fr.Index, fr.Level, fr.Glitch, fr.Hue, fr.Sparkle)
	}
	return b.String()
}

// NewSignalsCommand creates the signals command.
func NewSignalsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SignalsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "signals <timeline>",
		Short: "Compute per-frame visual signals from a timeline",
		Long: `Compute level, glitch, hue and sparkle for frames [--from, --to) of a
timeline document.

--to defaults to the end of the segment. Frames are computed on --workers
goroutines; the output does not depend on the worker count.

If the document cannot be parsed the signals are estimated from --bpm
alone and --to must be given.`,
		Example: `  deafbeat signals beat.json --fps 30
  deafbeat signals beat.json --from 120 --to 240 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignals(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.FPS, "fps", signal.DefaultFPS, "video frame rate")
	cmd.Flags().IntVar(&opts.From, "from", 0, "first frame")
	cmd.Flags().IntVar(&opts.To, "to", 0, "end frame, exclusive (default: end of segment)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "worker goroutines (default: from config)")
	cmd.Flags().Float64Var(&opts.BPM, "bpm", 0, "tempo for the fallback estimate when the timeline does not parse")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "CUE config file")

	return cmd
}

func runSignals(cmd *cobra.Command, opts *SignalsOptions, path string) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return configError(f, err)
	}
	fps, workers := cfg.FPS, cfg.Workers
	if cmd.Flags().Changed("fps") || opts.ConfigPath == "" {
		fps = opts.FPS
	}
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	if fps <= 0 {
		return fail(f, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid fps %d", fps), nil)
	}

	tl, parseErr := timeline.Load(path)
	if parseErr != nil {
		slog.Warn("timeline unavailable, estimating from tempo", "path", path, "error", parseErr)
		return runFallbackSignals(f, opts, fps)
	}
	defer tl.Release()

	to := opts.To
	if !cmd.Flags().Changed("to") {
		to = int(math.Ceil(tl.Duration() * float64(fps)))
	}
	if to < opts.From {
		return fail(f, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid frame range [%d, %d)", opts.From, to), nil)
	}

	frames, err := signal.Render(cmd.Context(), tl, fps, opts.From, to, workers)
	if err != nil {
		return fail(f, ExitFailure, ErrCodeGeneric, "signals", err)
	}
	f.VerboseLog("computed %d frame(s) at %d fps on %d worker(s)", len(frames), fps, workers)
	return f.Success(SignalsResult{FPS: fps, Frames: frames})
}

func runFallbackSignals(f *OutputFormatter, opts *SignalsOptions, fps int) error {
	if opts.To <= opts.From {
		return fail(f, ExitCommandError, ErrCodeParse, "timeline unavailable and no --to given", nil)
	}
	frames := make([]signal.Frame, 0, opts.To-opts.From)
	for i := opts.From; i < opts.To; i++ {
		frames = append(frames, signal.Fallback(i, fps, opts.BPM))
	}
	return f.Success(SignalsResult{FPS: fps, Fallback: true, Frames: frames})
}
