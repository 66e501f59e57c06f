package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/deafbeat/internal/config"
	"github.com/roach88/deafbeat/internal/midi"
	"github.com/roach88/deafbeat/internal/timeline"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output     string
	MIDI       string
	ConfigPath string
}

// ExportResult summarises one exported seed.
type ExportResult struct {
	Seed      string  `json:"seed"`
	BPM       float64 `json:"bpm"`
	Events    int     `json:"events"`
	Frames    uint64  `json:"frames"`
	Truncated bool    `json:"truncated"`
	DocHash   string  `json:"doc_hash"`
	Path      string  `json:"path,omitempty"`
	MIDIPath  string  `json:"midi_path,omitempty"`
	Document  string  `json:"document,omitempty"`
}

func (r ExportResult) String() string {
	line := fmt.Sprintf("✓ %s  bpm=%.6f events=%d frames=%d", r.Seed, r.BPM, r.Events, r.Frames)
	if r.Truncated {
		line += " (truncated)"
	}
	if r.Path != "" {
		line += " -> " + r.Path
	}
	if r.MIDIPath != "" {
		line += ", " + r.MIDIPath
	}
	return line
}

// ExportBatch is the result of exporting every seed in a config file.
type ExportBatch struct {
	Dir     string         `json:"dir"`
	Exports []ExportResult `json:"exports"`
}

func (b ExportBatch) String() string {
	lines := make([]string, 0, len(b.Exports)+1)
	for _, e := range b.Exports {
		lines = append(lines, e.String())
	}
	lines = append(lines, fmt.Sprintf("%d timeline(s) written to %s", len(b.Exports), b.Dir))
	return strings.Join(lines, "\n")
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export [seed]",
		Short: "Export the timeline document for a seed",
		Long: `Build the composition for a seed and write its timeline document.

Seeds may be decimal, 0x-prefixed hex of up to 16 digits, or a longer hex
hash which is folded to 32 bits.

Without -o the document is written to stdout. With --midi a Standard MIDI
File of the dispatched triggers is written too.

Without a seed argument every seed listed in the --config file is exported,
and -o names the output directory.`,
		Example: `  deafbeat export 0xCAFEBABE
  deafbeat export 3735928559 -o beat.json --midi beat.mid
  deafbeat export --config show.cue -o out/`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runExportBatch(cmd, opts)
			}
			return runExport(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (directory when exporting config seeds)")
	cmd.Flags().StringVar(&opts.MIDI, "midi", "", "also write a MIDI file (directory when exporting config seeds)")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "CUE config file")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions, arg string) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return configError(f, err)
	}
	seed, err := parseSeedArg(f, arg)
	if err != nil {
		return err
	}

	result, doc, err := exportSeed(seed, cfg, opts.Output, opts.MIDI)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeWriteFailed, "export failed", err)
	}

	if opts.Output == "" {
		if opts.Format != "json" {
			_, err := cmd.OutOrStdout().Write(doc)
			return err
		}
		result.Document = string(doc)
	}
	return f.Success(result)
}

func runExportBatch(cmd *cobra.Command, opts *ExportOptions) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.ConfigPath == "" {
		return fail(f, ExitCommandError, ErrCodeGeneric, "a seed argument or --config is required", nil)
	}
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return configError(f, err)
	}
	seeds := cfg.SeedValues()
	if len(seeds) == 0 {
		return fail(f, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("%s lists no seeds", opts.ConfigPath), nil)
	}
	if opts.Output == "" {
		return fail(f, ExitCommandError, ErrCodeGeneric, "-o directory is required when exporting config seeds", nil)
	}
	for _, dir := range []string{opts.Output, opts.MIDI} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(f, ExitCommandError, ErrCodeWriteFailed, "create output directory", err)
		}
	}

	results := make([]ExportResult, len(seeds))
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			name := fmt.Sprintf("%016x", seed)
			out := filepath.Join(opts.Output, name+".json")
			var mid string
			if opts.MIDI != "" {
				mid = filepath.Join(opts.MIDI, name+".mid")
			}
			res, _, err := exportSeed(seed, cfg, out, mid)
			if err != nil {
				return fmt.Errorf("seed 0x%s: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fail(f, ExitCommandError, ErrCodeWriteFailed, "export failed", err)
	}

	f.VerboseLog("exported %d seed(s) with %d worker(s)", len(seeds), cfg.Workers)
	return f.Success(ExportBatch{Dir: opts.Output, Exports: results})
}

// exportSeed renders seed and writes the document to out and the MIDI file
// to mid, skipping either when empty.
func exportSeed(seed uint64, cfg config.Config, out, mid string) (ExportResult, []byte, error) {
	r, err := renderSeed(seed, cfg.EngineOptions()...)
	if err != nil {
		return ExportResult{}, nil, err
	}
	c := r.Composition

	result := ExportResult{
		Seed:      fmt.Sprintf("0x%016x", seed),
		BPM:       c.Clock().BPM,
		Events:    c.Queue().Len(),
		Frames:    c.Scheduler().Frame(),
		Truncated: c.Truncated(),
		DocHash:   timeline.Hash(r.Document),
	}
	if out != "" {
		if err := os.WriteFile(out, r.Document, 0o644); err != nil {
			return ExportResult{}, nil, fmt.Errorf("write timeline: %w", err)
		}
		result.Path = out
	}
	if mid != "" {
		if err := midi.WriteFile(mid, r.Timeline, r.Records); err != nil {
			return ExportResult{}, nil, err
		}
		result.MIDIPath = mid
	}
	return result, r.Document, nil
}
