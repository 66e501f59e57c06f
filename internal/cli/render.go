package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/deafbeat/internal/store"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	DBPath     string
	Label      string
	ConfigPath string

	ids store.IDGenerator
}

// RenderResult describes a logged render.
type RenderResult struct {
	ID        string  `json:"id"`
	Seq       int64   `json:"seq"`
	Seed      string  `json:"seed"`
	BPM       float64 `json:"bpm"`
	Events    int     `json:"events"`
	Triggers  int     `json:"triggers"`
	Frames    uint64  `json:"frames"`
	Truncated bool    `json:"truncated"`
	DocHash   string  `json:"doc_hash"`
	Inserted  bool    `json:"inserted"`
}

func (r RenderResult) String() string {
	s := fmt.Sprintf("✓ render %s (seq %d)\n  seed %s  bpm=%.6f events=%d triggers=%d frames=%d",
		r.ID, r.Seq, r.Seed, r.BPM, r.Events, r.Triggers, r.Frames)
	if r.Truncated {
		s += " (truncated)"
	}
	return s + "\n  doc hash: " + r.DocHash
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	return newRenderCommand(rootOpts, store.UUIDv7Generator{})
}

func newRenderCommand(rootOpts *RootOptions, ids store.IDGenerator) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts, ids: ids}

	cmd := &cobra.Command{
		Use:   "render <seed>",
		Short: "Render a seed and log it to a database",
		Long: `Render the full segment for a seed and record the timeline document and
every dispatched trigger in a SQLite database.

The database is created if it does not exist. Logged renders can be checked
for reproducibility with 'deafbeat replay'.`,
		Example: `  deafbeat render 0xCAFEBABE --db renders.db --label nightly`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label stored with the render (default: from config)")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "CUE config file")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions, arg string) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return configError(f, err)
	}
	seed, err := parseSeedArg(f, arg)
	if err != nil {
		return err
	}

	r, err := renderSeed(seed, cfg.EngineOptions()...)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, "render", err)
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, "open database", err)
	}
	defer st.Close()

	seq, err := st.NextSeq(ctx)
	if err != nil {
		return fail(f, ExitFailure, ErrCodeGeneric, "render", err)
	}

	label := cfg.Label
	if opts.Label != "" {
		label = opts.Label
	}
	rec := store.RenderFrom(r.Composition, r.Document)
	rec.ID = opts.ids.Generate()
	rec.Seq = seq
	rec.Label = label
	rec.Meta = renderMeta(cfg)
	triggers := r.Triggers()

	inserted, err := st.WriteRender(ctx, rec, triggers)
	if err != nil {
		return fail(f, ExitFailure, ErrCodeWriteFailed, "log render", err)
	}
	f.VerboseLog("logged render %s to %s", rec.ID, opts.DBPath)

	return f.Success(RenderResult{
		ID:        rec.ID,
		Seq:       rec.Seq,
		Seed:      fmt.Sprintf("0x%016x", seed),
		BPM:       rec.BPM,
		Events:    rec.EventCount,
		Triggers:  len(triggers),
		Frames:    rec.Frames,
		Truncated: rec.Truncated,
		DocHash:   rec.DocHash,
		Inserted:  inserted,
	})
}
