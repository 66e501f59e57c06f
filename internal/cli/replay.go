package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/deafbeat/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	DBPath   string
	RenderID string
}

// ReplayEntry is the outcome for one render.
type ReplayEntry struct {
	RenderID       string `json:"render_id"`
	Seed           string `json:"seed"`
	OK             bool   `json:"ok"`
	StoredHash     string `json:"stored_hash"`
	ReplayHash     string `json:"replay_hash"`
	StoredTriggers int    `json:"stored_triggers"`
	ReplayTriggers int    `json:"replay_triggers"`
	FirstMismatch  int    `json:"first_mismatch"`
}

// ReplayReport is the output of the replay command.
type ReplayReport struct {
	Renders    []ReplayEntry `json:"renders"`
	Reproduced int           `json:"reproduced"`
	Drifted    int           `json:"drifted"`
}

func (r ReplayReport) String() string {
	var b strings.Builder
	for _, e := range r.Renders {
		if e.OK {
			fmt.Fprintf(&b, "✓ %s  seed %s\n", e.RenderID, e.Seed)
			continue
		}
		fmt.Fprintf(&b, "✗ %s  seed %s\n", e.RenderID, e.Seed)
		if e.StoredHash != e.ReplayHash {
			fmt.Fprintf(&b, "    document: stored %s, replayed %s\n", e.StoredHash, e.ReplayHash)
		}
		if e.StoredTriggers != e.ReplayTriggers {
			fmt.Fprintf(&b, "    triggers: stored %d, replayed %d\n", e.StoredTriggers, e.ReplayTriggers)
		}
		if e.FirstMismatch >= 0 {
			fmt.Fprintf(&b, "    first differing trigger: %d\n", e.FirstMismatch)
		}
	}
	fmt.Fprintf(&b, "%d reproduced, %d drifted", r.Reproduced, r.Drifted)
	return b.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-render logged renders and compare them",
		Long: `Re-render renders logged by 'deafbeat render' or 'deafbeat test --db'
from their recorded seed and options, and compare the timeline document
hash and the trigger log with what was stored.

Without --render every logged render is replayed. Exits with code 1 if any
render did not reproduce.`,
		Example: `  deafbeat replay --db renders.db
  deafbeat replay --db renders.db --render 0192b3c4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RenderID, "render", "", "replay a single render")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(cmd *cobra.Command, opts *ReplayOptions) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	if _, err := os.Stat(opts.DBPath); err != nil {
		return fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DBPath), nil)
	}
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, "open database", err)
	}
	defer st.Close()

	var results []store.ReplayResult
	if opts.RenderID != "" {
		res, err := st.Replay(ctx, opts.RenderID, rerender)
		if errors.Is(err, sql.ErrNoRows) {
			return fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("render not found: %s", opts.RenderID), nil)
		}
		if err != nil {
			return fail(f, ExitFailure, ErrCodeGeneric, "replay", err)
		}
		results = append(results, res)
	} else {
		results, err = st.ReplayAll(ctx, rerender)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeGeneric, "replay", err)
		}
	}

	report := ReplayReport{Renders: make([]ReplayEntry, 0, len(results))}
	for _, res := range results {
		ok := res.OK()
		if ok {
			report.Reproduced++
		} else {
			report.Drifted++
		}
		report.Renders = append(report.Renders, ReplayEntry{
			RenderID:       res.RenderID,
			Seed:           fmt.Sprintf("0x%016x", res.Seed),
			OK:             ok,
			StoredHash:     res.StoredHash,
			ReplayHash:     res.ReplayHash,
			StoredTriggers: res.StoredTriggers,
			ReplayTriggers: res.ReplayTriggers,
			FirstMismatch:  res.FirstMismatch,
		})
	}

	if report.Drifted > 0 {
		msg := fmt.Sprintf("%d of %d render(s) did not reproduce", report.Drifted, len(results))
		if err := f.Failure(ErrCodeMismatch, msg, report); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(report)
}
