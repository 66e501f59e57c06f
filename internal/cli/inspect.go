package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/timeline"
)

// InspectResult summarises a timeline document.
type InspectResult struct {
	Path         string         `json:"path"`
	Seed         string         `json:"seed"`
	SampleRate   uint32         `json:"sample_rate"`
	BPM          float64        `json:"bpm"`
	StepSamples  uint32         `json:"step_samples"`
	TotalSamples uint32         `json:"total_samples"`
	Duration     float64        `json:"duration_seconds"`
	Events       int            `json:"events"`
	Counts       map[string]int `json:"counts"`
	Unknown      int            `json:"unknown,omitempty"`
	DocHash      string         `json:"doc_hash"`
}

func (r InspectResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s\n", r.Path)
	fmt.Fprintf(&b, "  seed:     %s\n", r.Seed)
	fmt.Fprintf(&b, "  bpm:      %.6f\n", r.BPM)
	fmt.Fprintf(&b, "  rate:     %d Hz, %d samples/step\n", r.SampleRate, r.StepSamples)
	fmt.Fprintf(&b, "  length:   %d samples (%.3fs)\n", r.TotalSamples, r.Duration)
	fmt.Fprintf(&b, "  events:   %d\n", r.Events)
	for _, t := range ir.EventTypes {
		fmt.Fprintf(&b, "    %-8s %d\n", t, r.Counts[t.String()])
	}
	if r.Unknown > 0 {
		fmt.Fprintf(&b, "    %-8s %d\n", "unknown", r.Unknown)
	}
	fmt.Fprintf(&b, "  doc hash: %s", r.DocHash)
	return b.String()
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <timeline>",
		Short: "Summarise a timeline document",
		Long: `Parse a timeline document and print its header, event counts per
type and content hash.

A document that does not parse exits with code 1.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runInspect(cmd *cobra.Command, opts *RootOptions, path string) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	tl, doc, err := readTimeline(f, path)
	if err != nil {
		return err
	}
	defer tl.Release()

	counts := make(map[string]int, len(ir.EventTypes))
	for _, t := range ir.EventTypes {
		counts[t.String()] = tl.Count(t)
	}

	return f.Success(InspectResult{
		Path:         path,
		Seed:         fmt.Sprintf("0x%016x", tl.Seed),
		SampleRate:   tl.SampleRate,
		BPM:          tl.BPM,
		StepSamples:  tl.StepSamples,
		TotalSamples: tl.TotalSamples,
		Duration:     tl.Duration(),
		Events:       len(tl.Events),
		Counts:       counts,
		Unknown:      tl.Count(ir.EventUnknown),
		DocHash:      timeline.Hash(doc),
	})
}

// readTimeline reads and parses a document. Unreadable files are command
// errors; documents that do not parse are failures.
func readTimeline(f *OutputFormatter, path string) (*timeline.Timeline, []byte, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fail(f, ExitCommandError, ErrCodeNotFound, "read timeline", err)
	}
	tl, err := timeline.Parse(doc)
	if err != nil {
		return nil, nil, fail(f, ExitFailure, ErrCodeParse, fmt.Sprintf("parse %s", path), err)
	}
	return tl, doc, nil
}
