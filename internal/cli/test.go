package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/deafbeat/internal/harness"
	"github.com/roach88/deafbeat/internal/store"
	"github.com/roach88/deafbeat/internal/testutil"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	DBPath    string
	Filter    string
	GoldenDir string
	Update    bool
}

// TestReport is the output of the test command.
type TestReport struct {
	Results []*harness.Result `json:"results"`
	Passed  int               `json:"passed"`
	Failed  int               `json:"failed"`
}

func (r TestReport) String() string {
	var b strings.Builder
	for _, res := range r.Results {
		if res.Pass {
			fmt.Fprintf(&b, "✓ %s\n", res.Scenario)
			continue
		}
		fmt.Fprintf(&b, "✗ %s\n", res.Scenario)
		for _, e := range res.Errors {
			for _, line := range strings.Split(e, "\n") {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
	}
	fmt.Fprintf(&b, "%d passed, %d failed", r.Passed, r.Failed)
	return b.String()
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-dir>",
		Short: "Run conformance scenarios",
		Long: `Run every YAML scenario in a directory and check its assertions.

With --db each scenario render is logged to the database, ready for
'deafbeat replay'. With --golden the exported timeline document of each
scenario is compared with <golden>/<name>.golden; --update rewrites those
files instead.

Exits with code 1 if any scenario fails.`,
		Example: `  deafbeat test internal/harness/testdata/scenarios
  deafbeat test scenarios/ --golden scenarios/golden --filter cafebabe`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "log scenario renders to this SQLite database")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name contains this")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "directory of golden timeline documents")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files")

	return cmd
}

func runTest(cmd *cobra.Command, opts *TestOptions, dir string) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	if opts.Update && opts.GoldenDir == "" {
		return fail(f, ExitCommandError, ErrCodeGeneric, "--update requires --golden", nil)
	}
	if _, err := os.Stat(dir); err != nil {
		return fail(f, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenario directory not found: %s", dir), nil)
	}
	scenarios, err := harness.LoadDir(dir)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, "load scenarios", err)
	}

	run, closeRun, err := scenarioRunner(ctx, opts.DBPath)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, "open database", err)
	}
	defer closeRun()

	report := TestReport{Results: []*harness.Result{}}
	for _, s := range scenarios {
		if opts.Filter != "" && !strings.Contains(s.Name, opts.Filter) {
			continue
		}
		f.VerboseLog("running %s", s.Name)
		res, err := run(s)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeGeneric, "run scenario", err)
		}
		if opts.GoldenDir != "" {
			if err := checkGolden(opts.GoldenDir, s.Name, res, opts.Update); err != nil {
				if !errors.Is(err, errGoldenMismatch) {
					return fail(f, ExitCommandError, ErrCodeWriteFailed, "golden", err)
				}
				res.AddError(err.Error())
			}
		}
		if res.Pass {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}

	if report.Failed > 0 {
		msg := fmt.Sprintf("%d of %d scenario(s) failed", report.Failed, len(report.Results))
		if err := f.Failure(ErrCodeGeneric, msg, report); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(report)
}

// scenarioRunner returns a function running one scenario. Without a
// database each scenario gets its own in-memory store; with one, renders
// are appended after the last logged seq.
func scenarioRunner(ctx context.Context, dbPath string) (func(*harness.Scenario) (*harness.Result, error), func(), error) {
	if dbPath == "" {
		return harness.Run, func() {}, nil
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	next, err := st.NextSeq(ctx)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	h := harness.New(st, testutil.NewDeterministicClockAt(next-1), store.UUIDv7Generator{}).
		WithLogger(slog.Default())
	run := func(s *harness.Scenario) (*harness.Result, error) {
		return h.Run(ctx, s)
	}
	return run, func() { st.Close() }, nil
}

var errGoldenMismatch = errors.New("document differs from golden file")

// checkGolden compares the scenario document with <dir>/<name>.golden, or
// rewrites that file when update is set.
func checkGolden(dir, name string, res *harness.Result, update bool) error {
	path := filepath.Join(dir, name+".golden")
	if update {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		return os.WriteFile(path, res.Document, 0o644)
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", errGoldenMismatch, err)
	}
	if !bytes.Equal(want, res.Document) {
		return fmt.Errorf("%w: %s", errGoldenMismatch, path)
	}
	return nil
}
