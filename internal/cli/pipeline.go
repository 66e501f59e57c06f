package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/deafbeat/internal/config"
	"github.com/roach88/deafbeat/internal/engine"
	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/store"
	"github.com/roach88/deafbeat/internal/timeline"
	"github.com/roach88/deafbeat/internal/voice"
)

// rendered is one seed taken through the whole pipeline.
type rendered struct {
	Composition *engine.Composition
	Timeline    *timeline.Timeline
	Document    []byte
	Records     []voice.Record
}

// Triggers converts the recorded dispatches into log rows.
func (r *rendered) Triggers() []store.Trigger {
	return store.TriggersFromRecords(r.Records, r.Composition.Clock().StepSamples)
}

// renderSeed builds the composition for seed, exports its timeline and
// renders the segment into a recorder.
func renderSeed(seed uint64, opts ...engine.Option) (*rendered, error) {
	rec := voice.NewRecorder()
	opts = append(opts, engine.WithVoices(voice.Shared(rec)))
	c, err := engine.New(seed, opts...)
	if err != nil {
		return nil, err
	}

	tl := timeline.FromComposition(c)
	doc := timeline.Marshal(tl)
	c.Render()

	slog.Debug("rendered seed",
		"seed", fmt.Sprintf("0x%016x", seed),
		"bpm", c.Clock().BPM,
		"events", c.Queue().Len(),
		"frames", c.Scheduler().Frame(),
		"truncated", c.Truncated(),
	)
	return &rendered{
		Composition: c,
		Timeline:    tl,
		Document:    doc,
		Records:     rec.Records(),
	}, nil
}

// loadConfig returns the defaults when path is empty.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// renderMeta records the options a render was made with, so replay can
// rebuild it.
func renderMeta(cfg config.Config) ir.Object {
	return ir.Object{
		"max_events": ir.Int(cfg.MaxEvents),
		"max_frames": ir.Int(cfg.MaxFrames),
	}
}

// rerender rebuilds a stored render from its seed, sample rate and meta.
// Zero or missing budgets fall back to the engine defaults.
func rerender(_ context.Context, r store.Render) ([]byte, []store.Trigger, error) {
	opts := []engine.Option{engine.WithSampleRate(r.SampleRate)}
	if n := metaInt(r.Meta, "max_events"); n > 0 {
		opts = append(opts, engine.WithMaxEvents(n))
	}
	if n := metaInt(r.Meta, "max_frames"); n > 0 {
		opts = append(opts, engine.WithMaxFrames(n))
	}

	out, err := renderSeed(r.Seed, opts...)
	if err != nil {
		return nil, nil, err
	}
	return out.Document, out.Triggers(), nil
}

func metaInt(meta ir.Object, key string) int {
	if v, ok := meta[key].(ir.Int); ok {
		return int(v)
	}
	return 0
}

// parseSeedArg parses a seed argument, reporting failures as command errors.
func parseSeedArg(f *OutputFormatter, arg string) (uint64, error) {
	seed, err := config.ParseSeed(arg)
	if err != nil {
		return 0, fail(f, ExitCommandError, ErrCodeBadSeed, "invalid seed", err)
	}
	return seed, nil
}

// configError maps a config.LoadError onto an exit code: unreadable or
// unparseable files are command errors, schema violations are failures.
func configError(f *OutputFormatter, err error) error {
	code, exit := ErrCodeGeneric, ExitCommandError
	var le *config.LoadError
	if errors.As(err, &le) {
		code = le.Code
		if le.Code == config.ErrCodeInvalid || le.Code == config.ErrCodeInvalidSeed {
			exit = ExitFailure
		}
	}
	return fail(f, exit, code, "config", err)
}
