package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/deafbeat/internal/engine"
	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/store"
	"github.com/roach88/deafbeat/internal/testutil"
	"github.com/roach88/deafbeat/internal/timeline"
	"github.com/roach88/deafbeat/internal/voice"
)

// Harness executes scenarios and logs each render to a store.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	ids    store.IDGenerator
	logger *slog.Logger
}

// New returns a harness logging to st. clock supplies render seqs and ids
// render IDs.
func New(st *store.Store, clock *testutil.DeterministicClock, ids store.IDGenerator) *Harness {
	return &Harness{
		store:  st,
		clock:  clock,
		ids:    ids,
		logger: testutil.DiscardLogger(),
	}
}

// WithLogger replaces the harness logger, which discards by default.
func (h *Harness) WithLogger(l *slog.Logger) *Harness {
	h.logger = l
	return h
}

// Run executes a scenario against a fresh in-memory store with a
// deterministic seq clock and render IDs derived from the scenario name.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := New(st, testutil.NewDeterministicClock(), testutil.NewFixedRunIDGenerator(scenario.Name))
	return h.Run(context.Background(), scenario)
}

// Run executes one scenario.
//
// Execution flow:
//  1. Build the composition for the scenario seed
//  2. Export the timeline document
//  3. Render the segment into a recorder
//  4. Log the render and its triggers
//  5. Parse the document back and evaluate assertions
//
// An error means the scenario could not be executed; failed assertions are
// reported in the Result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	seed, err := scenario.SeedValue()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	rec := voice.NewRecorder()
	opts := []engine.Option{engine.WithVoices(voice.Shared(rec))}
	if scenario.MaxFrames > 0 {
		opts = append(opts, engine.WithMaxFrames(scenario.MaxFrames))
	}
	c, err := engine.New(seed, opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	exported := timeline.FromComposition(c)
	doc := timeline.Marshal(exported)

	c.Render()

	render := store.RenderFrom(c, doc)
	render.ID = h.ids.Generate()
	render.Seq = h.clock.Next()
	render.Label = scenario.Name
	render.Meta = ir.Object{
		"scenario":   ir.String(scenario.Name),
		"max_events": ir.Int(c.Queue().Cap()),
		"max_frames": ir.Int(scenario.MaxFrames),
	}
	triggers := store.TriggersFromRecords(rec.Records(), c.Clock().StepSamples)
	if _, err := h.store.WriteRender(ctx, render, triggers); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(scenario.Name)
	result.Seed = fmt.Sprintf("0x%016x", seed)
	result.RenderID = render.ID
	result.DocHash = render.DocHash
	result.Events = render.EventCount
	result.Triggers = len(triggers)
	result.Frames = render.Frames
	result.Document = doc

	actx := &AssertionContext{
		Ctx:      ctx,
		Store:    h.store,
		RenderID: render.ID,
		Document: doc,
		Exported: exported,
	}
	for _, msg := range checkDocument(scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"seed", result.Seed,
		"render_id", render.ID,
		"pass", result.Pass,
		"errors", len(result.Errors),
	)
	return result, nil
}

// checkDocument parses actx.Document and evaluates assertions against the
// result. The parsed timeline is released before returning.
func checkDocument(assertions []Assertion, actx *AssertionContext) []string {
	parsed, err := timeline.Parse(actx.Document)
	defer parsed.Release()

	actx.Parsed, actx.ParseErr = parsed, err
	return EvaluateAssertions(assertions, actx)
}
