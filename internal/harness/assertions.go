package harness

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/store"
	"github.com/roach88/deafbeat/internal/timeline"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext carries everything a scenario produced.
type AssertionContext struct {
	Ctx      context.Context
	Store    *store.Store
	RenderID string

	Document []byte
	Exported *timeline.Timeline
	Parsed   *timeline.Timeline
	ParseErr error
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertEventAt:
			err = assertEventAt(actx.Exported, a)
		case AssertTypeCount:
			err = assertTypeCount(actx.Exported, a)
		case AssertEventCount:
			err = assertEventCount(actx.Exported, a)
		case AssertTriggerCount:
			if actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: trigger_count requires a store", i)
			} else {
				err = assertTriggerCount(actx.Ctx, actx.Store, actx.RenderID, a)
			}
		case AssertBPM:
			err = assertBPM(actx.Exported, a)
		case AssertRoundTrip:
			err = assertRoundTrip(actx)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}

func assertEventAt(tl *timeline.Timeline, a Assertion) error {
	want := ir.ParseEventType(a.Event)
	var seen []string
	for _, ev := range tl.Events {
		if ev.Time != a.Time {
			continue
		}
		if ev.Type == want && (a.Aux == nil || int(ev.Aux) == *a.Aux) {
			return nil
		}
		seen = append(seen, ev.String())
	}

	expected := fmt.Sprintf("%s at %d", a.Event, a.Time)
	if a.Aux != nil {
		expected += fmt.Sprintf(" with aux %d", *a.Aux)
	}
	actual := "no events at that time"
	if len(seen) > 0 {
		actual = strings.Join(seen, ", ")
	}
	return &AssertionError{Type: AssertEventAt, Expected: expected, Actual: actual}
}

func assertTypeCount(tl *timeline.Timeline, a Assertion) error {
	got := tl.Count(ir.ParseEventType(a.Event))
	if got == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTypeCount,
		Expected: fmt.Sprintf("%d %s events", a.Count, a.Event),
		Actual:   fmt.Sprintf("%d", got),
	}
}

func assertEventCount(tl *timeline.Timeline, a Assertion) error {
	if len(tl.Events) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventCount,
		Expected: fmt.Sprintf("%d events", a.Count),
		Actual:   fmt.Sprintf("%d", len(tl.Events)),
	}
}

func assertTriggerCount(ctx context.Context, st *store.Store, renderID string, a Assertion) error {
	triggers, err := st.ReadTriggers(ctx, renderID)
	if err != nil {
		return fmt.Errorf("trigger_count: %w", err)
	}
	got := 0
	for _, tr := range triggers {
		if a.Kind == "" || tr.Kind == a.Kind {
			got++
		}
	}
	if got == a.Count {
		return nil
	}
	what := "triggers"
	if a.Kind != "" {
		what = a.Kind + " triggers"
	}
	return &AssertionError{
		Type:     AssertTriggerCount,
		Expected: fmt.Sprintf("%d %s", a.Count, what),
		Actual:   fmt.Sprintf("%d", got),
	}
}

func assertBPM(tl *timeline.Timeline, a Assertion) error {
	tol := a.Tolerance
	if tol <= 0 {
		tol = DefaultBPMTolerance
	}
	if math.Abs(tl.BPM-a.Value) <= tol {
		return nil
	}
	return &AssertionError{
		Type:     AssertBPM,
		Expected: fmt.Sprintf("%.6f (+/- %g)", a.Value, tol),
		Actual:   fmt.Sprintf("%.6f", tl.BPM),
	}
}

// assertRoundTrip checks that the exported document parses and re-exports
// byte-identically, with the same events as the composition.
func assertRoundTrip(actx *AssertionContext) error {
	if actx.ParseErr != nil {
		return &AssertionError{Type: AssertRoundTrip, Expected: "document parses", Actual: actx.ParseErr.Error()}
	}
	again := timeline.Marshal(actx.Parsed)
	if !bytes.Equal(again, actx.Document) {
		return &AssertionError{
			Type:     AssertRoundTrip,
			Expected: "re-export identical to export",
			Actual:   fmt.Sprintf("hash %s, want %s", timeline.Hash(again), timeline.Hash(actx.Document)),
		}
	}
	if len(actx.Parsed.Events) != len(actx.Exported.Events) {
		return &AssertionError{
			Type:     AssertRoundTrip,
			Expected: fmt.Sprintf("%d events", len(actx.Exported.Events)),
			Actual:   fmt.Sprintf("%d", len(actx.Parsed.Events)),
		}
	}
	for i, ev := range actx.Exported.Events {
		if actx.Parsed.Events[i] != ev {
			return &AssertionError{
				Type:     AssertRoundTrip,
				Expected: fmt.Sprintf("event %d = %s", i, ev),
				Actual:   actx.Parsed.Events[i].String(),
			}
		}
	}
	return nil
}
