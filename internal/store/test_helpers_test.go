package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/deafbeat/internal/engine"
	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/timeline"
	"github.com/roach88/deafbeat/internal/voice"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// renderSeed runs a full composition for seed and returns the exported
// document and its trigger log.
func renderSeed(seed uint64) ([]byte, []Trigger, *engine.Composition, error) {
	rec := voice.NewRecorder()
	c, err := engine.New(seed, engine.WithVoices(voice.Shared(rec)))
	if err != nil {
		return nil, nil, nil, err
	}
	c.Render()
	doc := timeline.Marshal(timeline.FromComposition(c))
	return doc, TriggersFromRecords(rec.Records(), c.Clock().StepSamples), c, nil
}

// createTestRender builds a logged render for seed with the given id and seq.
func createTestRender(t *testing.T, id string, seed uint64, seq int64) (Render, []Trigger) {
	t.Helper()
	doc, triggers, c, err := renderSeed(seed)
	if err != nil {
		t.Fatalf("renderSeed(%#x) failed: %v", seed, err)
	}
	r := RenderFrom(c, doc)
	r.ID = id
	r.Seq = seq
	r.Label = "test"
	r.Meta = ir.Object{"source": ir.String("test")}
	return r, triggers
}

// rerenderFromSeed is the Rerender used by replay tests.
func rerenderFromSeed(_ context.Context, r Render) ([]byte, []Trigger, error) {
	doc, triggers, _, err := renderSeed(r.Seed)
	return doc, triggers, err
}

func writeTestRender(t *testing.T, s *Store, id string, seed uint64, seq int64) Render {
	t.Helper()
	r, triggers := createTestRender(t, id, seed, seq)
	inserted, err := s.WriteRender(context.Background(), r, triggers)
	if err != nil {
		t.Fatalf("WriteRender(%s) failed: %v", id, err)
	}
	if !inserted {
		t.Fatalf("WriteRender(%s) did not insert", id)
	}
	return r
}
