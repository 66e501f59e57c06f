package store

import (
	"context"
	"fmt"

	"github.com/roach88/deafbeat/internal/ir"
)

// Rerender reproduces a stored render from its recorded seed and options,
// returning the exported document and the dispatched triggers.
type Rerender func(ctx context.Context, r Render) (doc []byte, triggers []Trigger, err error)

// ReplayResult compares a stored render against a fresh one.
type ReplayResult struct {
	RenderID       string
	Seed           uint64
	StoredHash     string
	ReplayHash     string
	StoredTriggers int
	ReplayTriggers int

	// FirstMismatch is the index of the first differing trigger, or -1.
	FirstMismatch int
}

// OK reports whether document and triggers were reproduced exactly.
func (r ReplayResult) OK() bool {
	return r.StoredHash == r.ReplayHash &&
		r.StoredTriggers == r.ReplayTriggers &&
		r.FirstMismatch < 0
}

// Replay re-renders the stored render id with rerender and compares the
// document hash and the trigger log. A mismatch is reported in the result,
// not as an error; errors mean the comparison could not be made.
func (s *Store) Replay(ctx context.Context, id string, rerender Rerender) (ReplayResult, error) {
	stored, err := s.GetRender(ctx, id)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	return s.replay(ctx, stored, rerender)
}

// ReplayAll replays every render in seq order.
func (s *Store) ReplayAll(ctx context.Context, rerender Rerender) ([]ReplayResult, error) {
	renders, err := s.ListRenders(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay all: %w", err)
	}

	results := make([]ReplayResult, 0, len(renders))
	for _, r := range renders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := s.replay(ctx, r, rerender)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Store) replay(ctx context.Context, stored Render, rerender Rerender) (ReplayResult, error) {
	storedTriggers, err := s.ReadTriggers(ctx, stored.ID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", stored.ID, err)
	}

	doc, triggers, err := rerender(ctx, stored)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: rerender: %w", stored.ID, err)
	}

	return ReplayResult{
		RenderID:       stored.ID,
		Seed:           stored.Seed,
		StoredHash:     stored.DocHash,
		ReplayHash:     ir.HashWithDomain(ir.DomainTimeline, doc),
		StoredTriggers: len(storedTriggers),
		ReplayTriggers: len(triggers),
		FirstMismatch:  firstMismatch(storedTriggers, triggers),
	}, nil
}

func firstMismatch(a, b []Trigger) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}
