package store

import (
	"context"
	"fmt"

	"github.com/roach88/deafbeat/internal/ir"
)

const renderColumns = `
	id, seq, seed, label, bpm, sample_rate, step_samples, total_samples,
	event_count, frames, truncated, doc_hash, document, meta,
	engine_version, timeline_version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRender(row rowScanner) (Render, error) {
	var (
		r        Render
		seed     string
		frames   int64
		document string
		meta     string
	)
	if err := row.Scan(
		&r.ID, &r.Seq, &seed, &r.Label, &r.BPM, &r.SampleRate, &r.StepSamples, &r.TotalSamples,
		&r.EventCount, &frames, &r.Truncated, &r.DocHash, &document, &meta,
		&r.EngineVersion, &r.TimelineVersion,
	); err != nil {
		return Render{}, err
	}

	var err error
	if r.Seed, err = parseSeed(seed); err != nil {
		return Render{}, err
	}
	if r.Meta, err = unmarshalMeta(meta); err != nil {
		return Render{}, err
	}
	r.Frames = uint64(frames)
	r.Document = []byte(document)
	return r, nil
}

// GetRender retrieves a single render by ID.
// Returns sql.ErrNoRows (wrapped) if not found.
func (s *Store) GetRender(ctx context.Context, id string) (Render, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+renderColumns+` FROM renders WHERE id = ?`, id)
	r, err := scanRender(row)
	if err != nil {
		return Render{}, fmt.Errorf("get render %s: %w", id, err)
	}
	return r, nil
}

// LatestRender returns the render with the highest seq.
// Returns sql.ErrNoRows (wrapped) if the log is empty.
func (s *Store) LatestRender(ctx context.Context) (Render, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+renderColumns+`
		FROM renders
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`)
	r, err := scanRender(row)
	if err != nil {
		return Render{}, fmt.Errorf("latest render: %w", err)
	}
	return r, nil
}

// ListRenders returns every render, ordered by seq then id.
// Returns an empty slice (not nil) for an empty log.
func (s *Store) ListRenders(ctx context.Context) ([]Render, error) {
	return s.queryRenders(ctx, `
		SELECT `+renderColumns+`
		FROM renders
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
}

// ListRendersForSeed returns the renders of one seed, ordered by seq then id.
func (s *Store) ListRendersForSeed(ctx context.Context, seed uint64) ([]Render, error) {
	return s.queryRenders(ctx, `
		SELECT `+renderColumns+`
		FROM renders
		WHERE seed = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, formatSeed(seed))
}

func (s *Store) queryRenders(ctx context.Context, query string, args ...any) ([]Render, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query renders: %w", err)
	}
	defer rows.Close()

	renders := []Render{}
	for rows.Next() {
		r, err := scanRender(rows)
		if err != nil {
			return nil, fmt.Errorf("scan render: %w", err)
		}
		renders = append(renders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate renders: %w", err)
	}
	return renders, nil
}

// ReadTriggers returns a render's triggers in dispatch order.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ReadTriggers(ctx context.Context, renderID string) ([]Trigger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, frame, step, type, kind, aux, frequency, duration, style
		FROM triggers
		WHERE render_id = ?
		ORDER BY idx ASC
	`, renderID)
	if err != nil {
		return nil, fmt.Errorf("query triggers: %w", err)
	}
	defer rows.Close()

	triggers := []Trigger{}
	for rows.Next() {
		var (
			tr    Trigger
			frame int64
			typ   string
			style string
		)
		if err := rows.Scan(&tr.Index, &frame, &tr.Step, &typ, &tr.Kind, &tr.Aux, &tr.Frequency, &tr.Duration, &style); err != nil {
			return nil, fmt.Errorf("scan trigger: %w", err)
		}
		tr.Frame = uint64(frame)
		tr.Type = ir.ParseEventType(typ)
		if err := unmarshalStyle(style, &tr); err != nil {
			return nil, err
		}
		triggers = append(triggers, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triggers: %w", err)
	}
	return triggers, nil
}

// CountTriggers returns the number of triggers per event type name.
func (s *Store) CountTriggers(ctx context.Context, renderID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, COUNT(*)
		FROM triggers
		WHERE render_id = ?
		GROUP BY type
		ORDER BY type COLLATE BINARY ASC
	`, renderID)
	if err != nil {
		return nil, fmt.Errorf("count triggers: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan trigger count: %w", err)
		}
		counts[typ] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trigger counts: %w", err)
	}
	return counts, nil
}
