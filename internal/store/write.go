package store

import (
	"context"
	"fmt"
)

// WriteRender inserts a render and its triggers in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: if the render already
// exists nothing is written and inserted is false.
//
// The render's Meta and each trigger's style are serialized to canonical
// JSON per RFC 8785.
func (s *Store) WriteRender(ctx context.Context, r Render, triggers []Trigger) (inserted bool, err error) {
	metaJSON, err := marshalMeta(r.Meta)
	if err != nil {
		return false, fmt.Errorf("write render: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write render: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO renders
		(id, seq, seed, label, bpm, sample_rate, step_samples, total_samples,
		 event_count, frames, truncated, doc_hash, document, meta,
		 engine_version, timeline_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.Seq,
		formatSeed(r.Seed),
		r.Label,
		r.BPM,
		r.SampleRate,
		r.StepSamples,
		r.TotalSamples,
		r.EventCount,
		int64(r.Frames),
		r.Truncated,
		r.DocHash,
		string(r.Document),
		metaJSON,
		r.EngineVersion,
		r.TimelineVersion,
	)
	if err != nil {
		return false, fmt.Errorf("write render: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write render: rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO triggers
		(render_id, idx, frame, step, type, kind, aux, frequency, duration, style)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return false, fmt.Errorf("write render: prepare triggers: %w", err)
	}
	defer stmt.Close()

	for _, tr := range triggers {
		styleJSON, err := marshalStyle(tr)
		if err != nil {
			return false, fmt.Errorf("write render: trigger %d: %w", tr.Index, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID,
			tr.Index,
			int64(tr.Frame),
			tr.Step,
			tr.Type.String(),
			tr.Kind,
			tr.Aux,
			tr.Frequency,
			tr.Duration,
			styleJSON,
		); err != nil {
			return false, fmt.Errorf("write render: trigger %d: %w", tr.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write render: commit: %w", err)
	}
	return true, nil
}

// NextSeq returns the seq to use for the next render.
func (s *Store) NextSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM renders`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}
