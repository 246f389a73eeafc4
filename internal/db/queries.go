package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/sigdecode/internal/errors"
	"github.com/hpungsan/sigdecode/internal/run"
)

const runColumns = `
	id, signal_path, signal_hash, signal_chars, window_length, windows,
	matched, position, score, ranking, substitution_json, decoded_text,
	first_words_json, duration_ms, created_at`

// Insert records a completed run.
func Insert(ctx context.Context, db *sql.DB, r *run.Run) error {
	pairsJSON, err := json.Marshal(r.Pairs)
	if err != nil {
		return errors.NewInternal(err)
	}
	wordsJSON, err := json.Marshal(r.FirstWords)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = db.ExecContext(ctx, query,
		r.ID, r.SignalPath, r.SignalHash, r.SignalChars, r.WindowLength, r.Windows,
		boolToInt(r.Matched), r.Position, r.Score, r.Ranking, string(pairsJSON), r.DecodedText,
		string(wordsJSON), r.DurationMS, r.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetByID retrieves a run by its ULID.
func GetByID(ctx context.Context, db *sql.DB, id string) (*run.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	r, err := scanRun(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// ListFilter narrows List results. Empty fields are ignored.
type ListFilter struct {
	SignalHash  string
	MatchedOnly bool
}

// List returns run summaries newest first, plus the total matching count.
func List(ctx context.Context, db *sql.DB, filter ListFilter, limit, offset int) ([]run.Summary, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.SignalHash != "" {
		where += " AND signal_hash = ?"
		args = append(args, filter.SignalHash)
	}
	if filter.MatchedOnly {
		where += " AND matched = 1"
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs"+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT id, signal_path, signal_hash, window_length, windows,
			matched, position, score, created_at
		FROM runs` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var summaries []run.Summary
	for rows.Next() {
		var (
			s       run.Summary
			matched int
		)
		if err := rows.Scan(
			&s.ID, &s.SignalPath, &s.SignalHash, &s.WindowLength, &s.Windows,
			&matched, &s.Position, &s.Score, &s.CreatedAt,
		); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		s.Matched = matched != 0
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return summaries, total, nil
}

// Delete permanently removes a run.
func Delete(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// scanRun scans a single row into a Run struct.
func scanRun(row *sql.Row) (*run.Run, error) {
	var (
		r         run.Run
		matched   int
		pairsJSON string
		wordsJSON string
	)

	err := row.Scan(
		&r.ID, &r.SignalPath, &r.SignalHash, &r.SignalChars, &r.WindowLength, &r.Windows,
		&matched, &r.Position, &r.Score, &r.Ranking, &pairsJSON, &r.DecodedText,
		&wordsJSON, &r.DurationMS, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Matched = matched != 0

	if err := json.Unmarshal([]byte(pairsJSON), &r.Pairs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(wordsJSON), &r.FirstWords); err != nil {
		return nil, err
	}
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
