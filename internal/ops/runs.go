package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/sigdecode/internal/db"
	"github.com/hpungsan/sigdecode/internal/run"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	SignalHash  string // optional filter by signal fingerprint
	MatchedOnly bool
	Limit       int // default: 20, max: 100
	Offset      int // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []run.Summary `json:"items"`
	Pagination Pagination    `json:"pagination"`
	Sort       string        `json:"sort"`
}

// List retrieves run summaries, newest first, with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	summaries, total, err := db.List(ctx, database, db.ListFilter{
		SignalHash:  input.SignalHash,
		MatchedOnly: input.MatchedOnly,
	}, limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if summaries == nil {
		summaries = []run.Summary{}
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(summaries) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}

// Fetch retrieves a single recorded run by ID.
func Fetch(ctx context.Context, database *sql.DB, id string) (*run.Run, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	return db.GetByID(ctx, database, id)
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// Delete permanently removes a recorded run.
func Delete(ctx context.Context, database *sql.DB, id string) (*DeleteOutput, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(ctx, database, id); err != nil {
		return nil, err
	}
	return &DeleteOutput{ID: id, Deleted: true}, nil
}
