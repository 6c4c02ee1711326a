package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var journalSequenceColumns = []*schema.Column{
	{Name: "id", Type: field.TypeInt},
	{Name: "next_val", Type: field.TypeInt64, Default: 1},
}

// journalSequenceTable holds the one row that numbers every event. It is
// migrated alongside Tables but is not an event table itself.
var journalSequenceTable = &schema.Table{
	Name:       "journal_sequence",
	Columns:    journalSequenceColumns,
	PrimaryKey: []*schema.Column{journalSequenceColumns[0]},
}

// journal numbers events across all tables so a round, its notices and the
// vision calls behind it sort together. Numbers are claimed in the database,
// so two processes sharing a file never hand out the same one.
type journal struct {
	mu sync.Mutex
	db *sql.DB
}

// openJournal seeds the counter past the highest sequence already stored
// the first time a database is opened.
func openJournal(ctx context.Context, db *sql.DB) (*journal, error) {
	var last int64
	if err := db.QueryRowContext(ctx, highestSequenceQuery()).Scan(&last); err != nil {
		return nil, fmt.Errorf("read highest sequence: %w", err)
	}

	query, args := builder().Insert(journalSequenceTable.Name).
		Columns("id", "next_val").
		Values(1, last+1).
		OnConflict(entsql.DoNothing()).
		Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &journal{db: db}, nil
}

func highestSequenceQuery() string {
	parts := make([]string, 0, len(Tables))
	for _, t := range Tables {
		parts = append(parts, "SELECT MAX(sequence) AS seq FROM "+t.Name)
	}
	return "SELECT COALESCE(MAX(seq), 0) FROM (" + strings.Join(parts, " UNION ALL ") + ")"
}

// Next claims the next sequence number.
func (j *journal) Next(ctx context.Context) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	query, args := builder().Update(journalSequenceTable.Name).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Returning("next_val").
		Query()

	var next int64
	if err := j.db.QueryRowContext(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next - 1, nil
}
