package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Events is the append-only event log. Game code only writes to it; the
// CLI and history screen read it back.
type Events struct {
	db  *sql.DB
	seq *journal
}

var (
	_ EventRepo = (*Events)(nil)
	_ GameRepo  = (*Events)(nil)
)

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// insert assigns the next sequence and appends one row to table.
func (e *Events) insert(ctx context.Context, table string, columns []string, values []any) error {
	seqNum, err := e.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seqNum, time.Now().UTC()}, values...)...).
		Query()
	if _, err := e.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (e *Events) AppendSession(ctx context.Context, data SessionEventData) error {
	return e.insert(ctx, SessionEventsTable.Name,
		[]string{"session_id", "action", "player_wins", "opponent_wins", "classifier"},
		[]any{data.SessionID, data.Action, data.PlayerWins, data.OpponentWins, data.Classifier},
	)
}

func (e *Events) AppendRound(ctx context.Context, data RoundEventData) error {
	var scores sql.NullString
	if len(data.Scores) > 0 {
		b, err := json.Marshal(data.Scores)
		if err != nil {
			return fmt.Errorf("marshal scores: %w", err)
		}
		scores = sql.NullString{String: string(b), Valid: true}
	}

	return e.insert(ctx, RoundEventsTable.Name,
		[]string{"session_id", "round", "player_move", "opponent_move", "outcome",
			"player_wins", "opponent_wins", "scores", "classify_ms"},
		[]any{data.SessionID, int64(data.Round), data.PlayerMove, data.OpponentMove, data.Outcome,
			data.PlayerWins, data.OpponentWins, scores, data.ClassifyMs},
	)
}

func (e *Events) AppendNotice(ctx context.Context, data NoticeEventData) error {
	return e.insert(ctx, NoticeEventsTable.Name,
		[]string{"session_id", "round", "kind", "message"},
		[]any{data.SessionID, int64(data.Round), data.Kind, data.Message},
	)
}

// where applies the filters of opts to sel.
func (opts QueryOpts) where(sel *entsql.Selector) *entsql.Selector {
	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.SessionID != "" {
		preds = append(preds, entsql.EQ("session_id", opts.SessionID))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

// RecentRounds returns round events, newest first.
func (e *Events) RecentRounds(ctx context.Context, opts QueryOpts) ([]RoundRecord, error) {
	sel := builder().
		Select("id", "sequence", "timestamp", "session_id", "round", "player_move",
			"opponent_move", "outcome", "player_wins", "opponent_wins", "scores", "classify_ms").
		From(entsql.Table(RoundEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	query, args := opts.where(sel).Query()

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	var out []RoundRecord
	for rows.Next() {
		var (
			r      RoundRecord
			round  int64
			scores sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Sequence, &r.Timestamp, &r.SessionID, &round,
			&r.PlayerMove, &r.OpponentMove, &r.Outcome, &r.PlayerWins, &r.OpponentWins,
			&scores, &r.ClassifyMs); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		r.Round = uint64(round)
		if scores.Valid {
			if err := json.Unmarshal([]byte(scores.String), &r.Scores); err != nil {
				return nil, fmt.Errorf("decode scores of round %d: %w", r.ID, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SessionSummaries aggregates rounds per session, most recently played
// first.
func (e *Events) SessionSummaries(ctx context.Context, limit int) ([]SessionSummary, error) {
	sel := builder().
		Select(
			"session_id",
			entsql.As(entsql.Count("*"), "rounds"),
			"SUM(CASE WHEN outcome = 'player_win' THEN 1 ELSE 0 END)",
			"SUM(CASE WHEN outcome = 'opponent_win' THEN 1 ELSE 0 END)",
			"SUM(CASE WHEN outcome = 'tie' THEN 1 ELSE 0 END)",
			entsql.As(entsql.Max("sequence"), "last_seq"),
		).
		From(entsql.Table(RoundEventsTable.Name)).
		GroupBy("session_id").
		OrderBy(entsql.Desc("last_seq"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}

	var (
		out  []SessionSummary
		seqs []int64
	)
	for rows.Next() {
		var s SessionSummary
		var lastSeq int64
		if err := rows.Scan(&s.SessionID, &s.Rounds, &s.PlayerWins, &s.OpponentWins, &s.Ties, &lastSeq); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		out = append(out, s)
		seqs = append(seqs, lastSeq)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Resolve last-played timestamps once the aggregate cursor is closed.
	for i, seq := range seqs {
		q, args := builder().Select("timestamp").
			From(entsql.Table(RoundEventsTable.Name)).
			Where(entsql.EQ("sequence", seq)).
			Query()
		if err := e.db.QueryRowContext(ctx, q, args...).Scan(&out[i].LastPlayed); err != nil {
			return nil, fmt.Errorf("last played for %s: %w", out[i].SessionID, err)
		}
	}
	return out, nil
}

// CountNotices returns how many notices of kind were recorded. An empty kind
// counts all notices.
func (e *Events) CountNotices(ctx context.Context, kind string) (int, error) {
	sel := builder().Select(entsql.Count("*")).From(entsql.Table(NoticeEventsTable.Name))
	if kind != "" {
		sel.Where(entsql.EQ("kind", kind))
	}
	query, args := sel.Query()

	var n int
	if err := e.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count notices: %w", err)
	}
	return n, nil
}

// SessionActions returns the actions recorded for sessionID in order.
func (e *Events) SessionActions(ctx context.Context, sessionID string) ([]SessionEventData, error) {
	query, args := builder().
		Select("session_id", "action", "player_wins", "opponent_wins", "classifier").
		From(entsql.Table(SessionEventsTable.Name)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionEventData
	for rows.Next() {
		var d SessionEventData
		if err := rows.Scan(&d.SessionID, &d.Action, &d.PlayerWins, &d.OpponentWins, &d.Classifier); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
