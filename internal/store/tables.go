package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Every event table starts with the same three columns: id, the global
// sequence and the UTC timestamp.
func eventColumns(cols ...*schema.Column) []*schema.Column {
	base := []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
	return append(base, cols...)
}

func eventIndexes(table string, cols []*schema.Column, extra ...int) []*schema.Index {
	idx := []*schema.Index{
		{Name: table + "_timestamp", Columns: []*schema.Column{cols[2]}},
	}
	for _, i := range extra {
		idx = append(idx, &schema.Index{
			Name:    table + "_" + cols[i].Name,
			Columns: []*schema.Column{cols[i]},
		})
	}
	return idx
}

var (
	sessionEventColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "action", Type: field.TypeString},
		&schema.Column{Name: "player_wins", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "opponent_wins", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "classifier", Type: field.TypeString, Default: ""},
	)
	// SessionEventsTable records session start, reset and end.
	SessionEventsTable = &schema.Table{
		Name:       "session_events",
		Columns:    sessionEventColumns,
		PrimaryKey: []*schema.Column{sessionEventColumns[0]},
		Indexes:    eventIndexes("session_events", sessionEventColumns, 3),
	}

	roundEventColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "round", Type: field.TypeInt64},
		&schema.Column{Name: "player_move", Type: field.TypeString},
		&schema.Column{Name: "opponent_move", Type: field.TypeString},
		&schema.Column{Name: "outcome", Type: field.TypeString},
		&schema.Column{Name: "player_wins", Type: field.TypeInt},
		&schema.Column{Name: "opponent_wins", Type: field.TypeInt},
		&schema.Column{Name: "scores", Type: field.TypeString, Nullable: true},
		&schema.Column{Name: "classify_ms", Type: field.TypeInt64, Default: 0},
	)
	// RoundEventsTable is the audit record of each resolved round.
	RoundEventsTable = &schema.Table{
		Name:       "round_events",
		Columns:    roundEventColumns,
		PrimaryKey: []*schema.Column{roundEventColumns[0]},
		Indexes:    eventIndexes("round_events", roundEventColumns, 3, 7),
	}

	noticeEventColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "round", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "kind", Type: field.TypeString},
		&schema.Column{Name: "message", Type: field.TypeString, Default: ""},
	)
	// NoticeEventsTable records every user-visible failure notice.
	NoticeEventsTable = &schema.Table{
		Name:       "notice_events",
		Columns:    noticeEventColumns,
		PrimaryKey: []*schema.Column{noticeEventColumns[0]},
		Indexes:    eventIndexes("notice_events", noticeEventColumns, 3, 5),
	}

	llmRequestEventColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "frame_bytes", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "stop_reason", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	)
	// LLMRequestEventsTable records every call made by the vision classifier.
	LLMRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventColumns,
		PrimaryKey: []*schema.Column{llmRequestEventColumns[0]},
		Indexes:    eventIndexes("llm_request_events", llmRequestEventColumns, 5),
	}

	// Tables lists every table the store migrates.
	Tables = []*schema.Table{
		SessionEventsTable,
		RoundEventsTable,
		NoticeEventsTable,
		LLMRequestEventsTable,
	}
)
