package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// JournalMixin is the head of every row in the game journal. Sessions,
// rounds, notices and vision requests draw their sequence from one shared
// counter, so ordering by sequence interleaves them exactly as they happened.
type JournalMixin struct {
	mixin.Schema
}

func (JournalMixin) Fields() []ent.Field {
	return []ent.Field{journalSequence(), journalTime()}
}

// Indexes covers time-window queries; sequence is already unique.
func (JournalMixin) Indexes() []ent.Index {
	return []ent.Index{index.Fields("timestamp")}
}

func journalSequence() ent.Field {
	return field.Int64("sequence").
		Positive().
		Unique().
		Immutable().
		Comment("Position in the journal, shared across all event tables")
}

func journalTime() ent.Field {
	return field.Time("timestamp").
		Default(utcNow).
		Immutable().
		Comment("When the game recorded the event, UTC")
}

func utcNow() time.Time { return time.Now().UTC() }
