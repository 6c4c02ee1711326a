package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records session lifecycle events (start/reset/end).
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{JournalMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("UUID grouping events in a session"),
		field.String("action").
			NotEmpty().
			Comment("start, reset or end"),
		field.Int("player_wins").
			Default(0).
			Comment("Player score when the event was recorded"),
		field.Int("opponent_wins").
			Default(0).
			Comment("Opponent score when the event was recorded"),
		field.String("classifier").
			Default("").
			Comment("Classifier backend: centroid, vision or mock"),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
	}
}
