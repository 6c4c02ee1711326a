package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// RoundEvent is the audit record of one resolved round.
type RoundEvent struct {
	ent.Schema
}

func (RoundEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{JournalMixin{}}
}

func (RoundEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty(),
		field.Int64("round").
			Comment("Round token within the session"),
		field.String("player_move").
			Comment("Move read from the camera frame"),
		field.String("opponent_move"),
		field.String("outcome").
			Comment("player_win, opponent_win or tie"),
		field.Int("player_wins"),
		field.Int("opponent_wins"),
		field.JSON("scores", []float64{}).
			Optional().
			Comment("Classifier scores in catalog order"),
		field.Int64("classify_ms").
			Default(0),
	}
}

func (RoundEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("outcome"),
	}
}
