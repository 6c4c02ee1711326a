package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// NoticeEvent records a failure notice shown to the player.
type NoticeEvent struct {
	ent.Schema
}

func (NoticeEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{JournalMixin{}}
}

func (NoticeEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty(),
		field.Int64("round").
			Default(0),
		field.String("kind").
			Comment("prediction_failure, model_load_failure, camera_unavailable or not_ready"),
		field.String("message").
			Default(""),
	}
}

func (NoticeEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("kind"),
	}
}
