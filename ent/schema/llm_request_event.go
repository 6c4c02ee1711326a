package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequestEvent is one frame sent to a hosted vision model: what it cost,
// how long it took and how the model answered.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{JournalMixin{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("provider"),
		field.String("model").
			Comment("Model that answered, not the alias asked for"),
		field.String("purpose"),
		field.Int("input_tokens").Default(0),
		field.Int("output_tokens").Default(0),
		field.Int("frame_bytes").
			Default(0).
			Comment("Encoded size of the frames sent"),
		field.Int64("latency_ms").Default(0),
		field.Bool("success"),
		field.String("stop_reason").
			Default("").
			Comment("end, max_tokens or refused; empty when no answer came back"),
		field.String("error_message").Default(""),
		field.Text("request_body").
			Default("").
			Comment("Prompt and schema with frames summarised"),
		field.Text("response_body").Default(""),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("purpose"),
	}
}
