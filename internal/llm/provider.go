// Package llm sends camera frames to hosted vision models and returns their
// gesture scores as schema-checked JSON.
package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
)

// Provider is one vision model behind some vendor API. The logging and retry
// decorators are Providers too, so callers never see which layers are
// stacked.
type Provider interface {
	// Generate sends req and returns the model's answer. With req.Schema
	// set, Content has already been checked against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

// Request is a single classification call: usually one user message holding
// the frame and the instruction to score it.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks for structured output and is enforced on the
	// answer. Nil passes the answer through untouched.
	Schema *Schema

	MaxTokens int

	// Temperature is left to the vendor default when zero.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string

	// Images go ahead of or beside Content depending on the vendor. Only
	// user messages may carry them.
	Images []Image
}

// Image is an encoded frame sent inline with a message.
type Image struct {
	MIMEType string
	Data     []byte
}

func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}

func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is the JSON Schema an answer must satisfy. Name is kebab-case and
// doubles as the schema name vendors ask for.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	// Content is the answer, schema-checked when the request had one.
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually answered, which may differ from the
	// alias asked for.
	Model string

	// StopReason is "end", "max_tokens" or "refused".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
