package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	SessionID string    // exact match when set
}

// Session actions.
const (
	SessionStart = "start"
	SessionReset = "reset"
	SessionEnd   = "end"
)

// SessionEventData captures a session lifecycle event.
type SessionEventData struct {
	SessionID    string
	Action       string
	PlayerWins   int
	OpponentWins int
	Classifier   string
}

// RoundEventData is the audit record of one resolved round. Moves and
// outcome use their string labels.
type RoundEventData struct {
	SessionID    string
	Round        uint64
	PlayerMove   string
	OpponentMove string
	Outcome      string
	PlayerWins   int
	OpponentWins int
	Scores       []float64
	ClassifyMs   int64
}

// NoticeEventData records a failure notice shown to the player.
type NoticeEventData struct {
	SessionID string
	Round     uint64
	Kind      string
	Message   string
}

// LLMRequestEventData is one call to a vision model.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	FrameBytes   int
	LatencyMs    int64
	Success      bool
	StopReason   string
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// GameRepo provides append access to game events.
type GameRepo interface {
	AppendSession(ctx context.Context, data SessionEventData) error
	AppendRound(ctx context.Context, data RoundEventData) error
	AppendNotice(ctx context.Context, data NoticeEventData) error
}

// RoundRecord is a stored round event.
type RoundRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	RoundEventData
}

// SessionSummary aggregates the rounds of one session.
type SessionSummary struct {
	SessionID    string
	Rounds       int
	PlayerWins   int
	OpponentWins int
	Ties         int
	LastPlayed   time.Time
}

// LLMRequestRecord is a stored LLM request event.
type LLMRequestRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls by purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64

	// Refused counts calls the provider declined to answer.
	Refused int
}
