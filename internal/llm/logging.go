package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/rpscam/internal/store"
)

// LoggingProvider records every vision request in the event log and warns on
// failures.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
}

// WithLogging wraps p. With a nil repo only the slog warnings remain.
func WithLogging(p Provider, provider string, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, provider: provider, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     string(purpose),
		FrameBytes:  frameBytes(req),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.StopReason = resp.StopReason
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.StopReason, data.ResponseBody = failedAnswer(err)
		data.ErrorMessage = err.Error()
		slog.Warn("vision request failed",
			"provider", l.provider, "model", data.Model, "purpose", purpose,
			"frame_bytes", data.FrameBytes, "latency_ms", data.LatencyMs, "error", err)
	}

	if l.eventRepo == nil {
		return resp, err
	}
	// A full or broken event log never fails the round.
	if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
		slog.Warn("failed to record vision request", "error", logErr)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func frameBytes(req Request) int {
	n := 0
	for _, m := range req.Messages {
		for _, img := range m.Images {
			n += len(img.Data)
		}
	}
	return n
}

// failedAnswer recovers the stop reason and any partial answer from a
// provider error, so truncated and refused answers stay inspectable.
func failedAnswer(err error) (stop, content string) {
	var (
		maxTok  *ErrMaxTokensExceeded
		refused *ErrRefused
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.As(err, &maxTok):
		return "max_tokens", string(maxTok.Content)
	case errors.As(err, &refused):
		return "refused", string(refused.Content)
	case errors.As(err, &invalid):
		return "end", string(invalid.Content)
	default:
		return "", ""
	}
}

// serializeRequest renders the prompt for the event log. Frames appear as a
// one-line summary, never as bytes.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		for _, img := range m.Images {
			fmt.Fprintf(&b, "<image %s, %d bytes>\n", img.MIMEType, len(img.Data))
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}

	return b.String()
}
