package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/rpscam/internal/store"
)

type recordingRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsEvent(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"rock":1,"paper":0,"scissors":0}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 3},
	})
	p := WithLogging(mock, "mock", repo)

	ctx := WithPurpose(context.Background(), PurposeClassify)
	_, err := p.Generate(ctx, Request{Messages: []Message{{
		Role:    RoleUser,
		Content: "score it",
		Images:  []Image{{MIMEType: "image/png", Data: make([]byte, 42)}},
	}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Purpose != "classify" || !ev.Success || ev.InputTokens != 12 || ev.Provider != "mock" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.FrameBytes != 42 || ev.StopReason != "end" {
		t.Fatalf("frame bytes = %d, stop = %q", ev.FrameBytes, ev.StopReason)
	}
	if !strings.Contains(ev.RequestBody, "<image image/png, 42 bytes>") {
		t.Fatalf("request body should summarise the image: %q", ev.RequestBody)
	}
}

func TestLoggingProvider_KeepsCutOffAnswer(t *testing.T) {
	repo := &recordingRepo{}
	partial := json.RawMessage(`{"rock":0.2,"pap`)
	mock := NewMockProvider(MockResponse{Err: &ErrMaxTokensExceeded{Content: partial, Limit: 16}})

	_, err := WithLogging(mock, "mock", repo).Generate(classifyCtx(), frameRequest())
	if err == nil {
		t.Fatal("expected the truncation to pass through")
	}
	ev := repo.events[0]
	if ev.StopReason != "max_tokens" || ev.ResponseBody != string(partial) {
		t.Fatalf("cut-off answer not kept: stop=%q body=%q", ev.StopReason, ev.ResponseBody)
	}
}

func TestLoggingProvider_FailureRecorded(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, "mock", repo)

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected provider error to pass through, got %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Fatalf("expected a failed event, got %+v", repo.events)
	}
}

func TestLoggingProvider_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, "mock", nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
