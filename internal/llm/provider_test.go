package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/menuquiz/internal/store"
)

func asUpstream(err error, target **UpstreamError) bool {
	return errors.As(err, target)
}

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: `[{"a":1}]`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: `[{"b":2}]`, StopReason: "max_tokens"},
	)

	resp1, err := mock.Generate(context.Background(), UserRequest("", "first", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Content != `[{"a":1}]` {
		t.Fatalf("unexpected content %q", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), UserRequest("", "second", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.StopReason != "max_tokens" {
		t.Fatalf("expected stop reason 'max_tokens', got %q", resp2.StopReason)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if !IsKind(err, KindServer) {
		t.Fatalf("expected server error, got %T (%v)", err, err)
	}
}

func TestMockProvider_EmptyContentIsUpstreamError(t *testing.T) {
	mock := NewMockProvider(MockResponse{})
	_, err := mock.Generate(context.Background(), Request{})
	if !IsKind(err, KindEmptyResponse) {
		t.Fatalf("expected empty response error, got %v", err)
	}
}

func TestMockProvider_Responder(t *testing.T) {
	mock := NewMockProviderFunc(func(req Request) MockResponse {
		return MockResponse{Content: strings.ToUpper(req.Messages[0].Content)}
	})

	resp, err := mock.Generate(context.Background(), UserRequest("sys", "hello", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "HELLO" {
		t.Fatalf("expected HELLO, got %q", resp.Content)
	}
	if mock.CallCount() != 1 || mock.Calls[0].System != "sys" {
		t.Fatalf("call not recorded: %+v", mock.Calls)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &UpstreamError{Kind: KindRateLimit, RetryAfter: time.Second}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %T", err)
	}
	if ue.RetryAfter != time.Second {
		t.Fatalf("expected RetryAfter to survive, got %v", ue.RetryAfter)
	}
}

func TestClassifyStatus(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		status int
		err    error
		want   UpstreamKind
	}{
		{0, base, KindNetwork},
		{http.StatusUnauthorized, base, KindAuth},
		{http.StatusForbidden, base, KindAuth},
		{http.StatusTooManyRequests, base, KindRateLimit},
		{http.StatusBadGateway, base, KindServer},
		{http.StatusUnprocessableEntity, base, KindBadRequest},
		{0, context.DeadlineExceeded, KindCanceled},
	}
	for _, tt := range tests {
		got := classifyStatus(tt.status, tt.err)
		if got.Kind != tt.want {
			t.Errorf("classifyStatus(%d, %v) = %s, want %s", tt.status, tt.err, got.Kind, tt.want)
		}
		if !errors.Is(got, tt.err) {
			t.Errorf("classifyStatus(%d) does not unwrap to the cause", tt.status)
		}
	}
}

type recordingRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Content: "[]",
		Usage:   Usage{InputTokens: 12, OutputTokens: 3},
	})
	p := WithLogging(mock, ProviderMock, repo, nil)

	ctx := WithRun(WithPurpose(context.Background(), "question-gen"), "01HRUN")
	if _, err := p.Generate(ctx, UserRequest("sys", "user", 100, 0.7)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Purpose != "question-gen" || ev.RunID != "01HRUN" {
		t.Errorf("unexpected tags: purpose=%q run=%q", ev.Purpose, ev.RunID)
	}
	if !ev.Success || ev.InputTokens != 12 || ev.OutputTokens != 3 {
		t.Errorf("unexpected event: %+v", ev)
	}
	if !strings.Contains(ev.RequestBody, "[system]\nsys") {
		t.Errorf("request body not captured: %q", ev.RequestBody)
	}
	if ev.ResponseBody != "[]" {
		t.Errorf("response body not captured: %q", ev.ResponseBody)
	}
}

func TestLoggingProvider_RecordsFailureAndIgnoresRepoErrors(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &UpstreamError{Kind: KindAuth, Err: errors.New("bad key")}})
	p := WithLogging(mock, ProviderMock, repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	if !IsKind(err, KindAuth) {
		t.Fatalf("expected the provider error to pass through, got %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	if repo.events[0].Success || repo.events[0].ErrorKind != "auth" {
		t.Errorf("unexpected event: %+v", repo.events[0])
	}
	if repo.events[0].Purpose != "unknown" {
		t.Errorf("expected default purpose, got %q", repo.events[0].Purpose)
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, classifyStatus(0, ctx.Err())
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !IsKind(err, KindCanceled) {
		t.Fatalf("expected canceled kind, got %v", err)
	}

	if WithTimeout(slowProvider{}, 0) != (slowProvider{}) {
		t.Fatal("zero timeout should return the provider unchanged")
	}
}

func TestNewProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock model, got %q", p.ModelID())
	}

	cfg.Provider = ProviderOpenAI
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected validation error without an OpenAI key")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.Model != "gpt-4-turbo-preview" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	cfg.Provider = ProviderOllama
	if err := cfg.Validate(); err != nil {
		t.Errorf("ollama with default URL should validate: %v", err)
	}

	cfg.Provider = "bard"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4-turbo-preview")
	if c == nil {
		t.Fatal("expected pricing for the default model")
	}
	if got := c.Cost(1_000_000, 1_000_000); got != 40 {
		t.Fatalf("expected $40, got %v", got)
	}
	if LookupCost("llama3.1") != nil {
		t.Fatal("expected no pricing for self-hosted models")
	}
}
