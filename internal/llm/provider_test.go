package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_ReturnsCanedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "question-gen")
	if p := PurposeFrom(ctx); p != "question-gen" {
		t.Fatalf("expected 'question-gen', got %q", p)
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	if id := RunIDFrom(ctx); id != "" {
		t.Fatalf("expected empty run ID, got %q", id)
	}

	ctx = WithRunID(ctx, "run-42")
	if id := RunIDFrom(ctx); id != "run-42" {
		t.Fatalf("expected 'run-42', got %q", id)
	}
}

func TestMockProvider_ReportsSchemaMismatch(t *testing.T) {
	content := json.RawMessage(`[{"question":"Q?","options":["a","b"],"correct_answer":"A"}]`)
	mock := NewMockProvider(MockResponse{Content: content})

	resp, err := mock.Generate(context.Background(), Request{Schema: testListSchema()})
	if err != nil {
		t.Fatalf("schema mismatch must not fail the call, got: %v", err)
	}
	if string(resp.Content) != string(content) {
		t.Fatalf("expected content unchanged, got %s", resp.Content)
	}
	if resp.SchemaErr == nil {
		t.Fatal("expected SchemaErr to be set")
	}
}

func TestMockProvider_RejectsMalformedJSON(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`[{"question":`)})

	_, err := mock.Generate(context.Background(), Request{Schema: testListSchema()})
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "gemini without key",
			cfg:     Config{Provider: "gemini"},
			wantErr: false,
		},
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: false,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
		{
			name:    "empty provider",
			cfg:     Config{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_APIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gemini.APIKey = "g-key"
	cfg.OpenAI.APIKey = "o-key"
	cfg.Anthropic.APIKey = "a-key"

	tests := map[string]string{
		"gemini":    "g-key",
		"openai":    "o-key",
		"anthropic": "a-key",
		"mock":      "",
	}
	for provider, want := range tests {
		cfg.Provider = provider
		if got := cfg.APIKey(); got != want {
			t.Errorf("APIKey() for %s = %q, want %q", provider, got, want)
		}
	}
}

func TestNewProvider(t *testing.T) {
	for _, name := range []string{"gemini", "openai", "anthropic", "mock"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Provider = name
			p, err := NewProvider(cfg, nil, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			lp, ok := p.(*LoggingProvider)
			if !ok {
				t.Fatalf("expected logging wrapper, got %T", p)
			}
			if lp.provider != name {
				t.Fatalf("expected provider name %q on wrapper, got %q", name, lp.provider)
			}
		})
	}

	t.Run("gemini default model", func(t *testing.T) {
		p, err := NewProvider(DefaultConfig(), nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "gemini-2.0-flash" {
			t.Fatalf("expected gemini-2.0-flash, got %q", p.ModelID())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider = "bard"
		if _, err := NewProvider(cfg, nil, nil); err == nil {
			t.Fatal("expected error for unknown provider")
		}
	})
}
