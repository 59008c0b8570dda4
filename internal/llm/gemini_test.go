package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGeminiProvider(GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-flash",
		BaseURL: server.URL,
	})
}

func geminiEnvelope(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     30,
			"candidatesTokenCount": 70,
			"totalTokenCount":      100,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func listRequest(prompt string) Request {
	return Request{
		Messages: []Message{{Role: RoleUser, Content: prompt}},
		Schema:   testListSchema(),
	}
}

func TestGeminiProvider_HappyPath(t *testing.T) {
	payload := `[{"question":"Q1?","options":["a","b","c","d"],"correct_answer":"B"}]`

	var body map[string]any
	var path, apiKey string
	handler := func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, geminiEnvelope(payload))
	}

	p := newTestGeminiProvider(t, handler)
	resp, err := p.Generate(context.Background(), listRequest("Generate questions from: photosynthesis"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != payload {
		t.Fatalf("expected content %s, got %s", payload, resp.Content)
	}
	if resp.Usage.InputTokens != 30 || resp.Usage.OutputTokens != 70 || resp.Usage.TotalTokens != 100 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
	if !strings.HasSuffix(path, "models/gemini-2.0-flash:generateContent") {
		t.Fatalf("unexpected request path %q", path)
	}
	if apiKey != "test-key" {
		t.Fatalf("expected API key header, got %q", apiKey)
	}

	contents, _ := body["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("expected one content entry, got %d", len(contents))
	}
	first, _ := contents[0].(map[string]any)
	if first["role"] != "user" {
		t.Fatalf("expected user role, got %v", first["role"])
	}
	parts, _ := first["parts"].([]any)
	if len(parts) != 1 {
		t.Fatalf("expected one part, got %d", len(parts))
	}
	if text, _ := parts[0].(map[string]any)["text"].(string); text != "Generate questions from: photosynthesis" {
		t.Fatalf("unexpected prompt text %q", text)
	}

	genCfg, _ := body["generationConfig"].(map[string]any)
	if genCfg["responseMimeType"] != "application/json" {
		t.Fatalf("expected JSON mime type, got %v", genCfg["responseMimeType"])
	}
	if genCfg["responseSchema"] == nil {
		t.Fatal("expected response schema in generation config")
	}
}

func TestGeminiProvider_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"code": 500, "message": "Internal error", "status": "INTERNAL"},
		})
	}

	p := newTestGeminiProvider(t, handler)
	_, err := p.Generate(context.Background(), listRequest("test"))
	if err == nil {
		t.Fatal("expected error")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestGeminiProvider_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error": map[string]any{"code": 429, "message": "Quota exceeded", "status": "RESOURCE_EXHAUSTED"},
		})
	}

	p := newTestGeminiProvider(t, handler)
	_, err := p.Generate(context.Background(), listRequest("test"))
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
}

func TestGeminiProvider_MissingShape(t *testing.T) {
	bodies := map[string]any{
		"no candidates": map[string]any{
			"promptFeedback": map[string]any{"blockReason": "SAFETY"},
		},
		"no parts": map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"role": "model", "parts": []any{}}},
			},
		},
		"no content": map[string]any{
			"candidates": []map[string]any{{"finishReason": "SAFETY"}},
		},
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			})
			_, err := p.Generate(context.Background(), listRequest("test"))
			var noContent *ErrNoContent
			if !errors.As(err, &noContent) {
				t.Fatalf("expected ErrNoContent, got: %T (%v)", err, err)
			}
		})
	}
}

func TestGeminiProvider_MalformedInnerJSON(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, geminiEnvelope(`[{"question": "cut off`))
	}

	p := newTestGeminiProvider(t, handler)
	_, err := p.Generate(context.Background(), listRequest("test"))
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestGeminiProvider_SchemaMismatchPassesThrough(t *testing.T) {
	payload := `[{"question":"Q?","options":["a","b","c"],"correct_answer":"A","hint":"h"}]`
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, geminiEnvelope(payload))
	}

	p := newTestGeminiProvider(t, handler)
	resp, err := p.Generate(context.Background(), listRequest("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != payload {
		t.Fatalf("expected %s, got %s", payload, resp.Content)
	}
	if resp.SchemaErr == nil {
		t.Fatal("expected SchemaErr for three options")
	}
}

func TestGeminiProvider_EmptyAPIKeyFailsAtRequest(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": map[string]any{"code": 403, "message": "API key missing", "status": "PERMISSION_DENIED"},
		})
	}))
	t.Cleanup(server.Close)

	p := NewGeminiProvider(GeminiConfig{Model: "gemini-flash", BaseURL: server.URL})
	_, err := p.Generate(context.Background(), listRequest("test"))
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	schema := buildGeminiSchema(testListSchema().Definition)

	if schema.Type != "ARRAY" {
		t.Fatalf("expected ARRAY type, got %s", schema.Type)
	}
	item := schema.Items
	if item == nil || item.Type != "OBJECT" {
		t.Fatalf("expected OBJECT items, got %+v", item)
	}
	if len(item.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(item.Properties))
	}
	options := item.Properties["options"]
	if options.Type != "ARRAY" || options.Items.Type != "STRING" {
		t.Fatalf("expected ARRAY of STRING for options, got %s of %s", options.Type, options.Items.Type)
	}
	if options.MinItems == nil || *options.MinItems != 4 {
		t.Fatalf("expected minItems 4, got %v", options.MinItems)
	}
	if options.MaxItems == nil || *options.MaxItems != 4 {
		t.Fatalf("expected maxItems 4, got %v", options.MaxItems)
	}
	if len(item.Required) != 3 {
		t.Fatalf("expected 3 required fields, got %d", len(item.Required))
	}
}
