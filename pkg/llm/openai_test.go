package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIProviderCompleteFinalAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "calculate_installment" {
			t.Errorf("unexpected tools %+v", req.Tools)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"All set."},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider(Config{Model: "gpt-4o-mini", APIKey: "test-key", APIURL: server.URL})
	completion, err := provider.Complete(context.Background(), []Message{llmTestMessages}, []Tool{
		{Name: "calculate_installment", Parameters: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completion.Content != "All set." {
		t.Fatalf("unexpected content %q", completion.Content)
	}
	if len(completion.ToolCalls) != 0 {
		t.Fatalf("expected no tool calls, got %+v", completion.ToolCalls)
	}
	if completion.FinishReason != "stop" {
		t.Fatalf("unexpected finish reason %q", completion.FinishReason)
	}
}

var llmTestMessages = Message{Role: "user", Content: "hello"}

func TestOpenAIProviderCompleteToolCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[{"id":"call_1","type":"function","function":{"name":"search_knowledge","arguments":"{\"query\":\"fees\"}"}}]},"finish_reason":"tool_calls"}]}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider(Config{Model: "m", APIURL: server.URL})
	completion, err := provider.Complete(context.Background(), []Message{llmTestMessages}, nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(completion.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(completion.ToolCalls))
	}
	call := completion.ToolCalls[0]
	if call.Name != "search_knowledge" || !strings.Contains(call.Arguments, "fees") {
		t.Fatalf("unexpected tool call %+v", call)
	}
}

func TestOpenAIProviderCompleteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider(Config{Model: "m", APIURL: server.URL})
	_, err := provider.Complete(context.Background(), []Message{llmTestMessages}, nil)
	if err == nil {
		t.Fatal("expected error on 400 response")
	}
}

func TestOpenAIProviderRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"recovered"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider(Config{Model: "m", APIURL: server.URL})
	completion, err := provider.Complete(context.Background(), []Message{llmTestMessages}, nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected retry, got %d attempts", attempts)
	}
	if completion.Content != "recovered" {
		t.Fatalf("unexpected content %q", completion.Content)
	}
}

func TestOpenAIProviderExhaustedRetriesKeepErrorBody(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"upstream exploded"}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider(Config{Model: "m", APIURL: server.URL})
	_, err := provider.Complete(context.Background(), []Message{llmTestMessages}, nil)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if !strings.Contains(err.Error(), "upstream exploded") {
		t.Fatalf("expected upstream error text preserved, got %v", err)
	}
}

func TestOpenAIProviderRequiresModel(t *testing.T) {
	provider := NewOpenAIProvider(Config{})
	if _, err := provider.Complete(context.Background(), []Message{llmTestMessages}, nil); err == nil {
		t.Fatal("expected error when model is unset")
	}
}

func TestEncodeMessagesRoundTripsToolCalls(t *testing.T) {
	encoded := encodeMessages([]Message{
		{
			Role:    "assistant",
			Content: "",
			ToolCalls: []ToolCall{
				{ID: "call_1", Name: "search_knowledge", Arguments: `{"query":"bids"}`},
			},
		},
		{Role: "tool", Content: "result", Name: "search_knowledge", ToolCallID: "call_1"},
	})
	if len(encoded) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(encoded))
	}
	if encoded[0].ToolCalls[0].Type != "function" {
		t.Fatalf("expected function type, got %q", encoded[0].ToolCalls[0].Type)
	}
	if encoded[1].ToolCallID != "call_1" {
		t.Fatalf("expected tool_call_id preserved, got %q", encoded[1].ToolCallID)
	}
}
