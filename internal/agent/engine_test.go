package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/barcelona-partners/voicegw/pkg/llm"
)

// fakeProvider replays a script of completions and records what it saw.
type fakeProvider struct {
	script   []llm.Completion
	err      error
	calls    int
	messages [][]llm.Message
	tools    [][]llm.Tool
}

func (f *fakeProvider) Complete(_ context.Context, messages []llm.Message, tools []llm.Tool) (llm.Completion, error) {
	f.calls++
	snapshot := make([]llm.Message, len(messages))
	copy(snapshot, messages)
	f.messages = append(f.messages, snapshot)
	f.tools = append(f.tools, tools)
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	if len(f.script) == 0 {
		return llm.Completion{Content: "out of script", FinishReason: "stop"}, nil
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next, nil
}

type fakeTool struct {
	name   string
	result string
	err    error
	calls  []string
}

func (f *fakeTool) Definition() llm.Tool {
	return llm.Tool{Name: f.name, Description: "test tool", Parameters: map[string]any{"type": "object"}}
}

func (f *fakeTool) Call(_ context.Context, arguments string) (string, error) {
	f.calls = append(f.calls, arguments)
	return f.result, f.err
}

func TestEngineDirectAnswer(t *testing.T) {
	provider := &fakeProvider{script: []llm.Completion{
		{Content: "The admin fee is eighteen percent.", FinishReason: "stop"},
	}}
	engine := NewEngine(EngineConfig{Provider: provider})

	reply, err := engine.Run(context.Background(), []llm.Message{{Role: "user", Content: "fees?"}})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if reply != "The admin fee is eighteen percent." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if provider.calls != 1 {
		t.Fatalf("expected one completion, got %d", provider.calls)
	}
}

func TestEngineExecutesToolThenAnswers(t *testing.T) {
	tool := &fakeTool{name: "consult_manual", result: "[General - Informational]: bids happen monthly"}
	provider := &fakeProvider{script: []llm.Completion{
		{
			ToolCalls:    []llm.ToolCall{{ID: "call_1", Name: "consult_manual", Arguments: `{"query":"bidding"}`}},
			FinishReason: "tool_calls",
		},
		{Content: "Bids are collected every month.", FinishReason: "stop"},
	}}
	engine := NewEngine(EngineConfig{Provider: provider, Tools: []Tool{tool}})

	reply, err := engine.Run(context.Background(), []llm.Message{{Role: "user", Content: "how do bids work?"}})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if reply != "Bids are collected every month." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if provider.calls != 2 {
		t.Fatalf("expected two completions, got %d", provider.calls)
	}
	if len(tool.calls) != 1 || tool.calls[0] != `{"query":"bidding"}` {
		t.Fatalf("unexpected tool calls: %v", tool.calls)
	}

	// The second completion must see the assistant tool request and the tool
	// result paired by ID.
	second := provider.messages[1]
	var sawAssistant, sawTool bool
	for _, msg := range second {
		if msg.Role == "assistant" && len(msg.ToolCalls) == 1 {
			sawAssistant = true
		}
		if msg.Role == "tool" && msg.ToolCallID == "call_1" && msg.Content == tool.result {
			sawTool = true
		}
	}
	if !sawAssistant || !sawTool {
		t.Fatalf("tool round-trip missing from conversation: %+v", second)
	}
}

func TestEngineToolErrorBecomesText(t *testing.T) {
	tool := &fakeTool{name: "consult_manual", err: errors.New("store offline")}
	provider := &fakeProvider{script: []llm.Completion{
		{ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "consult_manual", Arguments: `{}`}}},
		{Content: "I will check and call you back.", FinishReason: "stop"},
	}}
	engine := NewEngine(EngineConfig{Provider: provider, Tools: []Tool{tool}})

	reply, err := engine.Run(context.Background(), []llm.Message{{Role: "user", Content: "rules?"}})
	if err != nil {
		t.Fatalf("tool failure must not abort the run: %v", err)
	}
	if reply != "I will check and call you back." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	second := provider.messages[1]
	last := second[len(second)-1]
	if last.Role != "tool" || !strings.Contains(last.Content, "Tool consult_manual failed: store offline") {
		t.Fatalf("expected textual tool failure, got %+v", last)
	}
}

func TestEngineUnknownToolBecomesText(t *testing.T) {
	provider := &fakeProvider{script: []llm.Completion{
		{ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "launch_rocket", Arguments: `{}`}}},
		{Content: "Sorry, I cannot do that.", FinishReason: "stop"},
	}}
	engine := NewEngine(EngineConfig{Provider: provider})

	reply, err := engine.Run(context.Background(), []llm.Message{{Role: "user", Content: "launch"}})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if reply != "Sorry, I cannot do that." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	second := provider.messages[1]
	last := second[len(second)-1]
	if !strings.Contains(last.Content, "Tool launch_rocket failed: unknown tool") {
		t.Fatalf("expected unknown-tool text, got %+v", last)
	}
}

func TestEngineExhaustionForcesFinalAnswer(t *testing.T) {
	tool := &fakeTool{name: "consult_manual", result: "excerpt"}
	loop := llm.Completion{
		ToolCalls: []llm.ToolCall{{ID: "call_n", Name: "consult_manual", Arguments: `{}`}},
	}
	provider := &fakeProvider{script: []llm.Completion{
		loop, loop,
		{Content: "Here is what I found so far.", FinishReason: "stop"},
	}}
	engine := NewEngine(EngineConfig{Provider: provider, Tools: []Tool{tool}, MaxRounds: 2})

	reply, err := engine.Run(context.Background(), []llm.Message{{Role: "user", Content: "dig deeper"}})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if reply != "Here is what I found so far." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	// Two tool rounds, then one forced completion with no tools offered.
	if provider.calls != 3 {
		t.Fatalf("expected three completions, got %d", provider.calls)
	}
	if len(provider.tools[2]) != 0 {
		t.Fatalf("final completion must offer no tools, got %d", len(provider.tools[2]))
	}
	// The near-cap system note precedes the final completion.
	final := provider.messages[2]
	var sawNote bool
	for _, msg := range final {
		if msg.Role == "user" && strings.Contains(msg.Content, "one remaining tool round") {
			sawNote = true
		}
	}
	if !sawNote {
		t.Fatal("expected near-cap system note in conversation")
	}
}

func TestEngineProviderErrorPropagates(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream 500")}
	engine := NewEngine(EngineConfig{Provider: provider})

	_, err := engine.Run(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected provider error to propagate")
	}
	if !strings.Contains(err.Error(), "upstream 500") {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}
