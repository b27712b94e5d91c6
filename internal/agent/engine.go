package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/barcelona-partners/voicegw/pkg/llm"
	"github.com/barcelona-partners/voicegw/pkg/logging"
)

const defaultMaxToolRounds = 4

// Tool is one model-callable capability. Call returns readable text on any
// argument-level problem; an error means the tool itself broke.
type Tool interface {
	Definition() llm.Tool
	Call(ctx context.Context, arguments string) (string, error)
}

type engineState int

const (
	stateAwaitingModel engineState = iota
	stateInvokingTools
	stateDone
)

// Engine drives the model through a bounded reasoning loop. Each round is one
// model completion; tool calls are executed and fed back as tool messages
// until the model answers in plain text or the round cap is reached. On
// exhaustion the engine asks for one final completion with no tools offered,
// so a looping model still produces something speakable.
type Engine struct {
	provider  llm.Provider
	logger    logging.Logger
	tools     []Tool
	defs      []llm.Tool
	byName    map[string]Tool
	maxRounds int
}

type EngineConfig struct {
	Provider  llm.Provider
	Logger    logging.Logger
	Tools     []Tool
	MaxRounds int
}

func NewEngine(cfg EngineConfig) *Engine {
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	engine := &Engine{
		provider:  cfg.Provider,
		logger:    cfg.Logger,
		tools:     cfg.Tools,
		byName:    make(map[string]Tool, len(cfg.Tools)),
		maxRounds: maxRounds,
	}
	for _, tool := range cfg.Tools {
		def := tool.Definition()
		engine.defs = append(engine.defs, def)
		engine.byName[def.Name] = tool
	}
	return engine
}

// Run executes the loop over the given messages and returns the model's final
// text. Only provider failures surface as errors; tool failures are folded
// into the conversation as textual results so the model can recover.
func (e *Engine) Run(ctx context.Context, messages []llm.Message) (string, error) {
	state := stateAwaitingModel
	var completion llm.Completion
	var err error

	for round := 0; round < e.maxRounds && state != stateDone; round++ {
		completion, err = e.complete(ctx, messages, e.defs)
		if err != nil {
			return "", err
		}
		if len(completion.ToolCalls) == 0 {
			state = stateDone
			break
		}

		state = stateInvokingTools
		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})
		for _, call := range completion.ToolCalls {
			messages = append(messages, llm.Message{
				Role:       "tool",
				Name:       call.Name,
				ToolCallID: call.ID,
				Content:    e.invoke(ctx, call),
			})
		}
		if round == e.maxRounds-2 {
			messages = append(messages, llm.Message{
				Role:    "user",
				Content: "[System note: you have one remaining tool round. Answer the caller now with what you already have.]",
			})
		}
		state = stateAwaitingModel
	}

	if state != stateDone {
		// Cap reached with the model still asking for tools. Take away the
		// tools and ask for a direct answer.
		toolRoundsExhausted.Inc()
		completion, err = e.complete(ctx, messages, nil)
		if err != nil {
			return "", err
		}
	}
	return completion.Content, nil
}

func (e *Engine) complete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (llm.Completion, error) {
	start := time.Now()
	completion, err := e.provider.Complete(ctx, messages, tools)
	status := "success"
	if err != nil {
		status = "error"
	}
	llmCallsTotal.WithLabelValues(status).Inc()
	llmDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return llm.Completion{}, fmt.Errorf("model completion: %w", err)
	}
	return completion, nil
}

// invoke runs one tool call and always produces text for the conversation.
func (e *Engine) invoke(ctx context.Context, call llm.ToolCall) string {
	tool, ok := e.byName[call.Name]
	if !ok {
		toolCallsTotal.WithLabelValues(call.Name, "unknown").Inc()
		return fmt.Sprintf("Tool %s failed: unknown tool", call.Name)
	}
	start := time.Now()
	result, err := tool.Call(ctx, call.Arguments)
	if err != nil {
		toolCallsTotal.WithLabelValues(call.Name, "error").Inc()
		if e.logger != nil {
			e.logger.WithError(err).WithField("tool", call.Name).Warn("Tool call failed")
		}
		return fmt.Sprintf("Tool %s failed: %v", call.Name, err)
	}
	toolCallsTotal.WithLabelValues(call.Name, "success").Inc()
	toolDuration.WithLabelValues(call.Name).Observe(time.Since(start).Seconds())
	return result
}
