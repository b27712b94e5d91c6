package agent

import (
	"context"
	"strings"

	"github.com/barcelona-partners/voicegw/pkg/llm"
	"github.com/barcelona-partners/voicegw/pkg/logging"
)

// Orchestrator turns one caller utterance into one spoken reply. It is built
// once at startup and shared across calls; per-turn state lives entirely in
// the message slice handed to the engine. Errors propagate to the webhook
// layer, which owns the decision of what a failed turn sounds like.
type Orchestrator struct {
	engine *Engine
	logger logging.Logger
}

func NewOrchestrator(engine *Engine, logger logging.Logger) *Orchestrator {
	return &Orchestrator{engine: engine, logger: logger}
}

// GetResponse answers a single utterance. callID only scopes the logs.
func (o *Orchestrator) GetResponse(ctx context.Context, utterance, callID string) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: utterance},
	}
	reply, err := o.engine.Run(ctx, messages)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if o.logger != nil {
		o.logger.WithFields(logging.Fields{
			"call_id":      callID,
			"reply_length": len(reply),
		}).Debug("Turn completed")
	}
	return reply, nil
}
