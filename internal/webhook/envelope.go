package webhook

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the chat-completion response the voice platform consumes.
// Every turn, including a failed one, answers with all fields populated:
// the platform speaks choices[0].message.content verbatim and aborts the
// call on anything it cannot parse.
type Envelope struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int             `json:"index"`
	Message      EnvelopeMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

type EnvelopeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewEnvelope wraps one spoken reply in the wire format.
func NewEnvelope(model, content string) Envelope {
	return Envelope{
		ID:      "chatcmpl-" + uuid.New().String(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []Choice{
			{
				Index:        0,
				Message:      EnvelopeMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
	}
}
