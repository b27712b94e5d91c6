package webhook

// TurnRequest is the webhook body for one conversation turn. Voice platforms
// disagree on which fields they send, so every field is optional and the
// accessors below supply the defaults. A body that fails to decode is treated
// as a zero TurnRequest, not as a client error.
type TurnRequest struct {
	Model    string        `json:"model,omitempty"`
	Messages []TurnMessage `json:"messages,omitempty"`
	Call     *TurnCall     `json:"call,omitempty"`
}

type TurnMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TurnCall struct {
	ID       string        `json:"id,omitempty"`
	Customer *TurnCustomer `json:"customer,omitempty"`
}

type TurnCustomer struct {
	Number string `json:"number,omitempty"`
}

const (
	unknownPhone  = "unknown"
	unknownCallID = "unknown"
)

// Utterance returns the most recent user message, or "" when the transcript
// has none. The platform appends messages in order, so walk backwards.
func (r *TurnRequest) Utterance() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content
		}
	}
	return ""
}

// CallID returns the platform call identifier, or "unknown" when absent.
func (r *TurnRequest) CallID() string {
	if r.Call == nil || r.Call.ID == "" {
		return unknownCallID
	}
	return r.Call.ID
}

// CallerPhone returns the caller's number, or "unknown" when the platform
// did not send one.
func (r *TurnRequest) CallerPhone() string {
	if r.Call == nil || r.Call.Customer == nil || r.Call.Customer.Number == "" {
		return unknownPhone
	}
	return r.Call.Customer.Number
}
