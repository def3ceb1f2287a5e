package domain

import "context"

// ChatRequest is the body of a chat call to an assistant.
type ChatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language,omitempty"` // optional explicit language code
}

// ChatResponse is returned when the assistant answered.
type ChatResponse struct {
	Assistant Assistant `json:"assistant"`
	Reply     string    `json:"reply"`
	Decision  *Decision `json:"quota"`
}

// CompletionRequest is what the chat service hands to the language model.
type CompletionRequest struct {
	Assistant Assistant
	UserID    string
	Message   string
	Language  string
}

// Completion is the language model's answer.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// LLMOracle produces assistant replies. It is only called after a positive quota decision.
type LLMOracle interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// ChatService gates and forwards assistant chat requests.
type ChatService interface {
	Send(ctx context.Context, userID, token string, assistant Assistant, req ChatRequest) (*ChatResponse, error)
}

// QuotaService reports entitlement state without consuming quota.
type QuotaService interface {
	Check(ctx context.Context, userID, token string, assistant Assistant, languageHint string) (*Decision, error)
	Status(ctx context.Context, userID, token, languageHint string) (*QuotaStatus, error)
}
