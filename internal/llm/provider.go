package llm

import "context"

// Provider is the completion client abstraction. Implementations send a
// prompt pair to a chat-completion API and return the raw text reply.
// They never retry; retry policy belongs to the caller.
type Provider interface {
	// Generate sends the request and returns the model's text reply.
	// Failures are reported as *UpstreamError.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the model's role and output
	// constraints.
	System string

	// Messages is the conversation. Question generation is single-turn,
	// so this holds one user message.
	Messages []Message

	// MaxTokens caps the size of the reply.
	MaxTokens int

	// Temperature controls randomness. Zero leaves the provider default.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the LLM's output.
type Response struct {
	// Content is the raw reply text, untouched. Models wrap JSON in prose
	// or code fences often enough that interpretation is left to callers.
	Content string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserRequest is a convenience for the common single-turn shape.
func UserRequest(system, user string, maxTokens int, temperature float64) Request {
	return Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
