package assegai

import (
	"context"
	"encoding/json"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Message roles accepted by the Anthropic Messages API.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ClaudeRequest mirrors the Anthropic Messages API request body. The proxy
// injects the provider API key and relays the payload untouched.
type ClaudeRequest struct {
	Model         string    `json:"model"`
	Messages      []Message `json:"messages"`
	MaxTokens     int       `json:"max_tokens"`
	System        string    `json:"system,omitempty"`
	Tools         []Tool    `json:"tools,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
}

// Message is a single conversation turn.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is one element of a message's content. Which fields are set
// depends on Type: "text" carries Text, "tool_use" carries ID, Name and
// Input, "tool_result" carries ToolUseID, Content and IsError.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// Tool declares a tool the model may call.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Usage reports token consumption for a completed request.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ClaudeResponse mirrors the Anthropic Messages API response body.
type ClaudeResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []ContentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// Text concatenates the text blocks of the response.
func (r *ClaudeResponse) Text() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// TextMessage builds a single-block text message for the given role.
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{{Type: "text", Text: text}}}
}

// CallClaude relays an Anthropic Messages request through the proxy.
func (c *Client) CallClaude(ctx context.Context, req ClaudeRequest) (*ClaudeResponse, error) {
	var out ClaudeResponse
	if err := c.transport.Post(ctx, "/api/anthropic/v1/messages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CallOpenAI relays a Chat Completions request through the proxy.
func (c *Client) CallOpenAI(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	var out openai.ChatCompletionResponse
	if err := c.transport.Post(ctx, "/api/openai/v1/chat/completions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
