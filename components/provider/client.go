package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/bububa/careerchat/components"
)

// Provider names a hosted llm api
type Provider = string

const (
	OpenAI    Provider = "openai"
	Groq      Provider = "groq"
	Anthropic Provider = "anthropic"
	Cohere    Provider = "cohere"
)

// GroqBaseURL is groq's openai compatible endpoint
const GroqBaseURL = "https://api.groq.com/openai/v1"

var (
	// ErrToolsUnsupported is returned when tools are requested from a provider without tool calling
	ErrToolsUnsupported = errors.New("provider does not support tool calling")
	// ErrEmptyResponse is returned when llm returns no choice
	ErrEmptyResponse = errors.New("llm returned an empty response")
	// ErrStructuredUnsupported is returned by clients which cannot decode a reply into a struct
	ErrStructuredUnsupported = errors.New("provider does not support structured output")
)

// structuredRetries bounds the extra requests sent when a json reply fails to decode or validate
const structuredRetries = 2

// Request is a chat request issued on behalf of one participant
type Request struct {
	// Model llm model
	Model string
	// Temperature for response generation
	Temperature float32
	// MaxTokens maximum number of tokens in the response
	MaxTokens int
	// SystemPrompt participant instructions
	SystemPrompt string
	// Viewer is the name of the participant the transcript is rendered for
	Viewer string
	// Messages chat transcript
	Messages []components.Message
	// Tools offered to llm
	Tools []components.ToolDefinition
}

// Response is a chat response
type Response struct {
	Content   string
	ToolCalls []components.ToolCall
	LLM       components.LLMResponse
}

// Client is a hosted llm chat api
type Client interface {
	Name() string
	Chat(ctx context.Context, req *Request) (*Response, error)
}

// Extractor decodes the reply of a chat into out, a struct which is validated after decoding
type Extractor interface {
	Extract(ctx context.Context, req *Request, out any) (*components.LLMResponse, error)
}

// Config of a Client
type Config struct {
	apiKey  string
	baseURL string
}

type Option func(c *Config)

func WithAPIKey(apiKey string) Option {
	return func(c *Config) {
		c.apiKey = apiKey
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

// New returns a Client for provider
func New(p Provider, opts ...Option) (Client, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	switch p {
	case OpenAI:
		return NewOpenAI(cfg), nil
	case Groq:
		if cfg.baseURL == "" {
			cfg.baseURL = GroqBaseURL
		}
		ret := NewOpenAI(cfg)
		ret.name = Groq
		ret.inlineNames = true
		return ret, nil
	case Anthropic:
		return NewAnthropic(cfg), nil
	case Cohere:
		return NewCohere(cfg), nil
	}
	return nil, fmt.Errorf("unknown llm provider: %s", p)
}
