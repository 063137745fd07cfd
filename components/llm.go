package components

import (
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/atomic"
)

// LLMResponse provider chat response metadata
type LLMResponse struct {
	ID        string      `json:"id,omitempty"`
	Role      MessageRole `json:"role,omitempty"`
	Model     string      `json:"model,omitempty"`
	Usage     *LLMUsage   `json:"usage,omitempty"`
	Timestamp int64       `json:"ts,omitempty"`
	Details   any         `json:"content,omitempty"`
}

// FromOpenAI convnert response from openai
func (r *LLMResponse) FromOpenAI(v *openai.ChatCompletionResponse) {
	r.ID = v.ID
	r.Role = AssistantRole
	r.Model = v.Model
	r.Timestamp = time.Now().Unix()
	r.Usage = &LLMUsage{
		InputTokens:  int64(v.Usage.PromptTokens),
		OutputTokens: int64(v.Usage.CompletionTokens),
	}
	r.Details = v.Choices
}

// FromAnthropic convert response from anthropic
func (r *LLMResponse) FromAnthropic(v *anthropic.MessagesResponse) {
	r.ID = v.ID
	r.Role = AssistantRole
	r.Model = string(v.Model)
	r.Timestamp = time.Now().Unix()
	r.Usage = &LLMUsage{
		InputTokens:  int64(v.Usage.InputTokens),
		OutputTokens: int64(v.Usage.OutputTokens),
	}
	r.Details = v.Content
}

// FromCohere convert response from cohere
func (r *LLMResponse) FromCohere(v *cohere.NonStreamedChatResponse) {
	if v.GenerationId != nil {
		r.ID = *v.GenerationId
	}
	r.Role = AssistantRole
	r.Timestamp = time.Now().Unix()
	if meta := v.Meta; meta != nil {
		if usage := meta.Tokens; usage != nil {
			r.Usage = new(LLMUsage)
			if usage.InputTokens != nil {
				r.Usage.InputTokens = int64(*usage.InputTokens)
			}
			if usage.OutputTokens != nil {
				r.Usage.OutputTokens = int64(*usage.OutputTokens)
			}
		}
		if version := meta.ApiVersion; version != nil {
			r.Model = version.Version
		}
	}
	r.Details = v
}

type LLMUsage struct {
	InputTokens  int64 `json:"input_tokens,omitempty" yaml:"input_tokens,omitempty"`
	OutputTokens int64 `json:"output_tokens,omitempty" yaml:"output_tokens,omitempty"`
}

func (u *LLMUsage) Merge(v *LLMUsage) {
	if v == nil {
		return
	}
	u.InputTokens += v.InputTokens
	u.OutputTokens += v.OutputTokens
}

// UsageTracker accumulates llm usage across concurrent callers
type UsageTracker struct {
	calls        *atomic.Int64
	inputTokens  *atomic.Int64
	outputTokens *atomic.Int64
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		calls:        atomic.NewInt64(0),
		inputTokens:  atomic.NewInt64(0),
		outputTokens: atomic.NewInt64(0),
	}
}

// Track records a llm response
func (t *UsageTracker) Track(resp *LLMResponse) {
	if resp == nil {
		return
	}
	t.calls.Inc()
	if resp.Usage == nil {
		return
	}
	t.inputTokens.Add(resp.Usage.InputTokens)
	t.outputTokens.Add(resp.Usage.OutputTokens)
}

// Calls returns number of tracked llm calls
func (t *UsageTracker) Calls() int64 {
	return t.calls.Load()
}

// Usage returns accumulated usage
func (t *UsageTracker) Usage() LLMUsage {
	return LLMUsage{
		InputTokens:  t.inputTokens.Load(),
		OutputTokens: t.outputTokens.Load(),
	}
}
