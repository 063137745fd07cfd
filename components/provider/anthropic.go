package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bububa/instructor-go/pkg/instructor"
	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/bububa/careerchat/components"
)

// DefaultAnthropicMaxTokens is used when request has no max tokens, anthropic requires one
const DefaultAnthropicMaxTokens = 1024

// AnthropicClient talks to anthropic messages api
type AnthropicClient struct {
	client     *anthropic.Client
	structured *instructor.InstructorAnthropic
}

var (
	_ Client    = (*AnthropicClient)(nil)
	_ Extractor = (*AnthropicClient)(nil)
)

func NewAnthropic(cfg Config) *AnthropicClient {
	opts := make([]anthropic.ClientOption, 0, 1)
	if cfg.baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.baseURL))
	}
	client := anthropic.NewClient(cfg.apiKey, opts...)
	return &AnthropicClient{
		client:     client,
		structured: instructor.FromAnthropic(client, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(structuredRetries), instructor.WithValidation()),
	}
}

func (c *AnthropicClient) Name() string {
	return Anthropic
}

func (c *AnthropicClient) request(req *Request) anthropic.MessagesRequest {
	temperature := req.Temperature
	chatReq := anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		System:      req.SystemPrompt,
		Temperature: &temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    components.NewView(req.Viewer, req.Messages).Anthropic(),
	}
	if chatReq.MaxTokens <= 0 {
		chatReq.MaxTokens = DefaultAnthropicMaxTokens
	}
	for _, tool := range req.Tools {
		var schema any = json.RawMessage(`{"type":"object","properties":{}}`)
		if len(tool.Parameters) > 0 {
			schema = tool.Parameters
		}
		chatReq.Tools = append(chatReq.Tools, anthropic.ToolDefinition{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		})
	}
	return chatReq
}

func (c *AnthropicClient) Chat(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.client.CreateMessages(ctx, c.request(req))
	if err != nil {
		return nil, err
	}
	if len(resp.Content) == 0 {
		return nil, ErrEmptyResponse
	}
	var (
		ret   = new(Response)
		texts []string
	)
	for _, content := range resp.Content {
		switch content.Type {
		case anthropic.MessagesContentTypeText:
			if content.Text != nil {
				texts = append(texts, *content.Text)
			}
		case anthropic.MessagesContentTypeToolUse:
			if use := content.MessageContentToolUse; use != nil {
				ret.ToolCalls = append(ret.ToolCalls, components.ToolCall{
					ID:        use.ID,
					Name:      use.Name,
					Arguments: string(use.Input),
				})
			}
		}
	}
	ret.Content = strings.Join(texts, "\n")
	ret.LLM.FromAnthropic(&resp)
	return ret, nil
}

// Extract decodes the json reply into out, tools of req are ignored
func (c *AnthropicClient) Extract(ctx context.Context, req *Request, out any) (*components.LLMResponse, error) {
	chatReq := c.request(req)
	chatReq.Tools = nil
	resp, err := c.structured.CreateMessages(ctx, chatReq, out)
	if err != nil {
		return nil, err
	}
	ret := new(components.LLMResponse)
	ret.FromAnthropic(&resp)
	return ret, nil
}
