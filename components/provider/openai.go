package provider

import (
	"context"

	"github.com/bububa/instructor-go/pkg/instructor"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/careerchat/components"
)

// OpenAIClient talks to openai and openai compatible apis (groq, ollama, vllm...)
type OpenAIClient struct {
	name        string
	client      *openai.Client
	structured  *instructor.InstructorOpenAI
	inlineNames bool
}

var (
	_ Client    = (*OpenAIClient)(nil)
	_ Extractor = (*OpenAIClient)(nil)
)

func NewOpenAI(cfg Config) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.apiKey)
	if cfg.baseURL != "" {
		clientCfg.BaseURL = cfg.baseURL
	}
	client := openai.NewClientWithConfig(clientCfg)
	return &OpenAIClient{
		name:       OpenAI,
		client:     client,
		structured: instructor.FromOpenAI(client, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(structuredRetries), instructor.WithValidation()),
	}
}

func (c *OpenAIClient) Name() string {
	return c.name
}

func (c *OpenAIClient) view(req *Request) *components.View {
	view := components.NewView(req.Viewer, req.Messages)
	if c.inlineNames {
		view.InlineNames()
	}
	return view
}

func (c *OpenAIClient) request(req *Request) openai.ChatCompletionRequest {
	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    c.view(req).OpenAI(req.SystemPrompt),
	}
	for _, tool := range req.Tools {
		def := &openai.FunctionDefinition{
			Name:        tool.Name,
			Description: tool.Description,
		}
		if len(tool.Parameters) > 0 {
			def.Parameters = tool.Parameters
		}
		chatReq.Tools = append(chatReq.Tools, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: def,
		})
	}
	return chatReq
}

func (c *OpenAIClient) Chat(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.request(req))
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	choice := resp.Choices[0].Message
	ret := &Response{
		Content: choice.Content,
	}
	for _, call := range choice.ToolCalls {
		ret.ToolCalls = append(ret.ToolCalls, components.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	ret.LLM.FromOpenAI(&resp)
	return ret, nil
}

// Extract decodes the json reply into out, tools of req are ignored
func (c *OpenAIClient) Extract(ctx context.Context, req *Request, out any) (*components.LLMResponse, error) {
	chatReq := c.request(req)
	chatReq.Tools = nil
	resp, err := c.structured.CreateChatCompletion(ctx, chatReq, out)
	if err != nil {
		return nil, err
	}
	ret := new(components.LLMResponse)
	ret.FromOpenAI(&resp)
	return ret, nil
}
