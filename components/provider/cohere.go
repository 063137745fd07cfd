package provider

import (
	"context"

	"github.com/bububa/instructor-go/pkg/instructor"
	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	cohereOption "github.com/cohere-ai/cohere-go/v2/option"

	"github.com/bububa/careerchat/components"
)

// CohereClient talks to cohere chat api, text only
type CohereClient struct {
	client     *cohereClient.Client
	structured *instructor.InstructorCohere
}

var (
	_ Client    = (*CohereClient)(nil)
	_ Extractor = (*CohereClient)(nil)
)

func NewCohere(cfg Config) *CohereClient {
	opts := make([]cohereOption.RequestOption, 0, 2)
	opts = append(opts, cohereOption.WithToken(cfg.apiKey))
	if cfg.baseURL != "" {
		opts = append(opts, cohereOption.WithBaseURL(cfg.baseURL))
	}
	client := cohereClient.NewClient(opts...)
	return &CohereClient{
		client:     client,
		structured: instructor.FromCohere(client, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(structuredRetries), instructor.WithValidation()),
	}
}

func (c *CohereClient) Name() string {
	return Cohere
}

func (c *CohereClient) Chat(ctx context.Context, req *Request) (*Response, error) {
	if len(req.Tools) > 0 {
		return nil, ErrToolsUnsupported
	}
	resp, err := c.client.Chat(ctx, c.request(req))
	if err != nil {
		return nil, err
	}
	ret := &Response{
		Content: resp.Text,
	}
	ret.LLM.FromCohere(resp)
	return ret, nil
}

// Extract decodes the json reply into out
func (c *CohereClient) Extract(ctx context.Context, req *Request, out any) (*components.LLMResponse, error) {
	resp, err := c.structured.Chat(ctx, c.request(req), out)
	if err != nil {
		return nil, err
	}
	ret := new(components.LLMResponse)
	ret.FromCohere(resp)
	return ret, nil
}

func (c *CohereClient) request(req *Request) *cohere.ChatRequest {
	history, message := components.NewView(req.Viewer, req.Messages).Cohere()
	temperature := float64(req.Temperature)
	chatReq := cohere.ChatRequest{
		Message:     message,
		ChatHistory: history,
		Temperature: &temperature,
	}
	if req.Model != "" {
		chatReq.Model = &req.Model
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = &req.MaxTokens
	}
	if req.SystemPrompt != "" {
		chatReq.Preamble = &req.SystemPrompt
	}
	return &chatReq
}
