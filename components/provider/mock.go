package provider

import (
	"context"

	"github.com/bububa/careerchat/components"
)

// MockClient is a test double for Client.
// Without ExtractFunc it reports structured output as unsupported.
type MockClient struct {
	ProviderName string
	ChatFunc     func(ctx context.Context, req *Request) (*Response, error)
	ExtractFunc  func(ctx context.Context, req *Request, out any) (*components.LLMResponse, error)
}

var (
	_ Client    = (*MockClient)(nil)
	_ Extractor = (*MockClient)(nil)
)

func (m *MockClient) Name() string { return m.ProviderName }

func (m *MockClient) Chat(ctx context.Context, req *Request) (*Response, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}
	return &Response{Content: "mock response"}, nil
}

func (m *MockClient) Extract(ctx context.Context, req *Request, out any) (*components.LLMResponse, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, req, out)
	}
	return nil, ErrStructuredUnsupported
}
