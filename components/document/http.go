package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.uber.org/atomic"
)

// Http is a http document source, the body is cached after the first successful load
type Http struct {
	status *atomic.Int32
	client *http.Client
	link   string
	method string
	mu     sync.Mutex
	doc    *Document
}

var _ Source = (*Http)(nil)

type HttpConfig struct {
	client *http.Client
	link   string
	method string
}

type HttpOption func(*HttpConfig)

func WithHttpMethod(method string) HttpOption {
	return func(h *HttpConfig) {
		h.method = method
	}
}

func WithHttpURL(link string) HttpOption {
	return func(h *HttpConfig) {
		h.link = link
	}
}

func WithHttpClient(client *http.Client) HttpOption {
	return func(h *HttpConfig) {
		h.client = client
	}
}

func NewHttp(opts ...HttpOption) (*Http, error) {
	var cfg HttpConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.method == "" {
		cfg.method = http.MethodGet
	}
	if cfg.client == nil {
		cfg.client = http.DefaultClient
	}
	if cfg.link == "" {
		return nil, fmt.Errorf("http document url is empty")
	}
	return &Http{
		status: atomic.NewInt32(Unread),
		client: cfg.client,
		link:   cfg.link,
		method: cfg.method,
	}, nil
}

func (h *Http) ReadStatus() ReadStatus {
	return h.status.Load()
}

func (h *Http) Load(ctx context.Context) (*Document, error) {
	if !h.status.CompareAndSwap(Unread, Reading) {
		if h.ReadStatus() == ReadCompleted {
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.doc, nil
		}
		return nil, ErrReading
	}
	doc, err := h.fetch(ctx)
	if err != nil {
		h.status.Store(Unread)
		return nil, err
	}
	h.mu.Lock()
	h.doc = doc
	h.mu.Unlock()
	h.status.Store(ReadCompleted)
	return doc, nil
}

func (h *Http) fetch(ctx context.Context) (*Document, error) {
	httpReq, err := http.NewRequestWithContext(ctx, h.method, h.link, nil)
	if err != nil {
		return nil, err
	}
	httpResp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch %s: %s", h.link, httpResp.Status)
	}
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, httpResp.Body); err != nil {
		return nil, err
	}
	meta := map[string]string{
		"source": "http",
		"url":    h.link,
		"method": h.method,
	}
	if ct := httpResp.Header.Get("Content-Type"); ct != "" {
		meta["content_type"] = ct
	}
	return &Document{buffer: buf, Meta: meta}, nil
}
