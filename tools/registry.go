package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bububa/careerchat/components"
)

// Registry holds tools which could be executed by a participant
type Registry struct {
	tools map[string]Tool
	mtx   sync.RWMutex
}

// NewRegistry returns a Registry with tools registered
func NewRegistry(tools ...Tool) *Registry {
	ret := &Registry{tools: make(map[string]Tool, len(tools))}
	ret.Register(tools...)
	return ret
}

// Register adds tools, a tool with the same title is replaced
func (r *Registry) Register(tools ...Tool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for _, t := range tools {
		r.tools[t.Title()] = t
	}
}

// Get returns a tool by title
func (r *Registry) Get(name string) (Tool, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// HasAny reports whether any call could be executed by the registry
func (r *Registry) HasAny(calls ...components.ToolCall) bool {
	for _, call := range calls {
		if _, ok := r.Get(call.Name); ok {
			return true
		}
	}
	return false
}

// Tools returns registered tools sorted by title
func (r *Registry) Tools() []Tool {
	r.mtx.RLock()
	list := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		list = append(list, t)
	}
	r.mtx.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		return list[i].Title() < list[j].Title()
	})
	return list
}

// Definitions returns llm definitions of all registered tools, sorted by name
func (r *Registry) Definitions() []components.ToolDefinition {
	list := r.Tools()
	defs := make([]components.ToolDefinition, 0, len(list))
	for _, t := range list {
		defs = append(defs, Definition(t))
	}
	return defs
}

// Execute runs a tool call. Failures are reported in the callback so the conversation could go on.
func (r *Registry) Execute(ctx context.Context, call components.ToolCall) components.ToolCallback {
	ret := components.ToolCallback{
		ID:   call.ID,
		Name: call.Name,
	}
	t, ok := r.Get(call.Name)
	if !ok {
		ret.IsError = true
		ret.Content = fmt.Sprintf("tool %s not found", call.Name)
		return ret
	}
	content, err := t.Call(ctx, call.Arguments)
	if err != nil {
		ret.IsError = true
		ret.Content = err.Error()
		return ret
	}
	ret.Content = content
	return ret
}

// ExecuteAll runs tool calls sequentially in order
func (r *Registry) ExecuteAll(ctx context.Context, calls []components.ToolCall) []components.ToolCallback {
	ret := make([]components.ToolCallback, 0, len(calls))
	for _, call := range calls {
		ret = append(ret, r.Execute(ctx, call))
	}
	return ret
}
