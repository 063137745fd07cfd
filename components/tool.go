package components

import "encoding/json"

// ToolDefinition describes a tool offered to llm
type ToolDefinition struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty" yaml:"-"`
}

// ToolCall is a tool invocation requested by llm
type ToolCall struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Arguments string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// ToolCallback is the result of a ToolCall
type ToolCallback struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
	IsError bool   `json:"is_error,omitempty" yaml:"is_error,omitempty"`
}

// RawArguments returns arguments as json.RawMessage, an empty object if no arguments
func (c ToolCall) RawArguments() json.RawMessage {
	if c.Arguments == "" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(c.Arguments)
}
