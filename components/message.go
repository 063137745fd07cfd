package components

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/xid"
	"gopkg.in/yaml.v3"

	"github.com/bububa/careerchat/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
	ToolRole      MessageRole = "tool"
)

// Message  Represents a message in the chat transcript.
type Message struct {
	content schema.Schema
	// name is the participant who sent the message
	name string
	// role is the role of the message sender (e.g., 'user', 'system', 'tool')
	role MessageRole
	// toolCalls requested by the sender
	toolCalls []ToolCall
	// toolCallbacks results of executed tool calls
	toolCallbacks []ToolCallback
	//	turnID is Unique identifier for the turn this message belongs to.
	turnID string
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// SetName set message sender name
func (m *Message) SetName(name string) *Message {
	m.name = name
	return m
}

// SetToolCalls set tool calls requested by the message
func (m *Message) SetToolCalls(calls []ToolCall) *Message {
	m.toolCalls = calls
	return m
}

// SetToolCallbacks set tool results carried by the message
func (m *Message) SetToolCallbacks(callbacks []ToolCallback) *Message {
	m.toolCallbacks = callbacks
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Name returns message sender name
func (m Message) Name() string {
	return m.name
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// StringifiedContent returns message content as string
func (m Message) StringifiedContent() string {
	return schema.Stringify(m.content)
}

// ToolCalls returns tool calls of the message
func (m Message) ToolCalls() []ToolCall {
	return m.toolCalls
}

// HasToolCalls returns true if the message requests tool execution
func (m Message) HasToolCalls() bool {
	return len(m.toolCalls) > 0
}

// ToolCallbacks returns tool results of the message
func (m Message) ToolCallbacks() []ToolCallback {
	return m.toolCallbacks
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// Text renders the message as plain text for participants which did not send it
func (m Message) Text() string {
	var sb strings.Builder
	if content := m.StringifiedContent(); content != "" {
		sb.WriteString(content)
	}
	for _, call := range m.toolCalls {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "[tool call] %s(%s)", call.Name, call.Arguments)
	}
	for _, cb := range m.toolCallbacks {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		if cb.IsError {
			fmt.Fprintf(&sb, "[tool error] %s: %s", cb.Name, cb.Content)
		} else {
			fmt.Fprintf(&sb, "[tool result] %s: %s", cb.Name, cb.Content)
		}
	}
	return sb.String()
}

// record is the serializable form of Message
type record struct {
	Name          string         `json:"name,omitempty" yaml:"name,omitempty"`
	Role          MessageRole    `json:"role" yaml:"role"`
	Content       string         `json:"content,omitempty" yaml:"content,omitempty"`
	ToolCalls     []ToolCall     `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`
	ToolCallbacks []ToolCallback `json:"tool_callbacks,omitempty" yaml:"tool_callbacks,omitempty"`
	TurnID        string         `json:"turn_id,omitempty" yaml:"turn_id,omitempty"`
}

func (m Message) record() record {
	return record{
		Name:          m.name,
		Role:          m.role,
		Content:       m.StringifiedContent(),
		ToolCalls:     m.toolCalls,
		ToolCallbacks: m.toolCallbacks,
		TurnID:        m.turnID,
	}
}

func (m *Message) fromRecord(r record) {
	m.name = r.Name
	m.role = r.Role
	m.content = schema.NewString(r.Content)
	m.toolCalls = r.ToolCalls
	m.toolCallbacks = r.ToolCallbacks
	m.turnID = r.TurnID
}

// MarshalJSON implements json.Marshaler interface
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.record())
}

// UnmarshalJSON implements json.Unmarshaler interface
func (m *Message) UnmarshalJSON(bs []byte) error {
	var r record
	if err := json.Unmarshal(bs, &r); err != nil {
		return err
	}
	m.fromRecord(r)
	return nil
}

// MarshalYAML implements yaml.Marshaler interface
func (m Message) MarshalYAML() (any, error) {
	return m.record(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler interface
func (m *Message) UnmarshalYAML(value *yaml.Node) error {
	var r record
	if err := value.Decode(&r); err != nil {
		return err
	}
	m.fromRecord(r)
	return nil
}
