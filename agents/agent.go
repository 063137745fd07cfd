package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/bububa/careerchat/components"
	"github.com/bububa/careerchat/components/provider"
	"github.com/bububa/careerchat/components/systemprompt"
	"github.com/bububa/careerchat/schema"
	"github.com/bububa/careerchat/tools"
)

// ErrEmptyHistory is returned when an agent is asked to reply to nothing
var ErrEmptyHistory = errors.New("no message to reply")

// HumanInputFunc asks a human for a reply, an empty reply skips to the next reply rule
type HumanInputFunc func(ctx context.Context, prompt string) (string, error)

// Config represents general agents configuration
type Config struct {
	// client Client for interacting with the language model
	client provider.Client
	//	systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// model llm model
	model string
	// temperature Temperature for response generation, typically ranging from 0 to 1.
	temperature float32
	// maxTokens Maximum number of tokens allowed in the response
	maxTokens int
	// name is Agent name presentation
	name string
	// description tells other participants what the agent does
	description string
	// tools offered to llm
	tools []tools.Tool
	// executor executes tool calls addressed to the agent
	executor *tools.Registry
	// humanInput asks a human for reply
	humanInput HumanInputFunc
	// defaultAutoReply is used when no other reply rule applies
	defaultAutoReply string
}

// Agent is a group chat participant.
// An agent replies by executing tool calls, asking a human, calling a language model
// or falling back to its default auto reply, in that order.
type Agent struct {
	Config
	startHook func(context.Context, *Agent, []components.Message)
	endHook   func(context.Context, *Agent, *components.Message, *components.LLMResponse)
	errorHook func(context.Context, *Agent, error)
}

// NewAgent initializes the Agent
func NewAgent(options ...Option) *Agent {
	ret := new(Agent)
	for _, opt := range options {
		opt(&ret.Config)
	}
	return ret
}

func (a *Agent) SetClient(clt provider.Client) {
	a.client = clt
}

func (a *Agent) SetSystemPromptGenerator(g systemprompt.Generator) {
	a.systemPromptGenerator = g
}

func (a *Agent) SetModel(model string) {
	a.model = model
}

func (a *Agent) SetTemperature(temperature float32) {
	a.temperature = temperature
}

func (a *Agent) SetMaxTokens(maxTokens int) {
	a.maxTokens = maxTokens
}

func (a Agent) Name() string {
	return a.name
}

func (a *Agent) SetName(name string) {
	a.name = name
}

func (a Agent) Description() string {
	return a.description
}

func (a *Agent) SetHumanInput(fn HumanInputFunc) {
	a.humanInput = fn
}

func (a *Agent) SetStartHook(fn func(context.Context, *Agent, []components.Message)) {
	a.startHook = fn
}

func (a *Agent) SetEndHook(fn func(context.Context, *Agent, *components.Message, *components.LLMResponse)) {
	a.endHook = fn
}

func (a *Agent) SetErrorHook(fn func(context.Context, *Agent, error)) {
	a.errorHook = fn
}

// SystemPrompt returns the system prompt
func (a *Agent) SystemPrompt() string {
	if a.systemPromptGenerator == nil {
		return ""
	}
	return a.systemPromptGenerator.Generate()
}

// SystemPromptContextProvider returns agent systemPromptGenerator's context provider
func (a *Agent) SystemPromptContextProvider(title string) (systemprompt.ContextProvider, error) {
	if a.systemPromptGenerator == nil {
		return nil, fmt.Errorf("context provider '%s' not found", title)
	}
	return a.systemPromptGenerator.ContextProvider(title)
}

// RegisterSystemPromptContextProvider registers a new context provider
func (a *Agent) RegisterSystemPromptContextProvider(provider systemprompt.ContextProvider) {
	if a.systemPromptGenerator != nil {
		a.systemPromptGenerator.AddContextProviders(provider)
	}
}

// ToolDefinitions returns definitions of tools offered to llm
func (a *Agent) ToolDefinitions() []components.ToolDefinition {
	defs := make([]components.ToolDefinition, 0, len(a.tools))
	for _, t := range a.tools {
		defs = append(defs, tools.Definition(t))
	}
	return defs
}

// CanExecute reports whether the agent holds a tool registered for any of the calls.
// Calls the registry does not know are answered with error callbacks.
func (a *Agent) CanExecute(calls []components.ToolCall) bool {
	return a.executor != nil && a.executor.HasAny(calls...)
}

// UsesLLM reports whether the agent replies with a language model
func (a *Agent) UsesLLM() bool {
	return a.client != nil
}

// Reply generates the agent's next message for the chat history.
// llmResp is filled if a language model was called.
func (a *Agent) Reply(ctx context.Context, history []components.Message, llmResp *components.LLMResponse) (*components.Message, error) {
	if fn := a.startHook; fn != nil {
		fn(ctx, a, history)
	}
	msg, err := a.reply(ctx, history, llmResp)
	if err != nil {
		if fn := a.errorHook; fn != nil {
			fn(ctx, a, err)
		}
		return nil, err
	}
	msg.SetName(a.name)
	if fn := a.endHook; fn != nil {
		fn(ctx, a, msg, llmResp)
	}
	return msg, nil
}

func (a *Agent) reply(ctx context.Context, history []components.Message, llmResp *components.LLMResponse) (*components.Message, error) {
	l := len(history)
	if l == 0 {
		return nil, ErrEmptyHistory
	}
	if last := history[l-1]; a.executor != nil && last.HasToolCalls() {
		callbacks := a.executor.ExecuteAll(ctx, last.ToolCalls())
		return components.NewMessage(components.ToolRole, nil).SetToolCallbacks(callbacks), nil
	}
	if fn := a.humanInput; fn != nil {
		txt, err := fn(ctx, fmt.Sprintf("Provide feedback to chat as %s. Press enter to skip: ", a.name))
		if err != nil {
			return nil, fmt.Errorf("human input: %w", err)
		}
		if txt != "" {
			return components.NewMessage(components.UserRole, schema.NewString(txt)), nil
		}
	}
	if a.client != nil {
		return a.generate(ctx, history, llmResp)
	}
	return components.NewMessage(components.UserRole, schema.NewString(a.defaultAutoReply)), nil
}

func (a *Agent) generate(ctx context.Context, history []components.Message, llmResp *components.LLMResponse) (*components.Message, error) {
	resp, err := a.client.Chat(ctx, &provider.Request{
		Model:        a.model,
		Temperature:  a.temperature,
		MaxTokens:    a.maxTokens,
		SystemPrompt: a.SystemPrompt(),
		Viewer:       a.name,
		Messages:     history,
		Tools:        a.ToolDefinitions(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s llm: %w", a.name, err)
	}
	if llmResp != nil {
		*llmResp = resp.LLM
	}
	return components.NewMessage(components.AssistantRole, schema.NewString(resp.Content)).SetToolCalls(resp.ToolCalls), nil
}
