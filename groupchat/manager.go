package groupchat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bububa/careerchat/agents"
	"github.com/bububa/careerchat/components"
	"github.com/bububa/careerchat/logging"
	"github.com/bububa/careerchat/schema"
)

// StopReason tells why a chat stopped
type StopReason string

const (
	StopTerminated StopReason = "terminated"
	StopMaxRound   StopReason = "max_round"
	StopCancelled  StopReason = "cancelled"
)

// Result of a group chat run
type Result struct {
	// ID conversation id
	ID string `json:"id" yaml:"id"`
	// Messages is the full transcript
	Messages []components.Message `json:"messages" yaml:"messages"`
	// StopReason why the chat stopped
	StopReason StopReason `json:"stop_reason" yaml:"stop_reason"`
	// Rounds number of replies after the initiating message
	Rounds int `json:"rounds" yaml:"rounds"`
	// LLMCalls number of llm calls
	LLMCalls int64 `json:"llm_calls" yaml:"llm_calls"`
	// Usage accumulated token usage
	Usage components.LLMUsage `json:"usage" yaml:"usage"`
}

// Manager drives a GroupChat
type Manager struct {
	groupChat     *GroupChat
	isTermination TerminationFunc
	logger        *logging.Logger
	usage         *components.UsageTracker
	onMessage     func(*agents.Agent, *components.Message)
}

type ManagerOption func(m *Manager)

// WithTermination set a custom termination predicate
func WithTermination(fn TerminationFunc) ManagerOption {
	return func(m *Manager) {
		m.isTermination = fn
	}
}

func WithLogger(logger *logging.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMessageHook set a function called with every appended message
func WithMessageHook(fn func(*agents.Agent, *components.Message)) ManagerOption {
	return func(m *Manager) {
		m.onMessage = fn
	}
}

// NewManager returns a Manager of the group chat
func NewManager(gc *GroupChat, options ...ManagerOption) *Manager {
	ret := &Manager{
		groupChat:     gc,
		isTermination: IsTermination,
		usage:         components.NewUsageTracker(),
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = logging.Nop()
	}
	gc.SetUsageTracker(ret.usage)
	return ret
}

func (m *Manager) GroupChat() *GroupChat {
	return m.groupChat
}

// Run clears the transcript, starts the chat with message sent by initiator and drives it until
// a termination message, the max round or ctx cancellation.
func (m *Manager) Run(ctx context.Context, initiator *agents.Agent, message string) (*Result, error) {
	gc := m.groupChat
	if !gc.Contains(initiator) {
		return nil, fmt.Errorf("initiator: %w", ErrUnknownSpeaker)
	}
	ret := &Result{ID: uuid.NewString()}
	logger := m.logger.With("chat", ret.ID)
	gc.memory.Reset().NewTurn()
	m.append(initiator, components.NewMessage(components.UserRole, schema.NewString(message)).SetName(initiator.Name()))
	last := initiator
	defer m.finish(ret)
	for {
		if m.isTermination(gc.LastMessage()) {
			ret.StopReason = StopTerminated
			logger.Info().Str("speaker", last.Name()).Int("rounds", ret.Rounds).Msg("chat terminated")
			return ret, nil
		}
		if ret.Rounds >= gc.maxRound {
			ret.StopReason = StopMaxRound
			logger.Info().Int("rounds", ret.Rounds).Msg("max round reached")
			return ret, nil
		}
		if err := ctx.Err(); err != nil {
			ret.StopReason = StopCancelled
			return ret, err
		}
		speaker, err := gc.SelectSpeaker(ctx, last)
		if err != nil {
			return ret, fmt.Errorf("round %d select speaker: %w", ret.Rounds+1, err)
		}
		logger.Info().Int("round", ret.Rounds+1).Str("speaker", speaker.Name()).Msg("speaker selected")
		var llmResp components.LLMResponse
		reply, err := speaker.Reply(ctx, gc.Messages(), &llmResp)
		if err != nil {
			if ctx.Err() != nil {
				ret.StopReason = StopCancelled
			}
			return ret, fmt.Errorf("round %d %s reply: %w", ret.Rounds+1, speaker.Name(), err)
		}
		if speaker.UsesLLM() && reply.Role() == components.AssistantRole {
			m.usage.Track(&llmResp)
		}
		m.append(speaker, reply)
		last = speaker
		ret.Rounds++
	}
}

func (m *Manager) append(agent *agents.Agent, msg *components.Message) {
	m.groupChat.Append(msg)
	if m.onMessage != nil {
		m.onMessage(agent, msg)
	}
}

func (m *Manager) finish(ret *Result) {
	ret.Messages = m.groupChat.Messages()
	ret.LLMCalls = m.usage.Calls()
	ret.Usage = m.usage.Usage()
}
