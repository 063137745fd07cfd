package groupchat

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/bububa/careerchat/agents"
	"github.com/bububa/careerchat/components"
	"github.com/bububa/careerchat/components/provider"
)

// DefaultMaxRound is the maximum number of replies when none is configured
const DefaultMaxRound = 10

// SelectionMethod is a built in speaker selection method
type SelectionMethod string

const (
	Auto       SelectionMethod = "auto"
	RoundRobin SelectionMethod = "round_robin"
	Random     SelectionMethod = "random"
	Manual     SelectionMethod = "manual"
)

var (
	// ErrNoAgents is returned when a group chat has no participant
	ErrNoAgents = errors.New("group chat has no agents")
	// ErrUnknownSpeaker is returned when a speaker is not a group chat participant
	ErrUnknownSpeaker = errors.New("speaker is not in the group chat")
	// ErrUnknownMethod is returned for an unsupported selection method
	ErrUnknownMethod = errors.New("unknown speaker selection method")
)

// SpeakerSelector picks the next speaker after last.
// A nil agent defers to the returned selection method.
type SpeakerSelector func(ctx context.Context, last *agents.Agent, gc *GroupChat) (*agents.Agent, SelectionMethod, error)

// GroupChat is a set of agents sharing one transcript
type GroupChat struct {
	agents             []*agents.Agent
	memory             *components.Memory
	maxRound           int
	allowRepeatSpeaker bool
	method             SelectionMethod
	selector           SpeakerSelector
	selectorClient     provider.Client
	selectorModel      string
	humanInput         agents.HumanInputFunc
	usage              *components.UsageTracker
}

// New returns a GroupChat of participants
func New(participants []*agents.Agent, options ...Option) (*GroupChat, error) {
	if len(participants) == 0 {
		return nil, ErrNoAgents
	}
	names := lo.Map(participants, func(a *agents.Agent, _ int) string { return a.Name() })
	if dup := lo.FindDuplicates(names); len(dup) > 0 {
		return nil, fmt.Errorf("duplicated agent names: %v", dup)
	}
	ret := &GroupChat{
		agents:             participants,
		maxRound:           DefaultMaxRound,
		allowRepeatSpeaker: true,
		method:             Auto,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.memory == nil {
		ret.memory = components.NewMemory(0)
	}
	if ret.maxRound <= 0 {
		ret.maxRound = DefaultMaxRound
	}
	switch ret.method {
	case Auto, RoundRobin, Random, Manual:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, ret.method)
	}
	return ret, nil
}

// Agents returns the participants
func (gc *GroupChat) Agents() []*agents.Agent {
	return gc.agents
}

// AgentNames returns participant names in order
func (gc *GroupChat) AgentNames() []string {
	return lo.Map(gc.agents, func(a *agents.Agent, _ int) string { return a.Name() })
}

// Agent returns the participant by name
func (gc *GroupChat) Agent(name string) (*agents.Agent, bool) {
	return lo.Find(gc.agents, func(a *agents.Agent) bool { return a.Name() == name })
}

// Contains reports whether agent is a participant
func (gc *GroupChat) Contains(agent *agents.Agent) bool {
	return agent != nil && lo.Contains(gc.agents, agent)
}

func (gc *GroupChat) MaxRound() int {
	return gc.maxRound
}

func (gc *GroupChat) Method() SelectionMethod {
	return gc.method
}

func (gc *GroupChat) Memory() *components.Memory {
	return gc.memory
}

// Messages returns a snapshot of the transcript
func (gc *GroupChat) Messages() []components.Message {
	return gc.memory.History()
}

// LastMessage returns the latest message, nil if none
func (gc *GroupChat) LastMessage() *components.Message {
	return gc.memory.Last()
}

// Append adds a message to the transcript
func (gc *GroupChat) Append(msg *components.Message) *components.Message {
	return gc.memory.Append(msg)
}

// Reset clears the transcript
func (gc *GroupChat) Reset() {
	gc.memory.Reset()
}

// SetUsageTracker set the tracker collecting auto selection llm usage
func (gc *GroupChat) SetUsageTracker(tracker *components.UsageTracker) {
	gc.usage = tracker
}

// NextAgent returns the participant after last in round robin order
func (gc *GroupChat) NextAgent(last *agents.Agent) *agents.Agent {
	idx := lo.IndexOf(gc.agents, last)
	return gc.agents[(idx+1)%len(gc.agents)]
}

// candidates returns agents eligible to speak after last
func (gc *GroupChat) candidates(last *agents.Agent) []*agents.Agent {
	if gc.allowRepeatSpeaker || len(gc.agents) < 2 || last == nil {
		return gc.agents
	}
	return lo.Without(gc.agents, last)
}

// executors returns agents able to execute every tool call
func (gc *GroupChat) executors(calls []components.ToolCall) []*agents.Agent {
	return lo.Filter(gc.agents, func(a *agents.Agent, _ int) bool { return a.CanExecute(calls) })
}
