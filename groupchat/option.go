package groupchat

import (
	"github.com/bububa/careerchat/agents"
	"github.com/bububa/careerchat/components"
	"github.com/bububa/careerchat/components/provider"
)

type Option func(gc *GroupChat)

// WithMaxRound set the maximum number of replies in a chat
func WithMaxRound(maxRound int) Option {
	return func(gc *GroupChat) {
		gc.maxRound = maxRound
	}
}

// WithAllowRepeatSpeaker set whether the last speaker may speak again
func WithAllowRepeatSpeaker(allow bool) Option {
	return func(gc *GroupChat) {
		gc.allowRepeatSpeaker = allow
	}
}

// WithSpeakerSelectionMethod set the fallback speaker selection method
func WithSpeakerSelectionMethod(method SelectionMethod) Option {
	return func(gc *GroupChat) {
		gc.method = method
	}
}

// WithSpeakerSelector set a custom speaker selector
func WithSpeakerSelector(selector SpeakerSelector) Option {
	return func(gc *GroupChat) {
		gc.selector = selector
	}
}

// WithMemory set the shared chat transcript
func WithMemory(memory *components.Memory) Option {
	return func(gc *GroupChat) {
		gc.memory = memory
	}
}

// WithSelectorClient set the llm used by auto speaker selection
func WithSelectorClient(clt provider.Client, model string) Option {
	return func(gc *GroupChat) {
		gc.selectorClient = clt
		gc.selectorModel = model
	}
}

// WithHumanInput set the function asking a human to pick the next speaker in manual selection
func WithHumanInput(fn agents.HumanInputFunc) Option {
	return func(gc *GroupChat) {
		gc.humanInput = fn
	}
}
