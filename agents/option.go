package agents

import (
	"github.com/bububa/careerchat/components/provider"
	"github.com/bububa/careerchat/components/systemprompt"
	"github.com/bububa/careerchat/tools"
)

type Option func(a *Config)

func WithClient(clt provider.Client) Option {
	return func(c *Config) {
		c.client = clt
	}
}

func WithSystemPromptGenerator(g systemprompt.Generator) Option {
	return func(c *Config) {
		c.systemPromptGenerator = g
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Config) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.maxTokens = maxTokens
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}

// WithDescription set the description used by llm speaker selection
func WithDescription(desc string) Option {
	return func(c *Config) {
		c.description = desc
	}
}

// WithTools set tools the agent may ask to call
func WithTools(list ...tools.Tool) Option {
	return func(c *Config) {
		c.tools = append(c.tools, list...)
	}
}

// WithToolExecutor set the registry of tools the agent executes
func WithToolExecutor(registry *tools.Registry) Option {
	return func(c *Config) {
		c.executor = registry
	}
}

// WithHumanInput set the function asking a human for a reply
func WithHumanInput(fn HumanInputFunc) Option {
	return func(c *Config) {
		c.humanInput = fn
	}
}

// WithDefaultAutoReply set the reply used when agent has nothing else to say
func WithDefaultAutoReply(reply string) Option {
	return func(c *Config) {
		c.defaultAutoReply = reply
	}
}
