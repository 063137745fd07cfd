package tools

import "context"

// Config class for tools
type Config struct {
	// title the default title of the tool, used as function name for llm
	title string
	// description the default description of the tool
	description string
	startHook   func(context.Context, Tool, string)
	endHook     func(context.Context, Tool, string, string)
	errorHook   func(context.Context, Tool, string, error)
}

func (c *Config) SetTitle(v string) {
	c.title = v
}

func (c Config) Title() string {
	return c.title
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}

func (c *Config) SetStartHook(fn func(context.Context, Tool, string)) {
	c.startHook = fn
}

func (c *Config) SetEndHook(fn func(context.Context, Tool, string, string)) {
	c.endHook = fn
}

func (c *Config) SetErrorHook(fn func(context.Context, Tool, string, error)) {
	c.errorHook = fn
}

func (c Config) onStart(ctx context.Context, t Tool, args string) {
	if fn := c.startHook; fn != nil {
		fn(ctx, t, args)
	}
}

func (c Config) onEnd(ctx context.Context, t Tool, args string, result string) {
	if fn := c.endHook; fn != nil {
		fn(ctx, t, args, result)
	}
}

func (c Config) onError(ctx context.Context, t Tool, args string, err error) {
	if fn := c.errorHook; fn != nil {
		fn(ctx, t, args, err)
	}
}
