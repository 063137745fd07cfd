package simple

import (
	"github.com/bububa/careerchat/components/systemprompt"
)

// Generator is a free text system prompt generator, used for participant role instructions
type Generator struct {
	systemprompt.BaseGenerator
	content string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(content string, options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	ret.content = content
	return ret
}

func (g *Generator) Generate() string {
	promptParts := make([]string, 0, len(g.ContextProviders())*3+2)
	promptParts = append(promptParts, g.content, "")
	return systemprompt.Join(g.RenderContext(promptParts))
}
