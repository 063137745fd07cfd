package systemprompt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/careerchat/components/systemprompt"
	"github.com/bububa/careerchat/components/systemprompt/cot"
	"github.com/bububa/careerchat/components/systemprompt/simple"
)

func TestSimpleGenerator(t *testing.T) {
	g := simple.New("You analyse CVs.",
		simple.WithContextProviders(systemprompt.NewStaticProvider("CV location", "cv.txt")))
	assert.Equal(t, "You analyse CVs.\n\n# EXTRA INFORMATION AND CONTEXT\n## CV location\ncv.txt", g.Generate())

	g.RemoveContextProviders("CV location")
	assert.Equal(t, "You analyse CVs.", g.Generate())
}

func TestContextProviderLookup(t *testing.T) {
	g := simple.New("x")
	g.AddContextProviders(
		systemprompt.NewStaticProvider("a", "1"),
		systemprompt.NewStaticProvider("a", "duplicate"),
		systemprompt.NewFuncProvider("b", func() string { return "2" }),
	)
	require.Len(t, g.ContextProviders(), 2)
	p, err := g.ContextProvider("b")
	require.NoError(t, err)
	assert.Equal(t, "2", p.Info())
	_, err = g.ContextProvider("missing")
	assert.Error(t, err)
}

func TestCoTGenerator(t *testing.T) {
	g := cot.New(
		cot.WithSteps([]string{"- Read the conversation."}),
		cot.WithOutputInstructs([]string{"- Only return the role."}),
	)
	expected := "# IDENTITY and PURPOSE\n" +
		"- This is a conversation with a helpful and friendly AI assistant.\n\n" +
		"# INTERNAL ASSISTANT STEPS\n" +
		"- Read the conversation.\n\n" +
		"# OUTPUT INSTRUCTIONS\n" +
		"- Only return the role."
	assert.Equal(t, expected, g.Generate())
}
