package groupchat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/bububa/careerchat/agents"
	"github.com/bububa/careerchat/components"
	"github.com/bububa/careerchat/components/provider"
	"github.com/bububa/careerchat/components/systemprompt"
	"github.com/bububa/careerchat/components/systemprompt/cot"
	"github.com/bububa/careerchat/schema"
)

const (
	maxManualAttempts = 3
	// selectorName is the viewer of auto speaker selection requests
	selectorName = "speaker_selector"
)

// SpeakerChoice is the structured answer of auto speaker selection
type SpeakerChoice struct {
	NextSpeaker string `json:"next_speaker" jsonschema:"title=next_speaker,description=Name of the role which speaks next" validate:"required"`
}

// SelectSpeaker picks the participant to reply after last
func (gc *GroupChat) SelectSpeaker(ctx context.Context, last *agents.Agent) (*agents.Agent, error) {
	method := gc.method
	if gc.selector != nil {
		agent, m, err := gc.selector(ctx, last, gc)
		if err != nil {
			return nil, err
		}
		if agent != nil {
			if !gc.Contains(agent) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownSpeaker, agent.Name())
			}
			return agent, nil
		}
		if m != "" {
			method = m
		}
	}
	if msg := gc.LastMessage(); msg != nil && msg.HasToolCalls() {
		if list := gc.executors(msg.ToolCalls()); len(list) == 1 {
			return list[0], nil
		}
	}
	switch method {
	case RoundRobin:
		return gc.NextAgent(last), nil
	case Random:
		return lo.Sample(gc.candidates(last)), nil
	case Manual:
		return gc.manualSelect(ctx, last)
	case Auto:
		return gc.autoSelect(ctx, last)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
}

func (gc *GroupChat) manualSelect(ctx context.Context, last *agents.Agent) (*agents.Agent, error) {
	if gc.humanInput == nil {
		return gc.NextAgent(last), nil
	}
	list := gc.candidates(last)
	var sb strings.Builder
	sb.WriteString("Please select the next speaker from the following list:\n")
	for idx, a := range list {
		fmt.Fprintf(&sb, "%d: %s\n", idx+1, a.Name())
	}
	sb.WriteString("Enter the number or name, or press enter to use round robin: ")
	prompt := sb.String()
	for range maxManualAttempts {
		txt, err := gc.humanInput(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("manual speaker selection: %w", err)
		}
		txt = strings.TrimSpace(txt)
		if txt == "" {
			break
		}
		if idx, err := strconv.Atoi(txt); err == nil {
			if idx > 0 && idx <= len(list) {
				return list[idx-1], nil
			}
			continue
		}
		if agent, found := lo.Find(list, func(a *agents.Agent) bool { return a.Name() == txt }); found {
			return agent, nil
		}
	}
	return gc.NextAgent(last), nil
}

// autoSelect asks the selector llm for the next speaker.
// A structured SpeakerChoice is requested first when the client could decode one,
// otherwise the free text reply is searched for agent names.
// Anything but exactly one mentioned candidate falls back to round robin.
func (gc *GroupChat) autoSelect(ctx context.Context, last *agents.Agent) (*agents.Agent, error) {
	list := gc.candidates(last)
	if len(list) == 1 {
		return list[0], nil
	}
	if gc.selectorClient == nil {
		return gc.NextAgent(last), nil
	}
	prompt := SelectorPrompt(list)
	history := gc.Messages()
	history = append(history, *components.NewMessage(components.UserRole, schema.NewString(
		fmt.Sprintf("Read the above conversation. Then select the next role from %s to play. Only return the role.", strings.Join(agentNames(list), ", ")),
	)))
	text, err := gc.extractSpeaker(ctx, prompt, history)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("auto speaker selection: %w", err)
		}
		selector := agents.NewAgent(
			agents.WithName(selectorName),
			agents.WithClient(gc.selectorClient),
			agents.WithModel(gc.selectorModel),
			agents.WithSystemPromptGenerator(prompt),
		)
		var llmResp components.LLMResponse
		reply, err := selector.Reply(ctx, history, &llmResp)
		if err != nil {
			return nil, fmt.Errorf("auto speaker selection: %w", err)
		}
		gc.track(&llmResp)
		text = reply.StringifiedContent()
	}
	mentions := MentionedAgents(text, list)
	if len(mentions) == 1 {
		for name := range mentions {
			agent, _ := gc.Agent(name)
			return agent, nil
		}
	}
	return gc.NextAgent(last), nil
}

func (gc *GroupChat) extractSpeaker(ctx context.Context, prompt systemprompt.Generator, history []components.Message) (string, error) {
	extractor, ok := gc.selectorClient.(provider.Extractor)
	if !ok {
		return "", provider.ErrStructuredUnsupported
	}
	var choice SpeakerChoice
	llmResp, err := extractor.Extract(ctx, &provider.Request{
		Model:        gc.selectorModel,
		SystemPrompt: prompt.Generate(),
		Viewer:       selectorName,
		Messages:     history,
	}, &choice)
	if err != nil {
		return "", err
	}
	gc.track(llmResp)
	if choice.NextSpeaker == "" {
		return "", errors.New("empty speaker choice")
	}
	return choice.NextSpeaker, nil
}

func (gc *GroupChat) track(llmResp *components.LLMResponse) {
	if gc.usage != nil && llmResp != nil {
		gc.usage.Track(llmResp)
	}
}

// SelectorPrompt returns the role play system prompt describing participants
func SelectorPrompt(list []*agents.Agent) systemprompt.Generator {
	roles := lo.Map(list, func(a *agents.Agent, _ int) string {
		return fmt.Sprintf("- %s: %s", a.Name(), a.Description())
	})
	return cot.New(
		cot.WithBackground(append([]string{"- You are in a role play game. The following roles are available:"}, roles...)),
		cot.WithSteps([]string{
			"- Read the conversation.",
			"- Decide which role should speak next to move the conversation forward.",
		}),
		cot.WithOutputInstructs([]string{
			fmt.Sprintf("- Only return one role name from: %s.", strings.Join(agentNames(list), ", ")),
		}),
	)
}

// MentionedAgents counts how often each agent name appears in text.
// Underscores in names may be written as spaces.
func MentionedAgents(text string, list []*agents.Agent) map[string]int {
	ret := make(map[string]int)
	for _, a := range list {
		pattern := `(?i)(?:^|\W)(?:` + regexp.QuoteMeta(a.Name())
		if spaced := strings.ReplaceAll(a.Name(), "_", " "); spaced != a.Name() {
			pattern += `|` + regexp.QuoteMeta(spaced)
		}
		pattern += `)(?:$|\W)`
		if n := len(regexp.MustCompile(pattern).FindAllStringIndex(text, -1)); n > 0 {
			ret[a.Name()] = n
		}
	}
	return ret
}

func agentNames(list []*agents.Agent) []string {
	return lo.Map(list, func(a *agents.Agent, _ int) string { return a.Name() })
}
