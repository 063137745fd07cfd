package advisor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/careerchat/agents"
	"github.com/bububa/careerchat/components"
	"github.com/bububa/careerchat/components/provider"
	"github.com/bububa/careerchat/config"
	"github.com/bububa/careerchat/groupchat"
	"github.com/bububa/careerchat/schema"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Provider:     provider.Groq,
		APIKey:       "test",
		Model:        "test-model",
		MaxTokens:    512,
		MaxRounds:    12,
		DocumentRoot: t.TempDir(),
		AWSRegion:    "us-east-1",
	}
}

func TestDefaultRoles(t *testing.T) {
	roles := DefaultRoles()
	require.Len(t, roles.Roles, 5)
	assert.Len(t, roles.Of(ProxyKind), 1)
	assert.Len(t, roles.Of(CheckerKind), 1)
	names := make([]string, 0, 3)
	for _, r := range roles.Of(TaskKind) {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"cv_analyst", "skills_assessor", "course_advisor"}, names)
	assert.Contains(t, roles.Of(CheckerKind)[0].Instructions, "TERMINATE")
}

func TestParseRolesInvalid(t *testing.T) {
	_, err := ParseRoles([]byte("roles: ["))
	assert.ErrorContains(t, err, "decode roles")

	_, err = ParseRoles([]byte(`
roles:
  - {name: proxy, kind: proxy, description: p}
  - {name: worker, kind: task, description: w}
`))
	assert.ErrorIs(t, err, ErrInvalidRoles)

	_, err = ParseRoles([]byte(`
roles:
  - {name: proxy, kind: proxy, description: p}
  - {name: worker, kind: task, description: w}
  - {name: worker, kind: checker, description: c}
`))
	assert.ErrorIs(t, err, ErrInvalidRoles)

	_, err = ParseRoles([]byte(`
roles:
  - {name: proxy, kind: boss, description: p}
`))
	assert.ErrorIs(t, err, ErrInvalidRoles)

	_, err = ParseRoles([]byte(`
roles:
  - {name: proxy, kind: proxy, description: p, default_auto_reply: Reply TERMINATE when done}
  - {name: worker, kind: task, description: w}
  - {name: judge, kind: checker, description: c}
`))
	assert.ErrorIs(t, err, ErrInvalidRoles)
	assert.ErrorContains(t, err, "proxy")
}

func TestDefaultAutoRepliesKeepChatGoing(t *testing.T) {
	for _, role := range DefaultRoles().Roles {
		if role.Kind == CheckerKind {
			continue
		}
		msg := components.NewMessage(components.UserRole, schema.NewString(role.DefaultAutoReply))
		assert.False(t, groupchat.IsTermination(msg), role.Name)
	}
}

func TestLoadRolesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
roles:
  - {name: me, kind: proxy, description: the user}
  - {name: reviewer, kind: task, description: reviews, tools: [read_file]}
  - {name: judge, kind: checker, description: decides}
`), 0o600))
	roles, err := LoadRoles(path)
	require.NoError(t, err)
	assert.Len(t, roles.Roles, 3)

	_, err = LoadRoles(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read roles")
}

func TestNew(t *testing.T) {
	adv, err := New(testConfig(t), &provider.MockClient{ProviderName: provider.Groq}, nil)
	require.NoError(t, err)
	assert.Equal(t, "user_proxy", adv.Proxy().Name())
	assert.Equal(t, "resolution_checker", adv.Checker().Name())
	assert.Len(t, adv.Tasks(), 3)
	assert.Equal(t, []string{"user_proxy", "cv_analyst", "skills_assessor", "course_advisor", "resolution_checker"}, adv.GroupChat().AgentNames())
	assert.Equal(t, 12, adv.GroupChat().MaxRound())

	assert.False(t, adv.Proxy().UsesLLM())
	assert.True(t, adv.Proxy().CanExecute([]components.ToolCall{{Name: "read_file"}, {Name: "calculator"}}))
	defs := adv.Tasks()[1].ToolDefinitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "read_file", defs[0].Name)
	assert.Contains(t, adv.Tasks()[0].SystemPrompt(), "## Team")
	assert.Contains(t, adv.Tasks()[0].SystemPrompt(), "- course_advisor:")

	cohere, err := New(testConfig(t), &provider.MockClient{ProviderName: provider.Cohere}, nil)
	require.NoError(t, err)
	assert.Empty(t, cohere.Tasks()[0].ToolDefinitions())

	roles := DefaultRoles()
	roles.Roles[1].Tools = []string{"web_search"}
	_, err = New(testConfig(t), &provider.MockClient{}, nil, WithRoles(roles))
	assert.ErrorIs(t, err, ErrInvalidRoles)
}

func TestSelectSpeaker(t *testing.T) {
	adv, err := New(testConfig(t), &provider.MockClient{}, nil)
	require.NoError(t, err)
	gc := adv.GroupChat()
	analyst, checker := adv.Tasks()[0], adv.Checker()
	say := func(agent *agents.Agent, content string) *components.Message {
		return gc.Append(components.NewMessage(components.AssistantRole, schema.NewString(content)).SetName(agent.Name()))
	}
	ctx := context.Background()

	agent, method, err := adv.SelectSpeaker(ctx, nil, gc)
	require.NoError(t, err)
	assert.Nil(t, agent)
	assert.Equal(t, groupchat.Auto, method)

	say(adv.Proxy(), "Please analyse cv.txt")
	agent, method, err = adv.SelectSpeaker(ctx, adv.Proxy(), gc)
	require.NoError(t, err)
	assert.Nil(t, agent)
	assert.Equal(t, groupchat.Auto, method)

	gc.Append(components.NewMessage(components.AssistantRole, nil).SetName(analyst.Name()).SetToolCalls([]components.ToolCall{{ID: "1", Name: "read_file", Arguments: `{"path":"cv.txt"}`}}))
	agent, _, err = adv.SelectSpeaker(ctx, analyst, gc)
	require.NoError(t, err)
	assert.Same(t, adv.Proxy(), agent)

	gc.Append(components.NewMessage(components.ToolRole, nil).SetName(adv.Proxy().Name()).SetToolCallbacks([]components.ToolCallback{{ID: "1", Name: "read_file", Content: "cv"}}))
	agent, _, err = adv.SelectSpeaker(ctx, adv.Proxy(), gc)
	require.NoError(t, err)
	assert.Same(t, analyst, agent)

	say(analyst, "Summary")
	agent, _, err = adv.SelectSpeaker(ctx, analyst, gc)
	require.NoError(t, err)
	assert.Same(t, checker, agent)

	say(checker, "The course advisor still has to answer")
	agent, method, err = adv.SelectSpeaker(ctx, checker, gc)
	require.NoError(t, err)
	assert.Nil(t, agent)
	assert.Equal(t, groupchat.Auto, method)
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DocumentRoot, "cv.txt"), []byte("Jane Doe\nGo developer, 5 years"), 0o600))

	var (
		mtx     sync.Mutex
		viewers []string
	)
	clt := &provider.MockClient{
		ProviderName: provider.Groq,
		ChatFunc: func(_ context.Context, req *provider.Request) (*provider.Response, error) {
			mtx.Lock()
			viewers = append(viewers, req.Viewer)
			mtx.Unlock()
			resp := &provider.Response{LLM: components.LLMResponse{Usage: &components.LLMUsage{InputTokens: 100, OutputTokens: 10}}}
			last := req.Messages[len(req.Messages)-1]
			switch req.Viewer {
			case "speaker_selector":
				resp.Content = "cv_analyst"
			case "cv_analyst":
				if cbs := last.ToolCallbacks(); len(cbs) > 0 {
					resp.Content = "Summary: " + strings.ReplaceAll(cbs[0].Content, "\n", ", ")
				} else {
					resp.ToolCalls = []components.ToolCall{{ID: "call_cv", Name: "read_file", Arguments: `{"path":"cv.txt"}`}}
				}
			case "resolution_checker":
				resp.Content = "Resolved. TERMINATE"
			default:
				resp.Content = "unexpected"
			}
			return resp, nil
		},
	}
	var seen []string
	adv, err := New(cfg, clt, nil, WithMessageHook(func(agent *agents.Agent, _ *components.Message) {
		seen = append(seen, agent.Name())
	}))
	require.NoError(t, err)
	assert.NotContains(t, adv.Checker().SystemPrompt(), "## CV")

	ret, err := adv.Run(context.Background(), "cv.txt", "")
	require.NoError(t, err)
	assert.Equal(t, groupchat.StopTerminated, ret.StopReason)
	assert.Equal(t, 4, ret.Rounds)
	assert.Equal(t, []string{"user_proxy", "cv_analyst", "user_proxy", "cv_analyst", "resolution_checker"}, seen)
	assert.Equal(t, []string{"speaker_selector", "cv_analyst", "cv_analyst", "resolution_checker"}, viewers)
	assert.Contains(t, ret.Messages[0].StringifiedContent(), "My CV is at: cv.txt")
	cbs := ret.Messages[2].ToolCallbacks()
	require.Len(t, cbs, 1)
	assert.Equal(t, "call_cv", cbs[0].ID)
	assert.False(t, cbs[0].IsError)
	assert.Equal(t, "Summary: Jane Doe, Go developer, 5 years", ret.Messages[3].StringifiedContent())
	assert.Equal(t, int64(4), ret.LLMCalls)
	assert.Equal(t, int64(400), ret.Usage.InputTokens)

	p, err := adv.Checker().SystemPromptContextProvider(CVContextTitle)
	require.NoError(t, err)
	assert.Equal(t, "The CV under review is at: cv.txt", p.Info())
	assert.Contains(t, adv.Tasks()[0].SystemPrompt(), "## CV\nThe CV under review is at: cv.txt")
	_, err = adv.Proxy().SystemPromptContextProvider(CVContextTitle)
	assert.Error(t, err)
}

func TestRunContinuesAfterUnresolvedCheck(t *testing.T) {
	var (
		selections = []string{"cv_analyst", "user_proxy", "course_advisor"}
		checks     int
	)
	clt := &provider.MockClient{
		ProviderName: provider.Groq,
		ChatFunc: func(_ context.Context, req *provider.Request) (*provider.Response, error) {
			switch req.Viewer {
			case "speaker_selector":
				next := selections[0]
				selections = selections[1:]
				return &provider.Response{Content: next}, nil
			case "resolution_checker":
				checks++
				if checks == 1 {
					return &provider.Response{Content: "Not resolved yet, courses are missing."}, nil
				}
				return &provider.Response{Content: "Resolved. TERMINATE"}, nil
			}
			return &provider.Response{Content: req.Viewer + " answer"}, nil
		},
	}
	adv, err := New(testConfig(t), clt, nil)
	require.NoError(t, err)

	ret, err := adv.Run(context.Background(), "", "help")
	require.NoError(t, err)
	assert.Equal(t, groupchat.StopTerminated, ret.StopReason)
	assert.Equal(t, 5, ret.Rounds)
	names := make([]string, 0, len(ret.Messages))
	for _, msg := range ret.Messages {
		names = append(names, msg.Name())
	}
	assert.Equal(t, []string{"user_proxy", "cv_analyst", "resolution_checker", "user_proxy", "course_advisor", "resolution_checker"}, names)
	assert.Equal(t, "Please continue.", ret.Messages[3].StringifiedContent())
	assert.Empty(t, selections)
}

func TestRunUnknownTool(t *testing.T) {
	clt := &provider.MockClient{
		ProviderName: provider.Groq,
		ChatFunc: func(_ context.Context, req *provider.Request) (*provider.Response, error) {
			last := req.Messages[len(req.Messages)-1]
			switch req.Viewer {
			case "speaker_selector":
				return &provider.Response{Content: "cv_analyst"}, nil
			case "cv_analyst":
				if cbs := last.ToolCallbacks(); len(cbs) > 0 {
					return &provider.Response{Content: "Searching is unavailable: " + cbs[0].Content}, nil
				}
				return &provider.Response{ToolCalls: []components.ToolCall{{ID: "call_search", Name: "web_search", Arguments: `{}`}}}, nil
			}
			return &provider.Response{Content: "Resolved. TERMINATE"}, nil
		},
	}
	adv, err := New(testConfig(t), clt, nil)
	require.NoError(t, err)

	ret, err := adv.Run(context.Background(), "", "help")
	require.NoError(t, err)
	assert.Equal(t, groupchat.StopTerminated, ret.StopReason)
	assert.Equal(t, 4, ret.Rounds)
	require.Len(t, ret.Messages, 5)
	assert.Equal(t, "user_proxy", ret.Messages[2].Name())
	cbs := ret.Messages[2].ToolCallbacks()
	require.Len(t, cbs, 1)
	assert.Equal(t, "call_search", cbs[0].ID)
	assert.True(t, cbs[0].IsError)
	assert.Equal(t, "cv_analyst", ret.Messages[3].Name())
	assert.Contains(t, ret.Messages[3].StringifiedContent(), "web_search not found")
	assert.Equal(t, "resolution_checker", ret.Messages[4].Name())
}

func TestRunMissingCV(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxRounds = 3
	clt := &provider.MockClient{
		ChatFunc: func(_ context.Context, req *provider.Request) (*provider.Response, error) {
			if req.Viewer == "speaker_selector" {
				return &provider.Response{Content: "cv_analyst"}, nil
			}
			return &provider.Response{ToolCalls: []components.ToolCall{{ID: "c", Name: "read_file", Arguments: `{"path":"nope.pdf"}`}}}, nil
		},
	}
	adv, err := New(cfg, clt, nil)
	require.NoError(t, err)
	ret, err := adv.Run(context.Background(), "nope.pdf", "Check my CV")
	require.NoError(t, err)
	assert.Equal(t, groupchat.StopMaxRound, ret.StopReason)
	cbs := ret.Messages[2].ToolCallbacks()
	require.Len(t, cbs, 1)
	assert.True(t, cbs[0].IsError)
	assert.Contains(t, cbs[0].Content, "no such file")
}

func TestRequest(t *testing.T) {
	assert.Equal(t, DefaultRequest, Request("", ""))
	assert.Equal(t, "Help\nMy CV is at: s3://bucket/cv.pdf", Request("s3://bucket/cv.pdf", "Help"))
}

func TestCourseSearchTool(t *testing.T) {
	adv, err := New(testConfig(t), &provider.MockClient{}, nil)
	require.NoError(t, err)
	advisorDefs := adv.Tasks()[2].ToolDefinitions()
	require.Len(t, advisorDefs, 1)
	assert.Equal(t, "calculator", advisorDefs[0].Name)

	cfg := testConfig(t)
	cfg.SearxngURL = "http://localhost:8888"
	adv, err = New(cfg, &provider.MockClient{}, nil)
	require.NoError(t, err)
	advisorDefs = adv.Tasks()[2].ToolDefinitions()
	require.Len(t, advisorDefs, 2)
	assert.Equal(t, "search_courses", advisorDefs[1].Name)
	assert.True(t, adv.Proxy().CanExecute([]components.ToolCall{{Name: "search_courses"}}))
}
