package advisor

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/atomic"

	"github.com/bububa/careerchat/agents"
	"github.com/bububa/careerchat/components"
	"github.com/bububa/careerchat/components/provider"
	"github.com/bububa/careerchat/components/systemprompt"
	"github.com/bububa/careerchat/config"
	"github.com/bububa/careerchat/groupchat"
	"github.com/bububa/careerchat/logging"
	"github.com/bububa/careerchat/tools"
	"github.com/bububa/careerchat/tools/calculator"
	"github.com/bububa/careerchat/tools/filereader"
	"github.com/bububa/careerchat/tools/searxng"
)

// optionalTools may be listed by roles without being configured
var optionalTools = map[string]bool{
	searxng.ToolName: true,
}

// DefaultRequest is sent when the user gives no message
const DefaultRequest = "Please analyse my CV and recommend courses that close the gaps for my next role."

// CVContextTitle is the system prompt section telling llm agents where the CV of the running chat is
const CVContextTitle = "CV"

// Advisor is the CV analysis and course recommendation team
type Advisor struct {
	proxy     *agents.Agent
	tasks     []*agents.Agent
	checker   *agents.Agent
	groupChat *groupchat.GroupChat
	manager   *groupchat.Manager
	logger    *logging.Logger
	cv        *atomic.String
}

type options struct {
	roles      *Roles
	humanInput agents.HumanInputFunc
	registry   *tools.Registry
	onMessage  func(*agents.Agent, *components.Message)
}

type Option func(*options)

// WithRoles set team roles, the embedded roles are used by default
func WithRoles(roles *Roles) Option {
	return func(o *options) {
		o.roles = roles
	}
}

// WithHumanInput lets a human reply as the proxy
func WithHumanInput(fn agents.HumanInputFunc) Option {
	return func(o *options) {
		o.humanInput = fn
	}
}

// WithToolRegistry replaces the tools executed by the proxy
func WithToolRegistry(registry *tools.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithMessageHook set a function called with every transcript message
func WithMessageHook(fn func(*agents.Agent, *components.Message)) Option {
	return func(o *options) {
		o.onMessage = fn
	}
}

// New builds the team, its group chat and manager
func New(cfg *config.Config, clt provider.Client, logger *logging.Logger, opts ...Option) (*Advisor, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if o.roles == nil {
		roles, err := LoadRoles(cfg.RolesFile)
		if err != nil {
			return nil, err
		}
		o.roles = roles
	} else if err := o.roles.Validate(); err != nil {
		return nil, err
	}
	if o.registry == nil {
		o.registry = NewToolRegistry(cfg, logger.Sub("tools"))
	}
	ret := &Advisor{logger: logger, cv: atomic.NewString("")}
	offerTools := clt.Name() != provider.Cohere
	if !offerTools {
		logger.Warn().Str("provider", clt.Name()).Msg("provider has no tool calling, agents will not read files")
	}
	for _, role := range o.roles.Roles {
		agentOpts := []agents.Option{
			agents.WithName(role.Name),
			agents.WithDescription(role.Description),
			agents.WithDefaultAutoReply(role.DefaultAutoReply),
			agents.WithSystemPromptGenerator(o.roles.PromptGenerator(role)),
		}
		if role.Kind == ProxyKind {
			agentOpts = append(agentOpts, agents.WithToolExecutor(o.registry))
			if o.humanInput != nil {
				agentOpts = append(agentOpts, agents.WithHumanInput(o.humanInput))
			}
		} else {
			agentOpts = append(agentOpts,
				agents.WithClient(clt),
				agents.WithModel(cfg.Model),
				agents.WithTemperature(cfg.Temperature),
				agents.WithMaxTokens(cfg.MaxTokens),
			)
		}
		if offerTools && len(role.Tools) > 0 {
			list := make([]tools.Tool, 0, len(role.Tools))
			for _, name := range role.Tools {
				t, ok := o.registry.Get(name)
				if !ok && optionalTools[name] {
					logger.Debug().Str("agent", role.Name).Str("tool", name).Msg("optional tool not configured")
					continue
				}
				if !ok {
					return nil, fmt.Errorf("%w: %s uses unknown tool %s", ErrInvalidRoles, role.Name, name)
				}
				list = append(list, t)
			}
			agentOpts = append(agentOpts, agents.WithTools(list...))
		}
		agent := agents.NewAgent(agentOpts...)
		if role.Kind != ProxyKind {
			agent.RegisterSystemPromptContextProvider(systemprompt.NewFuncProvider(CVContextTitle, ret.cvInfo))
		}
		switch role.Kind {
		case ProxyKind:
			ret.proxy = agent
		case CheckerKind:
			ret.checker = agent
		default:
			ret.tasks = append(ret.tasks, agent)
		}
	}
	participants := append(append([]*agents.Agent{ret.proxy}, ret.tasks...), ret.checker)
	gc, err := groupchat.New(participants,
		groupchat.WithMaxRound(cfg.MaxRounds),
		groupchat.WithSpeakerSelector(ret.SelectSpeaker),
		groupchat.WithSelectorClient(clt, cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	ret.groupChat = gc
	managerOpts := []groupchat.ManagerOption{groupchat.WithLogger(logger.Sub("groupchat"))}
	if o.onMessage != nil {
		managerOpts = append(managerOpts, groupchat.WithMessageHook(o.onMessage))
	}
	ret.manager = groupchat.NewManager(gc, managerOpts...)
	return ret, nil
}

// NewToolRegistry returns the read_file, calculator and, when a SearxNG url is configured,
// search_courses tools. Calls are logged at debug level.
func NewToolRegistry(cfg *config.Config, logger *logging.Logger) *tools.Registry {
	hooks := []tools.Option{
		tools.WithStartHook(func(_ context.Context, t tools.Tool, args string) {
			logger.Debug().Str("tool", t.Title()).Str("args", args).Msg("tool call")
		}),
		tools.WithErrorHook(func(_ context.Context, t tools.Tool, args string, err error) {
			logger.Debug().Str("tool", t.Title()).Str("args", args).Err(err).Msg("tool failed")
		}),
	}
	reader := filereader.NewReader(filereader.WithLoader(cfg.NewLoader()), filereader.WithMaxWords(cfg.DocumentMaxWords))
	registry := tools.NewRegistry(filereader.New(reader, hooks...), calculator.New(hooks...))
	if cfg.SearxngURL != "" {
		search := searxng.NewSearch(searxng.WithBaseURL(cfg.SearxngURL), searxng.WithQuerySuffix("online course"), searxng.WithLanguage("en"))
		registry.Register(searxng.New(search, hooks...))
	}
	return registry
}

// Proxy returns the initiator and tool executor
func (a *Advisor) Proxy() *agents.Agent {
	return a.proxy
}

// Tasks returns the task agents
func (a *Advisor) Tasks() []*agents.Agent {
	return a.tasks
}

// Checker returns the resolution checker
func (a *Advisor) Checker() *agents.Agent {
	return a.checker
}

func (a *Advisor) GroupChat() *groupchat.GroupChat {
	return a.groupChat
}

// IsTask reports whether agent is a task agent
func (a *Advisor) IsTask(agent *agents.Agent) bool {
	return agent != nil && lo.Contains(a.tasks, agent)
}

// SelectSpeaker routes tool calls to the proxy, tool results back to the task agent which asked,
// task agent replies to the checker and leaves the rest to auto selection.
func (a *Advisor) SelectSpeaker(_ context.Context, last *agents.Agent, gc *groupchat.GroupChat) (*agents.Agent, groupchat.SelectionMethod, error) {
	messages := gc.Messages()
	l := len(messages)
	if l == 0 {
		return nil, groupchat.Auto, nil
	}
	if messages[l-1].HasToolCalls() {
		return a.proxy, "", nil
	}
	if last == a.proxy && l > 1 {
		if prev, ok := gc.Agent(messages[l-2].Name()); ok && a.IsTask(prev) {
			return prev, "", nil
		}
	}
	if a.IsTask(last) {
		return a.checker, "", nil
	}
	return nil, groupchat.Auto, nil
}

// Request composes the opening message for a cv
func Request(cv string, message string) string {
	if message == "" {
		message = DefaultRequest
	}
	if cv == "" {
		return message
	}
	return fmt.Sprintf("%s\nMy CV is at: %s", message, cv)
}

func (a *Advisor) cvInfo() string {
	if cv := a.cv.Load(); cv != "" {
		return fmt.Sprintf("The CV under review is at: %s", cv)
	}
	return ""
}

// Run starts a chat about the cv
func (a *Advisor) Run(ctx context.Context, cv string, message string) (*groupchat.Result, error) {
	a.logger.Info().Str("cv", cv).Msg("starting career chat")
	a.cv.Store(cv)
	return a.manager.Run(ctx, a.proxy, Request(cv, message))
}
