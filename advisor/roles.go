package advisor

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/bububa/careerchat/components/systemprompt"
	"github.com/bububa/careerchat/components/systemprompt/simple"
	"github.com/bububa/careerchat/groupchat"
)

//go:embed roles.yaml
var defaultRoles []byte

// Kind of a participant
type Kind string

const (
	// ProxyKind starts the chat on behalf of the user and executes tools
	ProxyKind Kind = "proxy"
	// TaskKind works on part of the request
	TaskKind Kind = "task"
	// CheckerKind decides whether the request is resolved
	CheckerKind Kind = "checker"
)

// ErrInvalidRoles is returned for a roles file which does not describe a complete team
var ErrInvalidRoles = errors.New("invalid roles")

// Role describes one participant
type Role struct {
	Name             string   `yaml:"name" validate:"required"`
	Kind             Kind     `yaml:"kind" validate:"oneof=proxy task checker"`
	Description      string   `yaml:"description" validate:"required"`
	Instructions     string   `yaml:"instructions"`
	Tools            []string `yaml:"tools,omitempty"`
	DefaultAutoReply string   `yaml:"default_auto_reply,omitempty"`
}

// Roles of the team
type Roles struct {
	Roles []Role `yaml:"roles" validate:"required,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultRoles returns the embedded team roles
func DefaultRoles() *Roles {
	ret, err := ParseRoles(defaultRoles)
	if err != nil {
		panic(err)
	}
	return ret
}

// LoadRoles reads roles from a yaml file, the embedded roles are returned when path is empty
func LoadRoles(path string) (*Roles, error) {
	if path == "" {
		return DefaultRoles(), nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles: %w", err)
	}
	return ParseRoles(bs)
}

// ParseRoles decodes and validates yaml roles
func ParseRoles(bs []byte) (*Roles, error) {
	var ret Roles
	if err := yaml.Unmarshal(bs, &ret); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Validate checks the team has one proxy, one checker, at least one task agent and unique names.
// Only the checker may end the chat, so other default auto replies must not carry the terminate keyword.
func (r *Roles) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRoles, err)
	}
	if dup := lo.FindDuplicates(lo.Map(r.Roles, func(v Role, _ int) string { return v.Name })); len(dup) > 0 {
		return fmt.Errorf("%w: duplicated names %v", ErrInvalidRoles, dup)
	}
	counts := lo.CountValuesBy(r.Roles, func(v Role) Kind { return v.Kind })
	if counts[ProxyKind] != 1 || counts[CheckerKind] != 1 || counts[TaskKind] == 0 {
		return fmt.Errorf("%w: need one proxy, one checker and at least one task role", ErrInvalidRoles)
	}
	for _, v := range r.Roles {
		if v.Kind != CheckerKind && strings.Contains(strings.ToLower(v.DefaultAutoReply), groupchat.TerminateKeyword) {
			return fmt.Errorf("%w: default auto reply of %s would end the chat", ErrInvalidRoles, v.Name)
		}
	}
	return nil
}

// Of returns roles of kind
func (r *Roles) Of(kind Kind) []Role {
	return lo.Filter(r.Roles, func(v Role, _ int) bool { return v.Kind == kind })
}

// PromptGenerator returns the system prompt generator of role, the team is listed as extra context
func (r *Roles) PromptGenerator(role Role) systemprompt.Generator {
	return simple.New(strings.TrimSpace(role.Instructions), simple.WithContextProviders(r.teamContext()))
}

func (r *Roles) teamContext() systemprompt.ContextProvider {
	return systemprompt.NewFuncProvider("Team", func() string {
		lines := lo.Map(r.Roles, func(v Role, _ int) string {
			return fmt.Sprintf("- %s: %s", v.Name, v.Description)
		})
		return strings.Join(lines, "\n")
	})
}
