package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"

	"github.com/bububa/careerchat/components"
	"github.com/bububa/careerchat/schema"
)

// ErrInvalidArguments is returned when llm provided arguments could not be decoded or validated
var ErrInvalidArguments = errors.New("invalid tool arguments")

var validate = validator.New()

// Tool is a function which could be called by llm
type Tool interface {
	Title() string
	Description() string
	// Parameters returns json schema of the tool arguments
	Parameters() json.RawMessage
	// Call runs the tool with json encoded arguments
	Call(ctx context.Context, arguments string) (string, error)
}

// Runner is a typed tool implementation
type Runner[I any, O schema.Schema] interface {
	Run(context.Context, *I) (*O, error)
}

// Typed adapts a typed Runner into a Tool, arguments are decoded into I and validated by
// `validate` struct tags, parameters schema is reflected from I `jsonschema` tags
type Typed[I any, O schema.Schema] struct {
	Config
	runner     Runner[I, O]
	parameters json.RawMessage
}

var _ Tool = (*Typed[struct{}, schema.String])(nil)

// NewTyped returns a new Typed tool
func NewTyped[I any, O schema.Schema](runner Runner[I, O], opts ...Option) *Typed[I, O] {
	ret := &Typed[I, O]{
		runner:     runner,
		parameters: ReflectParameters(new(I)),
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	return ret
}

func (t *Typed[I, O]) Parameters() json.RawMessage {
	return t.parameters
}

func (t *Typed[I, O]) Call(ctx context.Context, arguments string) (string, error) {
	t.onStart(ctx, t, arguments)
	result, err := t.call(ctx, arguments)
	if err != nil {
		t.onError(ctx, t, arguments, err)
		return "", err
	}
	t.onEnd(ctx, t, arguments, result)
	return result, nil
}

func (t *Typed[I, O]) call(ctx context.Context, arguments string) (string, error) {
	in := new(I)
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), in); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidArguments, err)
		}
	}
	if err := validate.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	out, err := t.runner.Run(ctx, in)
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	return schema.Stringify(*out), nil
}

// ReflectParameters returns the json schema of v as tool parameters
func ReflectParameters(v any) json.RawMessage {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Anonymous:      true,
	}
	s := r.Reflect(v)
	s.Version = ""
	bs, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return bs
}

// Definition returns the llm definition of a tool
func Definition(t Tool) components.ToolDefinition {
	return components.ToolDefinition{
		Name:        t.Title(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}
