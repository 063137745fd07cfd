package calculator

import (
	"context"

	"github.com/Knetic/govaluate"

	"github.com/bububa/careerchat/schema"
	"github.com/bububa/careerchat/tools"
)

// Input Tool for performing calculations. Supports basic arithmetic operations
// like addition, subtraction, multiplication, and division, as well as more
// complex operations like exponentiation and trigonometric functions.
// Use this tool to evaluate mathematical expressions, e.g. summing years of experience.
type Input struct {
	// Expression Mathematical expression to evaluate. For example, '2 + 2'.
	Expression string `json:"expression" jsonschema:"title=expression,description=Mathematical expression to evaluate. For example '2 + 2' or 'sum(3, 2.5, 4)'." validate:"required"`
	// Params represents expressions's parameters
	Params map[string]interface{} `json:"params,omitempty" jsonschema:"title=params,description=Parameters for the expression."`
}

func NewInput(exp string, params map[string]interface{}) *Input {
	return &Input{
		Expression: exp,
		Params:     params,
	}
}

// Output Schema for the output of the CalculatorTool
type Output struct {
	// Result Result of the calculation
	Result interface{} `json:"result,omitempty" jsonschema:"title=result,description=Result of the calculation."`
}

func NewOutput(result interface{}) *Output {
	return &Output{
		Result: result,
	}
}

func (o Output) String() string {
	return schema.Marshal(o)
}

type Calculator struct{}

// New returns the calculator as a llm callable tool
func New(opts ...tools.Option) *tools.Typed[Input, Output] {
	opts = append([]tools.Option{
		tools.WithTitle("calculator"),
		tools.WithDescription("Evaluate a mathematical expression. Supports + - * / ** %, parentheses, constants like pi and functions sqrt, pow, sum, avg, min, max, round."),
	}, opts...)
	return tools.NewTyped[Input, Output](new(Calculator), opts...)
}

// Run executes the calculation with the given parameters.
func (c *Calculator) Run(ctx context.Context, input *Input) (*Output, error) {
	exp, err := govaluate.NewEvaluableExpressionWithFunctions(input.Expression, functions)
	if err != nil {
		return nil, err
	}
	params := make(map[string]interface{}, len(input.Params)+len(constParams))
	for k, v := range input.Params {
		params[k] = v
	}
	for k, v := range constParams {
		if _, ok := params[k]; ok {
			continue
		}
		params[k] = v
	}
	result, err := exp.Evaluate(params)
	if err != nil {
		return nil, err
	}
	return NewOutput(result), nil
}
