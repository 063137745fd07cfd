package calculator

import (
	"errors"
	"math"

	"github.com/Knetic/govaluate"
)

var errArgs = errors.New("invalid function arguments")

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, errArgs
		}
		v, ok := args[0].(float64)
		if !ok {
			return nil, errArgs
		}
		return fn(v), nil
	}
}

func reduce(init float64, fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) == 0 {
			return nil, errArgs
		}
		ret := init
		for idx, arg := range args {
			v, ok := arg.(float64)
			if !ok {
				return nil, errArgs
			}
			if idx == 0 && math.IsNaN(init) {
				ret = v
				continue
			}
			ret = fn(ret, v)
		}
		return ret, nil
	}
}

// functions available in expressions
var functions = map[string]govaluate.ExpressionFunction{
	"sqrt":  unary(math.Sqrt),
	"abs":   unary(math.Abs),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"round": unary(math.Round),
	"log":   unary(math.Log),
	"log10": unary(math.Log10),
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, errArgs
		}
		x, ok1 := args[0].(float64)
		y, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, errArgs
		}
		return math.Pow(x, y), nil
	},
	"sum": reduce(0, func(a, b float64) float64 { return a + b }),
	"max": reduce(math.NaN(), math.Max),
	"min": reduce(math.NaN(), math.Min),
	"avg": func(args ...interface{}) (interface{}, error) {
		total, err := reduce(0, func(a, b float64) float64 { return a + b })(args...)
		if err != nil {
			return nil, err
		}
		return total.(float64) / float64(len(args)), nil
	},
}
