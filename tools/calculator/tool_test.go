package calculator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test(t *testing.T) {
	ctx := context.Background()
	calc := new(Calculator)
	ret, err := calc.Run(ctx, NewInput("2+2", nil))
	if err != nil {
		t.Fatal(err)
	}
	switch value := ret.Result.(type) {
	case float64:
		if int(value) != 4 {
			t.Errorf("expecting 4, but got %.2f", value)
		}
	default:
		t.Errorf("expecting float64, but got %T", value)
	}
}

func TestFunctions(t *testing.T) {
	ctx := context.Background()
	calc := new(Calculator)
	tests := []struct {
		exp    string
		params map[string]interface{}
		want   float64
	}{
		{exp: "sum(2, 3.5, 1)", want: 6.5},
		{exp: "avg(2, 4)", want: 3},
		{exp: "max(1, 7, 3)", want: 7},
		{exp: "min(4, 2, 9)", want: 2},
		{exp: "pow(2, 10)", want: 1024},
		{exp: "round(pi * 100)", want: 314},
		{exp: "years * 12", params: map[string]interface{}{"years": 2.5}, want: 30},
	}
	for _, tt := range tests {
		ret, err := calc.Run(ctx, NewInput(tt.exp, tt.params))
		require.NoError(t, err, tt.exp)
		assert.InDelta(t, tt.want, ret.Result, 1e-9, tt.exp)
	}
}

func TestToolCall(t *testing.T) {
	tool := New()
	assert.Equal(t, "calculator", tool.Title())
	out, err := tool.Call(context.Background(), `{"expression":"3 + 4.5"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":7.5}`, out)

	_, err = tool.Call(context.Background(), `{"expression":"3 +"}`)
	assert.Error(t, err)
}

func ExampleCalculator() {
	ctx := context.Background()
	out, _ := New().Call(ctx, `{"expression":"2+2"}`)
	fmt.Println(out)
	// Output:
	// {"result":4}
}
