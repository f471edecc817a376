package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/grove/pkg/expr"
)

func TestTableLookupAndNames(t *testing.T) {
	t.Parallel()

	table := expr.NewEmptyTable()
	table.Register(expr.Func{
		Name:    "greet",
		MinArgs: 1,
		MaxArgs: 1,
		Params:  []expr.Kind{expr.KindString},
		Fn: func(args []expr.Value) (expr.Value, error) {
			return expr.String("hello " + args[0].Str()), nil
		},
	})

	f, ok := table.Lookup("greet")
	require.True(t, ok)
	assert.Equal(t, "greet", f.Name)

	_, ok = table.Lookup("missing")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"greet"}, table.Names())

	// Register replaces an existing entry rather than duplicating it.
	table.Register(expr.Func{
		Name: "greet",
		Fn: func(_ []expr.Value) (expr.Value, error) {
			return expr.String("hi"), nil
		},
	})
	assert.Len(t, table.Names(), 1)
}

func TestTableCallChecksBeforeBody(t *testing.T) {
	t.Parallel()

	ran := false
	table := expr.NewEmptyTable()
	table.Register(expr.Func{
		Name:    "touch",
		MinArgs: 1,
		MaxArgs: 2,
		Params:  []expr.Kind{expr.KindString, expr.KindInt},
		Fn: func(_ []expr.Value) (expr.Value, error) {
			ran = true

			return expr.Bool(true), nil
		},
	})

	_, err := table.Call("absent", nil)
	notDefined := &expr.FunctionNotDefinedError{}
	require.ErrorAs(t, err, &notDefined)
	assert.Equal(t, "absent", notDefined.Name)

	_, err = table.Call("touch", nil)
	countErr := &expr.ArgumentCountError{}
	require.ErrorAs(t, err, &countErr)
	assert.Equal(t, 0, countErr.Got)

	_, err = table.Call("touch", []expr.Value{expr.Int(7)})
	typeErr := &expr.ArgumentTypeError{}
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, 1, typeErr.Position)
	assert.Equal(t, expr.KindString, typeErr.Want)

	assert.False(t, ran)

	v, err := table.Call("touch", []expr.Value{expr.String("x")})
	require.NoError(t, err)
	assert.True(t, v.Bool())
	assert.True(t, ran)
}
