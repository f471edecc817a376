package expr

import "fmt"

// SyntaxError reports malformed expression syntax, including the failing
// input and the byte offset where parsing stopped.
type SyntaxError struct {
	Input string
	Msg   string
	Pos   int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d in %q: %s", e.Pos, e.Input, e.Msg)
}

// FunctionNotDefinedError reports a call to a function that does not exist
// in the active scope table. Calling a real function from the wrong scope
// produces this same error; visibility is table membership.
type FunctionNotDefinedError struct {
	Name string
}

func (e *FunctionNotDefinedError) Error() string {
	return fmt.Sprintf("function %q is not defined", e.Name)
}

// ArgumentCountError reports a call with the wrong number of arguments.
type ArgumentCountError struct {
	Func string
	Min  int
	Max  int
	Got  int
}

func (e *ArgumentCountError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("%s: expected %d argument(s), got %d", e.Func, e.Min, e.Got)
	}

	return fmt.Sprintf("%s: expected between %d and %d arguments, got %d", e.Func, e.Min, e.Max, e.Got)
}

// ArgumentTypeError reports an argument of the wrong kind. Position is
// 1-based. Operator misuse (e.g. a non-boolean operand to `and`) is reported
// with the operator as the function name.
type ArgumentTypeError struct {
	Func     string
	Want     Kind
	Got      Kind
	Position int
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("%s: argument %d must be %s, got %s", e.Func, e.Position, e.Want, e.Got)
}

// PredicateTypeError reports a predicate expression that evaluated to a
// non-boolean value.
type PredicateTypeError struct {
	Expr string
	Got  Kind
}

func (e *PredicateTypeError) Error() string {
	return fmt.Sprintf("predicate %q must evaluate to bool, got %s", e.Expr, e.Got)
}
