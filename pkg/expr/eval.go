package expr

import "strings"

// Evaluate parses and evaluates input against the function table, returning
// the resulting value.
func Evaluate(input string, t *Table) (Value, error) {
	n, err := parse(input)
	if err != nil {
		return Value{}, err
	}

	return evalNode(n, t)
}

// EvaluatePredicate evaluates input and requires a boolean result. A
// non-boolean result is a [PredicateTypeError].
func EvaluatePredicate(input string, t *Table) (bool, error) {
	v, err := Evaluate(input, t)
	if err != nil {
		return false, err
	}

	if v.Kind() != KindBool {
		return false, &PredicateTypeError{Expr: input, Got: v.Kind()}
	}

	return v.Bool(), nil
}

func evalNode(n node, t *Table) (Value, error) {
	switch n := n.(type) {
	case *literalNode:
		return n.val, nil

	case *callNode:
		args := make([]Value, len(n.args))
		for i, argNode := range n.args {
			v, err := evalNode(argNode, t)
			if err != nil {
				return Value{}, err
			}

			args[i] = v
		}

		return t.Call(n.name, args)

	case *notNode:
		v, err := evalNode(n.operand, t)
		if err != nil {
			return Value{}, err
		}

		if v.Kind() != KindBool {
			return Value{}, &ArgumentTypeError{Func: "not", Want: KindBool, Got: v.Kind(), Position: 1}
		}

		return Bool(!v.Bool()), nil

	case *binaryNode:
		return evalBinary(n, t)
	}

	return Value{}, &SyntaxError{Msg: "unknown expression node"}
}

// evalBinary evaluates both operands before combining them. The language has
// no side effects, so skipping short-circuiting costs nothing and keeps
// operand type errors from being masked by the other side's value.
func evalBinary(n *binaryNode, t *Table) (Value, error) {
	lhs, err := evalNode(n.lhs, t)
	if err != nil {
		return Value{}, err
	}

	rhs, err := evalNode(n.rhs, t)
	if err != nil {
		return Value{}, err
	}

	switch n.op {
	case opAnd, opOr:
		if lhs.Kind() != KindBool {
			return Value{}, &ArgumentTypeError{Func: n.op.String(), Want: KindBool, Got: lhs.Kind(), Position: 1}
		}

		if rhs.Kind() != KindBool {
			return Value{}, &ArgumentTypeError{Func: n.op.String(), Want: KindBool, Got: rhs.Kind(), Position: 2}
		}

		if n.op == opAnd {
			return Bool(lhs.Bool() && rhs.Bool()), nil
		}

		return Bool(lhs.Bool() || rhs.Bool()), nil

	case opEq:
		return Bool(lhs.Equal(rhs)), nil

	case opNe:
		return Bool(!lhs.Equal(rhs)), nil

	case opIn, opNotIn:
		contained, err := evalIn(n.op, lhs, rhs)
		if err != nil {
			return Value{}, err
		}

		if n.op == opNotIn {
			contained = !contained
		}

		return Bool(contained), nil
	}

	return Value{}, &SyntaxError{Msg: "unknown operator"}
}

// evalIn implements membership: substring containment when the right side is
// a string, element membership when it is a list. The left side must be a
// string either way.
func evalIn(op binaryOp, lhs, rhs Value) (bool, error) {
	if lhs.Kind() != KindString {
		return false, &ArgumentTypeError{Func: op.String(), Want: KindString, Got: lhs.Kind(), Position: 1}
	}

	switch rhs.Kind() {
	case KindString:
		return strings.Contains(rhs.Str(), lhs.Str()), nil
	case KindList:
		for _, item := range rhs.List() {
			if item == lhs.Str() {
				return true, nil
			}
		}

		return false, nil
	}

	return false, &ArgumentTypeError{Func: op.String(), Want: KindList, Got: rhs.Kind(), Position: 2}
}
