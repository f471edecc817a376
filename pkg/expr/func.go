package expr

// Func describes one callable function: its arity bounds, the required kind
// of each argument position, and the body. Bodies run only after every check
// in [Table.Call] has passed, so they can assume well-typed input.
type Func struct {
	Fn      func(args []Value) (Value, error)
	Name    string
	Params  []Kind
	MinArgs int
	MaxArgs int
}

// Table is a closed dispatch table of functions. Visibility is membership:
// a function absent from the table does not exist, whatever scope it might
// belong to elsewhere.
type Table struct {
	funcs map[string]Func
}

// NewEmptyTable creates a table with no functions registered.
func NewEmptyTable() *Table {
	return &Table{funcs: map[string]Func{}}
}

// Register adds or replaces a function by name.
func (t *Table) Register(f Func) {
	t.funcs[f.Name] = f
}

// Lookup returns the function registered under name.
func (t *Table) Lookup(name string) (Func, bool) {
	f, ok := t.funcs[name]

	return f, ok
}

// Names returns the registered function names, unordered.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		names = append(names, name)
	}

	return names
}

// Call invokes name with args. It validates, in order, that the function
// exists, that the argument count is within bounds, and that every argument
// has the declared kind for its position. The body never runs on a failed
// check.
func (t *Table) Call(name string, args []Value) (Value, error) {
	f, ok := t.funcs[name]
	if !ok {
		return Value{}, &FunctionNotDefinedError{Name: name}
	}

	if len(args) < f.MinArgs || len(args) > f.MaxArgs {
		return Value{}, &ArgumentCountError{
			Func: name,
			Min:  f.MinArgs,
			Max:  f.MaxArgs,
			Got:  len(args),
		}
	}

	for i, arg := range args {
		if arg.Kind() != f.Params[i] {
			return Value{}, &ArgumentTypeError{
				Func:     name,
				Want:     f.Params[i],
				Got:      arg.Kind(),
				Position: i + 1,
			}
		}
	}

	return f.Fn(args)
}
