package expr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/macropower/grove/pkg/uri"
)

// Scope selects which function table [NewTable] builds.
type Scope int

const (
	// ScopePath exposes URI, branch, tag and timestamp accessors. Used by
	// source-routing predicates and path templates.
	ScopePath Scope = iota

	// ScopeProject exposes everything in [ScopePath] plus filesystem
	// accessors resolved against the repository root. Used by project
	// action predicates and action command templates.
	ScopeProject
)

// Context carries the inputs a function table closes over. It is treated as
// immutable after construction; evaluation never mutates it.
type Context struct {
	// URI is the parsed repository URI. May be nil when no repository is in
	// scope, in which case the URI accessors return empty strings.
	URI *uri.URI

	// Tags are user-supplied key/value annotations from --tag flags.
	Tags map[string]string

	// Branch is the branch being cloned or added, "" when unknown.
	Branch string

	// Worktree is the worktree name, "" outside worktree operations.
	Worktree string

	// FilesystemRoot is the repository root that file_exists and friends
	// resolve relative paths against.
	FilesystemRoot string

	// DestinationRoot is the resolved destination path for the current
	// operation.
	DestinationRoot string
}

type tableConfig struct {
	clock func() time.Time
}

// TableOption customizes table construction.
type TableOption func(*tableConfig)

// WithClock overrides the time source used by timestamp(). Tests use this to
// pin the instant.
func WithClock(clock func() time.Time) TableOption {
	return func(tc *tableConfig) {
		tc.clock = clock
	}
}

// NewTable builds the function table for scope, closed over ctx. The
// timestamp cache is per-table: every timestamp() call through one table
// observes the same instant, so a single template expansion is internally
// consistent.
func NewTable(scope Scope, ctx Context, opts ...TableOption) *Table {
	tc := &tableConfig{clock: time.Now}
	for _, opt := range opts {
		opt(tc)
	}

	t := NewEmptyTable()

	registerPathFuncs(t, ctx, tc.clock)

	if scope == ScopeProject {
		registerProjectFuncs(t, ctx)
	}

	return t
}

func registerPathFuncs(t *Table, ctx Context, clock func() time.Time) {
	nullary := func(name string, fn func() Value) {
		t.Register(Func{
			Name: name,
			Fn: func(_ []Value) (Value, error) {
				return fn(), nil
			},
		})
	}

	nullary("host", func() Value { return String(uriHost(ctx)) })
	nullary("port", func() Value { return String(uriPort(ctx)) })
	nullary("protocol", func() Value { return String(uriProtocol(ctx)) })
	nullary("uri", func() Value { return String(uriRaw(ctx)) })
	nullary("branch", func() Value { return String(ctx.Branch) })
	nullary("worktree", func() Value { return String(ctx.Worktree) })

	t.Register(Func{
		Name:    "path",
		MaxArgs: 1,
		Params:  []Kind{KindInt},
		Fn: func(args []Value) (Value, error) {
			if ctx.URI == nil {
				if len(args) == 0 {
					return List(), nil
				}

				return String(""), nil
			}

			if len(args) == 0 {
				return List(ctx.URI.Segments()...), nil
			}

			return String(ctx.URI.Segment(args[0].Int())), nil
		},
	})

	t.Register(Func{
		Name:    "norm_branch",
		MaxArgs: 1,
		Params:  []Kind{KindString},
		Fn: func(args []Value) (Value, error) {
			sep := "-"
			if len(args) == 1 {
				sep = args[0].Str()
			}

			return String(normalizeBranch(ctx.Branch, sep)), nil
		},
	})

	t.Register(Func{
		Name:    "prefix_worktree",
		MinArgs: 1,
		MaxArgs: 1,
		Params:  []Kind{KindString},
		Fn: func(args []Value) (Value, error) {
			if ctx.Worktree == "" {
				return String(""), nil
			}

			return String(args[0].Str() + ctx.Worktree), nil
		},
	})

	t.Register(Func{
		Name:    "norm_prefix_branch",
		MinArgs: 1,
		MaxArgs: 2,
		Params:  []Kind{KindString, KindString},
		Fn: func(args []Value) (Value, error) {
			if ctx.Branch == "" {
				return String(""), nil
			}

			sep := "-"
			if len(args) == 2 {
				sep = args[1].Str()
			}

			return String(args[0].Str() + normalizeBranch(ctx.Branch, sep)), nil
		},
	})

	t.Register(Func{
		Name:    "tag",
		MinArgs: 1,
		MaxArgs: 1,
		Params:  []Kind{KindString},
		Fn: func(args []Value) (Value, error) {
			return String(ctx.Tags[args[0].Str()]), nil
		},
	})

	t.Register(Func{
		Name:    "tag_exist",
		MinArgs: 1,
		MaxArgs: 1,
		Params:  []Kind{KindString},
		Fn: func(args []Value) (Value, error) {
			_, ok := ctx.Tags[args[0].Str()]

			return Bool(ok), nil
		},
	})

	// The instant is captured on first use and the formatted strings are
	// cached per format string, both per table.
	var now *time.Time

	tsCache := map[string]string{}

	t.Register(Func{
		Name:    "timestamp",
		MinArgs: 1,
		MaxArgs: 1,
		Params:  []Kind{KindString},
		Fn: func(args []Value) (Value, error) {
			format := args[0].Str()
			if s, ok := tsCache[format]; ok {
				return String(s), nil
			}

			if now == nil {
				t := clock()
				now = &t
			}

			s, err := strftime(*now, format)
			if err != nil {
				return Value{}, err
			}

			tsCache[format] = s

			return String(s), nil
		},
	})
}

func registerProjectFuncs(t *Table, ctx Context) {
	t.Register(Func{
		Name: "source_path",
		Fn: func(_ []Value) (Value, error) {
			return String(ctx.FilesystemRoot), nil
		},
	})

	t.Register(Func{
		Name: "dest_path",
		Fn: func(_ []Value) (Value, error) {
			return String(ctx.DestinationRoot), nil
		},
	})

	exists := func(name string, match func(os.FileInfo) bool) {
		t.Register(Func{
			Name:    name,
			MinArgs: 1,
			MaxArgs: 1,
			Params:  []Kind{KindString},
			Fn: func(args []Value) (Value, error) {
				p := args[0].Str()
				if !filepath.IsAbs(p) {
					p = filepath.Join(ctx.FilesystemRoot, p)
				}

				info, err := os.Stat(p)
				if err != nil {
					return Bool(false), nil
				}

				return Bool(match(info)), nil
			},
		})
	}

	exists("file_exists", func(info os.FileInfo) bool { return info.Mode().IsRegular() })
	exists("dir_exists", func(info os.FileInfo) bool { return info.IsDir() })
	exists("path_exists", func(_ os.FileInfo) bool { return true })
}

func uriHost(ctx Context) string {
	if ctx.URI == nil {
		return ""
	}

	return ctx.URI.Host
}

func uriPort(ctx Context) string {
	if ctx.URI == nil {
		return ""
	}

	return ctx.URI.Port
}

func uriProtocol(ctx Context) string {
	if ctx.URI == nil {
		return ""
	}

	return ctx.URI.Protocol
}

func uriRaw(ctx Context) string {
	if ctx.URI == nil {
		return ""
	}

	return ctx.URI.Raw
}

func normalizeBranch(branch, sep string) string {
	return strings.ReplaceAll(branch, "/", sep)
}

// strftime formats t with a subset of strftime directives, enough for the
// date-based path layouts the default configuration documents.
func strftime(t time.Time, format string) (string, error) {
	var b strings.Builder

	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			b.WriteRune(runes[i])

			continue
		}

		if i+1 >= len(runes) {
			return "", fmt.Errorf("timestamp: trailing %% in format %q", format)
		}

		i++
		switch runes[i] {
		case 'Y':
			b.WriteString(t.Format("2006"))
		case 'y':
			b.WriteString(t.Format("06"))
		case 'm':
			b.WriteString(t.Format("01"))
		case 'd':
			b.WriteString(t.Format("02"))
		case 'H':
			b.WriteString(t.Format("15"))
		case 'I':
			b.WriteString(t.Format("03"))
		case 'M':
			b.WriteString(t.Format("04"))
		case 'S':
			b.WriteString(t.Format("05"))
		case 'p':
			b.WriteString(t.Format("PM"))
		case 'a':
			b.WriteString(t.Format("Mon"))
		case 'A':
			b.WriteString(t.Format("Monday"))
		case 'b':
			b.WriteString(t.Format("Jan"))
		case 'B':
			b.WriteString(t.Format("January"))
		case 'j':
			b.WriteString(fmt.Sprintf("%03d", t.YearDay()))
		case '%':
			b.WriteRune('%')
		default:
			return "", fmt.Errorf("timestamp: unsupported directive %%%c in format %q", runes[i], format)
		}
	}

	return b.String(), nil
}
