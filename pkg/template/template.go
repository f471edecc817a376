// Package template expands path and command templates. A template is plain
// text with embedded function calls, e.g. "~/dev/host()/path(-1)". Doubled
// parentheses escape literal ones: "((" and "))" render as "(" and ")"
// without triggering a call.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/macropower/grove/pkg/expr"
)

// Escaped parens are swapped for NUL-prefixed sentinels before call scanning
// and restored after. NUL cannot appear in configuration strings, so the
// sentinels never collide with template text.
const (
	sentinelOpen  = "\x00("
	sentinelClose = "\x00)"
)

var (
	escaper  = strings.NewReplacer("((", sentinelOpen, "))", sentinelClose)
	restorer = strings.NewReplacer(sentinelOpen, "(", sentinelClose, ")")

	// Calls in templates are flat: an identifier followed by an argument
	// list that contains no nested parentheses.
	callPattern = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s*\(([^()]*)\)`)
)

// UnsupportedResultError reports a template call that produced a value with
// no string form, such as the list from path().
type UnsupportedResultError struct {
	Call string
	Kind expr.Kind
}

func (e *UnsupportedResultError) Error() string {
	return fmt.Sprintf("template call %q produced %s, which cannot be spliced into text", e.Call, e.Kind)
}

// Expand renders text using a fresh function table for ctx and scope. All
// calls in one expansion share that table, so repeated timestamp() calls
// observe a single instant.
func Expand(text string, ctx expr.Context, scope expr.Scope, opts ...expr.TableOption) (string, error) {
	return ExpandWith(text, expr.NewTable(scope, ctx, opts...))
}

// ExpandWith renders text against an existing table. Callers expanding
// several related templates pass the same table to keep timestamps
// consistent across all of them.
func ExpandWith(text string, table *expr.Table) (string, error) {
	escaped := escaper.Replace(text)

	var b strings.Builder

	last := 0
	for _, m := range callPattern.FindAllStringIndex(escaped, -1) {
		span := escaped[m[0]:m[1]]

		b.WriteString(escaped[last:m[0]])
		last = m[1]

		// Every call span is evaluated; an unknown name fails with
		// FunctionNotDefinedError rather than passing through. Literal
		// parentheses are written with the (( )) escape.
		v, err := expr.Evaluate(span, table)
		if err != nil {
			return "", fmt.Errorf("expand %q: %w", text, err)
		}

		s, err := stringify(span, v)
		if err != nil {
			return "", fmt.Errorf("expand %q: %w", text, err)
		}

		b.WriteString(s)
	}

	b.WriteString(escaped[last:])

	return restorer.Replace(b.String()), nil
}

// ExpandHome replaces a leading "~" with the user's home directory and
// cleans the result.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return filepath.Clean(p), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

func stringify(call string, v expr.Value) (string, error) {
	switch v.Kind() {
	case expr.KindString:
		return v.Str(), nil
	case expr.KindInt:
		return strconv.Itoa(v.Int()), nil
	case expr.KindBool:
		return strconv.FormatBool(v.Bool()), nil
	}

	return "", &UnsupportedResultError{Call: call, Kind: v.Kind()}
}
