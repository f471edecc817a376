// Package action describes and runs the post-clone and post-worktree steps
// attached to project rules.
package action

import (
	"errors"
	"fmt"
)

var (
	// ErrNoVariant is returned when an action sets none of its fields.
	ErrNoVariant = errors.New("action must set exactly one of command, absCopy, relCopy")

	// ErrMultipleVariants is returned when an action sets more than one field.
	ErrMultipleVariants = errors.New("action sets multiple variants")
)

// Action is a one-of descriptor. Exactly one field may be set:
//
//   - Command: a shell-less command line, template-expanded and run in the
//     destination directory.
//   - AbsCopy: [src, dst] where src is an absolute path.
//   - RelCopy: [src] or [src, dst] with paths relative to the source
//     repository and destination respectively.
//
// All strings are templates and may contain function calls.
type Action struct {
	Command string   `json:"command,omitempty" jsonschema:"title=Command"`
	AbsCopy []string `json:"absCopy,omitempty" jsonschema:"title=Absolute Copy"    yaml:"absCopy,flow,omitempty"`
	RelCopy []string `json:"relCopy,omitempty" jsonschema:"title=Relative Copy"    yaml:"relCopy,flow,omitempty"`
}

// Validate enforces the one-of shape and per-variant arity.
func (a *Action) Validate() error {
	set := 0
	if a.Command != "" {
		set++
	}

	if len(a.AbsCopy) > 0 {
		set++
	}

	if len(a.RelCopy) > 0 {
		set++
	}

	switch {
	case set == 0:
		return ErrNoVariant
	case set > 1:
		return ErrMultipleVariants
	}

	if len(a.AbsCopy) > 0 && len(a.AbsCopy) != 2 {
		return fmt.Errorf("absCopy must be [src, dst], got %d element(s)", len(a.AbsCopy))
	}

	if len(a.RelCopy) > 2 {
		return fmt.Errorf("relCopy must be [src] or [src, dst], got %d elements", len(a.RelCopy))
	}

	return nil
}

func (a *Action) String() string {
	switch {
	case a.Command != "":
		return fmt.Sprintf("command: %s", a.Command)
	case len(a.AbsCopy) > 0:
		return fmt.Sprintf("absCopy: %v", a.AbsCopy)
	case len(a.RelCopy) > 0:
		return fmt.Sprintf("relCopy: %v", a.RelCopy)
	}

	return "empty action"
}
