package action

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-shellwords"

	"github.com/macropower/grove/pkg/execs"
	"github.com/macropower/grove/pkg/expr"
	"github.com/macropower/grove/pkg/log"
	"github.com/macropower/grove/pkg/template"
)

// Executor runs a list of actions against one repository. Execution stops at
// the first failing action; later actions are not attempted.
type Executor struct{}

// NewExecutor creates an [Executor].
func NewExecutor() *Executor {
	return &Executor{}
}

// ExecAll runs actions in order. All templates in one run share a single
// function table, so timestamps agree across actions.
func (e *Executor) ExecAll(ctx context.Context, actions []Action, ectx expr.Context) error {
	table := expr.NewTable(expr.ScopeProject, ectx)

	for i := range actions {
		a := &actions[i]
		if err := e.exec(ctx, a, ectx, table); err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, a, err)
		}
	}

	return nil
}

func (e *Executor) exec(ctx context.Context, a *Action, ectx expr.Context, table *expr.Table) error {
	if err := a.Validate(); err != nil {
		return err
	}

	switch {
	case a.Command != "":
		return e.execCommand(ctx, a.Command, ectx, table)

	case len(a.AbsCopy) > 0:
		return e.execAbsCopy(ctx, a.AbsCopy, ectx, table)

	default:
		return e.execRelCopy(ctx, a.RelCopy, ectx, table)
	}
}

func (e *Executor) execCommand(ctx context.Context, command string, ectx expr.Context, table *expr.Table) error {
	expanded, err := template.ExpandWith(command, table)
	if err != nil {
		return err
	}

	words, err := shellwords.Parse(expanded)
	if err != nil {
		return fmt.Errorf("split command %q: %w", expanded, err)
	}

	if len(words) == 0 {
		return execs.ErrEmptyCommand
	}

	log.WithContext(ctx).InfoContext(ctx, "running action command",
		slog.String("command", expanded),
		slog.String("path", ectx.DestinationRoot),
	)

	runner := execs.NewExecutor(words[0])

	_, err = runner.Exec(ctx, ectx.DestinationRoot, words[1:]...)
	if err != nil {
		return err
	}

	return nil
}

func (e *Executor) execAbsCopy(ctx context.Context, pair []string, ectx expr.Context, table *expr.Table) error {
	src, err := expandCopyPath(pair[0], table)
	if err != nil {
		return err
	}

	dst, err := expandCopyPath(pair[1], table)
	if err != nil {
		return err
	}

	if !filepath.IsAbs(dst) {
		dst = filepath.Join(ectx.DestinationRoot, dst)
	}

	return copyFile(ctx, src, dst)
}

func (e *Executor) execRelCopy(ctx context.Context, pair []string, ectx expr.Context, table *expr.Table) error {
	src, err := expandCopyPath(pair[0], table)
	if err != nil {
		return err
	}

	dst := src
	if len(pair) == 2 {
		dst, err = expandCopyPath(pair[1], table)
		if err != nil {
			return err
		}
	}

	return copyFile(ctx, filepath.Join(ectx.FilesystemRoot, src), filepath.Join(ectx.DestinationRoot, dst))
}

func expandCopyPath(p string, table *expr.Table) (string, error) {
	expanded, err := template.ExpandWith(p, table)
	if err != nil {
		return "", err
	}

	return template.ExpandHome(expanded)
}

// copyFile copies one regular file, creating destination directories and
// preserving the source mode.
func copyFile(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("copy source: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("copy source %q is not a regular file", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()

		return fmt.Errorf("copy %q to %q: %w", src, dst, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	log.WithContext(ctx).DebugContext(ctx, "copied file",
		slog.String("src", src),
		slog.String("dst", dst),
	)

	return nil
}
