// Package execs runs subprocesses with tracing and timing logs. Unlike a
// sandboxed runner, the child inherits the full caller environment, so git
// credential helpers and SSH agents keep working.
package execs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/grove/pkg/log"
)

var (
	// ErrCommandExecution is returned when command execution fails.
	ErrCommandExecution = errors.New("run")

	// ErrEmptyCommand is returned when a command is empty.
	ErrEmptyCommand = errors.New("empty command")
)

// Result holds the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Output returns stdout with surrounding whitespace trimmed.
func (r *Result) Output() string {
	return strings.TrimSpace(r.Stdout)
}

// Lines splits trimmed stdout into lines, dropping empty ones.
func (r *Result) Lines() []string {
	var lines []string

	for line := range strings.Lines(r.Stdout) {
		line = strings.TrimRight(line, "\n")
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

// Executor runs one binary with varying arguments.
type Executor struct {
	tracer  trace.Tracer
	command string
	env     []string
}

// ExecutorOption customizes an [Executor].
type ExecutorOption func(*Executor)

// WithEnv replaces the inherited environment.
func WithEnv(env []string) ExecutorOption {
	return func(e *Executor) {
		e.env = env
	}
}

// NewExecutor creates an executor for command. The child environment
// defaults to [os.Environ].
func NewExecutor(command string, opts ...ExecutorOption) Executor {
	e := Executor{
		tracer:  otel.Tracer("executor"),
		command: command,
		env:     os.Environ(),
	}
	for _, opt := range opts {
		opt(&e)
	}

	return e
}

// Exec runs the command with args in dir, capturing output.
func (e Executor) Exec(ctx context.Context, dir string, args ...string) (*Result, error) {
	return e.ExecWithStdin(ctx, dir, nil, args...)
}

// ExecWithStdin runs the command with args in dir, feeding stdin.
func (e Executor) ExecWithStdin(ctx context.Context, dir string, stdin []byte, args ...string) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "exec", trace.WithAttributes(
		attribute.String("command", e.commandLine(args)),
		attribute.String("path", dir),
	))
	defer span.End()

	if e.command == "" {
		return nil, ErrEmptyCommand
	}

	logger := log.WithContext(ctx).With(
		slog.String("command", e.commandLine(args)),
		slog.String("path", dir),
	)

	start := time.Now()

	//nolint:gosec // G204: Subprocess launched with a potential tainted input or cmd arguments.
	cmd := exec.CommandContext(ctx, e.command, args...)
	cmd.Dir = dir
	cmd.Env = e.env
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		logger.DebugContext(ctx, "command failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)

		if stderr.Len() > 0 {
			return result, fmt.Errorf("%w: %w: %s", ErrCommandExecution, err, strings.TrimSpace(stderr.String()))
		}

		return result, fmt.Errorf("%w: %w", ErrCommandExecution, err)
	}

	logger.DebugContext(ctx, "command executed successfully",
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func (e Executor) commandLine(args []string) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", e.command, strings.Join(args, " ")))
}
