// Package compiler invokes the TypeScript compiler as a black box and
// captures its diagnostic output.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	tserrors "tserr/internal/errors"
)

// Runner executes the configured compiler command and returns its combined
// output. The compiler exiting nonzero is the normal outcome when the
// codebase has diagnostics; only failure to start the process is an error.
type Runner struct {
	Command string
	Args    []string
	Dir     string

	logger *slog.Logger
}

// NewRunner creates a runner for the given command. An empty command defaults
// to `npx tsc --noEmit`.
func NewRunner(command string, args []string, dir string, logger *slog.Logger) *Runner {
	if command == "" {
		command = "npx"
		args = []string{"tsc", "--noEmit", "--pretty", "false"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Command: command, Args: args, Dir: dir, logger: logger}
}

// Run invokes the compiler and returns its combined stdout+stderr. The call
// blocks until the process exits or ctx is done. A process that cannot be
// started surfaces as COMPILER_START_FAILED, which is fatal to the run.
func (r *Runner) Run(ctx context.Context) (string, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, r.Command, r.Args...)
	cmd.Dir = r.Dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	output := buf.String()

	r.logger.Debug("compiler finished",
		"command", r.Command,
		"duration", time.Since(start).String(),
		"outputBytes", len(output))

	if err == nil {
		return output, nil
	}

	// nonzero exit with output is the expected shape of a failing compile
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return output, tserrors.New(tserrors.ScanCancelled, "compiler run aborted", ctxErr)
		}
		return output, nil
	}

	return "", tserrors.New(tserrors.CompilerStartFailed,
		"compiler process could not be started: "+r.commandLine(), err)
}

func (r *Runner) commandLine() string {
	if len(r.Args) == 0 {
		return r.Command
	}
	return r.Command + " " + strings.Join(r.Args, " ")
}
