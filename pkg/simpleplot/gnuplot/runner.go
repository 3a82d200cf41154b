// Package gnuplot launches the gnuplot executable on a command script.
package gnuplot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
)

// DefaultExecutable is the program name looked up on PATH.
const DefaultExecutable = "gnuplot"

// ErrSpawnFailure indicates the renderer process could not be created.
var ErrSpawnFailure = errors.New("could not spawn renderer")

// Runner executes a gnuplot command script and blocks until it is done.
type Runner interface {
	Run(ctx context.Context, scriptPath string) error
}

// ExecRunner runs scripts through a gnuplot child process.
type ExecRunner struct {
	// Path is the gnuplot executable. Empty means look up DefaultExecutable.
	Path string
	// Stdin, Stdout and Stderr default to the parent's streams when nil.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Logger receives exit warnings. Nil discards them.
	Logger *log.Logger
}

// NewExecRunner returns a runner that inherits the standard streams.
func NewExecRunner(logger *log.Logger) *ExecRunner {
	return &ExecRunner{Logger: logger}
}

// executable resolves the gnuplot binary.
func (r *ExecRunner) executable() (string, error) {
	if r.Path != "" {
		return r.Path, nil
	}
	path, err := exec.LookPath(DefaultExecutable)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found: %v", ErrSpawnFailure, DefaultExecutable, err)
	}
	return path, nil
}

// Args returns the argument list passed to gnuplot for a script.
func Args(scriptPath string) []string {
	return []string{scriptPath, "--persist"}
}

// command creates an exec.Cmd for the given script
func (r *ExecRunner) command(ctx context.Context, executable, scriptPath string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, executable, Args(scriptPath)...)
	cmd.Stdin = r.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return cmd
}

// Run spawns gnuplot on scriptPath and waits for it to exit.
// Only a failed spawn is an error; a non-zero exit is logged.
func (r *ExecRunner) Run(ctx context.Context, scriptPath string) error {
	executable, err := r.executable()
	if err != nil {
		return err
	}

	cmd := r.command(ctx, executable, scriptPath)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrSpawnFailure, err)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) || ctx.Err() != nil {
			r.warnf("gnuplot exited abnormally on %s: %v", scriptPath, err)
			return ctx.Err()
		}
		return fmt.Errorf("waiting for gnuplot: %w", err)
	}
	return nil
}

func (r *ExecRunner) warnf(format string, args ...interface{}) {
	if r.Logger == nil {
		return
	}
	r.Logger.Printf("[WARN] "+format, args...)
}
