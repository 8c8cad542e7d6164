package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ExitError tells that the workflow engine exited with non-zero status.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// Runner runs a command and waits for it.
type Runner interface {
	// Run runs the command.
	//
	// # Returns
	//
	// - error: *ExitError when the command exits with non-zero status.
	Run(ctx context.Context, name string, args []string) error

	// Output runs the command, and returns what it writes to stdout.
	//
	// # Returns
	//
	// - []byte: stdout of the command, even when it fails.
	//
	// - error: *ExitError when the command exits with non-zero status.
	Output(ctx context.Context, name string, args []string) ([]byte, error)
}

// ExecRunner runs commands as child processes, without shell.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Env is appended to the environment of this process.
	Env []string
}

// NewExecRunner returns a Runner sharing standard I/O with this process.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (er *ExecRunner) Run(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = er.Stdin
	cmd.Stdout = er.Stdout
	cmd.Stderr = er.Stderr
	cmd.Env = append(os.Environ(), er.Env...)

	// let the workflow engine clean up its jobs.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = 30 * time.Second

	err := cmd.Run()
	if ee := new(exec.ExitError); errors.As(err, &ee) {
		return &ExitError{Command: name, Code: ee.ExitCode()}
	}
	return err
}

func (er *ExecRunner) Output(ctx context.Context, name string, args []string) ([]byte, error) {
	stdout := new(bytes.Buffer)
	capturing := *er
	capturing.Stdin = nil
	capturing.Stdout = stdout
	err := capturing.Run(ctx, name, args)
	return stdout.Bytes(), err
}

// Invoke runs the workflow engine for the request.
//
// The command line is logged before and after running.
//
// # Args
//
// - ctx
//
// - logger: destination of the command line
//
// - runner: runs the command
//
// - engine: executable of the workflow engine
//
// - req: the request
func Invoke(ctx context.Context, logger *log.Logger, runner Runner, engine string, req Request) error {
	args, err := req.Args()
	if err != nil {
		return err
	}

	cmdline := CommandLine(engine, args)
	logger.Printf("running (%s):\n%s", req.Mode, cmdline)

	err = runner.Run(ctx, engine, args)

	logger.Printf("real running command:\n%s", cmdline)
	return err
}

// CommandLine renders a command for display.
//
// Arguments containing whitespaces or quotes are quoted.
func CommandLine(name string, args []string) string {
	tokens := make([]string, 0, len(args)+1)
	for _, a := range append([]string{name}, args...) {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\$") {
			a = strconv.Quote(a)
		}
		tokens = append(tokens, a)
	}
	return strings.Join(tokens, " ")
}
