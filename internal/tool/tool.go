// Package tool runs the external programs the meshing and solver stages
// depend on.
package tool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Runner runs program name with args in directory dir and returns its
// combined output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// Exec is a Runner backed by os/exec.
type Exec struct {
	Log *zap.Logger
}

var _ Runner = Exec{}

// outputTail is the number of output lines kept in errors.
const outputTail = 10

// Run executes the program and fails if it exits non-zero or ctx is done.
func (e Exec) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	start := time.Now()
	log.Debug("running tool", zap.String("tool", name), zap.Strings("args", args), zap.String("dir", dir))
	err := cmd.Run()
	log.Debug("tool finished", zap.String("tool", name), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	if err != nil {
		return out.Bytes(), &Error{Tool: name, Err: err, Output: Tail(out.String(), outputTail)}
	}
	return out.Bytes(), nil
}

// Error is returned when an external program fails.
type Error struct {
	Tool   string
	Err    error
	Output string // last lines of the program output
}

func (e *Error) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v\n%s", e.Tool, e.Err, e.Output)
}

func (e *Error) Unwrap() error { return e.Err }

// Tail returns the last n lines of s.
func Tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
