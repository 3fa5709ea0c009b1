package magick

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/xwmx/glyph-imager/core"
)

// Runner executes rasterization jobs. It returns the output of the
// rasterizer, if any.
type Runner interface {
	Run(ctx context.Context, job *Job) ([]byte, error)
}

var execCommand = exec.CommandContext

// ExecRunner spawns the rasterizer as a child process. Arguments are passed
// as a vector, without shell interpretation.
type ExecRunner struct {
	Dir string // working directory of the child process; empty for the current one
}

// Run executes job and waits for it to complete. A rasterizer which cannot be
// started or exits with non-zero status results in an error with code
// core.EEXEC.
func (r ExecRunner) Run(ctx context.Context, job *Job) ([]byte, error) {
	if job == nil {
		return nil, core.Error(core.EINTERNAL, "no rasterization job")
	}
	command := job.Command
	if command == "" {
		command = DefaultCommand
	}
	tracer().Debugf("exec %s %s", command, strings.Join(job.Args(), " "))
	cmd := execCommand(ctx, command, job.Args()...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := firstLine(out)
		if msg == "" {
			msg = err.Error()
		}
		return out, core.WrapError(err, core.EEXEC, "%s failed for %s: %s", command, job.OutputPath, msg)
	}
	tracer().Infof("rasterized %s to %s", job.Hex, job.OutputPath)
	return out, nil
}

func firstLine(out []byte) string {
	line, _, _ := strings.Cut(string(bytes.TrimSpace(out)), "\n")
	return strings.TrimSpace(line)
}

// DryRunner does not execute jobs, but writes their command lines to W.
type DryRunner struct {
	W io.Writer
}

// Run writes the command line of job.
func (r DryRunner) Run(ctx context.Context, job *Job) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, err := fmt.Fprintln(r.W, job.CommandLine())
	return nil, err
}
