// Package extval invokes the externally maintained package checker. The
// checker is an opaque capability: pkgvet passes it the unpacked directory
// and package name and interprets only its process exit code.
package extval

import (
	"context"
	stderrors "errors"
	"os/exec"

	"github.com/glorpus-work/pkgvet/internal/logger"
	"github.com/glorpus-work/pkgvet/pkg/errors"
)

// Validator runs the final validation on an unpacked package tree.
type Validator interface {
	// Validate returns nil when the external checker accepts the package,
	// and an error wrapping ErrValidatorExit when it rejects it.
	Validate(ctx context.Context, unpackedDir, pkgName string) error
}

// ExecValidator runs a configured command-line tool. The unpacked directory
// and package name are appended to the configured argument vector.
type ExecValidator struct {
	Command []string
}

// NewExecValidator creates a validator for the given command prefix.
func NewExecValidator(command []string) *ExecValidator {
	return &ExecValidator{Command: command}
}

// Validate executes the checker. A non-zero exit code is a validation
// failure, not a crash; any other execution error is reported as-is.
func (v *ExecValidator) Validate(ctx context.Context, unpackedDir, pkgName string) error {
	if len(v.Command) == 0 {
		return errors.Wrap(errors.ErrConfigValidation, "no external validator command configured")
	}

	args := make([]string, 0, len(v.Command)+1)
	args = append(args, v.Command[1:]...)
	args = append(args, unpackedDir, pkgName)

	cmd := exec.CommandContext(ctx, v.Command[0], args...)
	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		logger.Debugf("%s: validator output: %s", pkgName, output)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return errors.Wrapf(errors.ErrValidatorExit, "%s: exit status %d", pkgName, exitErr.ExitCode())
		}
		return errors.Wrapf(err, "%s: failed to run external validator", pkgName)
	}
	return nil
}
