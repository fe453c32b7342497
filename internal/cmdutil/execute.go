package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
)

// ExecuteCommand executes a command with the given parameters. The command is
// killed when ctx is done.
//
// Environment variables are merged with the following precedence (highest to lowest):
//  1. Inline env vars (input.Env)
//  2. Env file vars (input.EnvFile)
//  3. Process environment
//
// A missing env file is not an error.
// Returns ExecuteOutput with exit code, stdout, stderr, and any error message.
func ExecuteCommand(ctx context.Context, input ExecuteInput) ExecuteOutput {
	cmd := exec.CommandContext(ctx, input.Command, input.Args...)

	if input.WorkDir != "" {
		cmd.Dir = input.WorkDir
	}

	env := os.Environ()

	if input.EnvFile != "" {
		envFileVars, err := godotenv.Read(input.EnvFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return ExecuteOutput{
				ExitCode: -1,
				Error:    fmt.Sprintf("failed to load env file: %v", err),
			}
		}
		for key, value := range envFileVars {
			env = append(env, fmt.Sprintf("%s=%s", key, value))
		}
	}

	for key, value := range input.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := ExecuteOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		output.ExitCode = 0
	case ctx.Err() != nil:
		output.ExitCode = -1
		output.Error = ctx.Err().Error()
	case errors.As(err, &exitErr):
		output.ExitCode = exitErr.ExitCode()
	default:
		output.ExitCode = -1
		output.Error = err.Error()
	}

	return output
}
