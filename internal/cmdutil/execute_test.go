//go:build unit

package cmdutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCommand(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		output := ExecuteCommand(context.Background(), ExecuteInput{
			Command: "echo",
			Args:    []string{"hello"},
		})

		assert.False(t, output.Failed())
		assert.Equal(t, "hello\n", output.Stdout)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		output := ExecuteCommand(context.Background(), ExecuteInput{
			Command: "sh",
			Args:    []string{"-c", "echo oops >&2; exit 42"},
		})

		assert.True(t, output.Failed())
		assert.Equal(t, 42, output.ExitCode)
		assert.Equal(t, "oops\n", output.Stderr)
		assert.Empty(t, output.Error)
	})

	t.Run("invalid command", func(t *testing.T) {
		output := ExecuteCommand(context.Background(), ExecuteInput{
			Command: "nonexistentcommandthatdoesnotexist12345",
		})

		assert.Equal(t, -1, output.ExitCode)
		assert.NotEmpty(t, output.Error)
	})

	t.Run("work dir", func(t *testing.T) {
		tmpDir := t.TempDir()

		output := ExecuteCommand(context.Background(), ExecuteInput{
			Command: "pwd",
			WorkDir: tmpDir,
		})

		require.False(t, output.Failed(), output.Error)
		assert.Contains(t, output.Stdout, filepath.Base(tmpDir))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		output := ExecuteCommand(ctx, ExecuteInput{
			Command: "sleep",
			Args:    []string{"10"},
		})

		assert.Equal(t, -1, output.ExitCode)
		assert.Equal(t, context.DeadlineExceeded.Error(), output.Error)
	})
}

func TestExecuteCommand_Env(t *testing.T) {
	t.Setenv("CMDUTIL_TEST_SYSTEM", "system_value")
	t.Setenv("CMDUTIL_TEST_OVERRIDE", "system_value")

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"CMDUTIL_TEST_OVERRIDE=file_value\nCMDUTIL_TEST_INLINE=file_value\nexport CMDUTIL_TEST_QUOTED=\"with spaces\"\n",
	), 0o644))

	output := ExecuteCommand(context.Background(), ExecuteInput{
		Command: "sh",
		Args: []string{"-c",
			`echo "$CMDUTIL_TEST_SYSTEM|$CMDUTIL_TEST_OVERRIDE|$CMDUTIL_TEST_INLINE|$CMDUTIL_TEST_QUOTED"`},
		EnvFile: envFile,
		Env:     map[string]string{"CMDUTIL_TEST_INLINE": "inline_value"},
	})

	require.False(t, output.Failed(), output.Error)
	assert.Equal(t, "system_value|file_value|inline_value|with spaces\n", output.Stdout)

	t.Run("missing env file", func(t *testing.T) {
		output := ExecuteCommand(context.Background(), ExecuteInput{
			Command: "true",
			EnvFile: filepath.Join(t.TempDir(), "missing.env"),
		})

		assert.False(t, output.Failed(), output.Error)
	})
}
