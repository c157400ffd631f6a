package pid

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"codeberg.org/mutker/fancontrol/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "fancontrol.pid")

	require.NoError(t, Write(path))

	pid, err := read(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, Remove(path))
	assert.NoFileExists(t, path)
	assert.NoError(t, Remove(path), "removing a missing file is not an error")
}

func TestWriteAlreadyRunning(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	path := filepath.Join(t.TempDir(), "fancontrol.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(cmd.Process.Pid)), 0o644))

	err := Write(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrAlreadyRunning, errors.CodeOf(err))

	require.NoError(t, Remove(path))
	assert.FileExists(t, path, "another process's pid file must be kept")
}

func TestWriteReplacesStaleFile(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())

	path := filepath.Join(t.TempDir(), "fancontrol.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(cmd.Process.Pid)), 0o644))

	require.NoError(t, Write(path))

	pid, err := read(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestWriteReplacesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fancontrol.pid")
	require.NoError(t, os.WriteFile(path, []byte("not a pid"), 0o644))

	assert.NoError(t, Write(path))
}

func TestEmptyPathDisables(t *testing.T) {
	assert.NoError(t, Write(""))
	assert.NoError(t, Remove(""))
}
