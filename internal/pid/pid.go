package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/mutker/fancontrol/internal/errors"
	ps "github.com/mitchellh/go-ps"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

// Write writes the current process ID to path. It fails with
// ErrAlreadyRunning when path names another live process. Stale files are
// overwritten.
func Write(path string) error {
	errFactory := errors.New()
	if path == "" {
		return nil
	}

	if other, ok := running(path); ok {
		return errFactory.WithData(errors.ErrAlreadyRunning, other)
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return errFactory.Wrap(errors.ErrPIDFile, err)
	}

	err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), defaultFilePerm)
	if err != nil {
		return errFactory.Wrap(errors.ErrPIDFile, err)
	}

	return nil
}

// Remove removes the PID file if it still belongs to this process.
func Remove(path string) error {
	if path == "" {
		return nil
	}

	pid, err := read(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err == nil && pid != os.Getpid() {
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrPIDFile, err)
	}

	return nil
}

// running reports the PID recorded in path when that process is alive and
// is not the caller.
func running(path string) (int, bool) {
	pid, err := read(path)
	if err != nil || pid == os.Getpid() {
		return 0, false
	}

	proc, err := ps.FindProcess(pid)
	if err != nil || proc == nil {
		return 0, false
	}

	return pid, true
}

func read(path string) (int, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(string(data)))
}
