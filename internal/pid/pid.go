// Package pid guards watch mode against concurrent sessions, which would
// otherwise run smartctl and NVML queries twice per interval.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/healthctl/internal/errors"
)

const DefaultName = "healthctl.pid"

// File is a held PID file.
type File struct {
	path string
}

// Acquire writes the current process ID to dir/name. It fails with
// ErrAlreadyRunning if the file names a live process; stale files are
// overwritten.
func Acquire(dir, name string) (*File, error) {
	errFactory := errors.New()
	path := filepath.Join(dir, name)

	if data, err := os.ReadFile(path); err == nil {
		if running(strings.TrimSpace(string(data))) {
			return nil, errFactory.WithData(errors.ErrAlreadyRunning, path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errFactory.Wrap(errors.ErrInternal, err)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return nil, errFactory.Wrap(errors.ErrInternal, err)
	}

	return &File{path: path}, nil
}

func running(raw string) bool {
	pid, err := strconv.Atoi(raw)
	if err != nil || pid <= 0 || pid == os.Getpid() {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(syscall.Signal(0)) == nil
}

// Release removes the PID file. Releasing twice is a no-op.
func (f *File) Release() error {
	if f == nil || f.path == "" {
		return nil
	}

	err := os.Remove(f.path)
	f.path = ""
	if err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}
