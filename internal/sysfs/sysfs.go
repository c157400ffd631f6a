// Package sysfs reads and writes single integer attributes such as
// thermal_zone*/temp and hwmon*/pwm*, with a deadline on every operation.
package sysfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// ErrEmpty is returned when an attribute holds no value.
var ErrEmpty = errors.New("attribute is empty")

const retryDelay = 25 * time.Millisecond

// ParseInt parses the decimal contents of an attribute.
func ParseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}

	return n, nil
}

// ReadInt reads an integer attribute. It gives up when ctx is done even if
// the underlying read is still blocked in the kernel.
func ReadInt(ctx context.Context, path string) (int, error) {
	var n int
	err := bounded(ctx, func() error {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		n, err = ParseInt(string(b))
		return err
	})

	return n, err
}

// WriteInt writes an integer attribute.
//
// The file is opened O_WRONLY without O_TRUNC or O_CREATE: some attributes
// reject truncation. Right after a driver binds, udev may still be fixing up
// permissions, so EACCES, EPERM and ENOENT are retried until ctx is done.
func WriteInt(ctx context.Context, path string, value int) error {
	data := strconv.Itoa(value)

	return bounded(ctx, func() error {
		for {
			err := writeOnce(path, data)
			if err == nil || !isRetryable(err) {
				return err
			}

			select {
			case <-ctx.Done():
				return err
			case <-time.After(retryDelay):
			}
		}
	})
}

func writeOnce(path, data string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}

	_, werr := f.WriteString(data)
	cerr := f.Close()

	return errors.Join(werr, cerr)
}

func isRetryable(err error) bool {
	return errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM) || errors.Is(err, unix.ENOENT)
}

// bounded runs fn in its own goroutine so a wedged device file cannot hold
// the caller past ctx. The goroutine is left behind in that case.
func bounded(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

// ErrTimeout is returned when the operation did not finish in time.
var ErrTimeout = errors.New("attribute i/o timed out")
