// Package pwm drives the fan through a PWM attribute such as
// /sys/devices/platform/pwm-fan/hwmon/hwmon1/pwm1.
package pwm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/mutker/fancontrol/internal/curve"
	"codeberg.org/mutker/fancontrol/internal/errors"
	"codeberg.org/mutker/fancontrol/internal/sysfs"
)

// WriteError reports a duty that could not be applied.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write pwm %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func (*WriteError) Code() errors.ErrorCode {
	return errors.ErrPWMWrite
}

// DutyState is the last duty that reached the hardware.
type DutyState struct {
	Duty      int
	Path      string
	WrittenAt time.Time
	// Valid is false until the first successful write.
	Valid bool
}

// Writer applies duties and remembers the last one written so that repeated
// identical duties do not touch the file.
type Writer struct {
	mu     sync.RWMutex
	state  DutyState
	forced bool
	writes int

	write func(ctx context.Context, path string, value int) error
	now   func() time.Time
}

func NewWriter() *Writer {
	return &Writer{
		forced: true,
		write:  sysfs.WriteInt,
		now:    time.Now,
	}
}

// Write applies duty to path. The write is skipped when duty equals the last
// written duty on the same path, unless a forced write is pending.
func (w *Writer) Write(ctx context.Context, path string, duty int) error {
	errFactory := errors.New()
	if duty < curve.MinDuty || duty > curve.MaxDuty {
		return &WriteError{
			Path: path,
			Err:  errFactory.WithData(errors.ErrInvalidDuty, duty),
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.forced && w.state.Valid && w.state.Path == path && w.state.Duty == duty {
		return nil
	}

	if err := w.write(ctx, path, duty); err != nil {
		// the hardware value is now unknown
		w.forced = true
		return &WriteError{Path: path, Err: err}
	}

	w.state = DutyState{
		Duty:      duty,
		Path:      path,
		WrittenAt: w.now(),
		Valid:     true,
	}
	w.forced = false
	w.writes++

	return nil
}

// Force makes the next Write reach the file even if the duty is unchanged.
func (w *Writer) Force() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.forced = true
}

// State returns a copy of the last written duty.
func (w *Writer) State() DutyState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Writes returns how many writes reached the file.
func (w *Writer) Writes() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.writes
}

// Current reads the duty presently set on path.
func (*Writer) Current(ctx context.Context, path string) (int, error) {
	errFactory := errors.New()

	duty, err := sysfs.ReadInt(ctx, path)
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrPWMRead, err)
	}

	if duty < curve.MinDuty || duty > curve.MaxDuty {
		return 0, errFactory.WithData(errors.ErrInvalidDuty, duty)
	}

	return duty, nil
}
