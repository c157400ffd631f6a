// Package sensor reads the temperature the fan is controlled against.
package sensor

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/mutker/fancontrol/internal/errors"
	"codeberg.org/mutker/fancontrol/internal/sysfs"
)

// Reading is a single temperature sample.
type Reading struct {
	Raw       int
	Celsius   float64
	Timestamp time.Time
}

// ReadError reports a sensor that could not be read or parsed.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read sensor %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func (*ReadError) Code() errors.ErrorCode {
	return errors.ErrSensorRead
}

// Reader reads thermal sensor files such as
// /sys/devices/virtual/thermal/thermal_zone0/temp.
type Reader struct {
	now func() time.Time
}

func NewReader() *Reader {
	return &Reader{now: time.Now}
}

// Read returns the temperature at path divided by tempDiv. It does not
// retry; ctx bounds how long the read may take.
func (r *Reader) Read(ctx context.Context, path string, tempDiv int) (Reading, error) {
	if tempDiv <= 0 {
		return Reading{}, &ReadError{
			Path: path,
			Err:  errors.New().WithData(errors.ErrInvalidArgument, fmt.Sprintf("temp_div %d", tempDiv)),
		}
	}

	raw, err := sysfs.ReadInt(ctx, path)
	if err != nil {
		return Reading{}, &ReadError{Path: path, Err: err}
	}

	return Reading{
		Raw:       raw,
		Celsius:   float64(raw) / float64(tempDiv),
		Timestamp: r.now(),
	}, nil
}
