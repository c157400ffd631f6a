package control

import (
	"context"

	"codeberg.org/mutker/fancontrol/internal/logger"
	"codeberg.org/mutker/fancontrol/internal/pwm"
	"codeberg.org/mutker/fancontrol/internal/sensor"
	"codeberg.org/mutker/fancontrol/internal/status"
)

// TemperatureReader is satisfied by *sensor.Reader.
type TemperatureReader interface {
	Read(ctx context.Context, path string, tempDiv int) (sensor.Reading, error)
}

// DutyWriter is satisfied by *pwm.Writer.
type DutyWriter interface {
	Write(ctx context.Context, path string, duty int) error
	Force()
	State() pwm.DutyState
	Current(ctx context.Context, path string) (int, error)
}

// State is the lifecycle state of a Controller.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// Phase tells whether a running Controller is inside a tick.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseExecuting Phase = "executing"
)

// Option configures a Controller.
type Option func(*Controller)

// WithReader replaces the sensor reader.
func WithReader(r TemperatureReader) Option {
	return func(c *Controller) {
		c.reader = r
	}
}

// WithWriter replaces the PWM writer.
func WithWriter(w DutyWriter) Option {
	return func(c *Controller) {
		c.writer = w
	}
}

// WithRecorder publishes every snapshot to r.
func WithRecorder(r status.Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// WithEventBuffer sets the capacity of the Events channel.
func WithEventBuffer(size int) Option {
	return func(c *Controller) {
		if size > 0 {
			c.events = make(chan Event, size)
		}
	}
}
