package config

import (
	"fmt"
	"math"
	"regexp"

	"codeberg.org/mutker/fancontrol/internal/curve"
	"codeberg.org/mutker/fancontrol/internal/errors"
)

// ConfigError reports a setting that failed validation. A configuration
// with a ConfigError is never applied.
type ConfigError struct {
	field  string
	value  any
	reason string
}

// NewConfigError returns a ConfigError for field.
func NewConfigError(field string, value any, reason string) *ConfigError {
	return &ConfigError{field: field, value: value, reason: reason}
}

func (e *ConfigError) Error() string {
	if e.field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.reason)
	}

	if e.value == nil {
		return fmt.Sprintf("invalid %s: %s", e.field, e.reason)
	}

	return fmt.Sprintf("invalid %s (%v): %s", e.field, e.value, e.reason)
}

func (e *ConfigError) Field() string {
	return e.field
}

func (e *ConfigError) Value() interface{} {
	return e.value
}

func (e *ConfigError) Reason() string {
	return e.reason
}

func (*ConfigError) Code() errors.ErrorCode {
	return errors.ErrInvalidConfig
}

// Validate returns the first problem found in c as a *ConfigError.
func (c *Config) Validate() error {
	if status := c.Status(); !status.Valid {
		return status.ValidationErrors[0]
	}

	return nil
}

// Status checks every setting and reports all problems.
func (c *Config) Status() Status {
	var errs []ValidationError
	add := func(field string, value any, reason string) {
		errs = append(errs, NewConfigError(field, value, reason))
	}

	if c.ThermalFile == "" {
		add("thermal_file", c.ThermalFile, "must be set")
	}
	if c.FanFile == "" {
		add("fan_file", c.FanFile, "must be set")
	}
	if c.TempDiv <= 0 {
		add("temp_div", c.TempDiv, "must be greater than 0")
	}
	if c.StartSpeed < curve.MinDuty || c.StartSpeed > curve.MaxDuty {
		add("start_speed", c.StartSpeed, fmt.Sprintf("must be between %d and %d", curve.MinDuty, curve.MaxDuty))
	}
	switch {
	case c.MaxSpeed < curve.MinDuty || c.MaxSpeed > curve.MaxDuty:
		add("max_speed", c.MaxSpeed, fmt.Sprintf("must be between %d and %d", curve.MinDuty, curve.MaxDuty))
	case c.MaxSpeed < c.StartSpeed:
		add("max_speed", c.MaxSpeed, fmt.Sprintf("must not be below start_speed (%d)", c.StartSpeed))
	}
	if math.IsNaN(c.StartTemp) || math.IsInf(c.StartTemp, 0) {
		add("start_temp", c.StartTemp, "must be a finite number")
	}
	if c.Interval <= 0 {
		add("interval", c.Interval, "must be at least 1 second")
	}
	if c.FailureThreshold < 0 {
		add("failure_threshold", c.FailureThreshold, "must not be negative")
	}
	if !(c.TempRange > 0) || math.IsInf(c.TempRange, 0) {
		add("temp_range", c.TempRange, "must be greater than 0")
	}
	if !(c.CurveExponent > 0) || math.IsInf(c.CurveExponent, 0) {
		add("curve_exponent", c.CurveExponent, "must be greater than 0")
	}
	if !(c.Hysteresis >= 0) || math.IsInf(c.Hysteresis, 0) {
		add("hysteresis", c.Hysteresis, "must not be negative")
	}
	if c.RampStep < 0 || c.RampStep > curve.MaxDuty {
		add("ramp_step", c.RampStep, fmt.Sprintf("must be between 0 and %d", curve.MaxDuty))
	}
	if c.DisablePolicy != PolicyOff && c.DisablePolicy != PolicyMax {
		add("disable_policy", c.DisablePolicy, "must be off or max")
	}
	switch c.ShutdownPolicy {
	case PolicyHold, PolicyOff, PolicyMax:
	default:
		add("shutdown_policy", c.ShutdownPolicy, "must be hold, off or max")
	}
	if !c.LogLevel.IsValid() {
		add("log_level", c.LogLevel, "must be debug, info, warning or error")
	}

	return Status{
		Valid:            len(errs) == 0,
		ValidationErrors: errs,
	}
}

var quotedField = regexp.MustCompile(`'([a-z_]+)'`)

// decodeError turns a failed type conversion into a ConfigError naming the
// offending key where the decoder message allows it.
func decodeError(err error) *ConfigError {
	field := ""
	if m := quotedField.FindStringSubmatch(err.Error()); m != nil {
		field = m[1]
	}

	return NewConfigError(field, nil, err.Error())
}
