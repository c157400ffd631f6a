package config

import (
	"time"

	"codeberg.org/mutker/fancontrol/internal/curve"
)

// Defaults, matching the placeholders of the LuCI form.
const (
	DefaultPath        = "/etc/config/fancontrol"
	DefaultEnvPrefix   = "FANCONTROL"
	DefaultSectionType = "fancontrol"
	DefaultSectionName = "settings"

	DefaultThermalFile = "/sys/devices/virtual/thermal/thermal_zone0/temp"
	DefaultFanFile     = "/sys/devices/platform/pwm-fan/hwmon/hwmon1/pwm1"
	DefaultTempDiv     = 1000
	DefaultStartSpeed  = 60
	DefaultMaxSpeed    = 255
	DefaultStartTemp   = 35.0

	DefaultInterval         = 5
	DefaultFailureThreshold = 3
	DefaultTempRange        = 30.0
	DefaultCurveExponent    = 1.0
	DefaultHysteresis       = 2.0
	DefaultRampStep         = 15
	DefaultLogLevel         = LogLevelInfo
	DefaultStatusDB         = "/var/run/fancontrol/status.db"
	DefaultPIDFile          = "/var/run/fancontrol.pid"
)

// Policy names the duty applied when the daemon is disabled or exits.
type Policy string

const (
	// PolicyOff stops the fan.
	PolicyOff Policy = "off"
	// PolicyMax runs the fan at max_speed.
	PolicyMax Policy = "max"
	// PolicyHold leaves the PWM output untouched.
	PolicyHold Policy = "hold"
)

const (
	DefaultDisablePolicy  = PolicyOff
	DefaultShutdownPolicy = PolicyHold
)

// Config is an immutable snapshot of the daemon settings. A reload builds a
// new Config; fields are never changed in place once loaded.
type Config struct {
	Enabled     bool    `mapstructure:"enable" yaml:"enable" json:"enable"`
	ThermalFile string  `mapstructure:"thermal_file" yaml:"thermal_file" json:"thermal_file"`
	FanFile     string  `mapstructure:"fan_file" yaml:"fan_file" json:"fan_file"`
	TempDiv     int     `mapstructure:"temp_div" yaml:"temp_div" json:"temp_div"`
	StartSpeed  int     `mapstructure:"start_speed" yaml:"start_speed" json:"start_speed"`
	MaxSpeed    int     `mapstructure:"max_speed" yaml:"max_speed" json:"max_speed"`
	StartTemp   float64 `mapstructure:"start_temp" yaml:"start_temp" json:"start_temp"`

	// Interval is the tick period in seconds.
	Interval         int     `mapstructure:"interval" yaml:"interval" json:"interval"`
	FailureThreshold int     `mapstructure:"failure_threshold" yaml:"failure_threshold" json:"failure_threshold"`
	TempRange        float64 `mapstructure:"temp_range" yaml:"temp_range" json:"temp_range"`
	CurveExponent    float64 `mapstructure:"curve_exponent" yaml:"curve_exponent" json:"curve_exponent"`
	Hysteresis       float64 `mapstructure:"hysteresis" yaml:"hysteresis" json:"hysteresis"`
	RampStep         int     `mapstructure:"ramp_step" yaml:"ramp_step" json:"ramp_step"`
	DisablePolicy    Policy  `mapstructure:"disable_policy" yaml:"disable_policy" json:"disable_policy"`
	ShutdownPolicy   Policy  `mapstructure:"shutdown_policy" yaml:"shutdown_policy" json:"shutdown_policy"`

	LogLevel LogLevel `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	StatusDB string   `mapstructure:"status_db" yaml:"status_db" json:"status_db"`
	PIDFile  string   `mapstructure:"pid_file" yaml:"pid_file" json:"pid_file"`
}

// Default returns the configuration used when the store sets nothing.
func Default() Config {
	return Config{
		Enabled:          false,
		ThermalFile:      DefaultThermalFile,
		FanFile:          DefaultFanFile,
		TempDiv:          DefaultTempDiv,
		StartSpeed:       DefaultStartSpeed,
		MaxSpeed:         DefaultMaxSpeed,
		StartTemp:        DefaultStartTemp,
		Interval:         DefaultInterval,
		FailureThreshold: DefaultFailureThreshold,
		TempRange:        DefaultTempRange,
		CurveExponent:    DefaultCurveExponent,
		Hysteresis:       DefaultHysteresis,
		RampStep:         DefaultRampStep,
		DisablePolicy:    DefaultDisablePolicy,
		ShutdownPolicy:   DefaultShutdownPolicy,
		LogLevel:         DefaultLogLevel,
		StatusDB:         DefaultStatusDB,
		PIDFile:          DefaultPIDFile,
	}
}

// TickInterval returns the control loop period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// IOTimeout bounds a single sensor read or PWM write.
func (c *Config) IOTimeout() time.Duration {
	return c.TickInterval() / 2
}

// CurveParams returns the duty curve tunables.
func (c *Config) CurveParams() curve.Params {
	return curve.Params{
		StartTemp:  c.StartTemp,
		StartSpeed: c.StartSpeed,
		MaxSpeed:   c.MaxSpeed,
		TempRange:  c.TempRange,
		Exponent:   c.CurveExponent,
		Hysteresis: c.Hysteresis,
		RampStep:   c.RampStep,
	}
}

// DisabledDuty is the duty written on every tick while enable is off.
func (c *Config) DisabledDuty() int {
	if c.DisablePolicy == PolicyMax {
		return c.MaxSpeed
	}

	return curve.MinDuty
}

// ShutdownDuty is the duty written when the daemon exits. ok is false when
// the PWM output should be left as it is.
func (c *Config) ShutdownDuty() (duty int, ok bool) {
	switch c.ShutdownPolicy {
	case PolicyOff:
		return curve.MinDuty, true
	case PolicyMax:
		return c.MaxSpeed, true
	default:
		return 0, false
	}
}
