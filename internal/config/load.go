package config

import (
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/fancontrol/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level": "log_level",
	"status-db": "status_db",
	"pid-file":  "pid_file",
	"interval":  "interval",
}

// Loader builds Config snapshots from the configuration file, the
// environment and command line flags, in increasing order of precedence.
// Each Load call starts from scratch, so a reload never sees state left
// behind by an earlier one.
type Loader struct {
	opts options
}

// NewLoader creates a Loader. Without options it reads the UCI file at
// DefaultPath and the FANCONTROL_* environment.
func NewLoader(opts ...Option) (*Loader, error) {
	o := options{
		configPath:  DefaultPath,
		envPrefix:   DefaultEnvPrefix,
		sectionType: DefaultSectionType,
		sectionName: DefaultSectionName,
	}

	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errors.New().Wrap(errors.ErrInvalidConfig, err)
		}
	}

	return &Loader{opts: o}, nil
}

// Path returns the configuration file the loader reads.
func (l *Loader) Path() string {
	return l.opts.configPath
}

// Load reads and validates a new Config. Invalid settings are reported as
// *ConfigError.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.Read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read merges every source into a Config without validating it. Values that
// cannot be converted to their field type are still reported as
// *ConfigError.
func (l *Loader) Read() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(l.opts.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := l.bindFlags(v); err != nil {
		return nil, err
	}

	if err := l.readFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, decodeError(err)
	}

	return cfg, nil
}

func (l *Loader) bindFlags(v *viper.Viper) error {
	if l.opts.flags == nil {
		return nil
	}

	for name, key := range flagKeys {
		flag := l.opts.flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.New().Wrap(errors.ErrBindFlags, err)
		}
	}

	return nil
}

func (l *Loader) readFile(v *viper.Viper) error {
	path := l.opts.configPath
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !l.opts.explicit {
			return nil
		}
		if os.IsNotExist(err) {
			return errors.New().WithData(errors.ErrMissingConfig, path)
		}
		return errors.New().Wrap(errors.ErrReadConfig, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".yaml", ".yml", ".json":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.New().Wrap(errors.ErrParseConfig, err)
		}
	default:
		settings, err := ReadUCI(path, l.opts.sectionType, l.opts.sectionName)
		if err != nil {
			return errors.New().Wrap(errors.ErrParseConfig, err)
		}
		if err := v.MergeConfigMap(settings); err != nil {
			return errors.New().Wrap(errors.ErrParseConfig, err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("enable", d.Enabled)
	v.SetDefault("thermal_file", d.ThermalFile)
	v.SetDefault("fan_file", d.FanFile)
	v.SetDefault("temp_div", d.TempDiv)
	v.SetDefault("start_speed", d.StartSpeed)
	v.SetDefault("max_speed", d.MaxSpeed)
	v.SetDefault("start_temp", d.StartTemp)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("failure_threshold", d.FailureThreshold)
	v.SetDefault("temp_range", d.TempRange)
	v.SetDefault("curve_exponent", d.CurveExponent)
	v.SetDefault("hysteresis", d.Hysteresis)
	v.SetDefault("ramp_step", d.RampStep)
	v.SetDefault("disable_policy", string(d.DisablePolicy))
	v.SetDefault("shutdown_policy", string(d.ShutdownPolicy))
	v.SetDefault("log_level", string(d.LogLevel))
	v.SetDefault("status_db", d.StatusDB)
	v.SetDefault("pid_file", d.PIDFile)
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", string(DefaultLogLevel), "log level (debug, info, warning, error)")
	fs.String("status-db", DefaultStatusDB, "status database path, empty to disable")
	fs.String("pid-file", DefaultPIDFile, "pid file path, empty to disable")
	fs.Int("interval", DefaultInterval, "control interval in seconds")
}
