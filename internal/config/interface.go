package config

import (
	"github.com/spf13/pflag"
)

// Option defines a configuration option that can be passed to NewLoader
type Option func(*options) error

// options holds internal configuration options
type options struct {
	configPath  string
	explicit    bool
	envPrefix   string
	sectionType string
	sectionName string
	flags       *pflag.FlagSet
}

// WithConfigFile specifies an explicit configuration file path. A file
// given this way must exist.
func WithConfigFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return nil
		}
		o.configPath = path
		o.explicit = true
		return nil
	}
}

// WithEnvPrefix specifies a custom environment variable prefix
// Default is "FANCONTROL"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		o.envPrefix = prefix
		return nil
	}
}

// WithSection selects the UCI section holding the settings. Options are
// taken from the section called name, or else from the first section of
// type sectionType.
func WithSection(sectionType, name string) Option {
	return func(o *options) error {
		o.sectionType = sectionType
		o.sectionName = name
		return nil
	}
}

// WithFlags binds command line flags; flags that were set override every
// other source.
func WithFlags(flags *pflag.FlagSet) Option {
	return func(o *options) error {
		o.flags = flags
		return nil
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// ValidationError represents a configuration validation error
type ValidationError interface {
	error
	// Field returns the name of the invalid field
	Field() string
	// Value returns the invalid value
	Value() interface{}
	// Reason returns why the value is invalid
	Reason() string
}

// Status represents the validity of a configuration
type Status struct {
	// Valid indicates whether the configuration is valid
	Valid bool
	// ValidationErrors contains any validation errors if Valid is false
	ValidationErrors []ValidationError
}
