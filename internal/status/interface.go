package status

import (
	"context"
	"time"
)

// Recorder publishes the latest Snapshot of the control loop.
type Recorder interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Snapshot is the externally visible state of the daemon after a tick. Only
// the most recent snapshot is kept.
type Snapshot struct {
	State       string  `json:"state" yaml:"state"`
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	Raw         int64   `json:"raw" yaml:"raw"`
	TempValid   bool    `json:"temp_valid" yaml:"temp_valid"`
	Duty        int     `json:"duty" yaml:"duty"`
	DutyPercent float64 `json:"duty_percent" yaml:"duty_percent"`
	FailSafe    bool    `json:"fail_safe" yaml:"fail_safe"`
	Failures    int     `json:"failures" yaml:"failures"`

	LastError   string    `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	LastErrorAt time.Time `json:"last_error_at,omitempty" yaml:"last_error_at,omitempty"`
	ConfigError string    `json:"config_error,omitempty" yaml:"config_error,omitempty"`

	LastReadAt  time.Time `json:"last_read_at,omitempty" yaml:"last_read_at,omitempty"`
	LastWriteAt time.Time `json:"last_write_at,omitempty" yaml:"last_write_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}
