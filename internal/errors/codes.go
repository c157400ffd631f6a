package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrTimeout         ErrorCode = "operation_timeout"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrMissingConfig   ErrorCode = "missing_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrParseConfig     ErrorCode = "parse_config_failed"
	ErrWatchConfig     ErrorCode = "watch_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Lifecycle errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Fan control errors
	ErrSensorRead     ErrorCode = "sensor_read_failed"
	ErrPWMWrite       ErrorCode = "pwm_write_failed"
	ErrPWMRead        ErrorCode = "pwm_read_failed"
	ErrInvalidDuty    ErrorCode = "invalid_duty"
	ErrFailSafe       ErrorCode = "fail_safe_engaged"
	ErrReloadRejected ErrorCode = "reload_rejected"
	ErrMainLoop       ErrorCode = "main_loop_failed"

	// Status store errors
	ErrInitStatus   ErrorCode = "init_status_failed"
	ErrRecordStatus ErrorCode = "record_status_failed"
	ErrLoadStatus   ErrorCode = "load_status_failed"
	ErrCloseStatus  ErrorCode = "close_status_failed"

	// PID file errors
	ErrPIDFile ErrorCode = "pid_file_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrTimeout:         "Operation timed out",
	ErrInvalidConfig:   "Invalid configuration",
	ErrMissingConfig:   "Missing configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read configuration",
	ErrParseConfig:     "Failed to parse configuration",
	ErrWatchConfig:     "Failed to watch configuration",
	ErrInvalidInterval: "Invalid interval value",
	ErrInvalidLogLevel: "Invalid log level",
	ErrInitFailed:      "Initialization failed",
	ErrShutdownFailed:  "Shutdown failed",
	ErrAlreadyRunning:  "Already running",
	ErrSensorRead:      "Failed to read temperature sensor",
	ErrPWMWrite:        "Failed to write fan duty",
	ErrPWMRead:         "Failed to read fan duty",
	ErrInvalidDuty:     "Duty out of range",
	ErrFailSafe:        "Fail-safe engaged",
	ErrReloadRejected:  "Configuration reload rejected",
	ErrMainLoop:        "Error in main loop",
	ErrInitStatus:      "Failed to initialize status store",
	ErrRecordStatus:    "Failed to record status",
	ErrLoadStatus:      "Failed to load status",
	ErrCloseStatus:     "Failed to close status store",
	ErrPIDFile:         "PID file error",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
