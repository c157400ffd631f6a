package status

const (
	defaultDirPerm = 0o755
)

type Config struct {
	// DBPath is the SQLite file holding the status row. Empty disables it.
	DBPath string
}

func (c Config) Enabled() bool {
	return c.DBPath != ""
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
