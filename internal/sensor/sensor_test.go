package sensor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/fancontrol/internal/errors"
	"codeberg.org/mutker/fancontrol/internal/sensor"
	"codeberg.org/mutker/fancontrol/internal/sysfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "temp")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadMilliDegrees(t *testing.T) {
	path := writeTemp(t, "45000\n")

	r, err := sensor.NewReader().Read(context.Background(), path, 1000)
	require.NoError(t, err)
	assert.Equal(t, 45000, r.Raw)
	assert.InDelta(t, 45.0, r.Celsius, 1e-9)
	assert.False(t, r.Timestamp.IsZero())
}

func TestReadWholeDegrees(t *testing.T) {
	path := writeTemp(t, "52")

	r, err := sensor.NewReader().Read(context.Background(), path, 1)
	require.NoError(t, err)
	assert.InDelta(t, 52.0, r.Celsius, 1e-9)
}

func TestReadFailures(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		tempDiv int
		is      error
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") }, 1000, os.ErrNotExist},
		{"empty file", func(t *testing.T) string { return writeTemp(t, "\n") }, 1000, sysfs.ErrEmpty},
		{"garbage", func(t *testing.T) string { return writeTemp(t, "hot") }, 1000, nil},
		{"zero divisor", func(t *testing.T) string { return writeTemp(t, "45000") }, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path(t)

			_, err := sensor.NewReader().Read(context.Background(), path, tt.tempDiv)
			require.Error(t, err)

			var readErr *sensor.ReadError
			require.ErrorAs(t, err, &readErr)
			assert.Equal(t, path, readErr.Path)
			assert.Equal(t, errors.ErrSensorRead, errors.CodeOf(err))
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}
