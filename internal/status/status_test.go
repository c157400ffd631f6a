package status_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/fancontrol/internal/errors"
	"codeberg.org/mutker/fancontrol/internal/logger"
	"codeberg.org/mutker/fancontrol/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "run", "status.db")

	rec, err := status.NewService(status.Config{DBPath: path}, logger.Nop())
	require.NoError(t, err)

	now := time.Now().Truncate(time.Microsecond)
	first := &status.Snapshot{
		State:       "running",
		Enabled:     true,
		Temperature: 45.2,
		Raw:         45200,
		TempValid:   true,
		Duty:        125,
		DutyPercent: 49.0,
		LastReadAt:  now,
		LastWriteAt: now,
		UpdatedAt:   now,
	}
	require.NoError(t, rec.Record(ctx, first))

	second := *first
	second.Duty = 255
	second.FailSafe = true
	second.Failures = 4
	second.TempValid = false
	second.LastError = "read /sys/temp: no such file"
	second.LastErrorAt = now.Add(time.Second)
	second.UpdatedAt = now.Add(time.Second)
	require.NoError(t, rec.Record(ctx, &second))

	got, err := status.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "running", got.State)
	assert.True(t, got.Enabled)
	assert.Equal(t, 255, got.Duty)
	assert.True(t, got.FailSafe)
	assert.Equal(t, 4, got.Failures)
	assert.False(t, got.TempValid)
	assert.Equal(t, second.LastError, got.LastError)
	assert.True(t, second.LastErrorAt.Equal(got.LastErrorAt))
	assert.True(t, second.UpdatedAt.Equal(got.UpdatedAt))

	require.NoError(t, rec.Close())

	// Reopening keeps the schema and the row.
	rec, err = status.NewService(status.Config{DBPath: path}, logger.Nop())
	require.NoError(t, err)
	defer rec.Close()

	got, err = status.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 255, got.Duty)
}

func TestLoadBeforeFirstRecord(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "status.db")

	_, err := status.Load(ctx, path)
	require.Error(t, err)
	assert.Equal(t, status.ErrNoStatus, errors.CodeOf(err))

	rec, err := status.NewService(status.Config{DBPath: path}, logger.Nop())
	require.NoError(t, err)
	defer rec.Close()

	_, err = status.Load(ctx, path)
	require.Error(t, err)
	assert.Equal(t, status.ErrNoStatus, errors.CodeOf(err))
}

func TestRecordRejectsNil(t *testing.T) {
	rec, err := status.NewService(status.Config{DBPath: filepath.Join(t.TempDir(), "status.db")}, logger.Nop())
	require.NoError(t, err)
	defer rec.Close()

	err = rec.Record(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, status.ErrInvalidStatus, errors.CodeOf(err))
}

func TestRecordCanceledContext(t *testing.T) {
	rec, err := status.NewService(status.Config{DBPath: filepath.Join(t.TempDir(), "status.db")}, logger.Nop())
	require.NoError(t, err)
	defer rec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = rec.Record(ctx, &status.Snapshot{State: "running"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrTimeout, errors.CodeOf(err))
}

func TestDisabledRecorder(t *testing.T) {
	rec, err := status.NewService(status.Config{}, logger.Nop())
	require.NoError(t, err)

	assert.NoError(t, rec.Record(context.Background(), &status.Snapshot{}))
	assert.NoError(t, rec.Close())
}
