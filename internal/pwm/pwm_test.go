package pwm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/fancontrol/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFile struct {
	values []int
	fail   error
}

func (f *recordingFile) write(_ context.Context, _ string, value int) error {
	if f.fail != nil {
		return f.fail
	}
	f.values = append(f.values, value)
	return nil
}

func newTestWriter(f *recordingFile) *Writer {
	w := NewWriter()
	w.write = f.write
	return w
}

func TestWriteSkipsRedundantDuty(t *testing.T) {
	f := &recordingFile{}
	w := newTestWriter(f)
	ctx := context.Background()

	require.NoError(t, w.Write(ctx, "pwm1", 100))
	require.NoError(t, w.Write(ctx, "pwm1", 100))
	require.NoError(t, w.Write(ctx, "pwm1", 120))
	require.NoError(t, w.Write(ctx, "pwm1", 120))

	assert.Equal(t, []int{100, 120}, f.values)
	assert.Equal(t, 2, w.Writes())
	assert.Equal(t, 120, w.State().Duty)
	assert.True(t, w.State().Valid)
}

func TestWriteForced(t *testing.T) {
	f := &recordingFile{}
	w := newTestWriter(f)
	ctx := context.Background()

	require.NoError(t, w.Write(ctx, "pwm1", 80))
	w.Force()
	require.NoError(t, w.Write(ctx, "pwm1", 80))
	require.NoError(t, w.Write(ctx, "pwm1", 80))

	assert.Equal(t, []int{80, 80}, f.values)
}

func TestWritePathChangeForcesWrite(t *testing.T) {
	f := &recordingFile{}
	w := newTestWriter(f)
	ctx := context.Background()

	require.NoError(t, w.Write(ctx, "pwm1", 80))
	require.NoError(t, w.Write(ctx, "pwm2", 80))

	assert.Equal(t, []int{80, 80}, f.values)
	assert.Equal(t, "pwm2", w.State().Path)
}

func TestWriteFailureForcesRetry(t *testing.T) {
	f := &recordingFile{}
	w := newTestWriter(f)
	ctx := context.Background()

	require.NoError(t, w.Write(ctx, "pwm1", 80))

	f.fail = os.ErrPermission
	err := w.Write(ctx, "pwm1", 90)
	require.Error(t, err)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "pwm1", writeErr.Path)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, errors.ErrPWMWrite, errors.CodeOf(err))
	assert.Equal(t, 80, w.State().Duty, "failed write must not change state")

	f.fail = nil
	require.NoError(t, w.Write(ctx, "pwm1", 80))
	assert.Equal(t, []int{80, 80}, f.values)
}

func TestWriteRejectsOutOfRange(t *testing.T) {
	f := &recordingFile{}
	w := newTestWriter(f)

	for _, duty := range []int{-1, 256} {
		err := w.Write(context.Background(), "pwm1", duty)
		require.Error(t, err)
		assert.Empty(t, f.values)
	}
}

func TestWriteAndCurrentOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pwm1")
	require.NoError(t, os.WriteFile(path, []byte("0"), 0o644))

	w := NewWriter()
	require.NoError(t, w.Write(context.Background(), path, 7))

	duty, err := w.Current(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 7, duty)
}

func TestCurrentRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pwm1")
	require.NoError(t, os.WriteFile(path, []byte("1023\n"), 0o644))

	_, err := NewWriter().Current(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidDuty, errors.CodeOf(err))
}
