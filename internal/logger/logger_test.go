package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"codeberg.org/mutker/fancontrol/internal/errors"
	"codeberg.org/mutker/fancontrol/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { logger.SetLogLevel(logger.InfoLevel) })

	for _, level := range []string{"debug", "info", "warning", "warn", "error", ""} {
		assert.NoError(t, logger.SetLevel(level), level)
	}

	err := logger.SetLevel("loud")
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidLogLevel, errors.CodeOf(err))
}

func TestErrorWithCodeFields(t *testing.T) {
	logger.SetLogLevel(logger.DebugLevel)
	t.Cleanup(func() { logger.SetLogLevel(logger.InfoLevel) })

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf).With("control")

	log.ErrorWithCode(errors.New().Wrap(errors.ErrPWMWrite, os.ErrPermission)).Msg("write failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "control", line["component"])
	assert.Equal(t, string(errors.ErrPWMWrite), line["error_code"])
	assert.Equal(t, "permission denied", line["error"])
	assert.Equal(t, "write failed", line["message"])
}

func TestNopDiscards(t *testing.T) {
	log := logger.Nop()
	assert.NotPanics(t, func() {
		log.Info().Int("duty", 10).Msg("ignored")
		log.ErrorWithContext(os.ErrClosed, "status", "record").Send()
	})
}
