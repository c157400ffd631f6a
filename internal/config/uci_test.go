package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUCINamedSection(t *testing.T) {
	input := `package fancontrol

# written by LuCI
config fancontrol 'other'
	option start_speed '10'

config fancontrol 'settings'
	option enable '1'
	option start_temp "42.5"
	option fan_file /sys/class/hwmon/hwmon1/pwm1
	list zones 'cpu'
	list zones 'wifi'
`

	opts, err := ParseUCI(strings.NewReader(input), "fancontrol", "settings")
	require.NoError(t, err)

	assert.Equal(t, "1", opts["enable"])
	assert.Equal(t, "42.5", opts["start_temp"])
	assert.Equal(t, "/sys/class/hwmon/hwmon1/pwm1", opts["fan_file"])
	assert.Equal(t, []string{"cpu", "wifi"}, opts["zones"])
	assert.NotContains(t, opts, "start_speed")
}

func TestParseUCIFallsBackToFirstTypedSection(t *testing.T) {
	input := `
config system
	option hostname 'router'

config fancontrol
	option start_speed '70'

config fancontrol
	option start_speed '90'
`

	opts, err := ParseUCI(strings.NewReader(input), "fancontrol", "settings")
	require.NoError(t, err)
	assert.Equal(t, "70", opts["start_speed"])
}

func TestParseUCINoSection(t *testing.T) {
	opts, err := ParseUCI(strings.NewReader("config system\n\toption hostname 'x'\n"), "fancontrol", "settings")
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestParseUCIErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"option before config", "option enable '1'\n"},
		{"unknown keyword", "config fancontrol\n\tsetting enable '1'\n"},
		{"unterminated quote", "config fancontrol\n\toption enable '1\n"},
		{"missing type", "config\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUCI(strings.NewReader(tt.input), "fancontrol", "settings")
			assert.Error(t, err)
		})
	}
}
