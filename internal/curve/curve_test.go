package curve_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/fancontrol/internal/curve"
	"github.com/stretchr/testify/assert"
)

func defaultParams() curve.Params {
	return curve.Params{
		StartTemp:  35,
		StartSpeed: 60,
		MaxSpeed:   255,
		TempRange:  30,
		Exponent:   1,
		Hysteresis: 2,
		RampStep:   15,
	}
}

func TestComputeAtStartTemp(t *testing.T) {
	p := defaultParams()

	for _, previous := range []int{0, 1, 60, 200, 255} {
		assert.Equal(t, 60, curve.Compute(35, previous, p), "previous=%d", previous)
	}
}

func TestComputeHeldAtStartTempDoesNotOscillate(t *testing.T) {
	p := defaultParams()

	duty := 0
	for i := 0; i < 20; i++ {
		duty = curve.Compute(35, duty, p)
		assert.Equal(t, 60, duty)
	}
}

func TestComputeScenario45Degrees(t *testing.T) {
	p := defaultParams()
	temp := 45000.0 / 1000

	duty := curve.Compute(temp, 0, p)

	assert.Greater(t, duty, 60)
	assert.Less(t, duty, 255)
	assert.Equal(t, 125, duty)
}

func TestComputeSaturatesAtCeiling(t *testing.T) {
	p := defaultParams()

	assert.Equal(t, 255, curve.Compute(p.Ceiling(), 0, p))
	assert.Equal(t, 255, curve.Compute(120, 0, p))

	p.MaxSpeed = 200
	assert.Equal(t, 200, curve.Compute(90, 255, p))
}

func TestComputeNeverExceedsMaxSpeed(t *testing.T) {
	for _, maxSpeed := range []int{60, 100, 180, 255} {
		p := defaultParams()
		p.MaxSpeed = maxSpeed

		for temp := p.StartTemp; temp < 150; temp += 0.25 {
			for _, previous := range []int{0, 60, 255, 300} {
				duty := curve.Compute(temp, previous, p)
				assert.LessOrEqual(t, duty, maxSpeed)
				assert.GreaterOrEqual(t, duty, 0)
			}
		}
	}
}

func TestComputeMonotonic(t *testing.T) {
	exponents := []float64{0.5, 1, 2}
	for _, exponent := range exponents {
		p := defaultParams()
		p.Exponent = exponent

		for _, previous := range []int{0, 30, 60, 255} {
			last := -1
			for temp := 0.0; temp < 100; temp += 0.1 {
				duty := curve.Compute(temp, previous, p)
				assert.GreaterOrEqual(t, duty, last, "exponent=%v previous=%d temp=%v", exponent, previous, temp)
				last = duty
			}
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	p := defaultParams()
	want := curve.Compute(51.3, 90, p)

	for i := 0; i < 100; i++ {
		assert.Equal(t, want, curve.Compute(51.3, 90, p))
	}
}

func TestComputeBelowStartTemp(t *testing.T) {
	p := defaultParams()

	tests := []struct {
		name     string
		temp     float64
		previous int
		want     int
	}{
		{"fan off stays off", 20, 0, 0},
		{"within band holds start speed", 34, 60, 60},
		{"within band caps at start speed", 33, 255, 60},
		{"within band keeps lower duty", 33.5, 30, 30},
		{"below band ramps down", 32, 60, 45},
		{"ramp from high duty starts at start speed", 30, 200, 45},
		{"ramp floors at zero", 25, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, curve.Compute(tt.temp, tt.previous, p))
		})
	}
}

func TestComputeRampConvergesToOff(t *testing.T) {
	p := defaultParams()

	duty := 60
	steps := 0
	for duty > 0 {
		next := curve.Compute(25, duty, p)
		assert.Less(t, next, duty)
		duty = next
		steps++
	}
	assert.Equal(t, 4, steps)
}

func TestComputeNoRampStopsAtOnce(t *testing.T) {
	p := defaultParams()
	p.RampStep = 0

	assert.Equal(t, 0, curve.Compute(20, 60, p))
}

func TestComputeAnomalousTemperatures(t *testing.T) {
	p := defaultParams()

	assert.Equal(t, 255, curve.Compute(math.NaN(), 0, p))
	assert.Equal(t, 255, curve.Compute(math.Inf(1), 0, p))
	assert.Equal(t, 0, curve.Compute(math.Inf(-1), 0, p))

	p.MaxSpeed = 120
	assert.Equal(t, 120, curve.Compute(math.NaN(), 255, p))
}

func TestComputeCurveExponent(t *testing.T) {
	p := defaultParams()
	p.Exponent = 2

	// halfway up the range a quadratic curve sits at a quarter of the span
	assert.Equal(t, 109, curve.Compute(50, 0, p))
}

func TestPercent(t *testing.T) {
	assert.InDelta(t, 100.0, curve.Percent(255), 1e-9)
	assert.InDelta(t, 23.53, curve.Percent(60), 0.01)
	assert.InDelta(t, 0.0, curve.Percent(-4), 1e-9)
}
