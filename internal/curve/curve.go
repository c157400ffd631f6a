// Package curve maps a temperature reading to a PWM duty cycle.
package curve

import "math"

const (
	// MaxDuty is the largest value a PWM attribute accepts.
	MaxDuty = 255
	// MinDuty means the fan is stopped.
	MinDuty = 0
)

// Params are the curve tunables taken from a configuration snapshot.
type Params struct {
	// StartTemp is the temperature in °C at which the fan starts at StartSpeed.
	StartTemp float64
	// StartSpeed is the duty applied at exactly StartTemp.
	StartSpeed int
	// MaxSpeed caps every computed duty.
	MaxSpeed int
	// TempRange is the distance above StartTemp at which MaxSpeed is reached.
	TempRange float64
	// Exponent shapes the curve between StartTemp and StartTemp+TempRange.
	// 1 is linear, values above 1 stay quieter at the low end.
	Exponent float64
	// Hysteresis is the band in °C below StartTemp where a running fan holds.
	Hysteresis float64
	// RampStep is how much the duty drops per tick below the band.
	RampStep int
}

// Ceiling returns the temperature at which the duty saturates at MaxSpeed.
func (p Params) Ceiling() float64 {
	return p.StartTemp + p.TempRange
}

// Compute returns the duty for temp given the previously applied duty.
// It has no side effects: identical inputs always yield the same duty.
func Compute(temp float64, previous int, p Params) int {
	maxSpeed := clamp(p.MaxSpeed, MinDuty, MaxDuty)
	startSpeed := clamp(p.StartSpeed, MinDuty, maxSpeed)

	// an unusable reading is treated as the worst case
	if math.IsNaN(temp) || math.IsInf(temp, 1) {
		return maxSpeed
	}

	switch {
	case temp == p.StartTemp:
		return startSpeed
	case temp > p.StartTemp:
		return clamp(rise(temp, startSpeed, maxSpeed, p), MinDuty, maxSpeed)
	}

	if previous <= 0 {
		return MinDuty
	}

	// the fan never comes down from above StartSpeed in more than one step
	hold := min(clamp(previous, MinDuty, maxSpeed), startSpeed)
	if temp >= p.StartTemp-p.Hysteresis {
		return hold
	}

	if p.RampStep <= 0 {
		return MinDuty
	}

	return clamp(hold-p.RampStep, MinDuty, maxSpeed)
}

func rise(temp float64, startSpeed, maxSpeed int, p Params) int {
	if p.TempRange <= 0 || temp >= p.Ceiling() {
		return maxSpeed
	}

	fraction := (temp - p.StartTemp) / p.TempRange
	exponent := p.Exponent
	if exponent <= 0 {
		exponent = 1
	}

	span := float64(maxSpeed - startSpeed)
	duty := float64(startSpeed) + span*math.Pow(fraction, exponent)

	return int(math.Round(duty))
}

// Percent converts a duty to the percentage shown to users.
func Percent(duty int) float64 {
	return float64(clamp(duty, MinDuty, MaxDuty)) / MaxDuty * 100
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}

	if value > maxValue {
		return maxValue
	}

	return value
}
