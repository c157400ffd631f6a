// Package control runs the fan control loop: read the sensor, compute a
// duty, write it to the PWM output, once per tick.
package control

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/fancontrol/internal/config"
	"codeberg.org/mutker/fancontrol/internal/curve"
	"codeberg.org/mutker/fancontrol/internal/errors"
	"codeberg.org/mutker/fancontrol/internal/logger"
	"codeberg.org/mutker/fancontrol/internal/pwm"
	"codeberg.org/mutker/fancontrol/internal/sensor"
	"codeberg.org/mutker/fancontrol/internal/status"
)

// Controller owns the active configuration and the duty state. Run executes
// on a single goroutine; Reload, Status, Config and Events are safe to call
// from any goroutine.
type Controller struct {
	reader   TemperatureReader
	writer   DutyWriter
	recorder status.Recorder
	log      logger.Logger
	now      func() time.Time
	events   chan Event

	// pending holds the latest accepted reload until the next tick.
	pending atomic.Pointer[config.Config]
	active  atomic.Pointer[config.Config]
	running atomic.Bool

	mu       sync.RWMutex
	state    State
	phase    Phase
	snapshot status.Snapshot

	// owned by the loop goroutine
	cfg      *config.Config
	current  status.Snapshot
	previous int
	failures int
	failSafe bool
}

// New returns a stopped Controller for cfg. An invalid cfg is reported as
// *config.ConfigError.
func New(cfg *config.Config, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, config.NewConfigError("", nil, "no configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		reader:   sensor.NewReader(),
		writer:   pwm.NewWriter(),
		log:      logger.New("control"),
		now:      time.Now,
		events:   make(chan Event, defaultEventBuffer),
		state:    StateStopped,
		phase:    PhaseIdle,
		snapshot: status.Snapshot{State: string(StateStopped)},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.recorder == nil {
		c.recorder, _ = status.NewService(status.Config{}, c.log)
	}

	active := *cfg
	c.cfg = &active
	c.active.Store(&active)
	c.current = status.Snapshot{State: string(StateStopped), Enabled: active.Enabled}

	return c, nil
}

// Run executes ticks until ctx is done, then applies the shutdown policy.
// The first tick runs immediately. Cancellation is checked between ticks;
// a tick in progress always completes.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.New().WithMessage(errors.ErrAlreadyRunning, "control loop already running")
	}
	defer c.running.Store(false)

	c.setState(StateRunning)
	c.seed()

	interval := c.cfg.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.log.Info().
		Bool("enabled", c.cfg.Enabled).
		Str("thermal_file", c.cfg.ThermalFile).
		Str("fan_file", c.cfg.FanFile).
		Dur("interval", interval).
		Msg("Fan control started")

loop:
	for {
		if ctx.Err() != nil {
			break
		}

		c.tick()

		if next := c.cfg.TickInterval(); next != interval {
			interval = next
			ticker.Reset(interval)
			c.log.Debug().Dur("interval", interval).Msg("Tick interval changed")
		}

		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
		}
	}

	c.shutdown()
	c.setState(StateStopped)
	c.current.State = string(StateStopped)
	c.current.UpdatedAt = c.now()
	c.publish()

	c.log.Info().Msg("Fan control stopped")

	return nil
}

// Reload validates cfg and schedules it for the next tick. An invalid cfg
// is returned as *config.ConfigError, reported through Status and Events,
// and the active configuration stays in force. When several reloads arrive
// between two ticks the last one wins.
func (c *Controller) Reload(cfg *config.Config) error {
	if cfg == nil {
		return config.NewConfigError("", nil, "no configuration")
	}

	if err := cfg.Validate(); err != nil {
		c.Reject(err)
		return err
	}

	next := *cfg
	c.pending.Store(&next)

	c.mu.Lock()
	c.snapshot.ConfigError = ""
	c.mu.Unlock()

	c.log.Debug().Msg("Configuration reload scheduled")

	return nil
}

// Reject reports a configuration that could not be loaded at all. The
// active configuration stays in force.
func (c *Controller) Reject(err error) {
	c.mu.Lock()
	c.snapshot.ConfigError = err.Error()
	duty := c.snapshot.Duty
	c.mu.Unlock()

	c.log.ErrorWithContext(err, "control", "reload").Msg("Configuration rejected, keeping current settings")
	c.emit(EventReloadRejected, duty, err)
}

// Status returns a copy of the latest snapshot.
func (c *Controller) Status() status.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// State returns the lifecycle state and phase.
func (c *Controller) State() (State, Phase) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.phase
}

// Config returns a copy of the configuration in force.
func (c *Controller) Config() config.Config {
	return *c.active.Load()
}

// Events returns the channel notable transitions are sent on.
func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) tick() {
	c.setPhase(PhaseExecuting)
	defer c.setPhase(PhaseIdle)

	c.applyPending()
	cfg := c.cfg

	c.current.State = string(StateRunning)
	c.current.Enabled = cfg.Enabled

	if !cfg.Enabled {
		c.apply(cfg, cfg.DisabledDuty())
		c.finish()
		return
	}

	ctx, cancel := c.ioContext()
	reading, err := c.reader.Read(ctx, cfg.ThermalFile, cfg.TempDiv)
	cancel()

	if err != nil {
		c.onReadError(cfg, err)
	} else {
		c.onReading(cfg, reading)
	}

	c.finish()
}

func (c *Controller) onReading(cfg *config.Config, reading sensor.Reading) {
	c.current.Raw = int64(reading.Raw)
	c.current.Temperature = reading.Celsius
	c.current.TempValid = !math.IsNaN(reading.Celsius) && !math.IsInf(reading.Celsius, 0)
	c.current.LastReadAt = reading.Timestamp

	recovered := c.failSafe
	if recovered {
		c.failSafe = false
		c.writer.Force()
		c.log.Info().
			Int("failures", c.failures).
			Float64("temperature", reading.Celsius).
			Msg("Sensor recovered, leaving fail-safe")
	}
	c.failures = 0

	duty := curve.Compute(reading.Celsius, c.previous, cfg.CurveParams())
	c.apply(cfg, duty)

	if recovered {
		c.emit(EventRecovered, duty, nil)
	}

	c.log.Debug().
		Int("raw", reading.Raw).
		Float64("temperature", reading.Celsius).
		Int("duty", duty).
		Msg("")
}

func (c *Controller) onReadError(cfg *config.Config, err error) {
	c.failures++
	c.current.TempValid = false
	c.setLastError(err)

	if c.failures <= cfg.FailureThreshold {
		// previous may predate a reload that lowered max_speed
		held := min(c.previous, cfg.MaxSpeed)
		c.log.Warn().
			Err(err).
			Int("failures", c.failures).
			Int("threshold", cfg.FailureThreshold).
			Int("duty", held).
			Msg("Sensor read failed, holding duty")
		c.emit(EventReadError, held, err)
		c.apply(cfg, held)
		return
	}

	if !c.failSafe {
		c.failSafe = true
		failErr := errors.New().Wrap(errors.ErrFailSafe, err)
		c.log.ErrorWithCode(failErr).
			Int("failures", c.failures).
			Int("duty", cfg.MaxSpeed).
			Msg("Sensor failure threshold exceeded, fan at max_speed")
		c.emit(EventFailSafe, cfg.MaxSpeed, failErr)
	}

	c.apply(cfg, cfg.MaxSpeed)
}

// apply writes duty, clamped to [0, max_speed], and records it as the
// previous duty whether or not the write succeeded; a failed write is
// retried on the next tick. The published duty only changes once the
// output has accepted it.
func (c *Controller) apply(cfg *config.Config, duty int) {
	duty = max(curve.MinDuty, min(duty, cfg.MaxSpeed))
	c.previous = duty

	ctx, cancel := c.ioContext()
	defer cancel()

	if err := c.writer.Write(ctx, cfg.FanFile, duty); err != nil {
		c.setLastError(err)
		c.log.ErrorWithContext(err, "pwm", "write").Int("duty", duty).Msg("Failed to set fan duty")
		c.emit(EventWriteError, duty, err)
		return
	}

	c.current.Duty = duty
	if written := c.writer.State(); written.Valid {
		c.current.Duty = written.Duty
		c.current.LastWriteAt = written.WrittenAt
	}
	c.current.DutyPercent = curve.Percent(c.current.Duty)
}

func (c *Controller) finish() {
	c.current.FailSafe = c.failSafe
	c.current.Failures = c.failures
	c.current.UpdatedAt = c.now()
	c.publish()
}

// publish makes c.current visible to Status and the recorder. A failing
// recorder never affects fan control.
func (c *Controller) publish() {
	c.mu.Lock()
	configErr := c.snapshot.ConfigError
	c.snapshot = c.current
	c.snapshot.ConfigError = configErr
	snap := c.snapshot
	c.mu.Unlock()

	ctx, cancel := c.ioContext()
	defer cancel()

	if err := c.recorder.Record(ctx, &snap); err != nil {
		c.log.Warn().Err(err).Msg("Failed to record status")
	}
}

func (c *Controller) applyPending() {
	next := c.pending.Swap(nil)
	if next == nil {
		return
	}

	prev := c.cfg
	c.cfg = next
	c.active.Store(next)
	c.writer.Force()

	c.log.Info().
		Bool("enabled", next.Enabled).
		Int("start_speed", next.StartSpeed).
		Int("max_speed", next.MaxSpeed).
		Float64("start_temp", next.StartTemp).
		Int("interval", next.Interval).
		Bool("fan_file_changed", prev.FanFile != next.FanFile).
		Msg("Configuration reloaded")
	c.emit(EventReloaded, c.previous, nil)
}

// seed initialises the previous duty from the PWM output so that the first
// tick continues from what the fan is doing.
func (c *Controller) seed() {
	ctx, cancel := c.ioContext()
	defer cancel()

	duty, err := c.writer.Current(ctx, c.cfg.FanFile)
	if err != nil {
		c.log.Debug().Err(err).Msg("Could not read current duty, assuming 0")
		duty = curve.MinDuty
	}

	c.previous = max(curve.MinDuty, min(duty, c.cfg.MaxSpeed))
}

func (c *Controller) shutdown() {
	duty, ok := c.cfg.ShutdownDuty()
	if !ok {
		c.log.Info().Int("duty", c.previous).Msg("Leaving fan duty as is")
		return
	}

	c.writer.Force()
	c.apply(c.cfg, duty)
	c.log.Info().
		Str("policy", string(c.cfg.ShutdownPolicy)).
		Int("duty", duty).
		Msg("Shutdown duty applied")
}

// ioContext bounds a single I/O operation. It is not derived from Run's
// context so that shutdown never interrupts a write halfway.
func (c *Controller) ioContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.cfg.IOTimeout())
}

func (c *Controller) setLastError(err error) {
	c.current.LastError = err.Error()
	c.current.LastErrorAt = c.now()
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.phase = PhaseIdle
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = p
}
