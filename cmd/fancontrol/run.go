package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/fancontrol/internal/config"
	"codeberg.org/mutker/fancontrol/internal/control"
	"codeberg.org/mutker/fancontrol/internal/errors"
	"codeberg.org/mutker/fancontrol/internal/logger"
	"codeberg.org/mutker/fancontrol/internal/pid"
	"codeberg.org/mutker/fancontrol/internal/status"
	"github.com/spf13/cobra"
)

func runDaemon(cmd *cobra.Command) error {
	errFactory := errors.New()

	loader, err := newLoader(cmd)
	if err != nil {
		return err
	}

	cfg, err := loader.Load()
	if err != nil {
		logger.Error().Err(err).Str("file", loader.Path()).Msg("Failed to load configuration")
		return err
	}

	if err := logger.Init(cfg.LogLevel.String(), logger.IsService()); err != nil {
		return err
	}
	logger.Debug().Str("file", loader.Path()).Msg("Config loaded")

	if err := pid.Write(cfg.PIDFile); err != nil {
		logger.ErrorWithCode(asError(err, errors.ErrPIDFile)).Str("file", cfg.PIDFile).Msg("Failed to write PID file")
		return err
	}
	defer func() {
		if err := pid.Remove(cfg.PIDFile); err != nil {
			logger.Error().Err(err).Msg("Failed to remove PID file")
		}
	}()

	recorder := openStatus(cfg)
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close status database")
		}
	}()

	ctrl, err := control.New(cfg,
		control.WithRecorder(recorder),
		control.WithLogger(logger.New("control")),
	)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reload := func() {
		reloadConfig(loader, ctrl)
	}

	go handleHangup(ctx, reload)
	go logEvents(ctx, ctrl, logger.New("events"))

	if err := loader.Watch(ctx, reload); err != nil {
		logger.Warn().Err(err).Msg("Not watching configuration file, reload with SIGHUP")
	}

	if err := ctrl.Run(ctx); err != nil {
		logger.ErrorWithCode(errFactory.Wrap(errors.ErrMainLoop, err)).Msg("Error in main loop")
		return err
	}

	logger.Info().Msg("Exiting...")

	return nil
}

// openStatus opens the status database. A broken status store is reported
// and replaced by a no-op recorder so fan control still starts.
func openStatus(cfg *config.Config) status.Recorder {
	log := logger.New("status")

	recorder, err := status.NewService(status.Config{DBPath: cfg.StatusDB}, log)
	if err != nil {
		log.ErrorWithContext(err, "status", "open").Str("path", cfg.StatusDB).Msg("Status database unavailable")
		recorder, _ = status.NewService(status.Config{}, log)
	}

	return recorder
}

func reloadConfig(loader *config.Loader, ctrl *control.Controller) {
	cfg, err := loader.Read()
	if err != nil {
		ctrl.Reject(err)
		return
	}

	if err := ctrl.Reload(cfg); err != nil {
		return
	}

	logger.Info().Str("file", loader.Path()).Msg("Configuration reload requested")
}

func handleHangup(ctx context.Context, reload func()) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logger.Info().Msg("Received SIGHUP")
			reload()
		}
	}
}

func logEvents(ctx context.Context, ctrl *control.Controller, log logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ctrl.Events():
			handleEvent(log, ev, ctrl.Config)
		}
	}
}

// handleEvent logs ev at the level its kind calls for. The log level of a
// reloaded configuration is applied here, once the controller has switched
// to it.
func handleEvent(log logger.Logger, ev control.Event, active func() config.Config) {
	var e *logger.LogEvent
	switch ev.Kind {
	case control.EventFailSafe, control.EventWriteError:
		e = log.Error()
	case control.EventReadError, control.EventReloadRejected:
		e = log.Warn()
	default:
		e = log.Info()
	}

	e.Str("event", string(ev.Kind)).Int("duty", ev.Duty)
	if ev.Err != nil {
		e.Str("error_code", string(errors.CodeOf(ev.Err))).Err(ev.Err)
	}
	e.Msg("Control event")

	if ev.Kind == control.EventReloaded {
		if err := logger.SetLevel(active().LogLevel.String()); err != nil {
			log.Warn().Err(err).Msg("Failed to apply log level")
		}
	}
}

// asError returns err as an errors.Error, wrapping it with code if needed.
func asError(err error, code errors.ErrorCode) errors.Error {
	var appErr errors.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	return errors.New().Wrap(code, err)
}
