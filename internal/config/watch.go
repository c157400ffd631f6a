package config

import (
	"context"
	"path/filepath"
	"time"

	"codeberg.org/mutker/fancontrol/internal/errors"
	"codeberg.org/mutker/fancontrol/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events editors and uci commit
// produce for a single save.
const watchDebounce = 250 * time.Millisecond

// Watch calls onChange after the configuration file changes, until ctx is
// done. The parent directory is watched so that files replaced by rename
// keep being followed.
func (l *Loader) Watch(ctx context.Context, onChange func()) error {
	path := filepath.Clean(l.opts.configPath)
	if path == "." {
		return errors.New().WithMessage(errors.ErrWatchConfig, "no configuration file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New().Wrap(errors.ErrWatchConfig, err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return errors.New().Wrap(errors.ErrWatchConfig, err)
	}

	log := logger.New("config")
	go func() {
		defer watcher.Close()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				log.Debug().Str("file", path).Str("op", event.Op.String()).Msg("Configuration file changed")
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					if ctx.Err() == nil {
						onChange()
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.ErrorWithContext(err, "config", "watch").Msg("Configuration watcher error")
			}
		}
	}()

	return nil
}
