package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/screenkit/screenkit/pkg/logger"
)

// Watcher reloads the config file when it changes.
// Broken or invalid edits are logged and skipped.
type Watcher struct {
	path     string
	onChange func(Config)
	log      *logger.Logger
	// edits are coalesced within this delay
	delay time.Duration

	w      *fsnotify.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWatcher(path string, onChange func(Config), log *logger.Logger) *Watcher {
	return &Watcher{path: path, onChange: onChange, log: log.Module("config"), delay: 200 * time.Millisecond}
}

// Start watches the directory of the file, editors often replace files
// instead of writing into them.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return err
	}
	w.w = fw
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.loop(ctx)
	return nil
}

func (w *Watcher) Run() {
	if err := w.Start(); err != nil {
		w.log.Error().Err(err).Msgf("Couldn't watch %v", w.path)
	}
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	name := filepath.Clean(w.path)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != name || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.delay)
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("config watch")
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	conf, err := Load(w.path)
	if err != nil {
		w.log.Warn().Err(err).Msgf("Config %v has been changed but not applied", w.path)
		return
	}
	w.log.Info().Msgf("Config %v has been reloaded", w.path)
	w.onChange(conf)
}

func (w *Watcher) Shutdown(ctx context.Context) error {
	if w.w == nil {
		return nil
	}
	w.cancel()
	err := w.w.Close()
	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (w *Watcher) String() string { return "config watcher " + w.path }
