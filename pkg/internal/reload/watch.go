package reload

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/knadh/koanf/providers/file"
)

// DefaultDebounce is the time to wait for further writes
// after a change before the config is reloaded.
const DefaultDebounce = 100 * time.Millisecond

// Watch calls cb whenever the file at path changes until ctx is canceled.
// Bursts of changes within DefaultDebounce result in a single call.
// Errors returned by cb are logged and watching continues.
func Watch(ctx context.Context, path string, cb func() error) error {
	return (&watcher{debounce: DefaultDebounce}).watch(ctx, path, cb)
}

type watcher struct {
	debounce time.Duration

	mu    sync.Mutex // protects timer and serializes cb
	timer *time.Timer
}

func (w *watcher) watch(ctx context.Context, path string, cb func() error) error {
	if ctx.Err() != nil {
		return nil
	}
	log := logr.FromContextOrDiscard(ctx).WithValues("path", path)

	provider := file.Provider(path)
	err := provider.Watch(func(_ any, err error) {
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Info("failed watching config", "error", err)
			return
		}
		w.schedule(ctx, log, cb)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return provider.Unwatch()
}

func (w *watcher) schedule(ctx context.Context, log logr.Logger, cb func() error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}

		log.Info("auto-reloading config")
		start := time.Now()
		if err := cb(); err != nil {
			log.Info("failed to reload config", "error", err)
			return
		}
		log.Info("reloaded config successfully", "duration", time.Since(start).Round(time.Millisecond).String())
	})
}
