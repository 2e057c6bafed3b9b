package reload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robinbraemer/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("domain: a.com\n"), 0o644))

	var calls atomic.Int32
	w := &watcher{debounce: 20 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.watch(ctx, path, func() error {
			calls.Inc()
			return errors.New("ignored")
		})
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	for _, domain := range []string{"b.com", "c.com", "d.com"} {
		require.NoError(t, os.WriteFile(path, []byte("domain: "+domain+"\n"), 0o644))
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestWatch_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, Watch(ctx, "does-not-exist.yml", func() error { return nil }))
}

func TestConfigUpdateEvent(t *testing.T) {
	type cfg struct{ Domain string }
	mgr := event.New()

	var got *ConfigUpdateEvent[cfg]
	unsubscribe := Subscribe(mgr, func(e *ConfigUpdateEvent[cfg]) { got = e })
	FireConfigUpdate(mgr, &cfg{Domain: "b.com"}, &cfg{Domain: "a.com"})
	require.NotNil(t, got)
	assert.Equal(t, "b.com", got.Config.Domain)
	assert.Equal(t, "a.com", got.PrevConfig.Domain)

	unsubscribe()
	got = nil
	FireConfigUpdate(mgr, &cfg{}, &cfg{})
	assert.Nil(t, got)
}
