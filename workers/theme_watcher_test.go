package workers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestThemeWatcherScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.yaml")
	calls := 0
	log, hook := test.NewNullLogger()
	w := NewThemeWatcher(path, time.Second, func(context.Context) error {
		calls++
		return errors.New("bad yaml")
	}, log)
	ctx := context.Background()

	if w.scan(ctx) {
		t.Fatalf("missing file must not trigger a reload")
	}
	if err := os.WriteFile(path, []byte("Unlocks: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if w.scan(ctx) {
		t.Fatalf("first sighting only primes the watcher")
	}
	if w.scan(ctx) {
		t.Fatalf("unchanged file triggered a reload")
	}

	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if !w.scan(ctx) || calls != 1 {
		t.Fatalf("touched file should reload once, calls = %d", calls)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "[ThemeWatcher] reload failed: bad yaml" {
		t.Fatalf("reload error not logged: %v", hook.LastEntry())
	}
}

func TestThemeWatcherRunStops(t *testing.T) {
	w := NewThemeWatcher(filepath.Join(t.TempDir(), "none.yaml"), 5*time.Millisecond, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
