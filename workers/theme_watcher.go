package workers

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// ThemeWatcher polls a theme metrics file and calls OnChange whenever its
// modification time moves forward. The first scan only records the mtime.
type ThemeWatcher struct {
	Path     string
	Interval time.Duration
	OnChange func(ctx context.Context) error
	Log      logrus.FieldLogger

	lastMTime time.Time
	seen      bool
}

func NewThemeWatcher(path string, interval time.Duration, onChange func(ctx context.Context) error, log logrus.FieldLogger) *ThemeWatcher {
	return &ThemeWatcher{
		Path:     path,
		Interval: interval,
		OnChange: onChange,
		Log:      log,
	}
}

// Run polls until ctx is done.
func (w *ThemeWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

// scan reports whether OnChange was called.
func (w *ThemeWatcher) scan(ctx context.Context) bool {
	fi, err := os.Stat(w.Path)
	if err != nil {
		// missing file: keep the last loaded rules
		return false
	}
	mt := fi.ModTime()
	if !w.seen {
		w.seen = true
		w.lastMTime = mt
		return false
	}
	if !mt.After(w.lastMTime) {
		return false
	}
	w.lastMTime = mt

	if w.Log != nil {
		w.Log.Infof("[ThemeWatcher] %s changed, reloading unlocks", w.Path)
	}
	if w.OnChange != nil {
		if err := w.OnChange(ctx); err != nil && w.Log != nil {
			w.Log.Errorf("[ThemeWatcher] reload failed: %v", err)
		}
	}
	return true
}
