package result

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	pkgerrors "autojudge/pkg/errors"
	"autojudge/pkg/utils/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	DefaultTimeout        = 600 * time.Second
	DefaultPollInterval   = 250 * time.Millisecond
	DefaultSettleInterval = 200 * time.Millisecond
)

// Waiter blocks until a result file shows up or the timeout elapses.
//
// The judge is expected to write the result under a temporary name and rename
// it into place. SettleInterval guards against judges that write in place: a
// detected file only counts once its size and mtime hold still for one interval.
// Zero disables the check.
type Waiter struct {
	Timeout        time.Duration
	PollInterval   time.Duration
	SettleInterval time.Duration
}

// Wait returns the time spent waiting. It only ever stats path, it never opens it.
func (w Waiter) Wait(ctx context.Context, path string) (time.Duration, error) {
	start := time.Now()
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interval := w.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	events, closeWatch := watchResult(waitCtx, path)
	defer closeWatch()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Debug(ctx, "waiting for result", zap.String("path", path), zap.Duration("timeout", timeout))
	for {
		if w.ready(waitCtx, path) {
			elapsed := time.Since(start)
			logger.Info(ctx, "result detected", zap.Duration("waited", elapsed))
			return elapsed, nil
		}

		select {
		case <-waitCtx.Done():
			elapsed := time.Since(start)
			if err := ctx.Err(); err != nil {
				return elapsed, pkgerrors.Wrap(err, pkgerrors.InternalError)
			}
			return elapsed, pkgerrors.Newf(pkgerrors.Timeout, "no result after %s", elapsed.Round(time.Millisecond)).
				WithDetail("timeout", timeout).
				WithDetail("path", path)
		case <-ticker.C:
		case <-events:
		}
	}
}

func (w Waiter) ready(ctx context.Context, path string) bool {
	first, err := os.Stat(path)
	if err != nil {
		return false
	}
	if w.SettleInterval <= 0 {
		return true
	}

	t := time.NewTimer(w.SettleInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
	}

	second, err := os.Stat(path)
	if err != nil {
		return false
	}
	return first.Size() == second.Size() && first.ModTime().Equal(second.ModTime())
}

// watchResult subscribes to the result directory. Events only wake the poll
// loop early; when the directory cannot be watched the loop just polls.
func watchResult(ctx context.Context, path string) (<-chan struct{}, func()) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Debug(ctx, "result watch unavailable", zap.Error(err))
		return nil, func() {}
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		logger.Debug(ctx, "result watch unavailable", zap.String("dir", dir), zap.Error(err))
		return nil, func() {}
	}

	wake := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != name {
					continue
				}
				select {
				case wake <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if !errors.Is(err, fsnotify.ErrEventOverflow) {
					logger.Debug(ctx, "result watch error", zap.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return wake, func() { _ = watcher.Close() }
}
