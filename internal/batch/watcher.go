package batch

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots          []string // directories to watch (recursive)
	InitialScan    bool     // emit files already present
	Debounce       time.Duration
	ProcessTimeout time.Duration // per document; default 3m
	// DrainTimeout bounds how long queued documents may still run once ctx is done.
	DrainTimeout time.Duration
}

// Watch processes matching files as they appear under cfg.Roots until ctx is
// done, then drains the queue. Every processed file is passed to onResult,
// which may be called from several goroutines at once.
func (r *Runner) Watch(ctx context.Context, cfg WatchConfig, onResult func(FileResult)) error {
	paths, errs, err := r.watchPaths(ctx, cfg)
	if err != nil {
		return err
	}
	q := r.NewQueue(onResult, WithWorkers(r.cfg.Workers), WithProcessTimeout(cfg.ProcessTimeout))
	defer func() {
		drain := cfg.DrainTimeout
		if drain <= 0 {
			drain = 30 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
		defer cancel()
		q.Shutdown(shutdownCtx)
	}()
	for {
		select {
		case path, ok := <-paths:
			if !ok {
				return ctx.Err()
			}
			if err := q.Enqueue(ctx, path); err != nil {
				r.logger.Warn("batch.watch.enqueue_failed", "path", path, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.logger.Warn("batch.watch.error", "error", err)
		}
	}
}

func (r *Runner) watchPaths(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	var initial []string
	for _, root := range cfg.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if r.cfg.SkipHidden && path != root && isHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && r.allowed(path) {
				initial = append(initial, path)
			}
			return nil
		})
		if err != nil {
			_ = w.Close()
			return nil, nil, err
		}
	}
	r.logger.Info("batch.watch.start", "roots", cfg.Roots, "initial", len(initial), "debounce", cfg.Debounce)

	out := make(chan string, 256)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				r.logger.Warn("batch.watch.close_error", "error", err)
			}
		}()

		emit := func(path string) bool {
			select {
			case out <- path:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		pending := map[string]struct{}{}
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		flush := func() bool {
			keys := make([]string, 0, len(pending))
			for p := range pending {
				keys = append(keys, p)
			}
			sort.Strings(keys)
			clear(pending)
			for _, p := range keys {
				if !emit(p) {
					return false
				}
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Has(fsnotify.Create) {
					// new directories are watched too; files make Add fail, which is fine
					_ = w.Add(e.Name)
				}
				if r.cfg.SkipHidden && isHidden(e.Name) {
					continue
				}
				if !r.allowed(e.Name) || !(e.Has(fsnotify.Create) || e.Has(fsnotify.Write)) {
					continue
				}
				pending[e.Name] = struct{}{}
				if cfg.Debounce <= 0 {
					if !flush() {
						return
					}
					continue
				}
				timer.Reset(cfg.Debounce)
			case <-timer.C:
				if !flush() {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()
	return out, errCh, nil
}
