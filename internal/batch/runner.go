// Package batch processes every invoice of a directory tree with bounded
// parallelism, or keeps watching a directory for new ones.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/pipeline"
)

const DefaultWorkers = 4

// Processor is the per-document step; *pipeline.Processor implements it.
type Processor interface {
	ProcessFile(ctx context.Context, path string) (*pipeline.Result, error)
}

type Config struct {
	Workers     int
	IncludeExts []string // lowercased sans '.'; empty -> constants.AllowedExtensions
	SkipHidden  bool
	// OutputDir, when set, receives one artifact directory per document.
	OutputDir string
}

type FileResult struct {
	Path      string
	Result    *pipeline.Result
	Artifacts []string
	Err       string
}

type DirStats struct {
	Scanned           uint32
	Matched           uint32
	Succeeded         uint32
	NoTemplate        uint32
	NoTable           uint32
	StructuringErrors uint32
	Failed            uint32
}

// Runner drives a Processor over many files.
type Runner struct {
	proc   Processor
	cfg    Config
	exts   map[string]struct{}
	logger *slog.Logger

	dirMu   sync.Mutex
	dirs    map[string]string // source path -> artifact dir
	claimed map[string]string // lowercased artifact dir -> source path
}

func NewRunner(proc Processor, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	exts := constants.AllowedExtensions
	if len(cfg.IncludeExts) > 0 {
		exts = map[string]struct{}{}
		for _, e := range cfg.IncludeExts {
			if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
				exts[e] = struct{}{}
			}
		}
	}
	return &Runner{
		proc:    proc,
		cfg:     cfg,
		exts:    exts,
		logger:  logger,
		dirs:    map[string]string{},
		claimed: map[string]string{},
	}
}

// Discover walks root and returns the matching files in lexical order.
// Walk errors on single entries are returned as failed FileResults.
func (r *Runner) Discover(root string) ([]string, []FileResult, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, nil, stats, errors.New("root path is required")
	}
	var (
		paths  []string
		failed []FileResult
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			failed = append(failed, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if r.cfg.SkipHidden && path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !r.allowed(path) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, nil, stats, fmt.Errorf("walk: %w", err)
	}
	return paths, failed, stats, nil
}

// RunDirectory processes every matching file under root. A failing document
// is recorded in its FileResult and does not stop the others. Results keep
// the Discover order.
func (r *Runner) RunDirectory(ctx context.Context, root string) ([]FileResult, DirStats, error) {
	start := time.Now()
	paths, failed, stats, err := r.Discover(root)
	if err != nil {
		return nil, stats, err
	}
	r.logger.Info("batch.start", "root", root, "files", len(paths), "workers", r.cfg.Workers)

	// Claimed in discovery order so repeated names get stable suffixes.
	dirs := make([]string, len(paths))
	for i, path := range paths {
		dirs[i] = r.artifactDir(path)
	}

	results := make([]FileResult, len(paths))
	var counters DirStats
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err.Error()}
				return err
			}
			results[i] = r.processOne(gctx, path, dirs[i], &counters)
			return nil
		})
	}
	waitErr := g.Wait()

	stats.Succeeded = counters.Succeeded
	stats.NoTemplate = counters.NoTemplate
	stats.NoTable = counters.NoTable
	stats.StructuringErrors = counters.StructuringErrors
	stats.Failed += counters.Failed
	results = append(results, failed...)

	r.logger.Info("batch.done",
		"root", root,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"no_template", stats.NoTemplate,
		"no_table", stats.NoTable,
		"structuring_errors", stats.StructuringErrors,
		"failed", stats.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if waitErr != nil {
		return results, stats, fmt.Errorf("batch cancelled: %w", waitErr)
	}
	return results, stats, nil
}

// processOne runs the processor on path and tallies the outcome into c.
// Artifacts go to dir when it is not empty.
func (r *Runner) processOne(ctx context.Context, path, dir string, c *DirStats) FileResult {
	fr := FileResult{Path: path}
	res, err := r.proc.ProcessFile(ctx, path)
	fr.Result = res
	if err != nil {
		fr.Err = err.Error()
		atomic.AddUint32(&c.Failed, 1)
		r.logger.Warn("batch.file.failed", "path", path, "error", err)
		return fr
	}
	switch res.Status {
	case constants.StatusOK:
		atomic.AddUint32(&c.Succeeded, 1)
	case constants.StatusNoTemplate:
		atomic.AddUint32(&c.NoTemplate, 1)
	case constants.StatusNoTable:
		atomic.AddUint32(&c.NoTable, 1)
	case constants.StatusStructuringError:
		atomic.AddUint32(&c.StructuringErrors, 1)
	default:
		atomic.AddUint32(&c.Failed, 1)
	}

	if dir != "" {
		written, err := pipeline.WriteArtifacts(dir, res)
		fr.Artifacts = written
		// Already on disk; results of a whole batch stay in memory.
		res.Annotated = nil
		if err != nil {
			fr.Err = err.Error()
			r.logger.Warn("batch.file.artifacts_failed", "path", path, "error", err)
		}
	}
	return fr
}

// artifactDir returns the output directory of path: OutputDir/<stem>, or
// OutputDir/<stem>-N when another document already owns that name. A path
// keeps its directory when it is processed again.
func (r *Runner) artifactDir(path string) string {
	if r.cfg.OutputDir == "" {
		return ""
	}
	key := filepath.Clean(path)
	if abs, err := filepath.Abs(key); err == nil {
		key = abs
	}

	r.dirMu.Lock()
	defer r.dirMu.Unlock()
	if dir, ok := r.dirs[key]; ok {
		return dir
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := filepath.Join(r.cfg.OutputDir, stem)
	for n := 2; ; n++ {
		if _, taken := r.claimed[strings.ToLower(dir)]; !taken {
			break
		}
		dir = filepath.Join(r.cfg.OutputDir, fmt.Sprintf("%s-%d", stem, n))
	}
	r.dirs[key] = dir
	r.claimed[strings.ToLower(dir)] = key
	return dir
}

func (r *Runner) allowed(path string) bool {
	_, ok := r.exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
