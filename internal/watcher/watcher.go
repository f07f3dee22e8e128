// Package watcher converts date files as they appear in watched directories.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// minDebounce coalesces the create and write events of a single save even
// when no debounce is configured.
const minDebounce = 50 * time.Millisecond

// WatchConfig contains watcher settings.
type WatchConfig struct {
	DebounceSeconds   int      `json:"debounceSeconds"`          // Delay before processing (default: 2)
	StableThresholdMs int      `json:"stableThresholdMs"`        // File size stability threshold (default: 1000, 0 disables)
	IgnorePatterns    []string `json:"ignorePatterns,omitempty"` // Glob patterns to ignore (e.g., "*.tmp", "*.part")
}

// DefaultWatchConfig returns a WatchConfig with sensible defaults.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		DebounceSeconds:   2,
		StableThresholdMs: 1000,
		IgnorePatterns:    DefaultIgnorePatterns(),
	}
}

func (c *WatchConfig) debounce() time.Duration {
	d := time.Duration(c.DebounceSeconds) * time.Second
	if d < minDebounce {
		return minDebounce
	}
	return d
}

// Outcome is what a FileHandler did with a file.
type Outcome int

const (
	// Skipped means the file was not a conversion candidate.
	Skipped Outcome = iota
	// Converted means every line converted cleanly.
	Converted
	// ConvertedWithWarnings means the file converted but some lines were invalid.
	ConvertedWithWarnings
)

// FileHandler converts a single file.
type FileHandler func(ctx context.Context, path string) (Outcome, error)

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	FilesConverted    int
	FilesWithWarnings int
	FilesFailed       int
	FilesSkipped      int
	Duration          time.Duration
}

// Watcher monitors directories and hands new or rewritten files to a
// FileHandler once they have settled.
type Watcher struct {
	config      *WatchConfig
	fileHandler FileHandler
	logger      *slog.Logger
	fsWatcher   *fsnotify.Watcher
	fileFilter  *FileFilter
	debouncer   *Debouncer
	stability   *StabilityChecker
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	wg          sync.WaitGroup // event loop
	inflight    sync.WaitGroup // handler calls
	startTime   time.Time
	stopTime    time.Time

	mu                sync.Mutex
	stopped           bool
	filesConverted    int
	filesWithWarnings int
	filesFailed       int
	filesSkipped      int
}

// New creates a new Watcher with the given configuration.
// If config is nil, default configuration is used. If logger is nil,
// slog.Default() is used.
func New(config *WatchConfig, fileHandler FileHandler, logger *slog.Logger) *Watcher {
	if config == nil {
		config = DefaultWatchConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		config:      config,
		fileHandler: fileHandler,
		logger:      logger,
		fileFilter:  NewFileFilter(config.IgnorePatterns),
		done:        make(chan struct{}),
	}
	if config.StableThresholdMs > 0 {
		w.stability = NewStabilityChecker(time.Duration(config.StableThresholdMs) * time.Millisecond)
	}
	w.debouncer = NewDebouncer(config.debounce(), w.process)
	return w
}

// Start begins watching the specified directories for file changes.
// The watcher runs until Stop() is called.
func (w *Watcher) Start(dirs []string) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			w.fsWatcher.Close()
			return err
		}
		if err := w.fsWatcher.Add(absDir); err != nil {
			w.fsWatcher.Close()
			return err
		}
	}

	w.startTime = time.Now()
	w.done = make(chan struct{})
	w.ctx, w.cancel = context.WithCancel(context.Background())

	w.wg.Add(1)
	go w.processEvents()

	w.logger.Info("watching directories", "dirs", dirs, "debounce", w.config.debounce())
	return nil
}

// Stop shuts down the watcher, waits for in-flight conversions and returns
// a summary of the session. Files still waiting on the debounce delay are
// dropped. Later calls return the same counts without shutting down again.
func (w *Watcher) Stop() *WatchSummary {
	w.mu.Lock()
	already := w.stopped
	w.stopped = true
	if !already {
		w.stopTime = time.Now()
	}
	w.mu.Unlock()

	if !already {
		close(w.done)
		w.wg.Wait()
		w.debouncer.CancelAll()
		if w.cancel != nil {
			w.cancel()
		}
		w.inflight.Wait()
		if w.fsWatcher != nil {
			w.fsWatcher.Close()
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	summary := &WatchSummary{
		FilesConverted:    w.filesConverted,
		FilesWithWarnings: w.filesWithWarnings,
		FilesFailed:       w.filesFailed,
		FilesSkipped:      w.filesSkipped,
	}
	if !w.startTime.IsZero() {
		summary.Duration = w.stopTime.Sub(w.startTime)
	}
	return summary
}

// processEvents handles file system events from fsnotify.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if w.fileFilter.ShouldIgnore(event.Name) {
				if event.Op&fsnotify.Create != 0 {
					w.count(Skipped, nil)
				}
				continue
			}
			w.debouncer.Add(event.Name)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}

// process runs once per settled file, on the debouncer's goroutine.
func (w *Watcher) process(path string) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	if w.stability != nil {
		if err := w.stability.WaitForStable(w.ctx, path); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Warn("file did not settle", "path", path, "error", err)
			w.count(Skipped, err)
			return
		}
	}

	if w.fileHandler == nil {
		w.count(Converted, nil)
		return
	}

	outcome, err := w.fileHandler(w.ctx, path)
	if err != nil {
		w.logger.Error("conversion failed", "path", path, "error", err)
	}
	w.count(outcome, err)
}

func (w *Watcher) count(outcome Outcome, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case err != nil && !errors.Is(err, ErrFileUnstable) && !errors.Is(err, ErrFileNotFound):
		w.filesFailed++
	case err != nil:
		w.filesSkipped++
	case outcome == Converted:
		w.filesConverted++
	case outcome == ConvertedWithWarnings:
		w.filesWithWarnings++
	default:
		w.filesSkipped++
	}
}

// IsRunning returns true if the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	select {
	case <-w.done:
		return false
	default:
		return w.fsWatcher != nil
	}
}
