package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"
)

var (
	// ErrFileNotFound is returned when the file disappears while waiting.
	ErrFileNotFound = errors.New("file not found")
	// ErrFileUnstable is returned when the file keeps changing past the timeout.
	ErrFileUnstable = errors.New("file did not stabilize within timeout")
)

const (
	defaultStabilityTimeout = 30 * time.Second
	minStabilityInterval    = 50 * time.Millisecond
)

// StabilityChecker waits until a file stops changing, so a date file that
// is still being copied in is not converted half-written.
type StabilityChecker struct {
	threshold time.Duration // how long size and mtime must hold still
	timeout   time.Duration
	interval  time.Duration // polling period
}

// NewStabilityChecker polls every threshold/4 (at least 50ms) and gives up
// after 30 seconds.
func NewStabilityChecker(threshold time.Duration) *StabilityChecker {
	return NewStabilityCheckerWithOptions(threshold, defaultStabilityTimeout, max(threshold/4, minStabilityInterval))
}

// NewStabilityCheckerWithOptions creates a StabilityChecker with a custom
// timeout and polling interval.
func NewStabilityCheckerWithOptions(threshold, timeout, interval time.Duration) *StabilityChecker {
	return &StabilityChecker{threshold: threshold, timeout: timeout, interval: interval}
}

// snapshot is what "unchanged" compares.
type snapshot struct {
	size    int64
	modTime time.Time
}

func take(path string) (snapshot, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return snapshot{}, ErrFileNotFound
	}
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{size: info.Size(), modTime: info.ModTime()}, nil
}

// WaitForStable blocks until path has not changed for the threshold. It
// returns ErrFileNotFound if the file disappears, ErrFileUnstable on
// timeout, or the context's error on cancellation.
func (s *StabilityChecker) WaitForStable(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeoutCause(ctx, s.timeout, ErrFileUnstable)
	defer cancel()

	last, err := take(path)
	if err != nil {
		return err
	}
	since := time.Now()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case now := <-ticker.C:
			cur, err := take(path)
			if err != nil {
				return err
			}
			if cur.size != last.size || !cur.modTime.Equal(last.modTime) {
				last, since = cur, now
				continue
			}
			if now.Sub(since) >= s.threshold {
				return nil
			}
		}
	}
}
