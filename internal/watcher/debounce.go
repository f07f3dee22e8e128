package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events per path into a single callback,
// fired once the path has been quiet for the delay.
type Debouncer struct {
	delay    time.Duration
	callback func(path string)

	mu      sync.Mutex
	pending map[string]*pendingPath
}

// pendingPath is one scheduled callback. gen identifies the latest Add so a
// timer that fires after being superseded does nothing.
type pendingPath struct {
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a Debouncer that calls callback delay after the last
// Add of each path.
func NewDebouncer(delay time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
		pending:  make(map[string]*pendingPath),
	}
}

// Add schedules path, restarting its delay if it is already pending.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[path]
	if ok {
		p.timer.Stop()
	} else {
		p = &pendingPath{}
		d.pending[path] = p
	}
	p.gen++
	gen := p.gen
	p.timer = time.AfterFunc(d.delay, func() { d.fire(path, gen) })
}

func (d *Debouncer) fire(path string, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[path]
	if !ok || p.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	d.mu.Unlock()

	if d.callback != nil {
		d.callback(path)
	}
}

// CancelAll drops every pending path without calling back.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.pending {
		p.timer.Stop()
	}
	clear(d.pending)
}

// PendingCount returns the number of paths waiting on the delay.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
