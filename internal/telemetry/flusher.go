package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultWriteTimeout bounds a single sink write when FlusherConfig leaves it zero.
const DefaultWriteTimeout = 5 * time.Second

// FlusherConfig configures one periodic flusher.
type FlusherConfig struct {
	// Name labels logs and metrics ("slow", "fast").
	Name string

	// Interval between ticks. The first tick fires one Interval after Start.
	Interval time.Duration

	// Builder turns each cached entry into points.
	Builder PointBuilder

	// Bucket and Org address the time-series store.
	Bucket string
	Org    string

	// WriteTimeout bounds each individual point write.
	WriteTimeout time.Duration

	// ResendUnchanged writes every cached entry on every tick. When false,
	// entries whose timestamp and value are unchanged since their last
	// successful write are skipped.
	ResendUnchanged bool

	// Clock supplies the tick time. Defaults to time.Now.
	Clock func() time.Time

	// Metrics may be nil.
	Metrics *Metrics
}

// FlushResult summarises one tick.
type FlushResult struct {
	Entries  int
	Written  int
	Failed   int
	Skipped  int
	Duration time.Duration

	// Interrupted is set when the context was cancelled mid-tick.
	Interrupted bool
}

// Snapshotter provides the point-in-time copy a tick iterates. *Cache satisfies it.
type Snapshotter interface {
	Snapshot() []Entry
}

// Flusher periodically writes the cached state to a sink.
//
// Lifecycle: NewFlusher → Start → Stop. Stop cancels the loop, lets the
// write in progress finish within WriteTimeout, and waits for the goroutine.
type Flusher struct {
	cfg    FlusherConfig
	source Snapshotter
	sink   Sink
	logger Logger

	// flushMu serialises ticks and guards lastWritten.
	flushMu     sync.Mutex
	lastWritten map[string]writtenEntry

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	startMu  sync.Mutex
	stopped  bool
	stopOnce sync.Once
}

// NewFlusher validates cfg and creates a stopped flusher.
func NewFlusher(source Snapshotter, sink Sink, cfg FlusherConfig) (*Flusher, error) {
	if cfg.Name == "" {
		return nil, errors.New("flusher name is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("%s flusher: interval must be positive, got %v", cfg.Name, cfg.Interval)
	}
	if cfg.Builder == nil {
		return nil, fmt.Errorf("%s flusher: point builder is required", cfg.Name)
	}
	if source == nil || sink == nil {
		return nil, fmt.Errorf("%s flusher: source and sink are required", cfg.Name)
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Flusher{
		cfg:         cfg,
		source:      source,
		sink:        sink,
		logger:      noopLogger{},
		lastWritten: make(map[string]writtenEntry),
	}, nil
}

// SetLogger sets the logger for tick summaries and write failures.
func (f *Flusher) SetLogger(logger Logger) {
	if logger != nil {
		f.logger = logger
	}
}

// Name returns the flusher's label.
func (f *Flusher) Name() string {
	return f.cfg.Name
}

// Start launches the tick loop. It stops when ctx is cancelled or Stop is
// called. Calling Start again, or after Stop, has no effect.
func (f *Flusher) Start(ctx context.Context) {
	f.startMu.Lock()
	defer f.startMu.Unlock()

	if f.cancel != nil || f.stopped {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	f.wg.Add(1)
	go f.loop(loopCtx)
}

// Stop ends the tick loop and waits for it to exit. Safe to call more than
// once, and before Start.
func (f *Flusher) Stop() {
	f.stopOnce.Do(func() {
		f.startMu.Lock()
		cancel := f.cancel
		f.stopped = true
		f.startMu.Unlock()

		if cancel != nil {
			cancel()
		}
		f.wg.Wait()
	})
}

func (f *Flusher) loop(ctx context.Context) {
	defer f.wg.Done()

	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	f.logger.Info("flusher started", "flusher", f.cfg.Name, "interval", f.cfg.Interval)

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("flusher stopped", "flusher", f.cfg.Name)
			return
		case <-ticker.C:
			f.Flush(ctx)
		}
	}
}

// Flush runs one tick synchronously: snapshot the cache, then build and
// write each entry's points. A failed write is logged and counted and the
// tick moves on. Cancelling ctx stops the tick before the next write; the
// write already in progress is bounded by WriteTimeout instead.
func (f *Flusher) Flush(ctx context.Context) FlushResult {
	f.flushMu.Lock()
	defer f.flushMu.Unlock()

	start := time.Now()
	now := f.cfg.Clock()
	entries := f.source.Snapshot()

	res := FlushResult{Entries: len(entries)}

entries:
	for _, entry := range entries {
		if f.unchanged(entry) {
			res.Skipped++
			continue
		}

		entryOK := true
		for _, point := range f.cfg.Builder.Build(entry, now) {
			if ctx.Err() != nil {
				res.Interrupted = true
				break entries
			}

			if err := f.write(ctx, entry, point); err != nil {
				entryOK = false
				res.Failed++
				f.logger.Error("point write failed",
					"flusher", f.cfg.Name,
					"topic", entry.Topic,
					"error", err,
				)
				continue
			}
			res.Written++
		}

		if entryOK {
			f.lastWritten[entry.Topic] = writtenEntry{timestamp: entry.Timestamp, value: entry.Value}
		}
	}

	res.Duration = time.Since(start)
	f.cfg.Metrics.recordFlush(f.cfg.Name, res)

	f.logger.Debug("flush complete",
		"flusher", f.cfg.Name,
		"entries", res.Entries,
		"written", res.Written,
		"failed", res.Failed,
		"skipped", res.Skipped,
		"duration", res.Duration,
	)
	if res.Failed > 0 {
		f.logger.Warn("flush finished with failures",
			"flusher", f.cfg.Name,
			"failed", res.Failed,
			"written", res.Written,
		)
	}

	return res
}

// writtenEntry is the state of an entry as of its last successful write.
type writtenEntry struct {
	timestamp time.Time
	value     float64
}

// unchanged reports whether entry was already written and has not been
// updated since. A reading with the same timestamp but a different value
// counts as an update. Always false when ResendUnchanged is set.
func (f *Flusher) unchanged(entry Entry) bool {
	if f.cfg.ResendUnchanged {
		return false
	}
	last, ok := f.lastWritten[entry.Topic]
	return ok && !entry.Timestamp.After(last.timestamp) && entry.Value == last.value
}

// write sends one point. The write is detached from ctx cancellation so a
// shutdown does not abort it half way; WriteTimeout bounds it instead.
func (f *Flusher) write(ctx context.Context, entry Entry, point Point) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.cfg.WriteTimeout)
	defer cancel()

	if err := f.sink.WritePoint(writeCtx, f.cfg.Bucket, f.cfg.Org, point); err != nil {
		return &SinkWriteError{
			Flusher: f.cfg.Name,
			Topic:   entry.Topic,
			Field:   point.fieldNames(),
			Err:     err,
		}
	}
	return nil
}
