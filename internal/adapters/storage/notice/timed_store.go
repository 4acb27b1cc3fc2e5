package notice

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"noticeboard/internal/adapters/perf"
	domain "noticeboard/internal/domain/notice"
)

// DefaultSlowStoreMs is the default threshold for slow store operation warnings.
const DefaultSlowStoreMs = 50

var slowStoreMs int64
var slowStoreOnce sync.Once

// getSlowStoreThreshold returns the slow-operation threshold in milliseconds.
func getSlowStoreThreshold() float64 {
	slowStoreOnce.Do(func() {
		ms := DefaultSlowStoreMs
		if v := os.Getenv("NOTICEBOARD_SLOW_STORE_MS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				ms = n
			}
		}
		atomic.StoreInt64(&slowStoreMs, int64(ms))
	})
	return float64(atomic.LoadInt64(&slowStoreMs))
}

// TimedStore wraps a Store to log slow operations, record them to the perf
// collector and observe them in Prometheus. It satisfies Store itself.
type TimedStore struct {
	next      Store
	backend   string
	collector *perf.Collector
	threshold float64
}

// Compile-time checks.
var (
	_ Store = (*TimedStore)(nil)
	_ Store = (*JSONFileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// NewTimedStore wraps next. backend labels the metrics ("json", "sqlite").
// collector may be nil.
func NewTimedStore(next Store, backend string, collector *perf.Collector) *TimedStore {
	return &TimedStore{
		next:      next,
		backend:   backend,
		collector: collector,
		threshold: getSlowStoreThreshold(),
	}
}

// Load delegates to the wrapped store and records timing.
func (t *TimedStore) Load(ctx context.Context) ([]domain.Notice, error) {
	start := time.Now()
	notices, err := t.next.Load(ctx)
	t.observe("Load", start, len(notices), err)
	return notices, err
}

// Save delegates to the wrapped store and records timing.
func (t *TimedStore) Save(ctx context.Context, notices []domain.Notice) error {
	start := time.Now()
	err := t.next.Save(ctx, notices)
	t.observe("Save", start, len(notices), err)
	return err
}

func (t *TimedStore) observe(op string, start time.Time, size int, err error) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0
	name := t.backend + "." + op

	switch {
	case err != nil:
		slog.Warn("store_error", "op", name, "duration_ms", durationMs, "error", err)
	case durationMs >= t.threshold:
		slog.Warn("slow_store_op", "op", name, "duration_ms", durationMs, "notices", size)
	default:
		slog.Debug("store_op", "op", name, "duration_ms", durationMs, "notices", size)
	}

	result := "ok"
	if err != nil {
		result = "error"
	} else {
		perf.NoticesStored.Set(float64(size))
	}
	perf.StoreDuration.WithLabelValues(t.backend, op, result).Observe(elapsed.Seconds())

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindStore,
			Path:       name,
			Failed:     err != nil,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}
