package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes HTTP request entries from store operation entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindStore
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path" or "backend.Op"
	StatusCode int    // HTTP status (0 for store operations)
	Failed     bool   // store operation returned an error
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer for timing entries.
// Writes never block on readers; when full, the oldest entries are overwritten.
// Aggregation happens only on read (Snapshot).
type Collector struct {
	mu       sync.Mutex
	entries  []Entry
	size     int
	pos      int
	requests int64 // atomic
	storeOps int64 // atomic
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0 (non-positive falls back to DefaultRingSize)
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry to the ring buffer.
// PRE: e is a valid Entry
// POST: Entry stored; if buffer full, oldest entry overwritten
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	if e.Kind == KindStore {
		atomic.AddInt64(&c.storeOps, 1)
		return
	}
	atomic.AddInt64(&c.requests, 1)
}

// TotalRecorded returns the total number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.requests) + atomic.LoadInt64(&c.storeOps)
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	TotalRequests   int64      `json:"totalRequests"`
	TotalStoreOps   int64      `json:"totalStoreOps"`
	FailedStoreOps  int        `json:"failedStoreOps"`
	RequestP50Ms    float64    `json:"requestP50Ms"`
	RequestP95Ms    float64    `json:"requestP95Ms"`
	RequestP99Ms    float64    `json:"requestP99Ms"`
	SlowestPaths    []PathStat `json:"slowestPaths"`
	SlowestStoreOps []PathStat `json:"slowestStoreOps"`
}

// PathStat aggregates timing for a single request path or store operation.
type PathStat struct {
	Path    string  `json:"path"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	Count   int     `json:"count"`
	TotalMs float64 `json:"totalMs"`
}

// Snapshot computes aggregated stats over entries recorded at or after since.
// Sorting makes this the expensive side; call it per dashboard load, not per request.
// PRE: topN > 0
// POST: Returns a Snapshot with percentiles and top-N lists
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	var requestDurations []float64
	requestStats := make(map[string]*PathStat)
	storeStats := make(map[string]*PathStat)
	failed := 0

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		stats := requestStats
		if e.Kind == KindStore {
			stats = storeStats
			if e.Failed {
				failed++
			}
		} else {
			requestDurations = append(requestDurations, e.DurationMs)
		}
		s, ok := stats[e.Path]
		if !ok {
			s = &PathStat{Path: e.Path}
			stats[e.Path] = s
		}
		s.Count++
		s.TotalMs += e.DurationMs
		if e.DurationMs > s.MaxMs {
			s.MaxMs = e.DurationMs
		}
	}

	snap := Snapshot{
		TotalRequests:   atomic.LoadInt64(&c.requests),
		TotalStoreOps:   atomic.LoadInt64(&c.storeOps),
		FailedStoreOps:  failed,
		SlowestPaths:    topByAvg(requestStats, topN),
		SlowestStoreOps: topByAvg(storeStats, topN),
	}

	if len(requestDurations) > 0 {
		sort.Float64s(requestDurations)
		snap.RequestP50Ms = percentile(requestDurations, 50)
		snap.RequestP95Ms = percentile(requestDurations, 95)
		snap.RequestP99Ms = percentile(requestDurations, 99)
	}

	return snap
}

// percentile returns the p-th percentile from a sorted slice using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the top N entries sorted by average duration (descending).
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
