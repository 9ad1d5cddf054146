// Package profiler reports frame rate, reload activity and memory statistics once per
// interval through the structured logger.
package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Stats is one interval's report.
type Stats struct {
	// FPS is frames per second over the interval.
	FPS float64

	// Frames is the number of Tick calls in the interval.
	Frames int

	// Reloads is the number of scene rebuilds recorded in the interval.
	Reloads int

	// HeapMB is live heap memory.
	HeapMB float64

	// AllocRateMB is heap allocation churn in MB per second.
	AllocRateMB float64

	// GCCount is the cumulative number of collections.
	GCCount uint32

	// LastPauseUs and MaxPauseUs are the latest and largest GC pauses since the last report.
	LastPauseUs uint64
	MaxPauseUs  uint64

	// SysMB is the memory obtained from the OS.
	SysMB float64
}

// Profiler tracks frame timing and memory use. It is driven by the frame loop and is
// not safe for concurrent use.
type Profiler struct {
	frameCount     int
	reloadCount    int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now func() time.Time
	log *zap.Logger
}

// NewProfiler creates a Profiler reporting every second to a no-op logger by default.
//
// Parameters:
//   - options: a variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		log:            zap.NewNop(),
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// RecordReload counts one scene rebuild toward the current interval.
func (p *Profiler) RecordReload() {
	p.reloadCount++
}

// Tick should be called once per frame. When the update interval has elapsed it logs and
// returns the interval's statistics and starts a new interval.
//
// Returns:
//   - Stats: the report, zero unless one was produced
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick() (Stats, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		Frames:      p.frameCount,
		Reloads:     p.reloadCount,
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.log.Info("frame stats",
		zap.Float64("fps", s.FPS),
		zap.Int("reloads", s.Reloads),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Float64("alloc_mb_per_s", s.AllocRateMB),
		zap.Uint32("gc", s.GCCount),
		zap.Uint64("gc_last_us", s.LastPauseUs),
		zap.Uint64("gc_max_us", s.MaxPauseUs),
		zap.Float64("sys_mb", s.SysMB),
	)

	p.frameCount = 0
	p.reloadCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s, true
}
