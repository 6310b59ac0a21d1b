package profiler

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// Report is one interval of frame and memory statistics.
type Report struct {
	FPS float64
	// Tilings is the number of frames in the interval that re-ran the light tiling dispatch.
	Tilings int
	// HeapMB is the live heap in MiB.
	HeapMB float64
	// AllocRateMB is the allocation churn in MiB per second.
	AllocRateMB float64
	GCCount     uint32
	// LastPauseUs and MaxPauseUs are GC pause times in microseconds.
	LastPauseUs, MaxPauseUs uint64
	SysMB                   float64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	tilings        int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
	logger         log.FieldLogger
}

// ProfilerOption configures a Profiler during construction.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are reported.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger sets the logger receiving the reports.
func WithLogger(logger log.FieldLogger) ProfilerOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler reporting every second to the standard logger.
//
// Parameters:
//   - options: variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logger:         log.StandardLogger(),
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Parameters:
//   - tiled: true if the frame re-ran the tiling dispatch
//
// Returns:
//   - Report: the interval statistics when they were logged this tick
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(tiled bool) (Report, bool) {
	p.frameCount++
	if tiled {
		p.tilings++
	}
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Report{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
		Tilings: p.tilings,
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:   float64(p.memStats.Sys) / 1024 / 1024,
		GCCount: p.memStats.NumGC,
	}
	r.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > r.MaxPauseUs {
				r.MaxPauseUs = pause
			}
		}
	}

	p.logger.WithFields(log.Fields{
		"fps":           r.FPS,
		"tilings":       r.Tilings,
		"heap_mb":       r.HeapMB,
		"alloc_rate_mb": r.AllocRateMB,
		"gc":            r.GCCount,
		"gc_last_us":    r.LastPauseUs,
		"gc_max_us":     r.MaxPauseUs,
		"sys_mb":        r.SysMB,
	}).Info("profiler")

	p.frameCount = 0
	p.tilings = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return r, true
}
