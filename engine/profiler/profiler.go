package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler accumulates per-frame work time and instance counts and periodically logs
// them together with frame rate and memory statistics.
type Profiler struct {
	frameCount     int
	workTotal      time.Duration
	workMax        time.Duration
	instances      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler that reports once per interval.
// Intervals <= 0 default to one second.
//
// Parameters:
//   - interval: how often statistics are logged
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
	}
}

// Frame records one frame that spent work on update, upload and draw and rendered
// instances parts. When the update interval has elapsed it logs FPS, average and worst
// frame work, instance count, heap usage, allocation rate and GC pauses, then resets.
//
// Parameters:
//   - work: the time spent on the frame's update, upload and draw
//   - instances: the number of instances drawn this frame
//
// Returns:
//   - bool: true if stats were logged this frame, false otherwise
func (p *Profiler) Frame(work time.Duration, instances int) bool {
	p.frameCount++
	p.workTotal += work
	p.workMax = max(p.workMax, work)
	p.instances = instances

	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	avgWorkMs := float64(p.workTotal.Microseconds()) / 1000 / float64(p.frameCount)
	maxWorkMs := float64(p.workMax.Microseconds()) / 1000

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	// PauseNs is a circular buffer of the last 256 GC pauses.
	for i := max(p.lastGCCount, gcCount-min(gcCount, 256)); i < gcCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	log.Printf("[Profiler] FPS: %.2f | Work: %.3f ms avg, %.3f ms max | Instances: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (max: %d µs)",
		fps, avgWorkMs, maxWorkMs, p.instances, allocMB, allocRateMB, gcCount, maxPauseUs)

	p.frameCount = 0
	p.workTotal = 0
	p.workMax = 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
