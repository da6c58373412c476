// Command fractal animates one or more fractals headlessly, streaming their transforms
// into GPU buffers every frame and recording the instanced draws.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/Carmen-Shannon/oxy-fractal/engine"
	"github.com/Carmen-Shannon/oxy-fractal/engine/fractal"
	"github.com/Carmen-Shannon/oxy-fractal/engine/gpu"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fractal/engine/scheduler"
)

func main() {
	var (
		depth    = flag.Int("depth", fractal.DefaultDepth, "tree depth [1, 8]")
		speed    = flag.Int("speed", fractal.DefaultRotationSpeed, "rotation speed in degrees per second [0, 360]")
		count    = flag.Int("count", 1, "number of fractals, placed side by side")
		fps      = flag.Float64("fps", 60, "target frames per second (0 = uncapped)")
		duration = flag.Duration("duration", 10*time.Second, "how long to run (0 = until interrupted)")
		workers  = flag.Int("workers", 0, "level job workers (0 = NumCPU-1)")
		useGPU   = flag.Bool("gpu", false, "allocate instance buffers on a WebGPU device")
		software = flag.Bool("software", false, "force the software WebGPU adapter (with -gpu)")
		profile  = flag.Bool("profile", true, "log frame statistics every second")
	)
	flag.Parse()

	alloc, closeAlloc := newAllocator(*useGPU, *software)
	defer closeAlloc()

	r := renderer.NewRecorder()
	sched := scheduler.NewScheduler(*workers)
	mat := material.NewMaterial(
		material.WithName("fractal"),
		material.WithPipelineKey("FractalInstanced"),
	)

	eng := engine.NewEngine(r,
		engine.WithFrameRate(*fps),
		engine.WithProfiling(*profile),
	)

	n := max(*count, 1)
	fractals := make([]fractal.Fractal, 0, n)
	for i := 0; i < n; i++ {
		f := fractal.NewFractal(r, alloc, sched,
			fractal.WithDepth(*depth),
			fractal.WithRotationSpeed(*speed),
			fractal.WithPosition(float32(i)*2*fractal.BoundsExtent, 0, 0),
			fractal.WithMaterial(mat),
		)
		if err := f.OnActivate(); err != nil {
			log.Fatalf("[Fractal] %v", err)
		}
		fractals = append(fractals, f)
		eng.AddComponent(i, f)
	}
	defer func() {
		for _, f := range fractals {
			f.OnDeactivate()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	log.Printf("[Fractal] running %d fractal(s) at depth %d with %d workers", len(fractals), *depth, sched.Workers())
	eng.Run(ctx)

	stats := r.LastStats()
	log.Printf("[Fractal] stopped after %d frames (last frame: %d draws, %d instances, %d triangles)", r.Frames(), stats.DrawCalls, stats.Instances, stats.Triangles)
}

// newAllocator returns the buffer allocator and a function releasing its device.
func newAllocator(useGPU, software bool) (gpu.Allocator, func()) {
	if !useGPU {
		return gpu.NewMemoryAllocator(), func() {}
	}
	d, err := gpu.NewHeadlessDevice(software)
	if err != nil {
		log.Fatalf("[Fractal] failed to open WebGPU device: %v", err)
	}
	return d.Allocator(), d.Close
}
