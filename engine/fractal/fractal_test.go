package fractal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/gpu"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fractal/engine/scheduler"
)

func newTestFractal(t *testing.T, options ...FractalBuilderOption) (Fractal, *renderer.Recorder, *gpu.MemoryAllocator) {
	t.Helper()
	r := renderer.NewRecorder()
	alloc := gpu.NewMemoryAllocator()
	f := NewFractal(r, alloc, scheduler.NewScheduler(2), options...)
	t.Cleanup(f.OnDeactivate)
	return f, r, alloc
}

func frame(t *testing.T, f Fractal, r *renderer.Recorder, props renderer.PropertyBlock, dt float32) error {
	t.Helper()
	if err := r.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	err := f.OnFrame(dt, props)
	if endErr := r.EndFrame(); endErr != nil {
		t.Fatalf("EndFrame() error = %v", endErr)
	}
	return err
}

func TestFractal_Defaults(t *testing.T) {
	f, _, _ := newTestFractal(t)
	if f.Depth() != DefaultDepth || f.RotationSpeed() != DefaultRotationSpeed {
		t.Errorf("defaults = depth %d speed %d, want %d / %d", f.Depth(), f.RotationSpeed(), DefaultDepth, DefaultRotationSpeed)
	}
	if f.Active() || f.InstanceCount() != 0 {
		t.Error("a new fractal should be inactive")
	}
}

func TestFractal_ClampsConfiguration(t *testing.T) {
	tests := []struct {
		name      string
		options   []FractalBuilderOption
		wantDepth int
		wantSpeed int
	}{
		{"too deep", []FractalBuilderOption{WithDepth(12)}, MaxDepth, DefaultRotationSpeed},
		{"too shallow", []FractalBuilderOption{WithDepth(0)}, MinDepth, DefaultRotationSpeed},
		{"negative speed", []FractalBuilderOption{WithRotationSpeed(-5)}, DefaultDepth, 0},
		{"too fast", []FractalBuilderOption{WithRotationSpeed(1000)}, DefaultDepth, MaxRotationSpeed},
		{"in range", []FractalBuilderOption{WithDepth(6), WithRotationSpeed(180)}, 6, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, _ := newTestFractal(t, tt.options...)
			if f.Depth() != tt.wantDepth || f.RotationSpeed() != tt.wantSpeed {
				t.Errorf("got depth %d speed %d, want %d / %d", f.Depth(), f.RotationSpeed(), tt.wantDepth, tt.wantSpeed)
			}
		})
	}
}

func TestFractal_Depth1DrawsOnce(t *testing.T) {
	f, r, _ := newTestFractal(t, WithDepth(1))
	if err := f.OnActivate(); err != nil {
		t.Fatalf("OnActivate() error = %v", err)
	}

	props := renderer.NewPropertyBlock()
	for i := 0; i < 3; i++ {
		if err := frame(t, f, r, props, 0.016); err != nil {
			t.Fatalf("OnFrame() error = %v", err)
		}
		if s := r.LastStats(); s.DrawCalls != 1 || s.Instances != 1 {
			t.Errorf("frame %d stats = %+v, want 1 draw / 1 instance", i, s)
		}
	}
}

func TestFractal_DrawsEveryLevel(t *testing.T) {
	mat := material.NewMaterial(material.WithName("gold"), material.WithPipelineKey("instanced"))
	f, r, alloc := newTestFractal(t,
		WithName("tree"),
		WithDepth(3),
		WithRotationSpeed(90),
		WithPosition(1, 2, 3),
		WithMaterial(mat),
	)
	if err := f.OnActivate(); err != nil {
		t.Fatalf("OnActivate() error = %v", err)
	}

	if err := frame(t, f, r, renderer.NewPropertyBlock(), 1); err != nil {
		t.Fatalf("OnFrame() error = %v", err)
	}

	draws := r.LastFrame()
	if len(draws) != 3 {
		t.Fatalf("draw calls = %d, want 3", len(draws))
	}
	wantBounds := common.Bounds{Center: common.Vec3{1, 2, 3}, Extent: common.Vec3{3, 3, 3}}
	for l, d := range draws {
		if d.InstanceCount != LevelSize(l) {
			t.Errorf("draw %d instances = %d, want %d", l, d.InstanceCount, LevelSize(l))
		}
		if want := fmt.Sprintf("tree level %d", l); d.Buffer != want {
			t.Errorf("draw %d buffer = %q, want %q", l, d.Buffer, want)
		}
		if d.Material != "gold" || d.PipelineKey != "instanced" || d.Mesh != "tree part" {
			t.Errorf("draw %d = %+v, want gold/instanced/tree part", l, d)
		}
		if d.Bounds != wantBounds {
			t.Errorf("draw %d bounds = %+v, want %+v", l, d.Bounds, wantBounds)
		}
	}
	if alloc.Uploads() != 3 {
		t.Errorf("uploads = %d, want 3", alloc.Uploads())
	}

	h := f.Hierarchy()
	for l := 0; l < h.Depth(); l++ {
		got, err := alloc.Contents(h.Buffer(l))
		if err != nil {
			t.Fatalf("Contents() error = %v", err)
		}
		if string(got) != string(common.SliceToBytes(h.Matrices(l))) {
			t.Errorf("level %d buffer does not hold the stepped matrices", l)
		}
	}
}

func TestFractal_Lifecycle(t *testing.T) {
	f, r, alloc := newTestFractal(t, WithDepth(3))
	props := renderer.NewPropertyBlock()

	if err := frame(t, f, r, props, 0.016); !errors.Is(err, ErrInactive) {
		t.Errorf("OnFrame() before activation error = %v, want ErrInactive", err)
	}

	if err := f.OnActivate(); err != nil {
		t.Fatalf("OnActivate() error = %v", err)
	}
	if err := f.OnActivate(); err != nil {
		t.Fatalf("second OnActivate() error = %v", err)
	}
	if alloc.Live() != 3 {
		t.Errorf("live buffers = %d, want 3", alloc.Live())
	}
	if err := frame(t, f, r, props, 0.016); err != nil {
		t.Fatalf("OnFrame() error = %v", err)
	}

	f.OnDeactivate()
	if f.Active() || alloc.Live() != 0 {
		t.Errorf("after OnDeactivate: Active() = %v, live buffers = %d", f.Active(), alloc.Live())
	}
	if err := frame(t, f, r, props, 0.016); !errors.Is(err, ErrInactive) {
		t.Errorf("OnFrame() after deactivation error = %v, want ErrInactive", err)
	}
	if len(r.LastFrame()) != 0 {
		t.Errorf("inactive frame issued %d draws", len(r.LastFrame()))
	}
}

func TestFractal_ConfigChanged(t *testing.T) {
	f, r, alloc := newTestFractal(t, WithDepth(2))
	if err := f.OnActivate(); err != nil {
		t.Fatalf("OnActivate() error = %v", err)
	}
	h := f.Hierarchy()
	before := &h.Level(1)[0]

	if err := f.OnConfigChanged(WithRotationSpeed(200)); err != nil {
		t.Fatalf("OnConfigChanged(speed) error = %v", err)
	}
	if f.RotationSpeed() != 200 {
		t.Errorf("RotationSpeed() = %d, want 200", f.RotationSpeed())
	}
	if &h.Level(1)[0] != before {
		t.Error("a speed change should not rebuild the hierarchy")
	}

	if err := f.OnConfigChanged(WithDepth(4)); err != nil {
		t.Fatalf("OnConfigChanged(depth) error = %v", err)
	}
	if f.Depth() != 4 || f.InstanceCount() != 1+5+25+125 {
		t.Errorf("after depth change: Depth() = %d, InstanceCount() = %d", f.Depth(), f.InstanceCount())
	}
	if alloc.Live() != 4 {
		t.Errorf("live buffers = %d, want 4", alloc.Live())
	}

	if err := f.OnConfigChanged(WithPosition(0, 5, 0)); err != nil {
		t.Fatalf("OnConfigChanged(position) error = %v", err)
	}
	if got := h.Root().WorldPosition; got != (common.Vec3{0, 5, 0}) {
		t.Errorf("root position = %v, want (0, 5, 0)", got)
	}

	if err := frame(t, f, r, renderer.NewPropertyBlock(), 0.016); err != nil {
		t.Fatalf("OnFrame() error = %v", err)
	}
	if s := r.LastStats(); s.DrawCalls != 4 {
		t.Errorf("draw calls = %d, want 4", s.DrawCalls)
	}
}

func TestFractal_ConfigChangedWhileInactive(t *testing.T) {
	f, _, alloc := newTestFractal(t, WithDepth(2))
	if err := f.OnConfigChanged(WithDepth(5)); err != nil {
		t.Fatalf("OnConfigChanged() error = %v", err)
	}
	if f.Active() || alloc.Live() != 0 {
		t.Error("config change must not activate the fractal")
	}
	if err := f.OnActivate(); err != nil {
		t.Fatalf("OnActivate() error = %v", err)
	}
	if f.Hierarchy().Depth() != 5 {
		t.Errorf("Depth() = %d, want 5", f.Hierarchy().Depth())
	}
}

func TestFractal_ActivationFailure(t *testing.T) {
	f, _, alloc := newTestFractal(t, WithDepth(3))
	alloc.FailAfter(1)

	if err := f.OnActivate(); !errors.Is(err, gpu.ErrAllocation) {
		t.Fatalf("OnActivate() error = %v, want gpu.ErrAllocation", err)
	}
	if f.Active() || alloc.Live() != 0 {
		t.Errorf("after failed activation: Active() = %v, live buffers = %d", f.Active(), alloc.Live())
	}
}

func TestNewFractal_RequiresCollaborators(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewFractal(nil, ...) should panic")
		}
	}()
	NewFractal(nil, gpu.NewMemoryAllocator(), scheduler.NewScheduler(1))
}

func TestFractal_FailedStepSkipsDrawing(t *testing.T) {
	r := renderer.NewRecorder()
	alloc := gpu.NewMemoryAllocator()
	f := NewFractal(r, alloc, &failingScheduler{Scheduler: scheduler.NewScheduler(2), failJob: 1}, WithDepth(3))
	t.Cleanup(f.OnDeactivate)
	if err := f.OnActivate(); err != nil {
		t.Fatalf("OnActivate() error = %v", err)
	}

	err := frame(t, f, r, renderer.NewPropertyBlock(), 0.016)
	if !errors.Is(err, scheduler.ErrKernelPanic) {
		t.Fatalf("OnFrame() error = %v, want ErrKernelPanic", err)
	}
	if n := len(r.LastFrame()); n != 0 {
		t.Errorf("failed frame recorded %d draws, want 0", n)
	}
	if alloc.Uploads() != 0 {
		t.Errorf("failed frame uploaded %d buffers, want 0", alloc.Uploads())
	}
}
