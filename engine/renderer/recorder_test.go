package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-fractal/common"
	"github.com/Carmen-Shannon/oxy-fractal/engine/gpu"
	"github.com/Carmen-Shannon/oxy-fractal/engine/model"
	"github.com/Carmen-Shannon/oxy-fractal/engine/renderer/material"
)

func TestRecorder_RecordsFrame(t *testing.T) {
	alloc := gpu.NewMemoryAllocator()
	buf, err := alloc.Allocate("level 1", 5, common.Mat4Size)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	r := NewRecorder()
	props := NewPropertyBlock()
	props.SetBuffer(MatricesProperty, buf)
	mesh := model.NewCube("cube")
	mat := material.NewMaterial(material.WithName("fractal"), material.WithPipelineKey("instanced"))
	bounds := common.Bounds{Extent: common.Vec3{3, 3, 3}}

	if err := r.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	if err := r.DrawInstanced(mesh, mat, bounds, props, 5); err != nil {
		t.Fatalf("DrawInstanced() error = %v", err)
	}
	if err := r.EndFrame(); err != nil {
		t.Fatalf("EndFrame() error = %v", err)
	}

	draws := r.LastFrame()
	if len(draws) != 1 {
		t.Fatalf("len(LastFrame()) = %d, want 1", len(draws))
	}
	want := DrawRecord{Mesh: "cube", IndexCount: 36, Material: "fractal", PipelineKey: "instanced", Bounds: bounds, Buffer: "level 1", InstanceCount: 5}
	if draws[0] != want {
		t.Errorf("draw = %+v, want %+v", draws[0], want)
	}
	if s := r.LastStats(); s.DrawCalls != 1 || s.Instances != 5 || s.Triangles != 60 {
		t.Errorf("LastStats() = %+v, want 1 draw / 5 instances / 60 triangles", s)
	}
	if r.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", r.Frames())
	}
}

func TestRecorder_RejectsInvalidDraws(t *testing.T) {
	alloc := gpu.NewMemoryAllocator()
	buf, _ := alloc.Allocate("level 0", 1, common.Mat4Size)
	props := NewPropertyBlock()
	props.SetBuffer(MatricesProperty, buf)

	mesh := model.NewCube("cube")
	r := NewRecorder()
	if err := r.DrawInstanced(mesh, nil, common.Bounds{}, props, 1); !errors.Is(err, ErrNoFrame) {
		t.Errorf("draw outside frame error = %v, want ErrNoFrame", err)
	}
	if err := r.EndFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("EndFrame() without BeginFrame error = %v, want ErrNoFrame", err)
	}

	_ = r.BeginFrame()
	if err := r.DrawInstanced(nil, nil, common.Bounds{}, props, 1); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("nil mesh draw error = %v, want ErrEmptyMesh", err)
	}
	if err := r.DrawInstanced(model.NewModel(model.WithName("empty")), nil, common.Bounds{}, props, 1); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("empty mesh draw error = %v, want ErrEmptyMesh", err)
	}
	if err := r.DrawInstanced(mesh, nil, common.Bounds{}, props, 2); !errors.Is(err, ErrInstanceOverflow) {
		t.Errorf("overflow draw error = %v, want ErrInstanceOverflow", err)
	}
	if err := r.DrawInstanced(mesh, nil, common.Bounds{}, NewPropertyBlock(), 1); !errors.Is(err, ErrMissingBuffer) {
		t.Errorf("unbound draw error = %v, want ErrMissingBuffer", err)
	}
	_ = alloc.Release(buf)
	if err := r.DrawInstanced(mesh, nil, common.Bounds{}, props, 1); !errors.Is(err, ErrMissingBuffer) {
		t.Errorf("released buffer draw error = %v, want ErrMissingBuffer", err)
	}
	_ = r.EndFrame()
	if len(r.LastFrame()) != 0 {
		t.Errorf("rejected draws were recorded: %+v", r.LastFrame())
	}
}

func TestPropertyBlock(t *testing.T) {
	alloc := gpu.NewMemoryAllocator()
	buf, _ := alloc.Allocate("b", 1, 64)

	p := NewPropertyBlock()
	if p.Buffer(MatricesProperty) != nil {
		t.Error("new block should be empty")
	}
	p.SetBuffer(MatricesProperty, buf)
	if p.Buffer(MatricesProperty) != buf {
		t.Error("Buffer() did not return the bound buffer")
	}
	p.Clear()
	if p.Buffer(MatricesProperty) != nil {
		t.Error("Clear() did not remove the binding")
	}
}
