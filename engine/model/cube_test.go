package model

import (
	"math"
	"testing"
)

func TestNewCube(t *testing.T) {
	m := NewCube("part")

	if m.Name() != "part" {
		t.Errorf("Name() = %q, want part", m.Name())
	}
	if m.IndexCount() != 36 {
		t.Errorf("IndexCount() = %d, want 36", m.IndexCount())
	}
	corner := float32(math.Sqrt(3 * 0.5 * 0.5))
	if math.Abs(float64(m.BoundingRadius()-corner)) > 1e-6 {
		t.Errorf("BoundingRadius() = %v, want %v", m.BoundingRadius(), corner)
	}
}

func TestNewModel_Defaults(t *testing.T) {
	m := NewModel()
	if m.Name() != "" || m.IndexCount() != 0 || m.BoundingRadius() != 0 {
		t.Errorf("NewModel() = %q/%d/%v, want zero values", m.Name(), m.IndexCount(), m.BoundingRadius())
	}
}
