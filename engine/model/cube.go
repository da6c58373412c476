package model

// CubeIndexCount is the number of indices of a unit cube drawn as 12 triangles.
const CubeIndexCount = 36

// CubeBoundingRadius is the distance from the center of a unit cube to its corners.
const CubeBoundingRadius = 0.8660254

// NewCube creates the unit cube model used for fractal parts.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - Model: the cube model
func NewCube(name string) Model {
	return NewModel(
		WithName(name),
		WithIndexCount(CubeIndexCount),
		WithBoundingRadius(CubeBoundingRadius),
	)
}
