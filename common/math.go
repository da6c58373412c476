package common

import (
	"math"
	"unsafe"
)

// Vec3 is a three component float32 vector.
type Vec3 [3]float32

// Quat is a unit quaternion stored as (x, y, z, w).
type Quat [4]float32

// Mat4 is a 4x4 float32 matrix stored in column-major order (WebGPU convention).
// Its memory layout matches a WGSL mat4x4<f32>, so a []Mat4 can be uploaded as-is.
type Mat4 [16]float32

// Mat4Size is the byte stride of one Mat4 inside a GPU buffer.
const Mat4Size = int(unsafe.Sizeof(Mat4{}))

var (
	// Up is the +Y axis.
	Up = Vec3{0, 1, 0}
	// Right is the +X axis.
	Right = Vec3{1, 0, 0}
	// Left is the -X axis.
	Left = Vec3{-1, 0, 0}
	// Forward is the +Z axis.
	Forward = Vec3{0, 0, 1}
	// Back is the -Z axis.
	Back = Vec3{0, 0, -1}
)

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Scale returns v multiplied by the scalar s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// QuatAxisAngle creates a rotation of angle radians around a unit axis.
//
// Parameters:
//   - axis: the rotation axis (must be normalized)
//   - radians: the rotation angle in radians
//
// Returns:
//   - Quat: the resulting unit quaternion
func QuatAxisAngle(axis Vec3, radians float32) Quat {
	s, c := math.Sincos(float64(radians) * 0.5)
	sf := float32(s)
	return Quat{axis[0] * sf, axis[1] * sf, axis[2] * sf, float32(c)}
}

// QuatRotateX creates a rotation of deg degrees around the X axis.
func QuatRotateX(deg float32) Quat {
	return QuatAxisAngle(Right, Radians(deg))
}

// QuatRotateY creates a rotation of deg degrees around the Y (up) axis.
func QuatRotateY(deg float32) Quat {
	return QuatAxisAngle(Up, Radians(deg))
}

// QuatRotateZ creates a rotation of deg degrees around the Z axis.
func QuatRotateZ(deg float32) Quat {
	return QuatAxisAngle(Forward, Radians(deg))
}

// Mul returns the Hamilton product q * o. Applied to a vector, o rotates first and q second.
//
// Parameters:
//   - o: the right-hand rotation
//
// Returns:
//   - Quat: the composed rotation
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		q[3]*o[0] + q[0]*o[3] + q[1]*o[2] - q[2]*o[1],
		q[3]*o[1] - q[0]*o[2] + q[1]*o[3] + q[2]*o[0],
		q[3]*o[2] + q[0]*o[1] - q[1]*o[0] + q[2]*o[3],
		q[3]*o[3] - q[0]*o[0] - q[1]*o[1] - q[2]*o[2],
	}
}

// Rotate applies the rotation q to the vector v.
//
// Parameters:
//   - v: the vector to rotate
//
// Returns:
//   - Vec3: the rotated vector
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q[0], q[1], q[2]}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q[3])).Add(u.Cross(t))
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * (math.Pi / 180)
}

// SetTRS writes a translation * rotation * uniform scale transform into m.
// All matrices are column-major, translation lives in m[12..14].
//
// Parameters:
//   - pos: translation in world space
//   - rot: unit rotation quaternion
//   - scale: uniform scale factor
func (m *Mat4) SetTRS(pos Vec3, rot Quat, scale float32) {
	x, y, z, w := rot[0], rot[1], rot[2], rot[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	m[0] = (1 - 2*(yy+zz)) * scale
	m[1] = 2 * (xy + wz) * scale
	m[2] = 2 * (xz - wy) * scale
	m[3] = 0

	m[4] = 2 * (xy - wz) * scale
	m[5] = (1 - 2*(xx+zz)) * scale
	m[6] = 2 * (yz + wx) * scale
	m[7] = 0

	m[8] = 2 * (xz + wy) * scale
	m[9] = 2 * (yz - wx) * scale
	m[10] = (1 - 2*(xx+yy)) * scale
	m[11] = 0

	m[12] = pos[0]
	m[13] = pos[1]
	m[14] = pos[2]
	m[15] = 1
}

// Bounds is an axis-aligned bounding box described by its center and half-extent.
type Bounds struct {
	Center Vec3
	Extent Vec3
}

// Contains reports whether p lies inside the box, boundary included.
func (b Bounds) Contains(p Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Center[i]-b.Extent[i] || p[i] > b.Center[i]+b.Extent[i] {
			return false
		}
	}
	return true
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}
