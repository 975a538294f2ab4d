package geom

import "math"

// Transform is a rigid transform (rotation + translation) applied to
// toolpath coordinates so they align with the consuming controller or
// viewer frame. The zero value is NOT the identity; use Identity().
type Transform struct {
	m [3][3]float64 // rotation, row major
	t Point3D       // translation
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// Translation returns a pure translation by (x, y, z).
func Translation(x, y, z float64) Transform {
	tr := Identity()
	tr.t = Point3D{x, y, z}
	return tr
}

// RotationZ returns a rotation about the Z axis by the given angle in degrees.
func RotationZ(degrees float64) Transform {
	rad := degrees * math.Pi / 180
	s, c := math.Sin(rad), math.Cos(rad)
	return Transform{m: [3][3]float64{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}}
}

// RotationX returns a rotation about the X axis by the given angle in degrees.
func RotationX(degrees float64) Transform {
	rad := degrees * math.Pi / 180
	s, c := math.Sin(rad), math.Cos(rad)
	return Transform{m: [3][3]float64{
		{1, 0, 0},
		{0, c, -s},
		{0, s, c},
	}}
}

// Mul returns the composition a∘b: applying the result is equivalent to
// applying b first and then a.
func (a Transform) Mul(b Transform) Transform {
	var out Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += a.m[i][k] * b.m[k][j]
			}
			out.m[i][j] = sum
		}
	}
	out.t = a.Apply(b.t)
	return out
}

// Apply transforms the point p.
func (tr Transform) Apply(p Point3D) Point3D {
	return Point3D{
		X: tr.m[0][0]*p.X + tr.m[0][1]*p.Y + tr.m[0][2]*p.Z + tr.t.X,
		Y: tr.m[1][0]*p.X + tr.m[1][1]*p.Y + tr.m[1][2]*p.Z + tr.t.Y,
		Z: tr.m[2][0]*p.X + tr.m[2][1]*p.Y + tr.m[2][2]*p.Z + tr.t.Z,
	}
}

// IsIdentity reports whether the transform leaves coordinates unchanged.
func (tr Transform) IsIdentity() bool {
	id := Identity()
	const eps = 1e-12
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(tr.m[i][j]-id.m[i][j]) > eps {
				return false
			}
		}
	}
	return math.Abs(tr.t.X) <= eps && math.Abs(tr.t.Y) <= eps && math.Abs(tr.t.Z) <= eps
}
