// Package geom defines the geometric value types shared by the toolpath,
// operation and planner packages: points, bounding boxes, rigid transforms
// and the 2D revolved profile.
//
// Conventions: all lengths are millimetres. The turning axis is Z, with the
// part front face at the highest Z and the chuck toward negative Z. X is the
// radial (cross-slide) axis and is always a radius value; diameter-mode
// output is a post-processor formatting concern.
package geom

import (
	"fmt"
	"math"
)

// Point3D is an immutable 3D point or vector.
type Point3D struct {
	X, Y, Z float64
}

// Add returns p + q.
func (p Point3D) Add(q Point3D) Point3D {
	return Point3D{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p - q.
func (p Point3D) Sub(q Point3D) Point3D {
	return Point3D{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point3D) DistanceTo(q Point3D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Point2D is a point in the lathe working plane: X radial, Z axial.
type Point2D struct {
	X, Z float64
}

// Axis identifies a principal axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// BoundingBox is an axis-aligned box given by its min and max corners.
// The invariant Min <= Max componentwise is established by NewBoundingBox.
type BoundingBox struct {
	Min Point3D
	Max Point3D
}

// NewBoundingBox returns the box spanning the two corners, swapping
// components as needed so that Min <= Max holds.
func NewBoundingBox(a, b Point3D) BoundingBox {
	return BoundingBox{
		Min: Point3D{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)},
		Max: Point3D{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)},
	}
}

// Size returns the edge lengths of the box.
func (b BoundingBox) Size() Point3D {
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the box.
func (b BoundingBox) Center() Point3D {
	return Point3D{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// IsDegenerate reports whether the box has no extent on any axis or holds
// non-finite coordinates.
func (b BoundingBox) IsDegenerate() bool {
	s := b.Size()
	if math.IsNaN(s.X) || math.IsNaN(s.Y) || math.IsNaN(s.Z) {
		return true
	}
	if math.IsInf(s.X, 0) || math.IsInf(s.Y, 0) || math.IsInf(s.Z, 0) {
		return true
	}
	return s.X <= 0 && s.Y <= 0 && s.Z <= 0
}

// Contains reports whether p lies inside or on the boundary of the box.
func (b BoundingBox) Contains(p Point3D) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		Min: Point3D{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)},
		Max: Point3D{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)},
	}
}

// Extend returns the smallest box containing b and the point p.
func (b BoundingBox) Extend(p Point3D) BoundingBox {
	return b.Union(BoundingBox{Min: p, Max: p})
}

// RadialExtent returns the largest distance from the Z axis to any corner
// of the box in the XY plane. For a part centered on the turning axis this
// is the raw radius.
func (b BoundingBox) RadialExtent() float64 {
	x := math.Max(math.Abs(b.Min.X), math.Abs(b.Max.X))
	y := math.Max(math.Abs(b.Min.Y), math.Abs(b.Max.Y))
	return math.Max(x, y)
}
