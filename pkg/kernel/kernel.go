// Package kernel defines the abstract geometry collaborator consumed by
// profile extraction and the planner. Implementations (sdfx) provide solid
// modeling behind this interface. The kernel abstraction allows swapping
// backends without changing the planning core, and keeps geometry failures
// from crossing the core boundary: a failed query yields an empty or
// degenerate result, never a panic.
package kernel

import "github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() geom.BoundingBox

	// Volume returns the enclosed volume in mm³, or 0 if it cannot
	// be determined.
	Volume() float64

	// SurfaceArea returns the surface area in mm², or 0 if it cannot
	// be determined.
	SurfaceArea() float64
}

// Kernel is the abstract geometry kernel interface for turned parts.
type Kernel interface {
	// Cylinder creates a solid cylinder of the given length and radius,
	// centered on the Z axis, spanning z in [-length, 0]. This is the
	// raw-stock primitive: the front face sits at z=0.
	Cylinder(length, radius float64) Solid

	// Revolve creates a solid of revolution about the Z axis from the
	// given (axial, radial) contour. An empty or single-point profile
	// yields a degenerate solid whose bounding box is a point.
	Revolve(profile geom.Profile2D) Solid

	// Translate moves a solid by (x, y, z).
	Translate(s Solid, x, y, z float64) Solid

	// ExtractProfile sections the solid with a plane containing the given
	// turning axis and returns the positive-radius contour as ordered
	// (axial, radial) samples. The tolerance controls the axial sampling
	// pitch. Degenerate solids or failed sections yield an empty profile;
	// extraction never panics or returns an error across this boundary.
	ExtractProfile(s Solid, axis geom.Axis, tolerance float64) geom.Profile2D
}
