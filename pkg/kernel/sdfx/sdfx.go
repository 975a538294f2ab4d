// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Solids are represented as signed distance fields. Profile sectioning is
// performed by root-finding the field along radial rays, which is the
// natural sectioning primitive for an SDF backend: at each axial station
// the outermost zero crossing of the field is the contour radius.
package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// defaultTolerance is the sectioning pitch used when the caller passes a
// non-positive tolerance.
const defaultTolerance = 0.1

// maxStations caps the number of axial sampling stations per extraction so
// a tiny tolerance on a long part cannot degenerate into an unbounded scan.
const maxStations = 4096

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid. The generating
// contour is retained for closed-form volume and surface-area queries;
// translation does not invalidate either.
type sdfxSolid struct {
	s       sdf.SDF3
	contour geom.Profile2D
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() geom.BoundingBox {
	bb := s.s.BoundingBox()
	return geom.NewBoundingBox(
		geom.Point3D{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		geom.Point3D{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	)
}

// Volume integrates the generating contour as stacked disks:
// V = Σ π·r̄²·dz over consecutive samples.
func (s *sdfxSolid) Volume() float64 {
	pts := s.contour.Sorted().Points()
	if len(pts) < 2 {
		return 0
	}
	vol := 0.0
	for i := 1; i < len(pts); i++ {
		dz := pts[i].Z - pts[i-1].Z
		r := (pts[i].Radius + pts[i-1].Radius) / 2
		vol += math.Pi * r * r * dz
	}
	return vol
}

// SurfaceArea applies Pappus' theorem per contour segment for the lateral
// surface and adds the two end faces.
func (s *sdfxSolid) SurfaceArea() float64 {
	pts := s.contour.Sorted().Points()
	if len(pts) < 2 {
		return 0
	}
	area := 0.0
	for i := 1; i < len(pts); i++ {
		dz := pts[i].Z - pts[i-1].Z
		dr := pts[i].Radius - pts[i-1].Radius
		slant := math.Sqrt(dz*dz + dr*dr)
		rMean := (pts[i].Radius + pts[i-1].Radius) / 2
		area += 2 * math.Pi * rMean * slant
	}
	rFront := pts[len(pts)-1].Radius
	rBack := pts[0].Radius
	area += math.Pi*rFront*rFront + math.Pi*rBack*rBack
	return area
}

// Kernel implements kernel.Kernel using sdfx.
type Kernel struct{}

// New returns a new sdfx-backed kernel.
func New() *Kernel {
	return &Kernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
// Returns nil for solids that did not originate from this kernel.
func unwrap(s kernel.Solid) sdf.SDF3 {
	if ss, ok := s.(*sdfxSolid); ok {
		return ss.s
	}
	return nil
}

// Cylinder creates the raw-stock cylinder: centered on the Z axis with its
// front face at z=0, spanning z in [-length, 0]. sdf.Cylinder3D centers the
// cylinder at the origin, so we translate by -length/2.
func (k *Kernel) Cylinder(length, radius float64) kernel.Solid {
	if length <= 0 || radius <= 0 {
		return &sdfxSolid{s: nil}
	}
	s, err := sdf.Cylinder3D(length, radius, 0)
	if err != nil {
		return &sdfxSolid{s: nil}
	}
	m := sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: -length / 2})
	contour, _ := geom.NewProfile([]geom.ProfilePoint{
		{Z: -length, Radius: radius},
		{Z: 0, Radius: radius},
	})
	return &sdfxSolid{s: sdf.Transform3D(s, m), contour: contour}
}

// Revolve creates a solid of revolution about the Z axis from the given
// (axial, radial) contour. The contour is closed against the axis at both
// ends to form the generating polygon.
func (k *Kernel) Revolve(profile geom.Profile2D) kernel.Solid {
	sorted := profile.Sorted()
	if sorted.Len() < 2 {
		return &sdfxSolid{s: nil}
	}
	pts := sorted.Points()

	// Polygon in the (radius, z) half-plane: down the axis at z-min, out
	// along the contour, back to the axis at z-max. sdfx revolves the 2D
	// x coordinate as radius and maps 2D y to z.
	verts := make([]v2.Vec, 0, len(pts)+2)
	verts = append(verts, v2.Vec{X: 0, Y: pts[0].Z})
	for _, p := range pts {
		verts = append(verts, v2.Vec{X: math.Max(p.Radius, 1e-9), Y: p.Z})
	}
	verts = append(verts, v2.Vec{X: 0, Y: pts[len(pts)-1].Z})

	poly, err := sdf.Polygon2D(verts)
	if err != nil {
		return &sdfxSolid{s: nil}
	}
	s, err := sdf.Revolve3D(poly)
	if err != nil {
		return &sdfxSolid{s: nil}
	}
	return &sdfxSolid{s: s, contour: sorted}
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	inner := unwrap(s)
	if inner == nil {
		return &sdfxSolid{s: nil}
	}
	contour := geom.Profile2D{}
	if ss, ok := s.(*sdfxSolid); ok {
		// Shift the stored contour axially so sectioning stays aligned;
		// radii are unaffected by translation.
		shifted := make([]geom.ProfilePoint, 0, ss.contour.Len())
		for _, p := range ss.contour.Points() {
			shifted = append(shifted, geom.ProfilePoint{Z: p.Z + z, Radius: p.Radius})
		}
		contour, _ = geom.NewProfile(shifted)
	}
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return &sdfxSolid{s: sdf.Transform3D(inner, m), contour: contour}
}

// ExtractProfile sections the solid along the given turning axis by
// root-finding the signed distance field. At each axial station it scans
// inward from the bounding radius for the first point inside the solid,
// then bisects for the zero crossing. Stations with no material are
// skipped. Degenerate inputs yield an empty profile.
func (k *Kernel) ExtractProfile(s kernel.Solid, axis geom.Axis, tolerance float64) geom.Profile2D {
	inner := unwrap(s)
	if inner == nil {
		return geom.Profile2D{}
	}
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}

	bb := s.BoundingBox()
	if bb.IsDegenerate() {
		return geom.Profile2D{}
	}

	axMin, axMax, rMax := axialRange(bb, axis)
	span := axMax - axMin
	if span <= 0 || rMax <= 0 {
		return geom.Profile2D{}
	}

	step := tolerance
	if n := span / step; n > maxStations {
		step = span / maxStations
	}

	// Nudge the end stations inside the solid so the SDF does not sit
	// exactly on the end faces.
	eps := math.Min(step/4, span/1000)

	var pts []geom.ProfilePoint
	for z := axMin + eps; z <= axMax-eps; z += step {
		r, ok := surfaceRadius(inner, axis, z, rMax, tolerance)
		if !ok {
			continue
		}
		pts = append(pts, geom.ProfilePoint{Z: z, Radius: r})
	}
	if len(pts) < 2 {
		return geom.Profile2D{}
	}
	p, err := geom.NewProfile(pts)
	if err != nil {
		return geom.Profile2D{}
	}
	return p
}

// axialRange returns the solid's extent along the turning axis and the
// largest radius to probe perpendicular to it.
func axialRange(bb geom.BoundingBox, axis geom.Axis) (min, max, rMax float64) {
	switch axis {
	case geom.AxisX:
		rMax = math.Max(math.Max(math.Abs(bb.Min.Y), math.Abs(bb.Max.Y)),
			math.Max(math.Abs(bb.Min.Z), math.Abs(bb.Max.Z)))
		return bb.Min.X, bb.Max.X, rMax
	case geom.AxisY:
		rMax = math.Max(math.Max(math.Abs(bb.Min.X), math.Abs(bb.Max.X)),
			math.Max(math.Abs(bb.Min.Z), math.Abs(bb.Max.Z)))
		return bb.Min.Y, bb.Max.Y, rMax
	default:
		return bb.Min.Z, bb.Max.Z, bb.RadialExtent()
	}
}

// probePoint builds the 3D probe position for an axial station and radius.
func probePoint(axis geom.Axis, axial, radial float64) v3.Vec {
	switch axis {
	case geom.AxisX:
		return v3.Vec{X: axial, Y: radial, Z: 0}
	case geom.AxisY:
		return v3.Vec{X: 0, Y: axial, Z: radial}
	default:
		return v3.Vec{X: radial, Y: 0, Z: axial}
	}
}

// surfaceRadius finds the outermost surface radius at one axial station.
// The SDF is negative inside the solid.
func surfaceRadius(s sdf.SDF3, axis geom.Axis, axial, rMax, tolerance float64) (float64, bool) {
	coarse := math.Max(tolerance, rMax/64)

	// Scan inward for the first point inside the material.
	outside := rMax + coarse
	inside := -1.0
	for r := rMax; r >= 0; r -= coarse {
		if s.Evaluate(probePoint(axis, axial, r)) <= 0 {
			inside = r
			break
		}
		outside = r
	}
	if inside < 0 {
		// Axis not intersecting the solid at this station.
		return 0, false
	}

	// Bisect for the zero crossing between inside and outside.
	lo, hi := inside, outside
	for i := 0; i < 48 && hi-lo > tolerance/100; i++ {
		mid := (lo + hi) / 2
		if s.Evaluate(probePoint(axis, axial, mid)) <= 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}
