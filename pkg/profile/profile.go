// Package profile extracts the 2D revolved profile of a solid for
// toolpath planning. It wraps the geometry kernel's raw section sweep
// with tolerance handling, segment filtering and a configurable fallback
// for solids the kernel cannot section.
package profile

import (
	"fmt"
	"math"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/kernel"
)

// FallbackPolicy selects what Extract does when the kernel returns an
// empty profile for a non-degenerate solid.
type FallbackPolicy int

const (
	// FallbackCylinder approximates the solid by its bounding cylinder.
	// Planning can proceed; the result is conservative (never smaller
	// than the part).
	FallbackCylinder FallbackPolicy = iota
	// FallbackFail surfaces the extraction failure as an error.
	FallbackFail
)

func (p FallbackPolicy) String() string {
	switch p {
	case FallbackCylinder:
		return "cylinder"
	case FallbackFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Options configures profile extraction.
type Options struct {
	Axis             geom.Axis // revolution axis; lathes use AxisZ
	Tolerance        float64   // axial sampling tolerance, mm
	MinSegmentLength float64   // drop samples closer than this to their neighbor, mm
	Sort             bool      // sort output by ascending Z
	Fallback         FallbackPolicy
	FallbackSamples  int // sample count for the cylinder approximation
}

// DefaultOptions returns lathe extraction defaults: Z axis, 0.05mm
// tolerance, cylinder fallback.
func DefaultOptions() Options {
	return Options{
		Axis:             geom.AxisZ,
		Tolerance:        0.05,
		MinSegmentLength: 0.01,
		Sort:             true,
		Fallback:         FallbackCylinder,
		FallbackSamples:  16,
	}
}

// Extractor turns solids into planning profiles via a geometry kernel.
type Extractor struct {
	k    kernel.Kernel
	opts Options
}

// NewExtractor builds an extractor over the given kernel.
func NewExtractor(k kernel.Kernel, opts Options) (*Extractor, error) {
	if k == nil {
		return nil, fmt.Errorf("profile: nil kernel")
	}
	if opts.Tolerance <= 0 {
		return nil, fmt.Errorf("profile: tolerance must be positive, got %g", opts.Tolerance)
	}
	if opts.MinSegmentLength < 0 {
		return nil, fmt.Errorf("profile: minSegmentLength must be non-negative, got %g", opts.MinSegmentLength)
	}
	if opts.FallbackSamples < 2 {
		opts.FallbackSamples = 2
	}
	return &Extractor{k: k, opts: opts}, nil
}

// Extract returns the revolved profile of the solid. An empty kernel
// result triggers the configured fallback: a bounding-cylinder
// approximation, or an error under FallbackFail.
func (e *Extractor) Extract(s kernel.Solid) (geom.Profile2D, error) {
	if s == nil {
		return geom.Profile2D{}, fmt.Errorf("profile: nil solid")
	}
	bounds := s.BoundingBox()
	if bounds.IsDegenerate() {
		return geom.Profile2D{}, fmt.Errorf("profile: degenerate solid bounds %v", bounds)
	}

	raw := e.k.ExtractProfile(s, e.opts.Axis, e.opts.Tolerance)
	if raw.IsEmpty() {
		switch e.opts.Fallback {
		case FallbackFail:
			return geom.Profile2D{}, fmt.Errorf("profile: kernel returned no section points")
		default:
			return CylinderApproximation(bounds, e.opts.FallbackSamples)
		}
	}

	out := raw
	if e.opts.Sort {
		out = out.Sorted()
	}
	return e.filter(out)
}

// filter drops samples closer than MinSegmentLength to the previously
// kept sample, always keeping the first and last.
func (e *Extractor) filter(p geom.Profile2D) (geom.Profile2D, error) {
	min := e.opts.MinSegmentLength
	if min <= 0 || p.Len() <= 2 {
		return p, nil
	}
	pts := p.Points()
	kept := pts[:1]
	for i := 1; i < len(pts)-1; i++ {
		last := kept[len(kept)-1]
		if math.Hypot(pts[i].Z-last.Z, pts[i].Radius-last.Radius) < min {
			continue
		}
		kept = append(kept, pts[i])
	}
	kept = append(kept, pts[len(pts)-1])
	return geom.NewProfile(kept)
}

// CylinderApproximation builds a constant-radius profile spanning the
// bounding box axially at its radial extent. samples points are spread
// evenly so downstream pass planners still get interior stations.
func CylinderApproximation(bounds geom.BoundingBox, samples int) (geom.Profile2D, error) {
	if bounds.IsDegenerate() {
		return geom.Profile2D{}, fmt.Errorf("profile: degenerate bounds %v", bounds)
	}
	if samples < 2 {
		samples = 2
	}
	r := bounds.RadialExtent()
	zMin, zMax := bounds.Min.Z, bounds.Max.Z
	pts := make([]geom.ProfilePoint, samples)
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples-1)
		pts[i] = geom.ProfilePoint{Z: zMin + t*(zMax-zMin), Radius: r}
	}
	return geom.NewProfile(pts)
}
