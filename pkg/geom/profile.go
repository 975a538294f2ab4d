package geom

import (
	"fmt"
	"math"
	"sort"
)

// ProfilePoint is one sample of a revolved part's cross-section:
// axial position Z and radius from the turning axis.
type ProfilePoint struct {
	Z      float64
	Radius float64
}

// Profile2D is an ordered sequence of (axial, radial) samples describing the
// contour obtained by sectioning a revolved part through a plane containing
// its rotation axis. A profile is produced once by extraction and consumed
// read-only by the turning strategies; accessors copy so callers cannot
// mutate the backing samples.
type Profile2D struct {
	points []ProfilePoint
}

// NewProfile builds a profile from the given samples. Samples are copied.
// Negative or non-finite radii and non-finite Z positions are rejected.
func NewProfile(points []ProfilePoint) (Profile2D, error) {
	for i, p := range points {
		if math.IsNaN(p.Z) || math.IsInf(p.Z, 0) || math.IsNaN(p.Radius) || math.IsInf(p.Radius, 0) {
			return Profile2D{}, fmt.Errorf("profile point %d: non-finite coordinate", i)
		}
		if p.Radius < 0 {
			return Profile2D{}, fmt.Errorf("profile point %d: negative radius %g", i, p.Radius)
		}
	}
	cp := make([]ProfilePoint, len(points))
	copy(cp, points)
	return Profile2D{points: cp}, nil
}

// IsEmpty reports whether the profile has no samples.
func (p Profile2D) IsEmpty() bool { return len(p.points) == 0 }

// Len returns the number of samples.
func (p Profile2D) Len() int { return len(p.points) }

// Point returns the i-th sample.
func (p Profile2D) Point(i int) ProfilePoint { return p.points[i] }

// Points returns a copy of all samples.
func (p Profile2D) Points() []ProfilePoint {
	cp := make([]ProfilePoint, len(p.points))
	copy(cp, p.points)
	return cp
}

// Sorted returns a copy of the profile ordered by ascending axial position.
// The sort is stable so duplicate Z stations keep their relative order.
func (p Profile2D) Sorted() Profile2D {
	cp := p.Points()
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Z < cp[j].Z })
	return Profile2D{points: cp}
}

// MinRadius returns the smallest sample radius, or 0 for an empty profile.
func (p Profile2D) MinRadius() float64 {
	if len(p.points) == 0 {
		return 0
	}
	min := p.points[0].Radius
	for _, pt := range p.points[1:] {
		if pt.Radius < min {
			min = pt.Radius
		}
	}
	return min
}

// MaxRadius returns the largest sample radius, or 0 for an empty profile.
func (p Profile2D) MaxRadius() float64 {
	max := 0.0
	for _, pt := range p.points {
		if pt.Radius > max {
			max = pt.Radius
		}
	}
	return max
}

// ZRange returns the axial extent of the profile. Both values are 0 for an
// empty profile.
func (p Profile2D) ZRange() (min, max float64) {
	if len(p.points) == 0 {
		return 0, 0
	}
	min, max = p.points[0].Z, p.points[0].Z
	for _, pt := range p.points[1:] {
		if pt.Z < min {
			min = pt.Z
		}
		if pt.Z > max {
			max = pt.Z
		}
	}
	return min, max
}

// RadiusAt returns the profile radius at axial position z by linear
// interpolation between the two surrounding samples. Outside the sampled
// range the nearest end radius is returned. The profile must be sorted;
// callers typically hold the result of Sorted(). Returns 0 for an empty
// profile.
func (p Profile2D) RadiusAt(z float64) float64 {
	n := len(p.points)
	if n == 0 {
		return 0
	}
	if z <= p.points[0].Z {
		return p.points[0].Radius
	}
	if z >= p.points[n-1].Z {
		return p.points[n-1].Radius
	}
	// Binary search for the first sample at or beyond z.
	i := sort.Search(n, func(i int) bool { return p.points[i].Z >= z })
	a, b := p.points[i-1], p.points[i]
	if b.Z == a.Z {
		return math.Max(a.Radius, b.Radius)
	}
	t := (z - a.Z) / (b.Z - a.Z)
	return a.Radius + t*(b.Radius-a.Radius)
}
