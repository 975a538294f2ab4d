package ops

import (
	"math"
	"sort"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// RoughingParams configures bulk material removal between the raw stock
// envelope and the finished contour plus stock allowance.
type RoughingParams struct {
	StartDiameter  float64 // raw stock diameter; must exceed EndDiameter for external roughing
	EndDiameter    float64 // target envelope diameter
	StartZ         float64 // front of the cut region (higher Z)
	EndZ           float64 // back of the cut region (lower Z)
	DepthOfCut     float64 // radial depth per pass; must be positive
	StockAllowance float64 // radial stock left for finishing; never cut inside profile+allowance
	Internal       bool    // internal (boring) roughing: radius grows per pass instead

	// UseProfileFollowing clamps every pass to the part profile plus
	// StockAllowance so no pass cuts inside the finished envelope. When
	// false (or when the profile is empty) passes are straight cuts.
	UseProfileFollowing bool

	// ChipBreaking inserts a small radial retract and dwell between
	// passes to break the chip.
	ChipBreaking     bool
	ChipBreakRetract float64 // mm, default 0.5
	ChipBreakDwell   float64 // seconds, default 0.2

	SafetyHeight float64
}

// DefaultRoughingParams returns external roughing parameters for the given
// stock and target diameters over the given axial span.
func DefaultRoughingParams(stockDiameter, targetDiameter, startZ, endZ float64) RoughingParams {
	return RoughingParams{
		StartDiameter:       stockDiameter,
		EndDiameter:         targetDiameter,
		StartZ:              startZ,
		EndZ:                endZ,
		DepthOfCut:          2.0,
		StockAllowance:      0.5,
		UseProfileFollowing: true,
		ChipBreakRetract:    0.5,
		ChipBreakDwell:      0.2,
		SafetyHeight:        2.0,
	}
}

// ValidateRoughingParams checks a roughing parameter record.
func ValidateRoughingParams(p RoughingParams) error {
	if p.StartDiameter <= 0 {
		return paramErr("roughing", "startDiameter", "must be positive, got %g", p.StartDiameter)
	}
	if p.EndDiameter < 0 {
		return paramErr("roughing", "endDiameter", "must be non-negative, got %g", p.EndDiameter)
	}
	if p.Internal {
		if p.StartDiameter >= p.EndDiameter {
			return paramErr("roughing", "startDiameter", "internal roughing requires startDiameter < endDiameter (%g >= %g)", p.StartDiameter, p.EndDiameter)
		}
	} else if p.StartDiameter <= p.EndDiameter {
		return paramErr("roughing", "startDiameter", "must exceed endDiameter (%g <= %g)", p.StartDiameter, p.EndDiameter)
	}
	if p.StartZ <= p.EndZ {
		return paramErr("roughing", "startZ", "must exceed endZ (%g <= %g)", p.StartZ, p.EndZ)
	}
	if p.DepthOfCut <= 0 {
		return paramErr("roughing", "depthOfCut", "must be positive, got %g", p.DepthOfCut)
	}
	if p.StockAllowance < 0 {
		return paramErr("roughing", "stockAllowance", "must be non-negative, got %g", p.StockAllowance)
	}
	if p.StockAllowance >= math.Abs(p.StartDiameter-p.EndDiameter)/2 {
		return paramErr("roughing", "stockAllowance", "%g exceeds the material to remove", p.StockAllowance)
	}
	if p.SafetyHeight < 0 {
		return paramErr("roughing", "safetyHeight", "must be non-negative, got %g", p.SafetyHeight)
	}
	return nil
}

// Roughing removes bulk material in radial depth-of-cut passes, optionally
// following the part profile so no pass cuts inside the finished envelope.
type Roughing struct {
	params RoughingParams
	tool   tool.Tool
	handle tool.Handle
}

// NewRoughing builds a roughing operation with the tool resolved from the
// library.
func NewRoughing(lib *tool.Library, h tool.Handle, p RoughingParams) (*Roughing, error) {
	t, err := resolveTool(lib, h)
	if err != nil {
		return nil, err
	}
	if p.ChipBreakRetract <= 0 {
		p.ChipBreakRetract = 0.5
	}
	if p.ChipBreakDwell <= 0 {
		p.ChipBreakDwell = 0.2
	}
	return &Roughing{params: p, tool: t, handle: h}, nil
}

func (r *Roughing) Name() string { return "roughing" }
func (r *Roughing) Kind() Kind { return KindRoughing }
func (r *Roughing) Tool() tool.Handle { return r.handle }
func (r *Roughing) Validate() error { return ValidateRoughingParams(r.params) }
func (r *Roughing) Params() RoughingParams { return r.params }

// GenerateToolpath produces the roughing passes. With profile following
// enabled, every movement's radius is at least the profile radius at its Z
// plus StockAllowance; the last pass lands exactly on the target envelope.
func (r *Roughing) GenerateToolpath(part Part) *toolpath.Toolpath {
	if r.params.Internal {
		return r.generateInternal()
	}
	return r.generateExternal(part)
}

func (r *Roughing) generateExternal(part Part) *toolpath.Toolpath {
	p := r.params
	feed := r.tool.Cutting.FeedRate
	speed := r.tool.Cutting.SpindleSpeed

	startR := p.StartDiameter / 2
	floorR := p.EndDiameter/2 + p.StockAllowance
	safeX := startR + p.SafetyHeight
	safeZ := p.StartZ + p.SafetyHeight

	profile := part.Profile.Sorted()
	follow := p.UseProfileFollowing && profile.Len() >= 2
	stations := r.stations(profile)

	tp := toolpath.New("roughing", r.handle)
	approach(tp, safeX, safeZ, startR)

	for passR := startR - p.DepthOfCut; ; passR -= p.DepthOfCut {
		if passR < floorR {
			passR = floorR
		}

		// Position at the pass radius above the front face, feed in.
		tp.Rapid(xz(passR, safeZ))
		tp.Linear(xz(passR, p.StartZ), feed, speed)

		if follow {
			// Walk the axial stations front to back, clamping to the
			// profile plus allowance so the pass never enters the
			// finished envelope.
			for _, z := range stations {
				if z > p.StartZ || z < p.EndZ {
					continue
				}
				cut := math.Max(passR, profile.RadiusAt(z)+p.StockAllowance)
				tp.Linear(xz(cut, z), feed, speed)
			}
		}
		end := passR
		if follow {
			end = math.Max(passR, profile.RadiusAt(p.EndZ)+p.StockAllowance)
		}
		tp.Linear(xz(end, p.EndZ), feed, speed)

		// Break the chip with a small radial retract between passes; the
		// final pass ends clean on the envelope floor.
		if p.ChipBreaking && passR > floorR {
			tp.Linear(xz(end+p.ChipBreakRetract, p.EndZ), feed, speed)
			tp.DwellFor(p.ChipBreakDwell)
		}

		// Back out of the cut and return to the front.
		tp.Linear(xz(startR+p.SafetyHeight, p.EndZ), feed, speed)
		tp.Rapid(xz(safeX, safeZ))

		if passR <= floorR {
			break
		}
	}

	retreat(tp, safeX, safeZ)
	return tp.Optimized()
}

// generateInternal produces boring passes with the radius increasing per
// pass from the pilot bore toward the target envelope minus allowance.
func (r *Roughing) generateInternal() *toolpath.Toolpath {
	p := r.params
	feed := r.tool.Cutting.FeedRate
	speed := r.tool.Cutting.SpindleSpeed

	startR := p.StartDiameter / 2
	ceilR := p.EndDiameter/2 - p.StockAllowance
	safeZ := p.StartZ + p.SafetyHeight

	tp := toolpath.New("roughing (internal)", r.handle)
	approach(tp, startR, safeZ, startR)

	for passR := startR + p.DepthOfCut; ; passR += p.DepthOfCut {
		if passR > ceilR {
			passR = ceilR
		}
		tp.Rapid(xz(passR, safeZ))
		tp.Linear(xz(passR, p.EndZ), feed, speed)
		tp.Linear(xz(startR, p.EndZ), feed, speed)
		tp.Rapid(xz(startR, safeZ))
		if passR >= ceilR {
			break
		}
	}

	retreat(tp, startR, safeZ)
	return tp.Optimized()
}

// stations returns the profile's unique Z stations in front-to-back order
// (descending Z), so profile-following passes visit every contour feature.
func (r *Roughing) stations(profile geom.Profile2D) []float64 {
	pts := profile.Points()
	zs := make([]float64, 0, len(pts))
	for _, pt := range pts {
		zs = append(zs, pt.Z)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(zs)))
	out := make([]float64, 0, len(zs))
	for _, z := range zs {
		if len(out) > 0 && z == out[len(out)-1] {
			continue
		}
		out = append(out, z)
	}
	return out
}
