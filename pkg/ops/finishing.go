package ops

import (
	"math"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// FinishingStrategy selects how the finishing allowance is removed.
type FinishingStrategy int

const (
	// FinishSinglePass removes the whole allowance in one contour pass.
	FinishSinglePass FinishingStrategy = iota
	// FinishMultiPass removes the allowance over Passes contour passes
	// with decreasing stock, the last at zero offset.
	FinishMultiPass
	// FinishSpringPass is a single pass followed by a repeat pass at
	// zero additional stock to relieve tool deflection.
	FinishSpringPass
)

func (s FinishingStrategy) String() string {
	switch s {
	case FinishSinglePass:
		return "single-pass"
	case FinishMultiPass:
		return "multi-pass"
	case FinishSpringPass:
		return "spring-pass"
	default:
		return "unknown"
	}
}

// SurfaceQuality selects a nominal roughness band. The bands scale the
// feed rate; they are documented targets, not computed from first
// principles.
type SurfaceQuality int

const (
	// QualityStandard targets Ra 3.2 µm: full nominal feed.
	QualityStandard SurfaceQuality = iota
	// QualityFine targets Ra 1.6 µm: 70% of nominal feed.
	QualityFine
	// QualityMirror targets Ra 0.8 µm: 45% of nominal feed.
	QualityMirror
)

// feedFactor returns the feed multiplier for the quality band.
func (q SurfaceQuality) feedFactor() float64 {
	switch q {
	case QualityFine:
		return 0.70
	case QualityMirror:
		return 0.45
	default:
		return 1.0
	}
}

// FinishingParams configures the contour-following finish cut.
type FinishingParams struct {
	StartZ           float64 // front of the finished span (higher Z)
	EndZ             float64 // back of the finished span
	ProfileTolerance float64 // contour deviation allowed when thinning samples, mm
	Strategy         FinishingStrategy
	Passes           int     // pass count for FinishMultiPass; >= 1
	TotalStock       float64 // radial stock removed by finishing, mm
	FeedRate         float64 // mm/min; 0 uses the tool's nominal feed
	AdaptiveFeedRate bool    // slow down through high-curvature segments
	Quality          SurfaceQuality
	SafetyHeight     float64
}

// DefaultFinishingParams returns single-pass finishing over the given span.
func DefaultFinishingParams(startZ, endZ float64) FinishingParams {
	return FinishingParams{
		StartZ:           startZ,
		EndZ:             endZ,
		ProfileTolerance: 0.01,
		Strategy:         FinishSinglePass,
		Passes:           1,
		TotalStock:       0.5,
		SafetyHeight:     2.0,
	}
}

// ValidateFinishingParams checks a finishing parameter record.
func ValidateFinishingParams(p FinishingParams) error {
	if p.StartZ <= p.EndZ {
		return paramErr("finishing", "startZ", "must exceed endZ (%g <= %g)", p.StartZ, p.EndZ)
	}
	if p.ProfileTolerance < 0 {
		return paramErr("finishing", "profileTolerance", "must be non-negative, got %g", p.ProfileTolerance)
	}
	if p.Strategy == FinishMultiPass && p.Passes < 1 {
		return paramErr("finishing", "passes", "multi-pass finishing needs at least 1 pass, got %d", p.Passes)
	}
	if p.TotalStock < 0 {
		return paramErr("finishing", "totalStock", "must be non-negative, got %g", p.TotalStock)
	}
	if p.FeedRate < 0 {
		return paramErr("finishing", "feedRate", "must be non-negative, got %g", p.FeedRate)
	}
	if p.SafetyHeight < 0 {
		return paramErr("finishing", "safetyHeight", "must be non-negative, got %g", p.SafetyHeight)
	}
	return nil
}

// Finishing follows the part's 2D profile within ProfileTolerance.
type Finishing struct {
	params FinishingParams
	tool   tool.Tool
	handle tool.Handle
}

// NewFinishing builds a finishing operation with the tool resolved from
// the library.
func NewFinishing(lib *tool.Library, h tool.Handle, p FinishingParams) (*Finishing, error) {
	t, err := resolveTool(lib, h)
	if err != nil {
		return nil, err
	}
	if p.Passes < 1 {
		p.Passes = 1
	}
	return &Finishing{params: p, tool: t, handle: h}, nil
}

func (f *Finishing) Name() string { return "finishing" }
func (f *Finishing) Kind() Kind { return KindFinishing }
func (f *Finishing) Tool() tool.Handle { return f.handle }
func (f *Finishing) Validate() error { return ValidateFinishingParams(f.params) }
func (f *Finishing) Params() FinishingParams { return f.params }

// GenerateToolpath follows the profile with the configured pass schedule.
// A degenerate profile falls back to a straight single-pass cut at the
// part radius so the caller never receives an empty toolpath silently.
func (f *Finishing) GenerateToolpath(part Part) *toolpath.Toolpath {
	p := f.params
	baseFeed := p.FeedRate
	if baseFeed <= 0 {
		baseFeed = f.tool.Cutting.FeedRate
	}
	baseFeed *= p.Quality.feedFactor()
	speed := f.tool.Cutting.SpindleSpeed

	profile := f.contour(part)
	if profile.Len() < 2 {
		return f.fallbackStraight(part, baseFeed, speed)
	}

	maxR := profile.MaxRadius()
	safeX := maxR + p.TotalStock + p.SafetyHeight
	safeZ := p.StartZ + p.SafetyHeight

	tp := toolpath.New("finishing", f.handle)
	startR := profile.RadiusAt(p.StartZ)
	approach(tp, safeX, safeZ, startR+p.TotalStock)

	for _, offset := range f.offsets() {
		endZ := f.contourPass(tp, profile, offset, baseFeed, speed)
		// Back out radially before the axial rapid home; a straight rapid
		// from the back of the part would cross any forward shoulder.
		tp.Rapid(xz(safeX, endZ))
		tp.Rapid(xz(safeX, safeZ))
	}

	retreat(tp, safeX, safeZ)
	return tp.Optimized()
}

// offsets returns the radial stock offsets of each pass, outermost first.
func (f *Finishing) offsets() []float64 {
	p := f.params
	switch p.Strategy {
	case FinishMultiPass:
		out := make([]float64, 0, p.Passes)
		for i := 1; i <= p.Passes; i++ {
			out = append(out, p.TotalStock*float64(p.Passes-i)/float64(p.Passes))
		}
		return out
	case FinishSpringPass:
		return []float64{0, 0}
	default:
		return []float64{0}
	}
}

// contour returns the profile restricted to the finishing span, sorted and
// thinned to ProfileTolerance.
func (f *Finishing) contour(part Part) geom.Profile2D {
	p := f.params
	src := part.Profile.Sorted()
	if src.Len() < 2 {
		return geom.Profile2D{}
	}

	kept := make([]geom.ProfilePoint, 0, src.Len())
	for _, pt := range src.Points() {
		if pt.Z < p.EndZ || pt.Z > p.StartZ {
			continue
		}
		// Thin samples the tool cannot distinguish: closer than the
		// tolerance to the previous kept point in both axes.
		if n := len(kept); n > 0 {
			last := kept[n-1]
			if math.Abs(pt.Z-last.Z) < p.ProfileTolerance && math.Abs(pt.Radius-last.Radius) < p.ProfileTolerance {
				continue
			}
		}
		kept = append(kept, pt)
	}
	out, err := geom.NewProfile(kept)
	if err != nil {
		return geom.Profile2D{}
	}
	return out
}

// contourPass emits one front-to-back pass over the profile at the given
// radial offset and returns the Z where the pass ends.
func (f *Finishing) contourPass(tp *toolpath.Toolpath, profile geom.Profile2D, offset, baseFeed, speed float64) float64 {
	pts := profile.Points()

	// Front to back: descending Z.
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}

	tp.Rapid(xz(pts[0].Radius+offset, f.params.StartZ+f.params.SafetyHeight))
	tp.Linear(xz(pts[0].Radius+offset, pts[0].Z), baseFeed, speed)

	for i := 1; i < len(pts); i++ {
		feed := baseFeed
		if f.params.AdaptiveFeedRate && i+1 < len(pts) {
			feed = baseFeed * curvatureFactor(pts[i-1], pts[i], pts[i+1])
		}
		tp.Linear(xz(pts[i].Radius+offset, pts[i].Z), feed, speed)
	}
	return pts[len(pts)-1].Z
}

// curvatureFactor scales feed down as the contour turns: 1.0 on straight
// runs, clamped at 0.4 through sharp corners.
func curvatureFactor(a, b, c geom.ProfilePoint) float64 {
	a1 := math.Atan2(b.Radius-a.Radius, b.Z-a.Z)
	a2 := math.Atan2(c.Radius-b.Radius, c.Z-b.Z)
	turn := math.Abs(a2 - a1)
	if turn > math.Pi {
		turn = 2*math.Pi - turn
	}
	factor := 1 - turn/math.Pi
	if factor < 0.4 {
		factor = 0.4
	}
	return factor
}

// fallbackStraight is the degenerate-profile fallback: one straight cut at
// the part radius across the finishing span.
func (f *Finishing) fallbackStraight(part Part, feed, speed float64) *toolpath.Toolpath {
	p := f.params
	r := part.Radius()
	if r <= 0 {
		r = 1
	}
	safeX := r + p.SafetyHeight
	safeZ := p.StartZ + p.SafetyHeight

	tp := toolpath.New("finishing", f.handle)
	approach(tp, safeX, safeZ, r)
	tp.Append(toolpath.Movement{
		Type: toolpath.MoveLinear, Target: xz(r, p.StartZ),
		Feed: feed, Speed: speed, Label: "fallback: straight pass",
	})
	tp.Linear(xz(r, p.EndZ), feed, speed)
	retreat(tp, safeX, safeZ)
	return tp
}
