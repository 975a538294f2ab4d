package ops

import (
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// ContouringParams configures a single profile-following pass at a fixed
// radial offset from the part contour.
type ContouringParams struct {
	StartZ       float64 // front of the contoured span (higher Z)
	EndZ         float64 // back of the contoured span
	Offset       float64 // radial offset from the profile, mm; 0 rides the contour
	FeedRate     float64 // mm/min; 0 uses the tool's nominal feed
	SafetyHeight float64
}

// DefaultContouringParams returns a zero-offset contour pass over the span.
func DefaultContouringParams(startZ, endZ float64) ContouringParams {
	return ContouringParams{
		StartZ:       startZ,
		EndZ:         endZ,
		SafetyHeight: 2.0,
	}
}

// ValidateContouringParams checks a contouring parameter record.
func ValidateContouringParams(p ContouringParams) error {
	if p.StartZ <= p.EndZ {
		return paramErr("contouring", "startZ", "must exceed endZ (%g <= %g)", p.StartZ, p.EndZ)
	}
	if p.Offset < 0 {
		return paramErr("contouring", "offset", "must be non-negative, got %g", p.Offset)
	}
	if p.FeedRate < 0 {
		return paramErr("contouring", "feedRate", "must be non-negative, got %g", p.FeedRate)
	}
	if p.SafetyHeight < 0 {
		return paramErr("contouring", "safetyHeight", "must be non-negative, got %g", p.SafetyHeight)
	}
	return nil
}

// Contouring traces the part profile in one front-to-back pass, offset
// radially by Offset. Unlike finishing it carries no pass schedule or
// surface-quality model; it is the building block for semi-finish passes
// and custom sequences.
type Contouring struct {
	params ContouringParams
	tool   tool.Tool
	handle tool.Handle
}

// NewContouring builds a contouring operation with the tool resolved from
// the library.
func NewContouring(lib *tool.Library, h tool.Handle, p ContouringParams) (*Contouring, error) {
	t, err := resolveTool(lib, h)
	if err != nil {
		return nil, err
	}
	return &Contouring{params: p, tool: t, handle: h}, nil
}

func (o *Contouring) Name() string { return "contouring" }
func (o *Contouring) Kind() Kind { return KindContouring }
func (o *Contouring) Tool() tool.Handle { return o.handle }
func (o *Contouring) Validate() error { return ValidateContouringParams(o.params) }
func (o *Contouring) Params() ContouringParams { return o.params }

// GenerateToolpath traces the profile once. An empty profile degrades to a
// straight pass at the part radius plus offset.
func (o *Contouring) GenerateToolpath(part Part) *toolpath.Toolpath {
	p := o.params
	feed := p.FeedRate
	if feed <= 0 {
		feed = o.tool.Cutting.FeedRate
	}
	speed := o.tool.Cutting.SpindleSpeed

	profile := part.Profile.Sorted()
	tp := toolpath.New("contouring", o.handle)

	if profile.Len() < 2 {
		r := part.Radius() + p.Offset
		if r <= 0 {
			r = 1
		}
		safeX := r + p.SafetyHeight
		safeZ := p.StartZ + p.SafetyHeight
		approach(tp, safeX, safeZ, r)
		tp.Linear(xz(r, p.StartZ), feed, speed)
		tp.Linear(xz(r, p.EndZ), feed, speed)
		retreat(tp, safeX, safeZ)
		return tp
	}

	safeX := profile.MaxRadius() + p.Offset + p.SafetyHeight
	safeZ := p.StartZ + p.SafetyHeight
	approach(tp, safeX, safeZ, profile.RadiusAt(p.StartZ)+p.Offset)

	// Front to back over the profile samples inside the span.
	pts := profile.Points()
	tp.Linear(xz(profile.RadiusAt(p.StartZ)+p.Offset, p.StartZ), feed, speed)
	for i := len(pts) - 1; i >= 0; i-- {
		pt := pts[i]
		if pt.Z >= p.StartZ || pt.Z <= p.EndZ {
			continue
		}
		tp.Linear(xz(pt.Radius+p.Offset, pt.Z), feed, speed)
	}
	tp.Linear(xz(profile.RadiusAt(p.EndZ)+p.Offset, p.EndZ), feed, speed)

	// Back out radially before the axial rapid home; a straight rapid
	// from the back of the part would cross any forward shoulder.
	tp.Rapid(xz(safeX, p.EndZ))
	retreat(tp, safeX, safeZ)
	return tp.Optimized()
}
