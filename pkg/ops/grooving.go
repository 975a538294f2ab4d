package ops

import (
	"math"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// GroovingParams configures a rectangular external groove cut by repeated
// radial plunges of the grooving insert, followed by a floor traverse.
type GroovingParams struct {
	StartDiameter float64 // outer diameter at the groove mouth
	GrooveDepth   float64 // radial depth of the groove, mm
	StartZ        float64 // front wall of the groove (higher Z)
	Width         float64 // axial width of the groove, mm
	FeedRate      float64 // mm/min; 0 uses the tool's nominal feed
	DwellAtBottom float64 // seconds of dwell at full depth per plunge
	SafetyHeight  float64
}

// DefaultGroovingParams returns grooving parameters at the given mouth
// diameter and front wall position.
func DefaultGroovingParams(stockDiameter, startZ float64) GroovingParams {
	return GroovingParams{
		StartDiameter: stockDiameter,
		GrooveDepth:   2.0,
		StartZ:        startZ,
		Width:         3.0,
		DwellAtBottom: 0.1,
		SafetyHeight:  2.0,
	}
}

// ValidateGroovingParams checks a grooving parameter record.
func ValidateGroovingParams(p GroovingParams) error {
	if p.StartDiameter <= 0 {
		return paramErr("grooving", "startDiameter", "must be positive, got %g", p.StartDiameter)
	}
	if p.GrooveDepth <= 0 {
		return paramErr("grooving", "grooveDepth", "must be positive, got %g", p.GrooveDepth)
	}
	if p.GrooveDepth >= p.StartDiameter/2 {
		return paramErr("grooving", "grooveDepth", "%g reaches past the spindle axis", p.GrooveDepth)
	}
	if p.Width <= 0 {
		return paramErr("grooving", "width", "must be positive, got %g", p.Width)
	}
	if p.FeedRate < 0 {
		return paramErr("grooving", "feedRate", "must be non-negative, got %g", p.FeedRate)
	}
	if p.DwellAtBottom < 0 {
		return paramErr("grooving", "dwellAtBottom", "must be non-negative, got %g", p.DwellAtBottom)
	}
	if p.SafetyHeight < 0 {
		return paramErr("grooving", "safetyHeight", "must be non-negative, got %g", p.SafetyHeight)
	}
	return nil
}

// Grooving cuts a rectangular groove with plunge-and-traverse passes. The
// plunge count comes from the insert width: ceil(width / insertWidth)
// plunges spread across the groove, then one traverse along the floor.
type Grooving struct {
	params GroovingParams
	tool   tool.Tool
	handle tool.Handle
}

// NewGrooving builds a grooving operation with the tool resolved from the
// library. Tools without a recorded insert width plunge once per 3 mm.
// The groove must be at least as wide as the insert.
func NewGrooving(lib *tool.Library, h tool.Handle, p GroovingParams) (*Grooving, error) {
	t, err := resolveTool(lib, h)
	if err != nil {
		return nil, err
	}
	if iw := t.Geometry.InsertWidth; iw > 0 && p.Width < iw {
		return nil, paramErr("grooving", "width", "%g is narrower than the tool's %g insert", p.Width, iw)
	}
	return &Grooving{params: p, tool: t, handle: h}, nil
}

func (o *Grooving) Name() string { return "grooving" }
func (o *Grooving) Kind() Kind { return KindGrooving }
func (o *Grooving) Tool() tool.Handle { return o.handle }
func (o *Grooving) Validate() error { return ValidateGroovingParams(o.params) }
func (o *Grooving) Params() GroovingParams { return o.params }

// GenerateToolpath plunges across the groove, front wall to back wall, then
// traverses the floor once to clean it.
func (o *Grooving) GenerateToolpath(part Part) *toolpath.Toolpath {
	p := o.params
	feed := p.FeedRate
	if feed <= 0 {
		feed = o.tool.Cutting.FeedRate
	}
	speed := o.tool.Cutting.SpindleSpeed

	insert := o.tool.Geometry.InsertWidth
	if insert <= 0 {
		insert = 3.0
	}

	startR := p.StartDiameter / 2
	floorR := startR - p.GrooveDepth
	backZ := p.StartZ - p.Width
	safeX := startR + p.SafetyHeight
	safeZ := p.StartZ + p.SafetyHeight

	plunges := int(math.Ceil(p.Width / insert))
	if plunges < 1 {
		plunges = 1
	}

	tp := toolpath.New("grooving", o.handle)
	approach(tp, safeX, safeZ, startR)

	// Plunge at evenly spaced stations. The first station sits half an
	// insert width inside the front wall; the last lands flush against
	// the back wall.
	for i := 0; i < plunges; i++ {
		z := p.StartZ - insert/2 - float64(i)*insert
		if z < backZ+insert/2 {
			z = backZ + insert/2
		}
		tp.Rapid(xz(startR+p.SafetyHeight, z))
		tp.Linear(xz(floorR, z), feed, speed)
		if p.DwellAtBottom > 0 {
			tp.DwellFor(p.DwellAtBottom)
		}
		tp.Linear(xz(startR+p.SafetyHeight, z), feed, speed)
	}

	// Clean the floor with one axial traverse.
	tp.Rapid(xz(startR+p.SafetyHeight, p.StartZ-insert/2))
	tp.Linear(xz(floorR, p.StartZ-insert/2), feed, speed)
	tp.Linear(xz(floorR, backZ+insert/2), feed, speed)
	tp.Linear(xz(startR+p.SafetyHeight, backZ+insert/2), feed, speed)

	retreat(tp, safeX, safeZ)
	return tp.Optimized()
}
