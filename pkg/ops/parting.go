package ops

import (
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// PartingParams configures a part-off cut: a single radial plunge at a
// fixed axial plane, from the stock surface down to the center hole
// diameter (0 parts all the way through).
type PartingParams struct {
	PartingDiameter    float64 // stock diameter where the plunge begins
	CenterHoleDiameter float64 // diameter where the plunge ends; 0 cuts to center
	Z                  float64 // axial position of the parting plane
	RetractDistance    float64 // radial retract after the plunge, mm
	FeedRate           float64 // mm/min; 0 uses the tool's nominal feed
	SafetyHeight       float64
}

// DefaultPartingParams returns parting parameters for a stock diameter,
// cutting to center.
func DefaultPartingParams(stockDiameter, z float64) PartingParams {
	return PartingParams{
		PartingDiameter:    stockDiameter,
		CenterHoleDiameter: 0,
		Z:                  z,
		RetractDistance:    2.0,
		SafetyHeight:       2.0,
	}
}

// ValidatePartingParams checks a parting parameter record.
func ValidatePartingParams(p PartingParams) error {
	if p.PartingDiameter <= 0 {
		return paramErr("parting", "partingDiameter", "must be positive, got %g", p.PartingDiameter)
	}
	if p.CenterHoleDiameter < 0 {
		return paramErr("parting", "centerHoleDiameter", "must be non-negative, got %g", p.CenterHoleDiameter)
	}
	if p.PartingDiameter <= p.CenterHoleDiameter {
		return paramErr("parting", "partingDiameter", "must exceed centerHoleDiameter (%g <= %g)", p.PartingDiameter, p.CenterHoleDiameter)
	}
	if p.RetractDistance < 0 {
		return paramErr("parting", "retractDistance", "must be non-negative, got %g", p.RetractDistance)
	}
	if p.FeedRate < 0 {
		return paramErr("parting", "feedRate", "must be non-negative, got %g", p.FeedRate)
	}
	if p.SafetyHeight < 0 {
		return paramErr("parting", "safetyHeight", "must be non-negative, got %g", p.SafetyHeight)
	}
	return nil
}

// Parting severs the finished part from the stock with a radial plunge.
type Parting struct {
	params PartingParams
	tool   tool.Tool
	handle tool.Handle
}

// NewParting builds a parting operation with the tool resolved from the
// library.
func NewParting(lib *tool.Library, h tool.Handle, p PartingParams) (*Parting, error) {
	t, err := resolveTool(lib, h)
	if err != nil {
		return nil, err
	}
	return &Parting{params: p, tool: t, handle: h}, nil
}

func (o *Parting) Name() string { return "parting" }
func (o *Parting) Kind() Kind { return KindParting }
func (o *Parting) Tool() tool.Handle { return o.handle }
func (o *Parting) Validate() error { return ValidatePartingParams(o.params) }
func (o *Parting) Params() PartingParams { return o.params }

// GenerateToolpath plunges at the parting plane and retracts by
// RetractDistance before the safety-plane retract.
func (o *Parting) GenerateToolpath(part Part) *toolpath.Toolpath {
	p := o.params
	feed := p.FeedRate
	if feed <= 0 {
		feed = o.tool.Cutting.FeedRate
	}
	speed := o.tool.Cutting.SpindleSpeed

	startR := p.PartingDiameter / 2
	endR := p.CenterHoleDiameter / 2
	safeX := startR + p.SafetyHeight
	safeZ := p.Z + p.SafetyHeight

	tp := toolpath.New("parting", o.handle)
	approach(tp, safeX, safeZ, startR)

	tp.Rapid(xz(startR, p.Z))
	tp.Linear(xz(endR, p.Z), feed, speed)
	tp.Linear(xz(endR+p.RetractDistance, p.Z), feed, speed)

	retreat(tp, safeX, safeZ)
	return tp
}
