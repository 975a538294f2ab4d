package ops

import (
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// FacingParams configures a facing cut: a radial sweep across the part
// face at a fixed axial plane. All lengths in mm.
type FacingParams struct {
	StartDiameter float64 // outer diameter where the sweep begins; must exceed EndDiameter
	EndDiameter   float64 // diameter where the sweep ends (0 faces to center)
	Z             float64 // axial position of the face plane
	Stepover      float64 // radial distance per step; must be positive
	SafetyHeight  float64 // clearance added to the safety plane
}

// DefaultFacingParams returns facing parameters for a stock diameter,
// facing to center at z=0.
func DefaultFacingParams(stockDiameter float64) FacingParams {
	return FacingParams{
		StartDiameter: stockDiameter,
		EndDiameter:   0,
		Z:             0,
		Stepover:      1.5,
		SafetyHeight:  2.0,
	}
}

// ValidateFacingParams checks a facing parameter record.
func ValidateFacingParams(p FacingParams) error {
	if p.StartDiameter <= 0 {
		return paramErr("facing", "startDiameter", "must be positive, got %g", p.StartDiameter)
	}
	if p.EndDiameter < 0 {
		return paramErr("facing", "endDiameter", "must be non-negative, got %g", p.EndDiameter)
	}
	if p.StartDiameter <= p.EndDiameter {
		return paramErr("facing", "startDiameter", "must exceed endDiameter (%g <= %g)", p.StartDiameter, p.EndDiameter)
	}
	if p.Stepover <= 0 {
		return paramErr("facing", "stepover", "must be positive, got %g", p.Stepover)
	}
	if p.SafetyHeight < 0 {
		return paramErr("facing", "safetyHeight", "must be non-negative, got %g", p.SafetyHeight)
	}
	return nil
}

// Facing sweeps the tool radially inward across the face plane, stepping
// by Stepover per move and always finishing exactly at EndDiameter/2.
type Facing struct {
	params FacingParams
	tool   tool.Tool
	handle tool.Handle
}

// NewFacing builds a facing operation with the tool resolved from the
// library. The tool record is copied; the operation owns its parameters.
func NewFacing(lib *tool.Library, h tool.Handle, p FacingParams) (*Facing, error) {
	t, err := resolveTool(lib, h)
	if err != nil {
		return nil, err
	}
	return &Facing{params: p, tool: t, handle: h}, nil
}

func (f *Facing) Name() string { return "facing" }
func (f *Facing) Kind() Kind { return KindFacing }
func (f *Facing) Tool() tool.Handle { return f.handle }
func (f *Facing) Validate() error { return ValidateFacingParams(f.params) }
func (f *Facing) Params() FacingParams { return f.params }

// GenerateToolpath produces the facing sweep. The final radial position is
// exactly EndDiameter/2 before the retract.
func (f *Facing) GenerateToolpath(part Part) *toolpath.Toolpath {
	p := f.params
	feed := f.tool.Cutting.FeedRate
	speed := f.tool.Cutting.SpindleSpeed

	startR := p.StartDiameter / 2
	endR := p.EndDiameter / 2
	safeX := startR + p.SafetyHeight
	safeZ := p.Z + p.SafetyHeight

	tp := toolpath.New("facing", f.handle)
	approach(tp, safeX, safeZ, startR)

	// Feed down to the face plane, then sweep inward.
	tp.Linear(xz(startR, p.Z), feed, speed)
	for r := startR - p.Stepover; r > endR; r -= p.Stepover {
		tp.Linear(xz(r, p.Z), feed, speed)
	}
	tp.Linear(xz(endR, p.Z), feed, speed)

	// Clear the face before the retract so the tool does not drag.
	tp.Linear(xz(endR, p.Z+p.SafetyHeight), feed, speed)
	retreat(tp, safeX, safeZ)
	return tp
}
