package ops

import (
	"math"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// ThreadingParams configures an external single-point thread. The thread
// is cut over several passes with a linear depth ramp; the axial feed per
// spindle revolution equals the pitch.
type ThreadingParams struct {
	MajorDiameter float64 // nominal thread diameter, mm
	Pitch         float64 // thread pitch, mm per revolution
	StartZ        float64 // thread start (higher Z)
	EndZ          float64 // thread end
	Passes        int     // cutting passes; depth ramps linearly to full depth
	ThreadDepth   float64 // radial depth; 0 derives 0.6134 * pitch (ISO metric)
	SpindleSpeed  float64 // rpm; 0 uses the tool's nominal speed
	SafetyHeight  float64
}

// DefaultThreadingParams returns M-series external threading parameters.
func DefaultThreadingParams(majorDiameter, pitch, startZ, endZ float64) ThreadingParams {
	return ThreadingParams{
		MajorDiameter: majorDiameter,
		Pitch:         pitch,
		StartZ:        startZ,
		EndZ:          endZ,
		Passes:        6,
		SafetyHeight:  2.0,
	}
}

// ValidateThreadingParams checks a threading parameter record.
func ValidateThreadingParams(p ThreadingParams) error {
	if p.MajorDiameter <= 0 {
		return paramErr("threading", "majorDiameter", "must be positive, got %g", p.MajorDiameter)
	}
	if p.Pitch <= 0 {
		return paramErr("threading", "pitch", "must be positive, got %g", p.Pitch)
	}
	if p.StartZ <= p.EndZ {
		return paramErr("threading", "startZ", "must exceed endZ (%g <= %g)", p.StartZ, p.EndZ)
	}
	if p.Passes < 1 {
		return paramErr("threading", "passes", "must be at least 1, got %d", p.Passes)
	}
	if p.ThreadDepth < 0 {
		return paramErr("threading", "threadDepth", "must be non-negative, got %g", p.ThreadDepth)
	}
	if depth := p.ThreadDepth; depth > 0 && depth >= p.MajorDiameter/2 {
		return paramErr("threading", "threadDepth", "%g reaches past the spindle axis", depth)
	}
	if p.SpindleSpeed < 0 {
		return paramErr("threading", "spindleSpeed", "must be non-negative, got %g", p.SpindleSpeed)
	}
	if p.SafetyHeight < 0 {
		return paramErr("threading", "safetyHeight", "must be non-negative, got %g", p.SafetyHeight)
	}
	return nil
}

// Threading cuts an external thread over Passes passes. Pass i cuts at
// depth fullDepth * i / Passes, so the last pass lands exactly on the
// minor diameter.
type Threading struct {
	params ThreadingParams
	tool   tool.Tool
	handle tool.Handle
}

// NewThreading builds a threading operation with the tool resolved from
// the library.
func NewThreading(lib *tool.Library, h tool.Handle, p ThreadingParams) (*Threading, error) {
	t, err := resolveTool(lib, h)
	if err != nil {
		return nil, err
	}
	return &Threading{params: p, tool: t, handle: h}, nil
}

func (o *Threading) Name() string { return "threading" }
func (o *Threading) Kind() Kind { return KindThreading }
func (o *Threading) Tool() tool.Handle { return o.handle }
func (o *Threading) Validate() error { return ValidateThreadingParams(o.params) }
func (o *Threading) Params() ThreadingParams { return o.params }

// Depth returns the effective radial thread depth, deriving the ISO metric
// value 0.6134 * pitch when the parameter is zero.
func (o *Threading) Depth() float64 {
	if o.params.ThreadDepth > 0 {
		return o.params.ThreadDepth
	}
	return 0.6134 * o.params.Pitch
}

// GenerateToolpath produces the threading passes. The feed rate is locked
// to pitch * rpm so the axial advance per revolution equals the pitch.
func (o *Threading) GenerateToolpath(part Part) *toolpath.Toolpath {
	p := o.params
	speed := p.SpindleSpeed
	if speed <= 0 {
		speed = o.tool.Cutting.SpindleSpeed
	}
	feed := p.Pitch * speed

	majorR := p.MajorDiameter / 2
	fullDepth := o.Depth()
	safeX := majorR + p.SafetyHeight
	safeZ := p.StartZ + p.SafetyHeight

	// Lead-in ahead of the thread start gives the axis time to
	// synchronize before the flank engages.
	leadIn := math.Max(p.Pitch, 1.0)

	tp := toolpath.New("threading", o.handle)
	approach(tp, safeX, safeZ, majorR)

	for i := 1; i <= p.Passes; i++ {
		passR := majorR - fullDepth*float64(i)/float64(p.Passes)
		tp.Rapid(xz(passR, p.StartZ+leadIn))
		tp.Linear(xz(passR, p.EndZ), feed, speed)
		tp.Linear(xz(safeX, p.EndZ), feed, speed)
		tp.Rapid(xz(safeX, safeZ))
	}

	retreat(tp, safeX, safeZ)
	return tp.Optimized()
}
