package ops

import (
	"math"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// ChamferVariant selects the chamfer geometry.
type ChamferVariant int

const (
	// ChamferLinear is a straight 45-or-specified-angle edge break.
	ChamferLinear ChamferVariant = iota
	// ChamferSegmented approximates a rounded edge with short linear
	// segments along a quarter arc.
	ChamferSegmented
)

func (v ChamferVariant) String() string {
	switch v {
	case ChamferLinear:
		return "linear"
	case ChamferSegmented:
		return "segmented"
	default:
		return "unknown"
	}
}

// ChamferingParams configures an edge break at the given axial position.
// External chamfers cut from the larger start diameter down to the end
// diameter; internal chamfers run the other way.
type ChamferingParams struct {
	StartDiameter float64 // diameter where the chamfer begins
	EndDiameter   float64 // diameter where the chamfer ends
	Z             float64 // axial position of the edge being broken
	Angle         float64 // chamfer angle from the face, degrees; linear variant only
	Variant       ChamferVariant
	Segments      int     // arc segments for ChamferSegmented; >= 2
	Internal      bool    // internal edge: start must be smaller than end
	FeedRate      float64 // mm/min; 0 uses the tool's nominal feed
	SafetyHeight  float64
}

// DefaultChamferingParams returns a 45 degree external edge break.
func DefaultChamferingParams(startDiameter, endDiameter, z float64) ChamferingParams {
	return ChamferingParams{
		StartDiameter: startDiameter,
		EndDiameter:   endDiameter,
		Z:             z,
		Angle:         45,
		Variant:       ChamferLinear,
		Segments:      8,
		SafetyHeight:  2.0,
	}
}

// ValidateChamferingParams checks a chamfering parameter record. The
// diameter ordering depends on orientation: external chamfers need the
// start diameter above the end diameter, internal chamfers the reverse.
func ValidateChamferingParams(p ChamferingParams) error {
	if p.StartDiameter <= 0 {
		return paramErr("chamfering", "startDiameter", "must be positive, got %g", p.StartDiameter)
	}
	if p.EndDiameter < 0 {
		return paramErr("chamfering", "endDiameter", "must be non-negative, got %g", p.EndDiameter)
	}
	if p.Internal {
		if p.StartDiameter >= p.EndDiameter {
			return paramErr("chamfering", "startDiameter", "internal chamfer requires startDiameter < endDiameter (%g >= %g)", p.StartDiameter, p.EndDiameter)
		}
	} else if p.StartDiameter <= p.EndDiameter {
		return paramErr("chamfering", "startDiameter", "external chamfer requires startDiameter > endDiameter (%g <= %g)", p.StartDiameter, p.EndDiameter)
	}
	if p.Variant == ChamferLinear && (p.Angle <= 0 || p.Angle >= 90) {
		return paramErr("chamfering", "angle", "must be in (0, 90) degrees, got %g", p.Angle)
	}
	if p.Variant == ChamferSegmented && p.Segments < 2 {
		return paramErr("chamfering", "segments", "must be at least 2, got %d", p.Segments)
	}
	if p.FeedRate < 0 {
		return paramErr("chamfering", "feedRate", "must be non-negative, got %g", p.FeedRate)
	}
	if p.SafetyHeight < 0 {
		return paramErr("chamfering", "safetyHeight", "must be non-negative, got %g", p.SafetyHeight)
	}
	return nil
}

// Chamfering breaks an edge with either a straight cut at the configured
// angle or a segmented arc approximating a rounded corner.
type Chamfering struct {
	params ChamferingParams
	tool   tool.Tool
	handle tool.Handle
}

// NewChamfering builds a chamfering operation with the tool resolved from
// the library.
func NewChamfering(lib *tool.Library, h tool.Handle, p ChamferingParams) (*Chamfering, error) {
	t, err := resolveTool(lib, h)
	if err != nil {
		return nil, err
	}
	return &Chamfering{params: p, tool: t, handle: h}, nil
}

func (o *Chamfering) Name() string { return "chamfering" }
func (o *Chamfering) Kind() Kind { return KindChamfering }
func (o *Chamfering) Tool() tool.Handle { return o.handle }
func (o *Chamfering) Validate() error { return ValidateChamferingParams(o.params) }
func (o *Chamfering) Params() ChamferingParams { return o.params }

// GenerateToolpath produces the edge break. Both variants start at the
// larger radius on the face plane and walk toward the smaller radius,
// moving back in Z as the radius drops.
func (o *Chamfering) GenerateToolpath(part Part) *toolpath.Toolpath {
	p := o.params
	feed := p.FeedRate
	if feed <= 0 {
		feed = o.tool.Cutting.FeedRate
	}
	speed := o.tool.Cutting.SpindleSpeed

	startR := p.StartDiameter / 2
	endR := p.EndDiameter / 2
	outerR := math.Max(startR, endR)
	dr := math.Abs(startR - endR)
	safeX := outerR + p.SafetyHeight
	safeZ := p.Z + p.SafetyHeight

	tp := toolpath.New("chamfering", o.handle)
	approach(tp, safeX, safeZ, startR)
	tp.Rapid(xz(startR, p.Z+p.SafetyHeight))
	tp.Linear(xz(startR, p.Z), feed, speed)

	switch p.Variant {
	case ChamferSegmented:
		// Quarter arc from (startR, Z) to (endR, Z-dr). Radius tracks
		// sin, axial drop tracks 1-cos, so the path leaves tangent to
		// the face and lands tangent to the cylinder.
		sign := 1.0
		if p.Internal {
			sign = -1
		}
		for i := 1; i <= p.Segments; i++ {
			theta := math.Pi / 2 * float64(i) / float64(p.Segments)
			r := startR - sign*dr*math.Sin(theta)
			z := p.Z - dr*(1-math.Cos(theta))
			tp.Linear(xz(r, z), feed, speed)
		}
	default:
		// Straight edge at the configured angle from the face.
		dz := dr / math.Tan(p.Angle*math.Pi/180)
		tp.Linear(xz(endR, p.Z-dz), feed, speed)
	}

	retreat(tp, safeX, safeZ)
	return tp
}
