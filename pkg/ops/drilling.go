package ops

import (
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// DrillStrategy selects the axial drilling cycle.
type DrillStrategy int

const (
	// DrillSimple feeds to depth in one motion.
	DrillSimple DrillStrategy = iota
	// DrillPeck retracts partially between pecks to clear chips.
	DrillPeck
	// DrillDeepHole retracts fully between pecks and shrinks the peck
	// depth as the hole deepens.
	DrillDeepHole
)

func (s DrillStrategy) String() string {
	switch s {
	case DrillSimple:
		return "simple"
	case DrillPeck:
		return "peck"
	case DrillDeepHole:
		return "deep-hole"
	default:
		return "unknown"
	}
}

// DrillingParams configures an on-axis drilling cycle. The tool is always
// at X=0; only Z moves during the cut.
type DrillingParams struct {
	StartZ        float64 // hole entry plane (higher Z)
	Depth         float64 // hole depth below StartZ, mm; must be positive
	Strategy      DrillStrategy
	PeckDepth     float64 // axial advance per peck, mm; peck strategies only
	RetractHeight float64 // partial retract between pecks for DrillPeck, mm
	DwellAtBottom float64 // seconds of dwell at final depth
	FeedRate      float64 // mm/min; 0 uses the tool's nominal feed
	SafetyHeight  float64
}

// DefaultDrillingParams returns a simple drill cycle entering at z=0.
func DefaultDrillingParams(depth float64) DrillingParams {
	return DrillingParams{
		StartZ:        0,
		Depth:         depth,
		Strategy:      DrillSimple,
		PeckDepth:     5.0,
		RetractHeight: 1.0,
		SafetyHeight:  2.0,
	}
}

// ValidateDrillingParams checks a drilling parameter record.
func ValidateDrillingParams(p DrillingParams) error {
	if p.Depth <= 0 {
		return paramErr("drilling", "depth", "must be positive, got %g", p.Depth)
	}
	if p.Strategy != DrillSimple && p.PeckDepth <= 0 {
		return paramErr("drilling", "peckDepth", "must be positive for peck cycles, got %g", p.PeckDepth)
	}
	if p.RetractHeight < 0 {
		return paramErr("drilling", "retractHeight", "must be non-negative, got %g", p.RetractHeight)
	}
	if p.DwellAtBottom < 0 {
		return paramErr("drilling", "dwellAtBottom", "must be non-negative, got %g", p.DwellAtBottom)
	}
	if p.FeedRate < 0 {
		return paramErr("drilling", "feedRate", "must be non-negative, got %g", p.FeedRate)
	}
	if p.SafetyHeight < 0 {
		return paramErr("drilling", "safetyHeight", "must be non-negative, got %g", p.SafetyHeight)
	}
	return nil
}

// Drilling cuts an on-axis hole with the selected cycle.
type Drilling struct {
	params DrillingParams
	tool   tool.Tool
	handle tool.Handle
}

// NewDrilling builds a drilling operation with the tool resolved from the
// library.
func NewDrilling(lib *tool.Library, h tool.Handle, p DrillingParams) (*Drilling, error) {
	t, err := resolveTool(lib, h)
	if err != nil {
		return nil, err
	}
	return &Drilling{params: p, tool: t, handle: h}, nil
}

func (o *Drilling) Name() string { return "drilling" }
func (o *Drilling) Kind() Kind { return KindDrilling }
func (o *Drilling) Tool() tool.Handle { return o.handle }
func (o *Drilling) Validate() error { return ValidateDrillingParams(o.params) }
func (o *Drilling) Params() DrillingParams { return o.params }

// GenerateToolpath produces the drill cycle on the spindle axis.
func (o *Drilling) GenerateToolpath(part Part) *toolpath.Toolpath {
	p := o.params
	feed := p.FeedRate
	if feed <= 0 {
		feed = o.tool.Cutting.FeedRate
	}
	speed := o.tool.Cutting.SpindleSpeed

	entry := p.StartZ
	bottom := entry - p.Depth
	safeZ := entry + p.SafetyHeight

	tp := toolpath.New("drilling", o.handle)
	// On-axis work: the safety position is above the hole, not radially
	// clear of the stock.
	tp.Rapid(xz(0, safeZ))

	switch p.Strategy {
	case DrillPeck:
		for z := entry - p.PeckDepth; ; z -= p.PeckDepth {
			if z < bottom {
				z = bottom
			}
			tp.Linear(xz(0, z), feed, speed)
			if z <= bottom {
				break
			}
			// Partial retract clears the chip without leaving the hole.
			tp.Rapid(xz(0, z+p.RetractHeight))
		}
	case DrillDeepHole:
		// Pecks shrink as the hole deepens; full retract each peck.
		peck := p.PeckDepth
		z := entry
		for z > bottom {
			z -= peck
			if z < bottom {
				z = bottom
			}
			tp.Linear(xz(0, z), feed, speed)
			if z <= bottom {
				break
			}
			tp.Rapid(xz(0, safeZ))
			tp.Rapid(xz(0, z+p.RetractHeight))
			peck *= 0.8
			if peck < p.PeckDepth/4 {
				peck = p.PeckDepth / 4
			}
		}
	default:
		tp.Linear(xz(0, bottom), feed, speed)
	}

	if p.DwellAtBottom > 0 {
		tp.DwellFor(p.DwellAtBottom)
	}
	tp.Rapid(xz(0, safeZ))
	return tp
}
