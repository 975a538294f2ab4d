// Package planner turns a raw stock solid and a finished part solid into
// an ordered machining sequence with generated toolpaths. The pipeline is
// fixed for a single-setup turned part: facing, roughing, finishing,
// parting, in that order.
package planner

import (
	"fmt"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/kernel"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/ops"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/profile"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// Params are the process-level knobs for a planning run. Operation
// parameter records are derived from these plus the part geometry.
type Params struct {
	FacingStepover     float64
	RoughingDepthOfCut float64
	StockAllowance     float64 // radial stock roughing leaves for finishing
	FinishingAllowance float64 // axial stock left at the back for parting support
	PartingAllowance   float64 // axial offset of the parting plane behind the part
	ProfileTolerance   float64
	SafetyHeight       float64
}

// DefaultParams returns conservative mild-steel defaults.
func DefaultParams() Params {
	return Params{
		FacingStepover:     1.5,
		RoughingDepthOfCut: 2.0,
		StockAllowance:     0.5,
		FinishingAllowance: 0.1,
		PartingAllowance:   2.0,
		ProfileTolerance:   0.05,
		SafetyHeight:       2.0,
	}
}

// Validate checks the planning parameters.
func (p Params) Validate() error {
	if p.FacingStepover <= 0 {
		return fmt.Errorf("planner: facingStepover must be positive, got %g", p.FacingStepover)
	}
	if p.RoughingDepthOfCut <= 0 {
		return fmt.Errorf("planner: roughingDepthOfCut must be positive, got %g", p.RoughingDepthOfCut)
	}
	if p.StockAllowance < 0 {
		return fmt.Errorf("planner: stockAllowance must be non-negative, got %g", p.StockAllowance)
	}
	if p.FinishingAllowance < 0 {
		return fmt.Errorf("planner: finishingAllowance must be non-negative, got %g", p.FinishingAllowance)
	}
	if p.PartingAllowance < 0 {
		return fmt.Errorf("planner: partingAllowance must be non-negative, got %g", p.PartingAllowance)
	}
	if p.ProfileTolerance <= 0 {
		return fmt.Errorf("planner: profileTolerance must be positive, got %g", p.ProfileTolerance)
	}
	if p.SafetyHeight < 0 {
		return fmt.Errorf("planner: safetyHeight must be non-negative, got %g", p.SafetyHeight)
	}
	return nil
}

// Progress receives planning status. Implementations must be safe to call
// from the planning goroutine; IsCancelled is polled between operations.
type Progress interface {
	SetProgress(percent int)
	SetStatus(status string)
	IsCancelled() bool
}

// NopProgress ignores all callbacks and never cancels.
type NopProgress struct{}

func (NopProgress) SetProgress(int) {}
func (NopProgress) SetStatus(string) {}
func (NopProgress) IsCancelled() bool { return false }

var _ Progress = NopProgress{}

// OpError records a per-operation failure. Planning continues past it so
// one bad operation does not discard the whole sequence.
type OpError struct {
	Op  string
	Err error
}

func (e OpError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e OpError) Unwrap() error { return e.Err }

// Result is the outcome of a planning run. Toolpaths holds one toolpath
// per successful operation, in machining order.
type Result struct {
	Toolpaths  []*toolpath.Toolpath
	Operations *ops.Sequence
	Errors     []OpError
	Warnings   []string
	Cancelled  bool
}

// Planner generates machining sequences.
type Planner struct {
	registry  *ops.Registry
	tools     *tool.Library
	extractor *profile.Extractor
	progress  Progress
}

// New builds a planner. progress may be nil.
func New(registry *ops.Registry, tools *tool.Library, extractor *profile.Extractor, progress Progress) (*Planner, error) {
	if registry == nil {
		return nil, fmt.Errorf("planner: nil registry")
	}
	if tools == nil {
		return nil, fmt.Errorf("planner: nil tool library")
	}
	if extractor == nil {
		return nil, fmt.Errorf("planner: nil profile extractor")
	}
	if progress == nil {
		progress = NopProgress{}
	}
	return &Planner{registry: registry, tools: tools, extractor: extractor, progress: progress}, nil
}

// step pairs an operation kind with its derived parameters for one run.
type step struct {
	kind   ops.Kind
	typ    tool.Type
	params any
}

// GenerateSequence plans the four mandatory operations for the given raw
// stock and finished part. Toolpaths are generated serially so results
// are deterministic; cancellation is polled between operations and yields
// the partial result with Cancelled set. The world transform maps
// part-local coordinates into machine coordinates.
func (p *Planner) GenerateSequence(raw, finished kernel.Solid, params Params, world geom.Transform) (*Result, error) {
	if raw == nil || finished == nil {
		return nil, fmt.Errorf("planner: nil solid")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Operations: &ops.Sequence{}}

	p.progress.SetStatus("extracting profile")
	p.progress.SetProgress(0)

	partProfile, err := p.extractor.Extract(finished)
	if err != nil {
		return nil, fmt.Errorf("planner: profile extraction: %w", err)
	}

	rawBounds := raw.BoundingBox()
	part := ops.Part{Bounds: finished.BoundingBox(), Profile: partProfile}
	rawDiameter := rawBounds.RadialExtent() * 2
	rawFront := rawBounds.Max.Z

	for i, s := range p.deriveSteps(rawDiameter, rawFront, part, params) {
		if p.progress.IsCancelled() {
			res.Cancelled = true
			res.Warnings = append(res.Warnings, fmt.Sprintf("cancelled before %s", s.kind))
			return res, nil
		}
		p.progress.SetStatus(fmt.Sprintf("planning %s", s.kind))

		op, opErr := p.buildStep(s)
		if opErr != nil {
			res.Errors = append(res.Errors, OpError{Op: s.kind.String(), Err: opErr})
			continue
		}
		res.Operations.Add(op)
		tp := op.GenerateToolpath(part)
		if !world.IsIdentity() {
			tp = tp.Transformed(world)
		}
		res.Toolpaths = append(res.Toolpaths, tp)
		p.progress.SetProgress((i + 1) * 100 / 4)
	}

	p.progress.SetStatus("done")
	p.progress.SetProgress(100)
	return res, nil
}

// deriveSteps computes the parameter records of the four mandatory
// operations from the stock and part geometry.
func (p *Planner) deriveSteps(rawDiameter, rawFront float64, part ops.Part, params Params) []step {
	partFront := part.FrontZ()
	partBack := part.BackZ()

	minProfileRadius := part.Profile.MinRadius()
	roughTarget := minProfileRadius * 2
	if roughTarget < 1.0 {
		// Never rough to (or past) the spindle axis; parting severs the
		// remaining core.
		roughTarget = 1.0
	}

	// Near-net-shape stock may hold less material than the requested
	// allowance. Keep at least a skim cut for roughing and shrink the
	// allowance to the material that is actually there, so the mandatory
	// four-operation sequence survives a raw blank that already matches
	// the finished envelope.
	const minSkim = 0.2
	if roughTarget > rawDiameter-2*minSkim {
		roughTarget = rawDiameter - 2*minSkim
	}
	allowance := params.StockAllowance
	if half := (rawDiameter - roughTarget) / 2; allowance >= half {
		allowance = half / 2
	}

	facing := ops.FacingParams{
		StartDiameter: rawDiameter,
		EndDiameter:   0,
		Z:             partFront,
		Stepover:      params.FacingStepover,
		SafetyHeight:  params.SafetyHeight,
	}

	roughing := ops.RoughingParams{
		StartDiameter:       rawDiameter,
		EndDiameter:         roughTarget,
		StartZ:              rawFront + params.SafetyHeight,
		EndZ:                partBack - params.FinishingAllowance,
		DepthOfCut:          params.RoughingDepthOfCut,
		StockAllowance:      allowance,
		UseProfileFollowing: true,
		SafetyHeight:        params.SafetyHeight,
	}

	finishing := ops.FinishingParams{
		StartZ:           partFront,
		EndZ:             partBack,
		ProfileTolerance: params.ProfileTolerance,
		Strategy:         ops.FinishSinglePass,
		Passes:           1,
		TotalStock:       allowance,
		SafetyHeight:     params.SafetyHeight,
	}

	parting := ops.PartingParams{
		PartingDiameter: rawDiameter,
		Z:               partBack - params.PartingAllowance,
		RetractDistance: params.SafetyHeight,
		SafetyHeight:    params.SafetyHeight,
	}

	steps := []step{
		{kind: ops.KindFacing, typ: tool.TypeFacing, params: facing},
		{kind: ops.KindRoughing, typ: tool.TypeTurning, params: roughing},
		{kind: ops.KindFinishing, typ: tool.TypeContouring, params: finishing},
		{kind: ops.KindParting, typ: tool.TypeParting, params: parting},
	}
	p.applyFeedOverrides(steps)
	return steps
}

// applyFeedOverrides slows finishing to half and parting to 80% of the
// tool's nominal feed. Gentler feeds on the surface-defining and
// workpiece-dropping cuts are the usual shop practice.
func (p *Planner) applyFeedOverrides(steps []step) {
	for i := range steps {
		h, ok := p.tools.FindByType(steps[i].typ)
		if !ok {
			continue
		}
		t, err := p.tools.Get(h)
		if err != nil {
			continue
		}
		switch sp := steps[i].params.(type) {
		case ops.FinishingParams:
			sp.FeedRate = 0.5 * t.Cutting.FeedRate
			steps[i].params = sp
		case ops.PartingParams:
			sp.FeedRate = 0.8 * t.Cutting.FeedRate
			steps[i].params = sp
		}
	}
}

// buildStep resolves the tool and constructs a validated operation.
func (p *Planner) buildStep(s step) (ops.Operation, error) {
	h, ok := p.tools.FindByType(s.typ)
	if !ok {
		return nil, fmt.Errorf("no %s tool in library", s.typ)
	}
	op, err := p.registry.Create(s.kind, p.tools, h, s.params)
	if err != nil {
		return nil, err
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}
	return op, nil
}
