// Package ops implements the machining operation variants for turned
// parts: facing, roughing, finishing, parting, grooving, threading,
// chamfering, drilling and contouring.
//
// Every operation follows the same contract: a free Validate*Params
// function checks the parameter record and returns a descriptive error
// (nil means valid); the instance Validate method delegates to it;
// GenerateToolpath is pure given the parameters and the part, never
// mutates the part, and assumes validated parameters. Behavior on
// invalid parameters is unspecified, so callers validate first.
//
// Every generated toolpath is bracketed by a rapid to the safety plane at
// the start and a retract to the safety plane at the end, regardless of
// strategy.
package ops

import (
	"fmt"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// Kind identifies an operation variant. The set is closed: planning
// dispatches over these kinds rather than open-ended inheritance.
type Kind int

const (
	KindFacing Kind = iota
	KindRoughing
	KindFinishing
	KindParting
	KindGrooving
	KindThreading
	KindChamfering
	KindDrilling
	KindContouring
)

func (k Kind) String() string {
	switch k {
	case KindFacing:
		return "facing"
	case KindRoughing:
		return "roughing"
	case KindFinishing:
		return "finishing"
	case KindParting:
		return "parting"
	case KindGrooving:
		return "grooving"
	case KindThreading:
		return "threading"
	case KindChamfering:
		return "chamfering"
	case KindDrilling:
		return "drilling"
	case KindContouring:
		return "contouring"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Part is the read-only geometry an operation consumes: the bounding box
// of the finished part and its revolved 2D profile. The profile may be
// empty, in which case strategies that need it degrade to a straight
// single-pass fallback cut instead of emitting a malformed toolpath.
type Part struct {
	Bounds  geom.BoundingBox
	Profile geom.Profile2D
}

// Radius returns the part's outer radius from its bounding box.
func (p Part) Radius() float64 { return p.Bounds.RadialExtent() }

// FrontZ returns the axial position of the part's front face.
func (p Part) FrontZ() float64 { return p.Bounds.Max.Z }

// BackZ returns the axial position of the part's back face.
func (p Part) BackZ() float64 { return p.Bounds.Min.Z }

// ParamError is a structured parameter-validation failure: which
// operation, which field, and why.
type ParamError struct {
	Op      string
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Field, e.Message)
}

func paramErr(op, field, format string, args ...interface{}) error {
	return &ParamError{Op: op, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Operation is one parameterized material-removal strategy.
type Operation interface {
	// Name returns a short human-readable description.
	Name() string

	// Kind returns the operation variant.
	Kind() Kind

	// Tool returns the handle of the tool this operation cuts with.
	Tool() tool.Handle

	// Validate checks the operation's stored parameters. A nil result
	// means generation may proceed.
	Validate() error

	// GenerateToolpath produces the movement sequence for the part.
	// Parameters must have been validated first; generation itself
	// never fails, falling back to safe default geometry on degenerate
	// part input.
	GenerateToolpath(part Part) *toolpath.Toolpath
}

// xz builds a lathe working-plane position: X radial, Z axial, Y always 0.
func xz(x, z float64) geom.Point3D {
	return geom.Point3D{X: x, Y: 0, Z: z}
}

// approach opens a toolpath with the mandatory rapid to the safety plane
// followed by a rapid to the given start position at safe Z.
func approach(tp *toolpath.Toolpath, safeX, safeZ, startX float64) {
	tp.Rapid(xz(safeX, safeZ))
	tp.Rapid(xz(startX, safeZ))
}

// retreat closes a toolpath with the mandatory retract to the safety plane.
func retreat(tp *toolpath.Toolpath, safeX, safeZ float64) {
	tp.Rapid(xz(safeX, safeZ))
}

// resolveTool fetches and copies the tool record for an operation
// constructor. The copy is immutable for the lifetime of the operation.
func resolveTool(lib *tool.Library, h tool.Handle) (tool.Tool, error) {
	if lib == nil {
		return tool.Tool{}, fmt.Errorf("nil tool library")
	}
	return lib.Get(h)
}
