// Package toolpath defines the sequence-of-movements abstraction produced
// by every machining operation and consumed by the post-processor.
//
// A Toolpath is append-only during generation. Optimization passes may
// remove movements (duplicate collapse, collinear simplification) but never
// reorder them: the cut order is semantically significant.
package toolpath

import (
	"fmt"
	"math"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
)

// MoveType is the kind of one atomic motion.
type MoveType int

const (
	MoveRapid MoveType = iota
	MoveLinear
	MoveArcCW
	MoveArcCCW
	MoveDwell
	MoveToolChange
)

func (t MoveType) String() string {
	switch t {
	case MoveRapid:
		return "rapid"
	case MoveLinear:
		return "linear"
	case MoveArcCW:
		return "arc-cw"
	case MoveArcCCW:
		return "arc-ccw"
	case MoveDwell:
		return "dwell"
	case MoveToolChange:
		return "tool-change"
	default:
		return fmt.Sprintf("MoveType(%d)", int(t))
	}
}

// HasTarget reports whether the movement type carries a target position.
func (t MoveType) HasTarget() bool {
	return t != MoveDwell && t != MoveToolChange
}

// Movement is one atomic motion. Movements are immutable once appended.
type Movement struct {
	Type   MoveType
	Target geom.Point3D // end position; X is a radius value
	Center geom.Point3D // arc center, valid for MoveArcCW/MoveArcCCW
	Feed   float64      // mm/min, cutting moves
	Speed  float64      // spindle rpm
	Dwell  float64      // seconds, for MoveDwell
	Label  string       // optional annotation emitted as a comment
}

// Toolpath is a named, ordered sequence of movements bound to one tool.
// It owns its movement list exclusively.
type Toolpath struct {
	Name  string
	Tool  tool.Handle
	moves []Movement
}

// New returns an empty toolpath for the given tool.
func New(name string, t tool.Handle) *Toolpath {
	return &Toolpath{Name: name, Tool: t}
}

// Append adds a movement to the end of the path.
func (tp *Toolpath) Append(m Movement) {
	tp.moves = append(tp.moves, m)
}

// Rapid appends a rapid positioning move.
func (tp *Toolpath) Rapid(p geom.Point3D) {
	tp.Append(Movement{Type: MoveRapid, Target: p})
}

// Linear appends a cutting move at the given feed and spindle speed.
func (tp *Toolpath) Linear(p geom.Point3D, feed, speed float64) {
	tp.Append(Movement{Type: MoveLinear, Target: p, Feed: feed, Speed: speed})
}

// DwellFor appends a dwell of the given duration in seconds.
func (tp *Toolpath) DwellFor(seconds float64) {
	tp.Append(Movement{Type: MoveDwell, Dwell: seconds})
}

// Len returns the number of movements.
func (tp *Toolpath) Len() int { return len(tp.moves) }

// Move returns the i-th movement.
func (tp *Toolpath) Move(i int) Movement { return tp.moves[i] }

// Moves returns a copy of the movement list.
func (tp *Toolpath) Moves() []Movement {
	cp := make([]Movement, len(tp.moves))
	copy(cp, tp.moves)
	return cp
}

// BoundingBox returns the box spanning every movement target. Movements
// without a position (dwell, tool change) are ignored. A path with no
// positioned movements returns the zero box.
func (tp *Toolpath) BoundingBox() geom.BoundingBox {
	first := true
	var box geom.BoundingBox
	for _, m := range tp.moves {
		if !m.Type.HasTarget() {
			continue
		}
		if first {
			box = geom.BoundingBox{Min: m.Target, Max: m.Target}
			first = false
			continue
		}
		box = box.Extend(m.Target)
	}
	return box
}

// EstimatedMinutes estimates the machining time. Rapid moves travel at
// rapidFeed, cutting moves at their own feed; arcs are approximated by
// their chord. Moves with a non-positive feed contribute nothing rather
// than propagating an ill-defined duration.
func (tp *Toolpath) EstimatedMinutes(rapidFeed float64) float64 {
	total := 0.0
	var last geom.Point3D
	haveLast := false
	for _, m := range tp.moves {
		switch {
		case m.Type == MoveDwell:
			total += m.Dwell / 60
		case m.Type.HasTarget():
			if haveLast {
				dist := last.DistanceTo(m.Target)
				feed := m.Feed
				if m.Type == MoveRapid {
					feed = rapidFeed
				}
				if feed > 0 {
					total += dist / feed
				}
			}
			last = m.Target
			haveLast = true
		}
	}
	return total
}

// Optimized returns a copy with consecutive no-op duplicates collapsed:
// runs of movements identical in type, target, feed, speed and dwell keep
// only their first element. Cut order is preserved.
func (tp *Toolpath) Optimized() *Toolpath {
	out := New(tp.Name, tp.Tool)
	for i, m := range tp.moves {
		if i > 0 && sameMove(tp.moves[i-1], m) {
			continue
		}
		out.Append(m)
	}
	return out
}

func sameMove(a, b Movement) bool {
	return a.Type == b.Type && a.Target == b.Target &&
		a.Feed == b.Feed && a.Speed == b.Speed && a.Dwell == b.Dwell
}

// Simplified returns a copy with collinear interior points removed from
// runs of linear moves at the same feed: if a→b and b→c head the same
// direction, b is dropped and the cut goes straight a→c.
func (tp *Toolpath) Simplified() *Toolpath {
	out := New(tp.Name, tp.Tool)
	const epsilon = 1e-9

	for i, m := range tp.moves {
		if m.Type != MoveLinear || i == 0 || i == len(tp.moves)-1 {
			out.Append(m)
			continue
		}
		prev := tp.moves[i-1]
		next := tp.moves[i+1]
		if prev.Type != MoveLinear && prev.Type != MoveRapid {
			out.Append(m)
			continue
		}
		if next.Type != MoveLinear || next.Feed != m.Feed {
			out.Append(m)
			continue
		}
		if !collinear(prev.Target, m.Target, next.Target, epsilon) {
			out.Append(m)
		}
	}
	return out
}

// collinear reports whether b lies on the segment direction a→c.
func collinear(a, b, c geom.Point3D, eps float64) bool {
	ab := b.Sub(a)
	bc := c.Sub(b)
	// Cross product magnitude close to zero and same heading.
	cx := ab.Y*bc.Z - ab.Z*bc.Y
	cy := ab.Z*bc.X - ab.X*bc.Z
	cz := ab.X*bc.Y - ab.Y*bc.X
	if math.Sqrt(cx*cx+cy*cy+cz*cz) > eps {
		return false
	}
	dot := ab.X*bc.X + ab.Y*bc.Y + ab.Z*bc.Z
	return dot >= 0
}

// Transformed returns a copy with every target and arc center mapped
// through the given transform.
func (tp *Toolpath) Transformed(tr geom.Transform) *Toolpath {
	out := New(tp.Name, tp.Tool)
	for _, m := range tp.moves {
		if m.Type.HasTarget() {
			m.Target = tr.Apply(m.Target)
			if m.Type == MoveArcCW || m.Type == MoveArcCCW {
				m.Center = tr.Apply(m.Center)
			}
		}
		out.Append(m)
	}
	return out
}
