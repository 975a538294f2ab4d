package toolpath

import (
	"math"
	"reflect"
	"testing"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
)

func TestBoundingBox(t *testing.T) {
	tp := New("bbox", 0)
	tp.Rapid(geom.Point3D{X: 0, Y: 0, Z: 0})
	tp.Linear(geom.Point3D{X: 10, Y: 5, Z: -2}, 100, 1000)

	box := tp.BoundingBox()
	if box.Min != (geom.Point3D{X: 0, Y: 0, Z: -2}) {
		t.Errorf("Min = %v, want {0 0 -2}", box.Min)
	}
	if box.Max != (geom.Point3D{X: 10, Y: 5, Z: 0}) {
		t.Errorf("Max = %v, want {10 5 0}", box.Max)
	}
}

func TestBoundingBoxIgnoresDwells(t *testing.T) {
	tp := New("bbox-dwell", 0)
	tp.Rapid(geom.Point3D{X: 1, Y: 1, Z: 1})
	tp.DwellFor(0.5)

	box := tp.BoundingBox()
	if box.Min != box.Max || box.Min != (geom.Point3D{X: 1, Y: 1, Z: 1}) {
		t.Errorf("dwell affected bounding box: %v", box)
	}
}

func TestEstimatedMinutes(t *testing.T) {
	tp := New("time", 0)
	tp.Linear(geom.Point3D{X: 0, Y: 0, Z: 0}, 100, 1000)
	tp.Linear(geom.Point3D{X: 100, Y: 0, Z: 0}, 100, 1000)

	got := tp.EstimatedMinutes(3000)
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("100mm at F100 = %g minutes, want 1.0", got)
	}
}

func TestEstimatedMinutesDwellAndRapid(t *testing.T) {
	tp := New("time2", 0)
	tp.Rapid(geom.Point3D{X: 0, Y: 0, Z: 0})
	tp.Rapid(geom.Point3D{X: 300, Y: 0, Z: 0}) // 300mm at rapid 3000 = 0.1 min
	tp.DwellFor(6)                             // 0.1 min

	got := tp.EstimatedMinutes(3000)
	if math.Abs(got-0.2) > 1e-9 {
		t.Errorf("EstimatedMinutes = %g, want 0.2", got)
	}
}

func TestOptimizedCollapsesDuplicates(t *testing.T) {
	p := geom.Point3D{X: 5, Y: 0, Z: -1}
	q := geom.Point3D{X: 8, Y: 0, Z: -3}

	tp := New("dup", 0)
	tp.Rapid(p)
	tp.Rapid(p)
	tp.Linear(q, 120, 900)
	tp.Linear(q, 120, 900)

	opt := tp.Optimized()
	if opt.Len() != 2 {
		t.Fatalf("Optimized() kept %d movements, want 2", opt.Len())
	}
	if opt.Move(0).Type != MoveRapid || opt.Move(1).Type != MoveLinear {
		t.Errorf("Optimized() reordered movements: %v, %v", opt.Move(0).Type, opt.Move(1).Type)
	}
}

func TestOptimizedKeepsDistinctMoves(t *testing.T) {
	tp := New("distinct", 0)
	tp.Linear(geom.Point3D{X: 1, Y: 0, Z: 0}, 100, 900)
	tp.Linear(geom.Point3D{X: 1, Y: 0, Z: 0}, 200, 900) // same target, new feed

	if got := tp.Optimized().Len(); got != 2 {
		t.Errorf("Optimized() collapsed moves with different feeds: %d, want 2", got)
	}
}

func TestSimplifiedRemovesCollinearPoints(t *testing.T) {
	tp := New("collinear", 0)
	tp.Rapid(geom.Point3D{X: 0, Y: 0, Z: 0})
	tp.Linear(geom.Point3D{X: 5, Y: 0, Z: 0}, 100, 900)
	tp.Linear(geom.Point3D{X: 10, Y: 0, Z: 0}, 100, 900)
	tp.Linear(geom.Point3D{X: 10, Y: 0, Z: -5}, 100, 900)

	s := tp.Simplified()
	if s.Len() != 3 {
		t.Fatalf("Simplified() kept %d movements, want 3", s.Len())
	}
	if s.Move(1).Target != (geom.Point3D{X: 10, Y: 0, Z: 0}) {
		t.Errorf("Simplified() kept wrong midpoint: %v", s.Move(1).Target)
	}
}

func TestSimplifiedKeepsCorners(t *testing.T) {
	tp := New("corner", 0)
	tp.Rapid(geom.Point3D{X: 0, Y: 0, Z: 0})
	tp.Linear(geom.Point3D{X: 10, Y: 0, Z: 0}, 100, 900)
	tp.Linear(geom.Point3D{X: 10, Y: 0, Z: -10}, 100, 900)

	if got := tp.Simplified().Len(); got != 3 {
		t.Errorf("Simplified() dropped a corner: %d movements, want 3", got)
	}
}

func TestTransformed(t *testing.T) {
	tp := New("world", 0)
	tp.Rapid(geom.Point3D{X: 1, Y: 0, Z: 0})
	tp.DwellFor(1)

	moved := tp.Transformed(geom.Translation(0, 0, -50))
	if moved.Move(0).Target != (geom.Point3D{X: 1, Y: 0, Z: -50}) {
		t.Errorf("Transformed target = %v, want {1 0 -50}", moved.Move(0).Target)
	}
	if moved.Move(1).Dwell != 1 {
		t.Error("Transformed altered a dwell movement")
	}
}

func TestGenerationIsDeterministic(t *testing.T) {
	build := func() *Toolpath {
		tp := New("det", 2)
		tp.Rapid(geom.Point3D{X: 30, Y: 0, Z: 5})
		tp.Linear(geom.Point3D{X: 30, Y: 0, Z: -40}, 150, 1200)
		tp.DwellFor(0.2)
		tp.Linear(geom.Point3D{X: 32, Y: 0, Z: -40}, 150, 1200)
		return tp
	}
	a, b := build(), build()
	if !reflect.DeepEqual(a.Moves(), b.Moves()) {
		t.Error("two identical builds produced different movement sequences")
	}
}

func TestMovesReturnsCopy(t *testing.T) {
	tp := New("copy", 0)
	tp.Rapid(geom.Point3D{X: 1, Y: 2, Z: 3})

	moves := tp.Moves()
	moves[0].Target = geom.Point3D{}
	if tp.Move(0).Target != (geom.Point3D{X: 1, Y: 2, Z: 3}) {
		t.Error("mutating Moves() result changed the toolpath")
	}
}
