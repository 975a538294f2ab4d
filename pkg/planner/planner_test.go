package planner

import (
	"testing"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/kernel"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/ops"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/profile"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// stubSolid and stubKernel let planning run without real geometry. The
// kernel sections a cylinder as a constant-radius profile and revolved
// solids as their stored profile.
type stubSolid struct {
	bb      geom.BoundingBox
	profile geom.Profile2D
}

func (s *stubSolid) BoundingBox() geom.BoundingBox { return s.bb }
func (s *stubSolid) Volume() float64               { return 1 }
func (s *stubSolid) SurfaceArea() float64          { return 1 }

type stubKernel struct{}

func (k *stubKernel) Cylinder(length, radius float64) kernel.Solid {
	p, _ := geom.NewProfile([]geom.ProfilePoint{
		{Z: -length, Radius: radius},
		{Z: 0, Radius: radius},
	})
	return &stubSolid{
		bb: geom.NewBoundingBox(
			geom.Point3D{X: -radius, Y: -radius, Z: -length},
			geom.Point3D{X: radius, Y: radius, Z: 0},
		),
		profile: p,
	}
}

func (k *stubKernel) Revolve(p geom.Profile2D) kernel.Solid {
	zMin, zMax := p.ZRange()
	r := p.MaxRadius()
	return &stubSolid{
		bb: geom.NewBoundingBox(
			geom.Point3D{X: -r, Y: -r, Z: zMin},
			geom.Point3D{X: r, Y: r, Z: zMax},
		),
		profile: p,
	}
}

func (k *stubKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	st := s.(*stubSolid)
	d := geom.Point3D{X: x, Y: y, Z: z}
	return &stubSolid{
		bb:      geom.BoundingBox{Min: st.bb.Min.Add(d), Max: st.bb.Max.Add(d)},
		profile: st.profile,
	}
}

func (k *stubKernel) ExtractProfile(s kernel.Solid, _ geom.Axis, _ float64) geom.Profile2D {
	return s.(*stubSolid).profile
}

var _ kernel.Kernel = (*stubKernel)(nil)

// countingProgress cancels after a set number of IsCancelled polls.
type countingProgress struct {
	polls       int
	cancelAfter int // 0 means never
	statuses    []string
	lastPercent int
}

func (c *countingProgress) SetProgress(p int)  { c.lastPercent = p }
func (c *countingProgress) SetStatus(s string) { c.statuses = append(c.statuses, s) }
func (c *countingProgress) IsCancelled() bool {
	c.polls++
	return c.cancelAfter > 0 && c.polls > c.cancelAfter
}

func newPlanner(t *testing.T, progress Progress) (*Planner, kernel.Kernel) {
	t.Helper()
	k := &stubKernel{}
	ex, err := profile.NewExtractor(k, profile.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	p, err := New(ops.DefaultRegistry(), tool.DefaultLibrary(), ex, progress)
	if err != nil {
		t.Fatal(err)
	}
	return p, k
}

func testSolids(k kernel.Kernel, t *testing.T) (raw, finished kernel.Solid) {
	t.Helper()
	raw = k.Cylinder(80, 20)
	p, err := geom.NewProfile([]geom.ProfilePoint{
		{Z: -60, Radius: 10},
		{Z: -31, Radius: 10},
		{Z: -30, Radius: 16},
		{Z: 0, Radius: 16},
	})
	if err != nil {
		t.Fatal(err)
	}
	finished = k.Revolve(p)
	return raw, finished
}

func TestGenerateSequenceOrderAndCount(t *testing.T) {
	p, k := newPlanner(t, nil)
	raw, finished := testSolids(k, t)

	res, err := p.GenerateSequence(raw, finished, DefaultParams(), geom.Identity())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("planning errors: %v", res.Errors)
	}
	if len(res.Toolpaths) != 4 {
		t.Fatalf("generated %d toolpaths, want 4", len(res.Toolpaths))
	}

	wantOrder := []string{"facing", "roughing", "finishing", "parting"}
	for i, want := range wantOrder {
		active := res.Operations.Active()
		if active[i].Kind().String() != want {
			t.Errorf("operation %d = %s, want %s", i, active[i].Kind(), want)
		}
	}
	for i, tp := range res.Toolpaths {
		if tp.Len() == 0 {
			t.Errorf("toolpath %d is empty", i)
		}
	}
}

func TestGenerateSequenceRoughingRespectsProfile(t *testing.T) {
	p, k := newPlanner(t, nil)
	raw, finished := testSolids(k, t)
	params := DefaultParams()

	res, err := p.GenerateSequence(raw, finished, params, geom.Identity())
	if err != nil {
		t.Fatal(err)
	}
	// Minimum profile radius is 10; roughing must stay at or outside
	// 10 + stock allowance.
	rough := res.Toolpaths[1]
	floor := 10 + params.StockAllowance
	for i := 0; i < rough.Len(); i++ {
		m := rough.Move(i)
		if m.Type.HasTarget() && m.Target.X < floor-1e-9 {
			t.Fatalf("roughing movement %d at X=%g, floor %g", i, m.Target.X, floor)
		}
	}
}

func TestGenerateSequenceNearNetShapeStock(t *testing.T) {
	p, k := newPlanner(t, nil)

	// The blank barely exceeds (or exactly matches) the finished radius,
	// leaving less material than the default stock allowance. All four
	// operations must still come back, with roughing degraded to a skim.
	for _, tc := range []struct {
		name   string
		radius float64
	}{
		{"within allowance", 19.8},
		{"equal to stock", 20},
	} {
		t.Run(tc.name, func(t *testing.T) {
			raw := k.Cylinder(80, 20)
			prof, err := geom.NewProfile([]geom.ProfilePoint{
				{Z: -60, Radius: tc.radius},
				{Z: 0, Radius: tc.radius},
			})
			if err != nil {
				t.Fatal(err)
			}
			res, err := p.GenerateSequence(raw, k.Revolve(prof), DefaultParams(), geom.Identity())
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Errors) > 0 {
				t.Fatalf("planning errors: %v", res.Errors)
			}
			if len(res.Toolpaths) != 4 {
				t.Fatalf("generated %d toolpaths, want 4", len(res.Toolpaths))
			}
			// The skim pass must still respect the finished envelope.
			// Entry moves in front of the part face are in air; only
			// moves behind the front engage material.
			rough := res.Toolpaths[1]
			for i := 0; i < rough.Len(); i++ {
				m := rough.Move(i)
				if m.Type != toolpath.MoveLinear || m.Target.Z >= 0 {
					continue
				}
				if m.Target.X < tc.radius-1e-9 {
					t.Fatalf("roughing movement %d at (X=%g, Z=%g) cuts inside the finished radius %g", i, m.Target.X, m.Target.Z, tc.radius)
				}
			}
		})
	}
}

func TestGenerateSequenceWorldTransform(t *testing.T) {
	p, k := newPlanner(t, nil)
	raw, finished := testSolids(k, t)

	world := geom.Translation(0, 0, -100)
	res, err := p.GenerateSequence(raw, finished, DefaultParams(), world)
	if err != nil {
		t.Fatal(err)
	}
	base, err := p.GenerateSequence(raw, finished, DefaultParams(), geom.Identity())
	if err != nil {
		t.Fatal(err)
	}
	got := res.Toolpaths[0].Move(0).Target
	want := base.Toolpaths[0].Move(0).Target
	want.Z -= 100
	if got != want {
		t.Errorf("transformed first target = %v, want %v", got, want)
	}
}

func TestGenerateSequenceCancellation(t *testing.T) {
	progress := &countingProgress{cancelAfter: 2}
	p, k := newPlanner(t, progress)
	raw, finished := testSolids(k, t)

	res, err := p.GenerateSequence(raw, finished, DefaultParams(), geom.Identity())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cancelled {
		t.Fatal("cancellation was not reported")
	}
	if len(res.Toolpaths) != 2 {
		t.Errorf("partial result has %d toolpaths, want 2 before cancellation", len(res.Toolpaths))
	}
}

func TestGenerateSequenceProgressReporting(t *testing.T) {
	progress := &countingProgress{}
	p, k := newPlanner(t, progress)
	raw, finished := testSolids(k, t)

	if _, err := p.GenerateSequence(raw, finished, DefaultParams(), geom.Identity()); err != nil {
		t.Fatal(err)
	}
	if progress.lastPercent != 100 {
		t.Errorf("final progress = %d, want 100", progress.lastPercent)
	}
	if len(progress.statuses) == 0 {
		t.Error("no status updates reported")
	}
}

func TestGenerateSequenceRejectsBadInput(t *testing.T) {
	p, k := newPlanner(t, nil)
	raw, finished := testSolids(k, t)

	if _, err := p.GenerateSequence(nil, finished, DefaultParams(), geom.Identity()); err == nil {
		t.Error("nil raw solid accepted")
	}
	if _, err := p.GenerateSequence(raw, nil, DefaultParams(), geom.Identity()); err == nil {
		t.Error("nil finished solid accepted")
	}
	bad := DefaultParams()
	bad.RoughingDepthOfCut = 0
	if _, err := p.GenerateSequence(raw, finished, bad, geom.Identity()); err == nil {
		t.Error("invalid params accepted")
	}
}

func TestGenerateSequenceIsDeterministic(t *testing.T) {
	p, k := newPlanner(t, nil)
	raw, finished := testSolids(k, t)

	a, err := p.GenerateSequence(raw, finished, DefaultParams(), geom.Identity())
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.GenerateSequence(raw, finished, DefaultParams(), geom.Identity())
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Toolpaths) != len(b.Toolpaths) {
		t.Fatal("toolpath counts differ between runs")
	}
	for i := range a.Toolpaths {
		if a.Toolpaths[i].Len() != b.Toolpaths[i].Len() {
			t.Errorf("toolpath %d lengths differ: %d vs %d", i, a.Toolpaths[i].Len(), b.Toolpaths[i].Len())
		}
	}
}

func TestNewValidation(t *testing.T) {
	k := &stubKernel{}
	ex, err := profile.NewExtractor(k, profile.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	lib := tool.DefaultLibrary()
	reg := ops.DefaultRegistry()

	if _, err := New(nil, lib, ex, nil); err == nil {
		t.Error("nil registry accepted")
	}
	if _, err := New(reg, nil, ex, nil); err == nil {
		t.Error("nil tool library accepted")
	}
	if _, err := New(reg, lib, nil, nil); err == nil {
		t.Error("nil extractor accepted")
	}
}
