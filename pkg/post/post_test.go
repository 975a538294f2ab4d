package post

import (
	"math"
	"strings"
	"testing"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/config"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

func samplePath() *toolpath.Toolpath {
	tp := toolpath.New("facing", 0)
	tp.Rapid(geom.Point3D{X: 17, Y: 0, Z: 2})
	tp.Rapid(geom.Point3D{X: 15, Y: 0, Z: 2})
	tp.Linear(geom.Point3D{X: 15, Y: 0, Z: 0}, 180, 1200)
	tp.Linear(geom.Point3D{X: 0, Y: 0, Z: 0}, 180, 1200)
	tp.Rapid(geom.Point3D{X: 17, Y: 0, Z: 2})
	return tp
}

func newProcessor(t *testing.T, mutate func(*config.MachineConfig), mutateOpts func(*Options)) *Processor {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	opts := DefaultOptions()
	if mutateOpts != nil {
		mutateOpts(&opts)
	}
	p, err := NewProcessor(cfg, opts, tool.DefaultLibrary())
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"", DialectGeneric, false},
		{"generic", DialectGeneric, false},
		{"Fanuc", DialectFanuc, false},
		{" linuxcnc ", DialectLinuxCNC, false},
		{"haas", DialectGeneric, true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDialect(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestDiameterModeDoublesX(t *testing.T) {
	p := newProcessor(t, func(c *config.MachineConfig) { c.CoordinateMode = "diameter" }, nil)
	res := p.Process(samplePath())
	if !res.Success {
		t.Fatalf("Process failed: %v", res.Errors)
	}
	if !strings.Contains(res.Gcode, "X30 Z2") {
		t.Errorf("diameter mode output missing doubled X word:\n%s", res.Gcode)
	}
	if strings.Contains(res.Gcode, "X15 Z2") {
		t.Errorf("diameter mode output contains radius-mode X word:\n%s", res.Gcode)
	}
}

func TestRadiusModeKeepsX(t *testing.T) {
	p := newProcessor(t, func(c *config.MachineConfig) { c.CoordinateMode = "radius" }, nil)
	res := p.Process(samplePath())
	if !strings.Contains(res.Gcode, "X15 Z2") {
		t.Errorf("radius mode output missing X15:\n%s", res.Gcode)
	}
}

func TestDialectFraming(t *testing.T) {
	t.Run("fanuc", func(t *testing.T) {
		p := newProcessor(t, nil, func(o *Options) {
			o.Dialect = DialectFanuc
			o.ProgramNumber = 42
		})
		res := p.Process(samplePath())
		lines := strings.Split(strings.TrimSpace(res.Gcode), "\n")
		if lines[0] != "%" || lines[len(lines)-1] != "%" {
			t.Errorf("fanuc output not wrapped in %%:\n%s", res.Gcode)
		}
		if !strings.Contains(res.Gcode, "O0042") {
			t.Errorf("fanuc output missing O number:\n%s", res.Gcode)
		}
		if !strings.Contains(res.Gcode, "T0101") {
			t.Errorf("fanuc output missing Txxyy word:\n%s", res.Gcode)
		}
		if !strings.Contains(res.Gcode, "M30") {
			t.Errorf("fanuc output missing M30:\n%s", res.Gcode)
		}
	})

	t.Run("generic", func(t *testing.T) {
		p := newProcessor(t, nil, nil)
		res := p.Process(samplePath())
		if !strings.Contains(res.Gcode, "G21 G90 G18") {
			t.Errorf("generic output missing preamble:\n%s", res.Gcode)
		}
		if !strings.Contains(res.Gcode, "T1 M6") {
			t.Errorf("generic output missing tool change:\n%s", res.Gcode)
		}
		if !strings.Contains(res.Gcode, "M30") {
			t.Errorf("generic output missing M30:\n%s", res.Gcode)
		}
	})

	t.Run("linuxcnc", func(t *testing.T) {
		p := newProcessor(t, nil, func(o *Options) { o.Dialect = DialectLinuxCNC })
		res := p.Process(samplePath())
		if !strings.HasSuffix(strings.TrimSpace(res.Gcode), "M2") {
			t.Errorf("linuxcnc output does not end with M2:\n%s", res.Gcode)
		}
	})
}

func TestLineNumbers(t *testing.T) {
	p := newProcessor(t, nil, func(o *Options) {
		o.LineNumbers = true
		o.LineNumberStep = 5
		o.Comments = false
	})
	res := p.Process(samplePath())
	lines := strings.Split(strings.TrimSpace(res.Gcode), "\n")
	if !strings.HasPrefix(lines[0], "N5 ") {
		t.Errorf("first block = %q, want N5 prefix", lines[0])
	}
	if !strings.HasPrefix(lines[1], "N10 ") {
		t.Errorf("second block = %q, want N10 prefix", lines[1])
	}
}

func TestArcCenterOffsets(t *testing.T) {
	tp := toolpath.New("arc", tool.InvalidHandle)
	tp.Rapid(geom.Point3D{X: 10, Y: 0, Z: 0})
	tp.Append(toolpath.Movement{
		Type:   toolpath.MoveArcCW,
		Target: geom.Point3D{X: 5, Y: 0, Z: -5},
		Center: geom.Point3D{X: 5, Y: 0, Z: 0},
		Feed:   100, Speed: 1000,
	})

	p := newProcessor(t, func(c *config.MachineConfig) { c.CoordinateMode = "radius" }, nil)
	res := p.Process(tp)
	if !res.Success {
		t.Fatalf("Process failed: %v", res.Errors)
	}
	// From (10, 0), center (5, 0): I = -5, K = 0.
	if !strings.Contains(res.Gcode, "G2 X5 Z-5 I-5 K0 F100") {
		t.Errorf("arc block missing or wrong:\n%s", res.Gcode)
	}
}

func TestCheckMachineLimits(t *testing.T) {
	tp := toolpath.New("overtravel", tool.InvalidHandle)
	tp.Rapid(geom.Point3D{X: 500, Y: 0, Z: 2})             // beyond MaxX 200
	tp.Linear(geom.Point3D{X: 10, Y: 0, Z: -900}, 100, 9999) // beyond MinZ and MaxSpindleSpeed

	p := newProcessor(t, nil, nil)
	warnings := p.CheckMachineLimits(tp)
	if len(warnings) != 3 {
		t.Fatalf("CheckMachineLimits returned %d warnings, want 3: %v", len(warnings), warnings)
	}

	// Violations warn but do not block output.
	res := p.Process(tp)
	if !res.Success {
		t.Errorf("limit violations made Process fail: %v", res.Errors)
	}
	if len(res.Warnings) != 3 {
		t.Errorf("Process carried %d warnings, want 3", len(res.Warnings))
	}
}

func TestProcessRejectsEmptyInput(t *testing.T) {
	p := newProcessor(t, nil, nil)

	if res := p.Process(); res.Success {
		t.Error("empty input succeeded")
	}
	if res := p.Process(nil); res.Success {
		t.Error("nil toolpath succeeded")
	}
	if res := p.Process(toolpath.New("empty", 0)); res.Success {
		t.Error("empty toolpath succeeded")
	}
}

func TestCycleTimeAccumulates(t *testing.T) {
	tp := toolpath.New("timed", tool.InvalidHandle)
	tp.Linear(geom.Point3D{}, 100, 1000)
	tp.Linear(geom.Point3D{X: 0, Y: 0, Z: -100}, 100, 1000) // 1 minute

	p := newProcessor(t, nil, nil)
	res := p.Process(tp, tp)
	if math.Abs(res.CycleTimeMinutes-2.0) > 1e-6 {
		t.Errorf("CycleTimeMinutes = %g, want 2.0", res.CycleTimeMinutes)
	}
}

func TestOutputIsDeterministic(t *testing.T) {
	p := newProcessor(t, nil, nil)
	a := p.Process(samplePath())
	b := p.Process(samplePath())
	if a.Gcode != b.Gcode {
		t.Error("identical inputs produced different G-code")
	}
}

func TestSpindleStartPrecedesFirstCut(t *testing.T) {
	p := newProcessor(t, nil, func(o *Options) { o.Comments = false })
	res := p.Process(samplePath())
	m3 := strings.Index(res.Gcode, "M3")
	g1 := strings.Index(res.Gcode, "G1 ")
	if m3 == -1 || g1 == -1 || m3 > g1 {
		t.Errorf("spindle start does not precede first cut:\n%s", res.Gcode)
	}
}
