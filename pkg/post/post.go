// Package post renders toolpaths as G-code for a configured machine.
// Dialect differences are purely textual; the movement semantics come
// entirely from the toolpath.
package post

import (
	"fmt"
	"math"
	"strings"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/config"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/toolpath"
)

// Dialect selects the controller flavor of the output.
type Dialect int

const (
	DialectGeneric Dialect = iota
	DialectFanuc
	DialectLinuxCNC
)

func (d Dialect) String() string {
	switch d {
	case DialectGeneric:
		return "generic"
	case DialectFanuc:
		return "fanuc"
	case DialectLinuxCNC:
		return "linuxcnc"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// ParseDialect maps a user-facing name to a dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "generic":
		return DialectGeneric, nil
	case "fanuc":
		return DialectFanuc, nil
	case "linuxcnc":
		return DialectLinuxCNC, nil
	default:
		return DialectGeneric, fmt.Errorf("unknown dialect %q (generic, fanuc, linuxcnc)", s)
	}
}

// Options configures the rendering.
type Options struct {
	Dialect        Dialect
	Comments       bool // emit per-toolpath comments
	LineNumbers    bool // emit N words
	LineNumberStep int  // increment between N words; default 10
	ProgramNumber  int  // Fanuc O-number; default 1
	Precision      int  // decimal places for coordinates; default 3
}

// DefaultOptions returns generic output with comments.
func DefaultOptions() Options {
	return Options{
		Dialect:        DialectGeneric,
		Comments:       true,
		LineNumberStep: 10,
		ProgramNumber:  1,
		Precision:      3,
	}
}

// Result is the outcome of one post-processing run. Success is false only
// when Errors is non-empty; warnings never block output.
type Result struct {
	Gcode            string
	Success          bool
	Warnings         []string
	Errors           []string
	CycleTimeMinutes float64
}

// Processor renders toolpaths for one machine.
type Processor struct {
	machine config.MachineConfig
	opts    Options
	tools   *tool.Library
}

// NewProcessor builds a processor. The tool library may be nil; tool
// changes then emit indices without names.
func NewProcessor(machine config.MachineConfig, opts Options, tools *tool.Library) (*Processor, error) {
	if err := machine.Validate(); err != nil {
		return nil, err
	}
	if opts.LineNumberStep <= 0 {
		opts.LineNumberStep = 10
	}
	if opts.ProgramNumber <= 0 {
		opts.ProgramNumber = 1
	}
	if opts.Precision <= 0 {
		opts.Precision = 3
	}
	return &Processor{machine: machine, opts: opts, tools: tools}, nil
}

// CheckMachineLimits reports every movement outside the machine's travel.
// The messages are warnings: many controllers soft-limit anyway, and the
// operator may have offset the work coordinate system.
func (p *Processor) CheckMachineLimits(paths ...*toolpath.Toolpath) []string {
	var out []string
	for _, tp := range paths {
		if tp == nil {
			continue
		}
		for i := 0; i < tp.Len(); i++ {
			m := tp.Move(i)
			if !m.Type.HasTarget() {
				continue
			}
			if m.Target.X < p.machine.MinX || m.Target.X > p.machine.MaxX {
				out = append(out, fmt.Sprintf("%s: movement %d X=%.3f outside travel [%g, %g]",
					tp.Name, i, m.Target.X, p.machine.MinX, p.machine.MaxX))
			}
			if m.Target.Z < p.machine.MinZ || m.Target.Z > p.machine.MaxZ {
				out = append(out, fmt.Sprintf("%s: movement %d Z=%.3f outside travel [%g, %g]",
					tp.Name, i, m.Target.Z, p.machine.MinZ, p.machine.MaxZ))
			}
			if m.Speed > p.machine.MaxSpindleSpeed {
				out = append(out, fmt.Sprintf("%s: movement %d S%.0f exceeds machine maximum %g",
					tp.Name, i, m.Speed, p.machine.MaxSpindleSpeed))
			}
		}
	}
	return out
}

// validate reports fatal input problems.
func (p *Processor) validate(paths []*toolpath.Toolpath) []string {
	var out []string
	if len(paths) == 0 {
		out = append(out, "no toolpaths to post-process")
	}
	for i, tp := range paths {
		switch {
		case tp == nil:
			out = append(out, fmt.Sprintf("toolpath %d is nil", i))
		case tp.Len() == 0:
			out = append(out, fmt.Sprintf("toolpath %d (%s) is empty", i, tp.Name))
		}
	}
	return out
}

// Process renders the toolpaths in order. Limit violations become
// warnings; structural problems become errors and suppress output.
func (p *Processor) Process(paths ...*toolpath.Toolpath) Result {
	res := Result{Success: true}
	if errs := p.validate(paths); len(errs) > 0 {
		res.Errors = errs
		res.Success = false
		return res
	}
	res.Warnings = p.CheckMachineLimits(paths...)

	w := &writer{opts: p.opts}
	p.prologue(w)

	for _, tp := range paths {
		p.emitToolpath(w, tp)
		res.CycleTimeMinutes += tp.EstimatedMinutes(p.machine.RapidFeed)
	}

	p.epilogue(w)
	res.Gcode = w.String()
	return res
}

func (p *Processor) prologue(w *writer) {
	switch p.opts.Dialect {
	case DialectFanuc:
		w.raw("%")
		w.line(fmt.Sprintf("O%04d", p.opts.ProgramNumber))
	default:
		if p.opts.Comments {
			w.comment(fmt.Sprintf("machine: %s", p.machine.Name))
		}
	}
	units := "G21"
	if p.machine.Units == "inch" {
		units = "G20"
	}
	w.line(units + " G90 G18") // units, absolute, ZX plane
	spindle := "M3"
	if p.machine.SpindleDirection == "ccw" {
		spindle = "M4"
	}
	w.pendingSpindle = spindle
}

func (p *Processor) epilogue(w *writer) {
	w.line("M5")
	switch p.opts.Dialect {
	case DialectFanuc:
		w.line("M30")
		w.raw("%")
	case DialectLinuxCNC:
		w.line("M2")
	default:
		w.line("M30")
	}
}

func (p *Processor) emitToolpath(w *writer, tp *toolpath.Toolpath) {
	if p.opts.Comments {
		w.comment(tp.Name)
	}
	p.emitToolChange(w, tp.Tool)

	for i := 0; i < tp.Len(); i++ {
		m := tp.Move(i)
		switch m.Type {
		case toolpath.MoveRapid:
			w.line("G0 " + p.coords(m.Target))
		case toolpath.MoveLinear:
			p.spindleUpTo(w, m.Speed)
			w.line(fmt.Sprintf("G1 %s F%s", p.coords(m.Target), p.num(m.Feed)))
		case toolpath.MoveArcCW, toolpath.MoveArcCCW:
			p.spindleUpTo(w, m.Speed)
			g := "G2"
			if m.Type == toolpath.MoveArcCCW {
				g = "G3"
			}
			w.line(fmt.Sprintf("%s %s %s F%s", g, p.coords(m.Target), p.arcCenter(w, m.Center), p.num(m.Feed)))
		case toolpath.MoveDwell:
			w.line(fmt.Sprintf("G4 P%s", p.num(m.Dwell)))
		case toolpath.MoveToolChange:
			p.emitToolChange(w, tp.Tool)
		}
		if m.Type.HasTarget() {
			w.last = m.Target
			w.hasLast = true
		}
	}
}

func (p *Processor) emitToolChange(w *writer, h tool.Handle) {
	if h == tool.InvalidHandle {
		return
	}
	if p.opts.Comments && p.tools != nil {
		if t, err := p.tools.Get(h); err == nil {
			w.comment(fmt.Sprintf("tool %d: %s", int(h)+1, t.Name))
		}
	}
	switch p.opts.Dialect {
	case DialectFanuc:
		// Txxyy: tool xx with wear offset yy.
		w.line(fmt.Sprintf("T%02d%02d", int(h)+1, int(h)+1))
	default:
		w.line(fmt.Sprintf("T%d M6", int(h)+1))
	}
}

// spindleUpTo emits S and the start command before the first cut, and a
// new S word whenever the requested speed changes.
func (p *Processor) spindleUpTo(w *writer, speed float64) {
	if speed <= 0 {
		speed = p.machine.MaxSpindleSpeed / 2
	}
	if speed > p.machine.MaxSpindleSpeed {
		speed = p.machine.MaxSpindleSpeed
	}
	if w.pendingSpindle != "" {
		w.line(fmt.Sprintf("S%.0f %s", speed, w.pendingSpindle))
		w.pendingSpindle = ""
		w.spindleSpeed = speed
		return
	}
	if speed != w.spindleSpeed {
		w.line(fmt.Sprintf("S%.0f", speed))
		w.spindleSpeed = speed
	}
}

// coords formats an X/Z word pair. In diameter mode the X word is twice
// the radial coordinate.
func (p *Processor) coords(pt geom.Point3D) string {
	x := pt.X
	if p.machine.DiameterMode() {
		x *= 2
	}
	return fmt.Sprintf("X%s Z%s", p.num(x), p.num(pt.Z))
}

// arcCenter formats the I/K center offset words relative to the last
// position. Arc centers are always radial regardless of diameter mode.
func (p *Processor) arcCenter(w *writer, center geom.Point3D) string {
	var from geom.Point3D
	if w.hasLast {
		from = w.last
	}
	return fmt.Sprintf("I%s K%s", p.num(center.X-from.X), p.num(center.Z-from.Z))
}

func (p *Processor) num(v float64) string {
	// Avoid "-0.000" so output is stable across platforms.
	if math.Abs(v) < math.Pow(10, -float64(p.opts.Precision))/2 {
		v = 0
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.*f", p.opts.Precision, v), "0"), ".")
}

// writer accumulates output lines with optional N-word numbering.
type writer struct {
	sb             strings.Builder
	opts           Options
	n              int
	last           geom.Point3D
	hasLast        bool
	spindleSpeed   float64
	pendingSpindle string
}

// line writes a numbered block.
func (w *writer) line(s string) {
	if w.opts.LineNumbers {
		w.n += w.opts.LineNumberStep
		fmt.Fprintf(&w.sb, "N%d %s\n", w.n, s)
		return
	}
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

// raw writes an unnumbered block, for % wrappers.
func (w *writer) raw(s string) {
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

func (w *writer) comment(s string) {
	// Parentheses are the comment form every target controller accepts.
	w.raw("(" + strings.NewReplacer("(", "[", ")", "]").Replace(s) + ")")
}

func (w *writer) String() string { return w.sb.String() }
