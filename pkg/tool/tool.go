// Package tool describes cutting tools and their parameters. Tools are
// stored in an arena Library and addressed by stable Handle so that
// operations and toolpaths share a tool without aliasing a mutable record:
// Get returns a copy, and the arena is append-only for the duration of a
// planning run.
package tool

import "fmt"

// Type classifies a tool by the operation family it serves.
type Type int

const (
	TypeTurning Type = iota
	TypeFacing
	TypeParting
	TypeThreading
	TypeGrooving
	TypeChamfering
	TypeContouring
	TypeDrilling
)

func (t Type) String() string {
	switch t {
	case TypeTurning:
		return "turning"
	case TypeFacing:
		return "facing"
	case TypeParting:
		return "parting"
	case TypeThreading:
		return "threading"
	case TypeGrooving:
		return "grooving"
	case TypeChamfering:
		return "chamfering"
	case TypeContouring:
		return "contouring"
	case TypeDrilling:
		return "drilling"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// CuttingParameters are the nominal cutting conditions for a tool.
type CuttingParameters struct {
	FeedRate     float64 // mm/min
	SpindleSpeed float64 // rpm
	DepthOfCut   float64 // mm per pass
	Stepover     float64 // mm between passes
}

// Geometry describes the physical insert.
type Geometry struct {
	TipRadius      float64 // mm
	ClearanceAngle float64 // degrees
	RakeAngle      float64 // degrees
	InsertWidth    float64 // mm, parting/grooving insert width
}

// Tool is one cutting tool: identity, cutting conditions and insert
// geometry. Tool values are copied on Library.Get and never mutated
// mid-plan.
type Tool struct {
	Type     Type
	Name     string
	Cutting  CuttingParameters
	Geometry Geometry
}

// Handle is a stable index into a Library.
type Handle int

// InvalidHandle is the zero-value-adjacent sentinel for "no tool".
const InvalidHandle Handle = -1

// Library is an append-only arena of tools.
type Library struct {
	tools []Tool
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{}
}

// Add stores a tool and returns its handle. Handles are stable: tools are
// never removed or reordered.
func (l *Library) Add(t Tool) Handle {
	l.tools = append(l.tools, t)
	return Handle(len(l.tools) - 1)
}

// Get returns a copy of the tool for the given handle.
func (l *Library) Get(h Handle) (Tool, error) {
	if h < 0 || int(h) >= len(l.tools) {
		return Tool{}, fmt.Errorf("tool handle %d out of range (library has %d tools)", h, len(l.tools))
	}
	return l.tools[h], nil
}

// Len returns the number of tools in the library.
func (l *Library) Len() int { return len(l.tools) }

// Handles returns every handle in insertion order.
func (l *Library) Handles() []Handle {
	hs := make([]Handle, len(l.tools))
	for i := range l.tools {
		hs[i] = Handle(i)
	}
	return hs
}

// FindByType returns the first tool of the given type, in insertion order.
func (l *Library) FindByType(t Type) (Handle, bool) {
	for i := range l.tools {
		if l.tools[i].Type == t {
			return Handle(i), true
		}
	}
	return InvalidHandle, false
}

// DefaultLibrary returns a library stocked with one general-purpose tool
// per type, with conservative cutting conditions for mild steel.
func DefaultLibrary() *Library {
	l := NewLibrary()
	l.Add(Tool{
		Type: TypeTurning, Name: "CNMG 120408 rough turning",
		Cutting:  CuttingParameters{FeedRate: 200, SpindleSpeed: 1200, DepthOfCut: 2.0, Stepover: 2.0},
		Geometry: Geometry{TipRadius: 0.8, ClearanceAngle: 5, RakeAngle: 6},
	})
	l.Add(Tool{
		Type: TypeFacing, Name: "SNMG 120408 facing",
		Cutting:  CuttingParameters{FeedRate: 180, SpindleSpeed: 1200, DepthOfCut: 1.5, Stepover: 1.5},
		Geometry: Geometry{TipRadius: 0.8, ClearanceAngle: 5, RakeAngle: 6},
	})
	l.Add(Tool{
		Type: TypeContouring, Name: "DNMG 110404 finish contouring",
		Cutting:  CuttingParameters{FeedRate: 120, SpindleSpeed: 1800, DepthOfCut: 0.5, Stepover: 0.5},
		Geometry: Geometry{TipRadius: 0.4, ClearanceAngle: 7, RakeAngle: 8},
	})
	l.Add(Tool{
		Type: TypeParting, Name: "MGMN 300 parting blade",
		Cutting:  CuttingParameters{FeedRate: 60, SpindleSpeed: 800, DepthOfCut: 3.0},
		Geometry: Geometry{TipRadius: 0.2, InsertWidth: 3.0},
	})
	l.Add(Tool{
		Type: TypeGrooving, Name: "MGMN 200 grooving",
		Cutting:  CuttingParameters{FeedRate: 70, SpindleSpeed: 900, DepthOfCut: 2.0},
		Geometry: Geometry{TipRadius: 0.2, InsertWidth: 2.0},
	})
	l.Add(Tool{
		Type: TypeThreading, Name: "16ER AG60 threading",
		Cutting:  CuttingParameters{FeedRate: 100, SpindleSpeed: 600, DepthOfCut: 0.25},
		Geometry: Geometry{TipRadius: 0.1, ClearanceAngle: 10},
	})
	l.Add(Tool{
		Type: TypeChamfering, Name: "VCMT 160404 chamfering",
		Cutting:  CuttingParameters{FeedRate: 100, SpindleSpeed: 1500, DepthOfCut: 0.5},
		Geometry: Geometry{TipRadius: 0.4, ClearanceAngle: 7},
	})
	l.Add(Tool{
		Type: TypeDrilling, Name: "HSS twist drill 10mm",
		Cutting:  CuttingParameters{FeedRate: 50, SpindleSpeed: 1000, DepthOfCut: 5.0},
		Geometry: Geometry{TipRadius: 0},
	})
	return l
}
