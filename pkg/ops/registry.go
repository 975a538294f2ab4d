package ops

import (
	"fmt"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
)

// Factory builds an operation from a tool handle and a kind-specific
// parameter record. It returns an error for a wrong parameter type or an
// unresolvable tool.
type Factory func(lib *tool.Library, h tool.Handle, params any) (Operation, error)

// Registry maps operation kinds to factories so planners and callers can
// construct operations without linking every concrete type.
type Registry struct {
	factories map[Kind]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// Register binds a factory to a kind. Registering the same kind twice is
// an error; replacing a builtin must be explicit via Unregister first.
func (r *Registry) Register(k Kind, f Factory) error {
	if f == nil {
		return fmt.Errorf("register %s: nil factory", k)
	}
	if _, dup := r.factories[k]; dup {
		return fmt.Errorf("register %s: already registered", k)
	}
	r.factories[k] = f
	return nil
}

// Unregister removes the factory for a kind, if any.
func (r *Registry) Unregister(k Kind) {
	delete(r.factories, k)
}

// Kinds returns the registered kinds in ascending order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.factories))
	for k := KindFacing; k <= KindContouring; k++ {
		if _, ok := r.factories[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Create builds an operation of the given kind.
func (r *Registry) Create(k Kind, lib *tool.Library, h tool.Handle, params any) (Operation, error) {
	f, ok := r.factories[k]
	if !ok {
		return nil, fmt.Errorf("create %s: no factory registered", k)
	}
	return f(lib, h, params)
}

func wrongParams(k Kind, want string, got any) error {
	return fmt.Errorf("create %s: want %s, got %T", k, want, got)
}

// DefaultRegistry returns a registry with every builtin operation bound.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	builtins := map[Kind]Factory{
		KindFacing: func(lib *tool.Library, h tool.Handle, params any) (Operation, error) {
			p, ok := params.(FacingParams)
			if !ok {
				return nil, wrongParams(KindFacing, "FacingParams", params)
			}
			return NewFacing(lib, h, p)
		},
		KindRoughing: func(lib *tool.Library, h tool.Handle, params any) (Operation, error) {
			p, ok := params.(RoughingParams)
			if !ok {
				return nil, wrongParams(KindRoughing, "RoughingParams", params)
			}
			return NewRoughing(lib, h, p)
		},
		KindFinishing: func(lib *tool.Library, h tool.Handle, params any) (Operation, error) {
			p, ok := params.(FinishingParams)
			if !ok {
				return nil, wrongParams(KindFinishing, "FinishingParams", params)
			}
			return NewFinishing(lib, h, p)
		},
		KindParting: func(lib *tool.Library, h tool.Handle, params any) (Operation, error) {
			p, ok := params.(PartingParams)
			if !ok {
				return nil, wrongParams(KindParting, "PartingParams", params)
			}
			return NewParting(lib, h, p)
		},
		KindGrooving: func(lib *tool.Library, h tool.Handle, params any) (Operation, error) {
			p, ok := params.(GroovingParams)
			if !ok {
				return nil, wrongParams(KindGrooving, "GroovingParams", params)
			}
			return NewGrooving(lib, h, p)
		},
		KindThreading: func(lib *tool.Library, h tool.Handle, params any) (Operation, error) {
			p, ok := params.(ThreadingParams)
			if !ok {
				return nil, wrongParams(KindThreading, "ThreadingParams", params)
			}
			return NewThreading(lib, h, p)
		},
		KindChamfering: func(lib *tool.Library, h tool.Handle, params any) (Operation, error) {
			p, ok := params.(ChamferingParams)
			if !ok {
				return nil, wrongParams(KindChamfering, "ChamferingParams", params)
			}
			return NewChamfering(lib, h, p)
		},
		KindDrilling: func(lib *tool.Library, h tool.Handle, params any) (Operation, error) {
			p, ok := params.(DrillingParams)
			if !ok {
				return nil, wrongParams(KindDrilling, "DrillingParams", params)
			}
			return NewDrilling(lib, h, p)
		},
		KindContouring: func(lib *tool.Library, h tool.Handle, params any) (Operation, error) {
			p, ok := params.(ContouringParams)
			if !ok {
				return nil, wrongParams(KindContouring, "ContouringParams", params)
			}
			return NewContouring(lib, h, p)
		},
	}
	for k, f := range builtins {
		if err := r.Register(k, f); err != nil {
			panic(err) // unreachable: fresh registry, unique kinds
		}
	}
	return r
}
