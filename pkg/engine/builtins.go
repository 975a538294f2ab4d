package engine

import (
	"fmt"
	"strings"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms part-script source before zygomys sees it:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal),
//     so keyword symbols need no global registration and cannot collide
//     with script variables.
//
//  2. Comment conversion: ; line comments become //, the form zygomys
//     accepts.
//
// Both transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to //.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpPoint wraps one profile sample so (pt ...) results can flow into
// (profile ...).
type sexpPoint struct {
	pt geom.ProfilePoint
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %.3f %.3f)", p.pt.Z, p.pt.Radius)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether a Sexp is a preprocessed keyword string, returning
// the bare keyword name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs is a parsed mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// toFloat64 extracts a float64 from a SexpInt or SexpFloat.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the part-description builtins into a zygomys
// environment. They populate spec during evaluation. Source must be run
// through preprocessSource first so :keyword tokens are recognizable.
func registerBuiltins(env *zygo.Zlisp, spec *PartSpec) {

	// -----------------------------------------------------------------------
	// (stock :diameter 40 :length 80)
	// -----------------------------------------------------------------------
	env.AddFunction("stock", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		v, ok := pa.kw["diameter"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("stock: :diameter is required")
		}
		d, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("stock: diameter: %w", err)
		}
		if d <= 0 {
			return zygo.SexpNull, fmt.Errorf("stock: diameter must be positive, got %g", d)
		}

		v, ok = pa.kw["length"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("stock: :length is required")
		}
		l, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("stock: length: %w", err)
		}
		if l <= 0 {
			return zygo.SexpNull, fmt.Errorf("stock: length must be positive, got %g", l)
		}

		spec.StockDiameter = d
		spec.StockLength = l
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (pt z radius)
	// -----------------------------------------------------------------------
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pt requires exactly z and radius, got %d args", len(args))
		}
		z, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: z: %w", err)
		}
		r, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: radius: %w", err)
		}
		if r < 0 {
			return zygo.SexpNull, fmt.Errorf("pt: radius must be non-negative, got %g", r)
		}
		return &sexpPoint{pt: geom.ProfilePoint{Z: z, Radius: r}}, nil
	})

	// -----------------------------------------------------------------------
	// (profile (pt 0 15) (pt -20 15) (pt -21 10) (pt -40 10))
	// -----------------------------------------------------------------------
	env.AddFunction("profile", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("profile requires at least 2 points, got %d", len(args))
		}
		pts := make([]geom.ProfilePoint, 0, len(args))
		for i, a := range args {
			sp, ok := a.(*sexpPoint)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("profile: argument %d: expected (pt z radius), got %T", i+1, a)
			}
			pts = append(pts, sp.pt)
		}
		p, err := geom.NewProfile(pts)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("profile: %w", err)
		}
		spec.Profile = p.Sorted()
		return zygo.SexpNull, nil
	})
}
