package engine

import (
	"strings"
	"testing"
)

func evalOK(t *testing.T, source string) PartSpec {
	t.Helper()
	spec, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	return spec
}

func evalErrs(t *testing.T, source string) []EvalError {
	t.Helper()
	_, errs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(errs) == 0 {
		t.Fatalf("expected eval errors, got none")
	}
	return errs
}

func TestEvaluateEmptySource(t *testing.T) {
	spec := evalOK(t, "")
	if spec.Complete() {
		t.Error("empty source produced a complete spec")
	}
}

func TestEvaluateFullPart(t *testing.T) {
	spec := evalOK(t, `
; stepped shaft, 40mm stock
(stock :diameter 40 :length 80)
(profile
  (pt 0 15)
  (pt -20 15)
  (pt -21 10)
  (pt -40 10))
`)
	if !spec.Complete() {
		t.Fatalf("spec incomplete: %+v", spec)
	}
	if spec.StockDiameter != 40 || spec.StockLength != 80 {
		t.Errorf("stock = %gx%g, want 40x80", spec.StockDiameter, spec.StockLength)
	}
	if spec.Profile.Len() != 4 {
		t.Errorf("profile has %d points, want 4", spec.Profile.Len())
	}
	if spec.Profile.MaxRadius() != 15 || spec.Profile.MinRadius() != 10 {
		t.Errorf("profile radii = (%g, %g), want (10, 15)", spec.Profile.MinRadius(), spec.Profile.MaxRadius())
	}
}

func TestEvaluateProfileIsSorted(t *testing.T) {
	spec := evalOK(t, `
(stock :diameter 30 :length 50)
(profile (pt 0 12) (pt -40 8) (pt -20 12))
`)
	zMin, _ := spec.Profile.ZRange()
	if first := spec.Profile.Point(0); first.Z != zMin {
		t.Errorf("profile not sorted: first point Z=%g, zMin=%g", first.Z, zMin)
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string // substring of the first error message
	}{
		{"missing diameter", `(stock :length 80)`, "diameter"},
		{"missing length", `(stock :diameter 40)`, "length"},
		{"negative stock", `(stock :diameter -5 :length 80)`, "positive"},
		{"pt arity", `(profile (pt 1) (pt 0 5))`, "pt"},
		{"negative radius", `(profile (pt 0 -3) (pt -10 5))`, "radius"},
		{"profile needs points", `(profile (pt 0 5))`, "at least 2"},
		{"profile wrong argument", `(profile (pt 0 5) 7)`, "expected (pt"},
		{"stock non-numeric", `(stock :diameter "wide" :length 80)`, "number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := evalErrs(t, tt.source)
			if !strings.Contains(errs[0].Message, tt.want) {
				t.Errorf("error %q does not mention %q", errs[0].Message, tt.want)
			}
		})
	}
}

func TestEvaluateParseError(t *testing.T) {
	errs := evalErrs(t, `(stock :diameter 40`)
	if errs[0].Message == "" {
		t.Error("parse error lost its message")
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	source := `
(stock :diameter 40 :length 80)
(profile (pt 0 15) (pt -40 10))
`
	e := NewEngine()
	a, _, err := e.Evaluate(source)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := e.Evaluate(source)
	if err != nil {
		t.Fatal(err)
	}
	if a.StockDiameter != b.StockDiameter || a.Profile.Len() != b.Profile.Len() {
		t.Error("repeat evaluation differs")
	}
}

func TestEvaluateSandboxBlocksSystem(t *testing.T) {
	// system() is unavailable in sandbox mode; the script must fail
	// without touching the host.
	_, errs, err := NewEngine().Evaluate(`(system "ls")`)
	if err == nil && len(errs) == 0 {
		t.Error("sandbox allowed a system call")
	}
}

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keyword", `(stock :diameter 40)`, `(stock "__kw_diameter" 40)`},
		{"keyword in string untouched", `(label ":diameter")`, `(label ":diameter")`},
		{"semicolon comment", "(pt 0 5) ; front\n", "(pt 0 5) // front\n"},
		{"double semicolon", ";; header\n", "// header\n"},
		{"assignment preserved", `(def x := 5)`, `(def x := 5)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessSource(tt.in); got != tt.want {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseZygomysErrorLineExtraction(t *testing.T) {
	errs := parseZygomysError(errorf("Error on line 3: unexpected token"))
	if errs[0].Line != 3 || !strings.Contains(errs[0].Message, "unexpected token") {
		t.Errorf("parsed %+v, want line 3", errs[0])
	}

	errs = parseZygomysError(errorf("something opaque"))
	if errs[0].Line != 0 || errs[0].Message != "something opaque" {
		t.Errorf("parsed %+v, want line 0 with raw message", errs[0])
	}
}

type stringError string

func (e stringError) Error() string { return string(e) }

func errorf(s string) error { return stringError(s) }
