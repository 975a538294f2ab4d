// Package engine evaluates part-description scripts. It wraps zygomys in
// a sandboxed environment and produces a PartSpec: the stock envelope and
// the finished part's revolved profile.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	zygo "github.com/glycerine/zygomys/zygo"
)

// PartSpec is the result of evaluating a part script: the raw stock
// cylinder and the finished part profile, both in mm with the part front
// at z=0.
type PartSpec struct {
	StockDiameter float64
	StockLength   float64
	Profile       geom.Profile2D
}

// Complete reports whether the script defined both stock and profile.
func (s PartSpec) Complete() bool {
	return s.StockDiameter > 0 && s.StockLength > 0 && !s.Profile.IsEmpty()
}

// EvalError is a non-fatal evaluation failure such as a parse error or a
// runtime error in the script.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each Evaluate call runs in a fresh sandboxed environment so results are
// deterministic.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs a part script and returns its PartSpec.
//
// Return semantics:
//   - success: spec + nil errors + nil error
//   - parse/eval failure: zero spec + eval errors + nil error
//   - fatal failure (timeout, panic): zero spec + nil + error
func (e *Engine) Evaluate(source string) (PartSpec, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		spec, evalErrs, err := e.evaluate(source)
		ch <- evalResult{spec: spec, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate runs the script in a fresh sandbox. Sandbox mode keeps the
// script away from the filesystem and syscalls.
func (e *Engine) evaluate(source string) (PartSpec, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return PartSpec{}, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	var spec PartSpec
	registerBuiltins(env, &spec)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return PartSpec{}, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return PartSpec{}, parseZygomysError(err), nil
	}
	return spec, nil, nil
}

// linePattern matches zygomys messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." messages.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting a line number from the message where possible.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
