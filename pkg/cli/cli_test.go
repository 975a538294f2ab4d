package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testScript = `
; 40mm stock, stepped shaft
(stock :diameter 40 :length 80)
(profile
  (pt 0 15)
  (pt -30 15)
  (pt -31 10)
  (pt -60 10))
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resetPlanFlags() {
	planFlags.partScript = ""
	planFlags.machinePath = ""
	planFlags.outPath = ""
	planFlags.dialect = "generic"
	planFlags.lineNumbers = false
	planFlags.noComments = false
	planFlags.programNum = 1
	jsonOutput = false
}

func TestRunPlanEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("plans against the real geometry kernel")
	}
	dir := t.TempDir()
	resetPlanFlags()
	planFlags.partScript = writeFile(t, dir, "part.lisp", testScript)
	planFlags.outPath = filepath.Join(dir, "out.nc")

	if err := runPlan(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(planFlags.outPath)
	if err != nil {
		t.Fatal(err)
	}
	gcode := string(data)
	for _, want := range []string{"G21 G90 G18", "G0 ", "G1 ", "M30"} {
		if !strings.Contains(gcode, want) {
			t.Errorf("output missing %q:\n%s", want, gcode[:min(len(gcode), 400)])
		}
	}
	// Four toolpath sections in mandatory order.
	idx := func(s string) int { return strings.Index(gcode, "("+s+")") }
	if !(idx("facing") >= 0 && idx("facing") < idx("roughing") &&
		idx("roughing") < idx("finishing") && idx("finishing") < idx("parting")) {
		t.Errorf("toolpath comments missing or out of order: facing=%d roughing=%d finishing=%d parting=%d",
			idx("facing"), idx("roughing"), idx("finishing"), idx("parting"))
	}
}

func TestRunPlanWithMachineConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("plans against the real geometry kernel")
	}
	dir := t.TempDir()
	resetPlanFlags()
	planFlags.partScript = writeFile(t, dir, "part.lisp", testScript)
	planFlags.machinePath = writeFile(t, dir, "machine.yaml", `name: test-lathe
minX: 0
maxX: 150
minZ: -300
maxZ: 20
units: mm
coordinateMode: radius
spindleDirection: cw
rapidFeed: 4000
safetyRetract: 2
maxSpindleSpeed: 3000
`)
	planFlags.outPath = filepath.Join(dir, "out.nc")

	if err := runPlan(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(planFlags.outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "test-lathe") {
		t.Error("machine name comment missing from output")
	}
}

func TestRunPlanScriptErrors(t *testing.T) {
	dir := t.TempDir()
	resetPlanFlags()
	planFlags.partScript = writeFile(t, dir, "bad.lisp", `(stock :diameter -1 :length 80)`)
	if err := runPlan(); err == nil {
		t.Error("script error not surfaced")
	}

	resetPlanFlags()
	planFlags.partScript = writeFile(t, dir, "incomplete.lisp", `(stock :diameter 40 :length 80)`)
	if err := runPlan(); err == nil || !strings.Contains(err.Error(), "profile") {
		t.Errorf("incomplete script error = %v, want mention of profile", err)
	}

	resetPlanFlags()
	planFlags.partScript = filepath.Join(dir, "missing.lisp")
	if err := runPlan(); err == nil {
		t.Error("missing script file not surfaced")
	}
}

func TestRunPlanBadDialect(t *testing.T) {
	dir := t.TempDir()
	resetPlanFlags()
	planFlags.partScript = writeFile(t, dir, "part.lisp", testScript)
	planFlags.dialect = "haas"
	if err := runPlan(); err == nil {
		t.Error("unknown dialect accepted")
	}
}
