package cli

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/config"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/engine"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/geom"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/kernel/sdfx"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/ops"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/planner"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/post"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/profile"
	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
)

var planFlags struct {
	partScript  string
	machinePath string
	outPath     string
	dialect     string
	lineNumbers bool
	noComments  bool
	programNum  int
}

// planReport is the JSON shape emitted under --json.
type planReport struct {
	Machine          string   `json:"machine"`
	Operations       []string `json:"operations"`
	Warnings         []string `json:"warnings,omitempty"`
	Errors           []string `json:"errors,omitempty"`
	CycleTimeMinutes float64  `json:"cycleTimeMinutes"`
	Output           string   `json:"output,omitempty"`
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan toolpaths for a part script and post G-code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan()
	},
}

func init() {
	planCmd.Flags().StringVarP(&planFlags.partScript, "part", "p", "", "Part description script (required)")
	planCmd.Flags().StringVarP(&planFlags.machinePath, "machine", "m", "", "Machine config file (YAML or JSON; default built-in generic lathe)")
	planCmd.Flags().StringVarP(&planFlags.outPath, "out", "o", "", "Output G-code file (default stdout)")
	planCmd.Flags().StringVarP(&planFlags.dialect, "dialect", "d", "generic", "G-code dialect: generic, fanuc, linuxcnc")
	planCmd.Flags().BoolVar(&planFlags.lineNumbers, "line-numbers", false, "Emit N words")
	planCmd.Flags().BoolVar(&planFlags.noComments, "no-comments", false, "Suppress comments in output")
	planCmd.Flags().IntVar(&planFlags.programNum, "program-number", 1, "Fanuc program number")
	_ = planCmd.MarkFlagRequired("part")
}

func runPlan() error {
	source, err := os.ReadFile(planFlags.partScript)
	if err != nil {
		return fmt.Errorf("part script: %w", err)
	}

	spec, evalErrs, err := engine.NewEngine().Evaluate(string(source))
	if err != nil {
		return fmt.Errorf("part script: %w", err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			PrintError(fmt.Sprintf("%s: %s", planFlags.partScript, e.Error()))
		}
		return fmt.Errorf("part script has %d error(s)", len(evalErrs))
	}
	if !spec.Complete() {
		return fmt.Errorf("part script must define both (stock ...) and (profile ...)")
	}

	machine := config.Default()
	if planFlags.machinePath != "" {
		machine, err = config.Load(planFlags.machinePath)
		if err != nil {
			return err
		}
	}

	dialect, err := post.ParseDialect(planFlags.dialect)
	if err != nil {
		return err
	}

	k := sdfx.New()
	raw := k.Cylinder(spec.StockLength, spec.StockDiameter/2)
	finished := k.Revolve(spec.Profile)

	extractor, err := profile.NewExtractor(k, profile.DefaultOptions())
	if err != nil {
		return err
	}
	tools := tool.DefaultLibrary()
	pl, err := planner.New(ops.DefaultRegistry(), tools, extractor, nil)
	if err != nil {
		return err
	}

	res, err := pl.GenerateSequence(raw, finished, planner.DefaultParams(), geom.Identity())
	if err != nil {
		return err
	}
	for _, opErr := range res.Errors {
		PrintError(opErr.Error())
	}
	if len(res.Toolpaths) == 0 {
		return fmt.Errorf("planning produced no toolpaths")
	}

	opts := post.DefaultOptions()
	opts.Dialect = dialect
	opts.Comments = !planFlags.noComments
	opts.LineNumbers = planFlags.lineNumbers
	opts.ProgramNumber = planFlags.programNum

	proc, err := post.NewProcessor(machine, opts, tools)
	if err != nil {
		return err
	}
	out := proc.Process(res.Toolpaths...)
	if !out.Success {
		for _, e := range out.Errors {
			PrintError(e)
		}
		return fmt.Errorf("post-processing failed")
	}

	if planFlags.outPath != "" {
		if err := os.WriteFile(planFlags.outPath, []byte(out.Gcode), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	if jsonOutput {
		report := planReport{
			Machine:          machine.Name,
			Warnings:         out.Warnings,
			CycleTimeMinutes: out.CycleTimeMinutes,
			Output:           planFlags.outPath,
		}
		for _, op := range res.Operations.Active() {
			report.Operations = append(report.Operations, op.Name())
		}
		for _, opErr := range res.Errors {
			report.Errors = append(report.Errors, opErr.Error())
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, w := range out.Warnings {
		PrintWarning(w)
	}
	if planFlags.outPath == "" {
		fmt.Print(out.Gcode)
	} else {
		PrintSuccess(fmt.Sprintf("wrote %s (%d toolpaths, %.1f min cycle time)",
			planFlags.outPath, len(res.Toolpaths), out.CycleTimeMinutes))
	}
	return nil
}
