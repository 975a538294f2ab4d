package cli

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/chickenmcniggels/IntuiCAM-sub002/pkg/tool"
)

// toolReport is the JSON shape of one tool under --json.
type toolReport struct {
	Handle       int     `json:"handle"`
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	FeedRate     float64 `json:"feedRate"`
	SpindleSpeed float64 `json:"spindleSpeed"`
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the built-in tool library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib := tool.DefaultLibrary()

		if jsonOutput {
			reports := make([]toolReport, 0, lib.Len())
			for _, h := range lib.Handles() {
				t, err := lib.Get(h)
				if err != nil {
					return err
				}
				reports = append(reports, toolReport{
					Handle:       int(h),
					Type:         t.Type.String(),
					Name:         t.Name,
					FeedRate:     t.Cutting.FeedRate,
					SpindleSpeed: t.Cutting.SpindleSpeed,
				})
			}
			data, err := json.MarshalIndent(reports, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		PrintHeader("Tool library")
		for _, h := range lib.Handles() {
			t, err := lib.Get(h)
			if err != nil {
				return err
			}
			PrintLabelValue(fmt.Sprintf("T%d %-10s", int(h)+1, t.Type),
				fmt.Sprintf("%s  F%g S%g", t.Name, t.Cutting.FeedRate, t.Cutting.SpindleSpeed))
		}
		return nil
	},
}
