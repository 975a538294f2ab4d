// Package cli implements the intuicam command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
)

// rootCmd is the root command for intuicam.
var rootCmd = &cobra.Command{
	Use:     "intuicam",
	Version: "dev",
	Short:   "Lathe CAM: part scripts to G-code",
	Long: `intuicam plans turning operations for 2-axis lathes.

It evaluates a part-description script, plans the machining sequence
(facing, roughing, finishing, parting) against the stock, and posts
G-code for the configured machine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// SetVersion overrides the build version shown by --version.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the intuicam CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(os.Stdout, rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(toolsCmd)
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
