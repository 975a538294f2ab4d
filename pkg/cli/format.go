package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	// fatih/color disables itself automatically when output is not a TTY.
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
)

// PrintSuccess prints a success message with a checkmark.
func PrintSuccess(msg string) {
	_, _ = successColor.Printf("✓ %s\n", msg)
}

// PrintWarning prints a warning message with a warning symbol.
func PrintWarning(msg string) {
	_, _ = warningColor.Printf("⚠ %s\n", msg)
}

// PrintError prints an error message to stderr.
func PrintError(msg string) {
	_, _ = errorColor.Fprintf(os.Stderr, "✗ %s\n", msg)
}

// PrintHeader prints a section header.
func PrintHeader(title string) {
	_, _ = headerColor.Printf("▸ %s\n", title)
}

// PrintLabelValue prints an indented label-value pair.
func PrintLabelValue(label, value string) {
	fmt.Printf("  %s: ", label)
	_, _ = valueColor.Println(value)
}
