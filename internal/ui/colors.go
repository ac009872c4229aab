// Package ui holds the ANSI styling shared by the harvest CLI: the colorized
// help output and the status lines printed around agent runs.
package ui

const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Bold styles agent names in listings.
func Bold(s string) string {
	return ColorBold + s + ColorReset
}

// Success styles the run summary and file-written notices.
func Success(s string) string {
	return ColorGreen + s + ColorReset
}

// Info styles secondary hints.
func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

// Error styles the placeholder-report warning and failures.
func Error(s string) string {
	return ColorRed + s + ColorReset
}
