// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/histia/harvest/internal/app"
	"github.com/histia/harvest/internal/config"
	"github.com/histia/harvest/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "harvest",
	Short:   "Listing extraction agents for startup and product directories",
	Long:    `Harvest runs site-specific extraction agents against listing pages (Product Hunt, BetaList, AppSumo, ...) and emits structured JSON reports.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetApp() != nil {
			return nil
		}

		cfg, err := config.Load(rootCmd)
		if err != nil {
			return err
		}

		application, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, application)
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		application := GetApp()
		if application == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), application.Config.HTTPTimeout)
		defer cancel()
		if err := application.Close(ctx); err != nil {
			log.Debug().Err(err).Msg("shutdown error")
		}
		SetApp(cmd, nil)
	}
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	// Customize help and version flag descriptions
	rootCmd.Flags().BoolP("help", "h", false, "Help for Harvest")
	rootCmd.Flags().Bool("version", false, "Version for Harvest")
}

func init() {
	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Set custom help function
	rootCmd.SetHelpFunc(customHelpFunc)
	rootCmd.SetUsageFunc(customUsageFunc)
}

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	// Header with command name
	fmt.Fprintf(os.Stdout, "\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, strings.ToUpper(cmd.Name()), ui.ColorReset)

	// Short description
	if cmd.Short != "" {
		fmt.Fprintf(os.Stdout, "%s\n", cmd.Short)
	}

	// Long description
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(os.Stdout, "\n%s\n", wrapText(cmd.Long, 80))
	}

	// Usage section
	fmt.Fprintf(os.Stdout, "\n%sUsage%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
	if cmd.Runnable() {
		fmt.Fprintf(os.Stdout, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(os.Stdout, "  %s%s%s %s<command>%s %s[flags]%s\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset,
			ui.ColorYellow, ui.ColorReset,
			ui.ColorDim, ui.ColorReset)
	}

	// Examples section
	if cmd.HasExample() {
		fmt.Fprintf(os.Stdout, "\n%sExamples%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		examples := strings.Split(cmd.Example, "\n")
		lastWasCommand := false
		for _, example := range examples {
			trimmed := strings.TrimSpace(example)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "#") {
				// Add spacing before comment if previous line was a command
				if lastWasCommand {
					fmt.Fprintln(os.Stdout)
				}
				fmt.Fprintf(os.Stdout, "  %s%s%s\n", ui.ColorDim, trimmed, ui.ColorReset)
				lastWasCommand = false
			} else {
				fmt.Fprintf(os.Stdout, "  %s$ %s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			}
		}
	}

	// Available commands section
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(os.Stdout, "\n%sCommands%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)

		maxLen := 0
		availableCommands := []*cobra.Command{}
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && c.Name() != "help" {
				availableCommands = append(availableCommands, c)
				if len(c.Name()) > maxLen {
					maxLen = len(c.Name())
				}
			}
		}

		for _, c := range availableCommands {
			padding := strings.Repeat(" ", maxLen-len(c.Name())+2)
			fmt.Fprintf(os.Stdout, "  %s%s%s%s%s%s%s\n",
				ui.ColorCyan, c.Name(), ui.ColorReset,
				padding,
				ui.ColorDim, c.Short, ui.ColorReset)
		}
	}

	// Flags sections
	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(os.Stdout, "\n%sFlags%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		printFlags(cmd.LocalFlags().FlagUsages())
	}

	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(os.Stdout, "\n%sGlobal Flags%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		printFlags(cmd.InheritedFlags().FlagUsages())
	}

	// Footer
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(os.Stdout, "\n%sUse \"%s%s%s %s<command>%s %s--help%s\" for more information about a command.%s\n",
			ui.ColorDim,
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset+ui.ColorDim,
			ui.ColorYellow, ui.ColorReset+ui.ColorDim,
			ui.ColorGreen, ui.ColorReset+ui.ColorDim,
			ui.ColorReset)
	}
	fmt.Fprintln(os.Stdout)
}

// customUsageFunc provides a colorized usage output
func customUsageFunc(cmd *cobra.Command) error {
	fmt.Fprintf(os.Stderr, "\n%sUsage%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
	if cmd.Runnable() {
		fmt.Fprintf(os.Stderr, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(os.Stderr, "  %s%s%s %s<command>%s %s[flags]%s\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset,
			ui.ColorYellow, ui.ColorReset,
			ui.ColorDim, ui.ColorReset)
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(os.Stderr, "\n%sCommands%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)

		maxLen := 0
		availableCommands := []*cobra.Command{}
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && c.Name() != "help" {
				availableCommands = append(availableCommands, c)
				if len(c.Name()) > maxLen {
					maxLen = len(c.Name())
				}
			}
		}

		for _, c := range availableCommands {
			padding := strings.Repeat(" ", maxLen-len(c.Name())+2)
			fmt.Fprintf(os.Stderr, "  %s%s%s%s%s%s%s\n",
				ui.ColorCyan, c.Name(), ui.ColorReset,
				padding,
				ui.ColorDim, c.Short, ui.ColorReset)
		}
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(os.Stderr, "\n%sFlags%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		printFlagsTo(os.Stderr, cmd.LocalFlags().FlagUsages())
	}

	fmt.Fprintf(os.Stderr, "\n%sUse \"%s%s%s %s--help%s\" for more information.%s\n",
		ui.ColorDim,
		ui.ColorCyan, cmd.CommandPath(), ui.ColorReset+ui.ColorDim,
		ui.ColorGreen, ui.ColorReset+ui.ColorDim,
		ui.ColorReset)

	return nil
}

// printFlags prints flag usages with color formatting to stdout
func printFlags(flagUsages string) {
	printFlagsTo(os.Stdout, flagUsages)
}

// printFlagsTo prints flag usages with color formatting to the specified writer
func printFlagsTo(writer *os.File, flagUsages string) {
	lines := strings.Split(flagUsages, "\n")

	// Find maximum flag length for alignment
	maxFlagLen := 0
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "-") {
			parts := strings.SplitN(trimmed, "  ", 2)
			if len(parts) >= 1 {
				flagPart := strings.TrimSpace(parts[0])
				if len(flagPart) > maxFlagLen {
					maxFlagLen = len(flagPart)
				}
			}
		}
	}

	if maxFlagLen < 28 {
		maxFlagLen = 28
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		trimmed := strings.TrimLeft(line, " ")

		if strings.HasPrefix(trimmed, "-") {
			parts := strings.SplitN(trimmed, "  ", 2)
			if len(parts) == 2 {
				flagPart := strings.TrimSpace(parts[0])
				descPart := strings.TrimSpace(parts[1])

				padding := strings.Repeat(" ", maxFlagLen-len(flagPart)+2)

				fmt.Fprintf(writer, "  %s%s%s%s%s%s%s\n",
					ui.ColorGreen, flagPart, ui.ColorReset,
					padding,
					ui.ColorDim, descPart, ui.ColorReset)
			} else {
				fmt.Fprintf(writer, "  %s%s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			}
		} else {
			// Continuation line (description continues)
			indentSpaces := strings.Repeat(" ", maxFlagLen+4)
			fmt.Fprintf(writer, "%s%s%s%s\n",
				indentSpaces,
				ui.ColorDim, trimmed, ui.ColorReset)
		}
	}
}

// wrapText wraps text at the specified width while preserving paragraphs
func wrapText(text string, width int) string {
	paragraphs := strings.Split(text, "\n\n")
	var wrappedParagraphs []string

	for _, para := range paragraphs {
		lines := strings.Split(para, "\n")
		var wrappedLines []string

		for _, line := range lines {
			trimmedLine := strings.TrimSpace(line)
			if trimmedLine == "" {
				continue
			}

			// Keep bullet points on their own lines
			if strings.HasPrefix(trimmedLine, "-") || strings.HasPrefix(trimmedLine, "*") {
				wrappedLines = append(wrappedLines, trimmedLine)
				continue
			}

			words := strings.Fields(trimmedLine)
			if len(words) == 0 {
				continue
			}

			var currentLine strings.Builder
			for _, word := range words {
				if currentLine.Len() == 0 {
					currentLine.WriteString(word)
				} else if currentLine.Len()+1+len(word) <= width {
					currentLine.WriteString(" ")
					currentLine.WriteString(word)
				} else {
					wrappedLines = append(wrappedLines, currentLine.String())
					currentLine.Reset()
					currentLine.WriteString(word)
				}
			}

			if currentLine.Len() > 0 {
				wrappedLines = append(wrappedLines, currentLine.String())
			}
		}

		if len(wrappedLines) > 0 {
			wrappedParagraphs = append(wrappedParagraphs, strings.Join(wrappedLines, "\n"))
		}
	}

	return strings.Join(wrappedParagraphs, "\n\n")
}
