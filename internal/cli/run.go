// internal/cli/run.go
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/histia/harvest/internal/output"
	"github.com/histia/harvest/internal/ui"
	"github.com/histia/harvest/pkg/models"
)

var (
	runURL      string
	runMax      int
	runOutput   string
	runLastDays int
	runEmail    string
	runPassword string
)

var runCmd = &cobra.Command{
	Use:   "run <agent>",
	Short: "Run an extraction agent against a listing page",
	Long: `Runs one agent from navigation to a finished JSON report.

The report is printed to stdout; --output additionally writes it to a file.
A run that falls back to the placeholder report exits zero, since content
ambiguity is not an error; only bad input or infrastructure failures do.`,
	Example: `  # Extract today's Product Hunt leaderboard
  harvest run product_hunt

  # Recent BetaList startups, capped, saved to a file
  harvest run betalist --last-days=3 --max=50 --output=betalist.json

  # A custom page through the generic extractor
  harvest run universal --url=https://example.com/startups`,
	Args: cobra.ExactArgs(1),
	RunE: runAgent,
}

func init() {
	runCmd.Flags().StringVarP(&runURL, "url", "u", "", "Listing URL (defaults to the agent's home page)")
	runCmd.Flags().IntVarP(&runMax, "max", "m", 0, "Maximum number of records (defaults per agent)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "File path to save the report (.json, .csv, .md)")
	runCmd.Flags().IntVar(&runLastDays, "last-days", 0, "Only keep entries published in the last N days (BetaList)")
	runCmd.Flags().StringVar(&runEmail, "email", "", "Login email for agents behind authentication")
	runCmd.Flags().StringVar(&runPassword, "password", "", "Login password for agents behind authentication")

	rootCmd.AddCommand(runCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	application := GetApp()
	spec, ok := application.Registry.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown agent %q, see 'harvest agents'", args[0])
	}

	input := models.RunInput{
		URL:        runURL,
		MaxRecords: runMax,
		OutputPath: runOutput,
		LastDays:   runLastDays,
		Email:      runEmail,
		Password:   runPassword,
	}

	// Scroll progress on stderr so stdout stays parseable JSON.
	var bar *progressbar.ProgressBar
	if spec.Scroll.MaxRounds > 0 {
		bar = progressbar.NewOptions(spec.Scroll.MaxRounds,
			progressbar.OptionSetDescription("scrolling "+spec.Name),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
		application.Runner.OnScrollRound = func(round, count int) {
			bar.Set(round)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), application.Config.RunTimeout)
	defer cancel()

	result, err := application.Runner.Run(ctx, spec, input)
	if bar != nil {
		bar.Finish()
		application.Runner.OnScrollRound = nil
	}
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(result.Report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if runOutput != "" {
		if err := output.Save(result.Report, runOutput); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "%s\n", ui.Success("report written to "+runOutput))
	}

	// The report is always echoed, even when a file was written.
	fmt.Println(string(payload))

	if result.Report.IsSentinel() {
		fmt.Fprintf(os.Stderr, "%s\n", ui.Error("extraction fell back to the placeholder report: "+result.Report.Notes))
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", ui.Success(fmt.Sprintf("%d records in %s", len(result.Report.Records), result.Duration.Round(time.Millisecond))))
	}
	return nil
}
