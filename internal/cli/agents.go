// internal/cli/agents.go
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/histia/harvest/internal/ui"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the available extraction agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		specs := GetApp().Registry.List()

		maxLen := 0
		for _, spec := range specs {
			if len(spec.Name) > maxLen {
				maxLen = len(spec.Name)
			}
		}

		for _, spec := range specs {
			padding := strings.Repeat(" ", maxLen-len(spec.Name)+2)
			marks := ""
			if spec.NeedsLogin {
				marks = " " + ui.Info("[login]")
			}
			fmt.Fprintf(os.Stdout, "%s%s%s%s\n", ui.Bold(spec.Name), padding, spec.Description, marks)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}
