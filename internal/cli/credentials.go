// internal/cli/credentials.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/histia/harvest/internal/auth"
	"github.com/histia/harvest/internal/ui"
)

var credEmail string

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage stored site credentials",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <site>",
	Short: "Store the login for a site in the OS keyring",
	Example: `  # Prompted for the password, never echoed
  harvest credentials set stationf --email=you@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if credEmail == "" {
			return fmt.Errorf("--email is required")
		}

		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}

		store := GetApp().Credentials
		if err := store.Save(&auth.Credentials{
			Site:     args[0],
			Email:    credEmail,
			Password: string(password),
		}); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, ui.Success("credentials stored for "+args[0]))
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete <site>",
	Short: "Remove the stored login for a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := GetApp().Credentials.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, ui.Success("credentials removed for "+args[0]))
		return nil
	},
}

func init() {
	credentialsSetCmd.Flags().StringVar(&credEmail, "email", "", "Login email for the site")
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsDeleteCmd)
	rootCmd.AddCommand(credentialsCmd)
}
