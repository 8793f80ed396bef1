package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dashgate-dev/dashgate/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "dashgate",
	Short: "Dashgate - Authentication gateway for dashboard backends",
	Long: `Dashgate CLI - Manage dashboard sessions from the terminal.

Dashgate fronts a dashboard backend, guarding navigation and keeping
tokens fresh. The CLI logs in, inspects session status, keeps tokens
alive, and opens the dashboard on the right page.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dashgate version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewStatusCmd())
	rootCmd.AddCommand(commands.NewKeepaliveCmd())
	rootCmd.AddCommand(commands.NewDashCmd())
	rootCmd.AddCommand(commands.NewSelectGatewayCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
