package main

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the application file for consistency",
	Long:  `Reports unknown components, duplicated names and invalid options without starting a router.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.LoadApp(configPath(cmd), logging.NewNop())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Application is valid: %d components, %d routes, %d viewports.\n",
			len(app.Registry().Names()), len(app.Routes()), len(app.Viewports()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
