package main

import (
	"os"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Navigate a session interactively",
	Long: `Starts a REPL over one session. Type a route to navigate, :back and
:forward to move through history, :help for the rest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := cli.RunOptions{
			ConfigPath: configPath(cmd),
			Store:      storeOptions(cmd),
			Log:        logOptions(cmd),
		}
		opts.SessionID, _ = flags.GetString("session")
		opts.Route, _ = flags.GetString("route")
		opts.Fresh, _ = flags.GetBool("fresh")
		opts.Headless, _ = flags.GetBool("headless")
		opts.JSON, _ = flags.GetBool("json")
		opts.Watch, _ = flags.GetBool("watch")
		opts.ReadOnly, _ = flags.GetBool("read-only")
		return cli.Execute(cmd.Context(), opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session ID to resume or create")
	runCmd.Flags().StringP("route", "r", "", "Initial route of a new session")
	runCmd.Flags().Bool("fresh", false, "Delete the session before starting")
	runCmd.Flags().Bool("headless", false, "Run in headless mode (no prompts, strict IO)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().BoolP("watch", "w", false, "Reload the application file on change")
	runCmd.Flags().Bool("read-only", false, "Refuse every command that changes the session")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
