package main

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the route map as a Mermaid diagram",
	Long: `Prints viewports, routes and components as a Mermaid flowchart. With
--session the components active in that session are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := cli.CreateLogger(logOptions(cmd))
		if err != nil {
			return err
		}
		app, err := cli.LoadApp(configPath(cmd), logger)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			p, err := cli.SetupPersistence(storeOptions(cmd), logger)
			if err != nil {
				return err
			}
			defer p.Close()
			sessions := app.Sessions(p.Store, p.SessionOpts...)
			defer sessions.Close()

			snap, err := sessions.State(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("session %s: %w", id, err)
			}
			overlay = graph.OverlayFromTree(snap.RouteTree)
		}

		m := graph.FromRegistry(app.Registry(), app.Viewports(), app.Routes())
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(m, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the route tree of this session")
}
