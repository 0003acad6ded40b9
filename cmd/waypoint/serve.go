package main

import (
	"github.com/aretw0/waypoint/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes sessions as a JSON API with server-sent state diffs and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		metricsPort, _ := cmd.Flags().GetInt("metrics-port")
		return cli.Serve(cmd.Context(), cli.ServeOptions{
			ConfigPath:  configPath(cmd),
			Port:        port,
			MetricsPort: metricsPort,
			Store:       storeOptions(cmd),
			Log:         logOptions(cmd),
		})
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long:  `Exposes navigation, history and route parsing as Model Context Protocol tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		transport, _ := cmd.Flags().GetString("transport")
		return cli.ServeMCP(cmd.Context(), cli.ServeOptions{
			ConfigPath: configPath(cmd),
			Port:       port,
			Transport:  transport,
			Store:      storeOptions(cmd),
			Log:        logOptions(cmd),
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Int("metrics-port", 0, "Serve /metrics on a separate port")

	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().IntP("port", "p", 8081, "Port for the sse transport")
}
