package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/waypoint/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Waypoint is a viewport based navigation engine",
	Long: `Waypoint resolves route expressions like "inbox@main+message(3)@side" into
trees of components, runs their guards and lifecycle hooks, and keeps a
browsable history per session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", cli.DefaultConfigPath, "Application file (YAML or JSON)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("store-dir", "", "Session directory for the file store (default .waypoint/sessions)")
	pf.String("redis", "", "Redis address; replaces the file store")
	pf.Int("redis-db", 0, "Redis database")
	pf.StringSlice("mask", nil, "Regular expressions of context and query keys to redact when persisting")
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

func logOptions(cmd *cobra.Command) cli.LogOptions {
	debug, _ := cmd.Flags().GetBool("debug")
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	return cli.LogOptions{Debug: debug, Level: level, Format: format}
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	dir, _ := cmd.Flags().GetString("store-dir")
	addr, _ := cmd.Flags().GetString("redis")
	db, _ := cmd.Flags().GetInt("redis-db")
	mask, _ := cmd.Flags().GetStringSlice("mask")
	return cli.StoreOptions{Dir: dir, RedisAddr: addr, RedisDB: db, Mask: mask}
}
