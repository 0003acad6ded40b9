package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/waypoint/pkg/expression"
	"github.com/aretw0/waypoint/pkg/instruction"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <route>",
	Short: "Show how a route expression is understood",
	Long:  `Parses a route expression and prints its normalized URL and viewport instruction tree as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, _ := cmd.Flags().GetBool("hash")
		desc, err := instruction.Describe(expression.NewParser(), args[0], hash)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(desc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().Bool("hash", false, "Read the route from the fragment (#/...)")
}
