package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zapflow",
	Short: "Zapflow is a screen-graph editor for conversational flows",
	Long: `Zapflow edits WhatsApp-style flow documents as a graph of screens with
default routes and conditional branch rules, keeping the graph consistent on
every edit and exporting the wire-format JSON the publishing pipeline expects.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "zapflow.yaml", "Path to the configuration file")
}
