package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapflow/zapflow/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <document.json>",
	Short: "Export the flow graph visualization",
	Long:  `Decodes the document and outputs a Mermaid diagram (graph TD) representing the screens, default routes and branch rules.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := loadDocument(args[0])
		if err != nil {
			fmt.Printf("Error loading document: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(spec, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
