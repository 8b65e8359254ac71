package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapflow/zapflow/pkg/wire"
)

var convertCmd = &cobra.Command{
	Use:   "convert <document.json>",
	Short: "Upgrade a flow document to the canonical shape",
	Long: `Decodes a document of any known shape (canonical, legacy flat form, booking
config), normalizes the graph and prints the canonical wire-format document.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := loadDocument(args[0])
		if err != nil {
			fmt.Printf("Error loading document: %v\n", err)
			os.Exit(1)
		}

		out, err := wire.MarshalDocument(wire.Encode(spec))
		if err != nil {
			fmt.Printf("Error encoding document: %v\n", err)
			os.Exit(1)
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			fmt.Println(string(out))
			return
		}
		if err := os.WriteFile(output, append(out, '\n'), 0o644); err != nil {
			fmt.Printf("Error writing %s: %v\n", output, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", output)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("output", "o", "", "Write the canonical document to a file instead of stdout")
}
