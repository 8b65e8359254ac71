package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapflow/zapflow/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document.json>",
	Short: "Check a flow document for problems",
	Long: `Decodes the document (canonical or legacy shape), normalizes the graph and
reports everything the editor cannot repair on its own: empty titles, dead
ends, rules referencing removed fields.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := loadDocument(args[0])
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		issues := validator.Check(spec)
		if len(issues) > 0 {
			for _, issue := range issues {
				fmt.Printf("- %s\n", issue)
			}
			os.Exit(1)
		}
		fmt.Println("Flow is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
