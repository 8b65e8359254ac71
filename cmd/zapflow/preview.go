package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charmbracelet/glamour"

	"github.com/zapflow/zapflow/internal/presentation/tui"
)

var previewCmd = &cobra.Command{
	Use:   "preview <document.json>",
	Short: "Render the flow screens in the terminal",
	Long:  `Decodes the document and renders each screen as styled markdown, approximating what the phone UI shows.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := loadDocument(args[0])
		if err != nil {
			fmt.Printf("Error loading document: %v\n", err)
			os.Exit(1)
		}

		plain, _ := cmd.Flags().GetBool("plain")
		markdown := tui.FlowMarkdown(spec)

		if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Print(markdown)
			return
		}

		tui.PrintBanner()

		width := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < width {
			width = w
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			fmt.Print(markdown)
			return
		}
		out, err := renderer.Render(markdown)
		if err != nil {
			fmt.Print(markdown)
			return
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().Bool("plain", false, "Print raw markdown without terminal styling")
}
