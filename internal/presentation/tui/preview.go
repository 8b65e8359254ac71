package tui

import (
	"fmt"
	"strings"

	"github.com/zapflow/zapflow/pkg/domain"
)

// ScreenMarkdown renders one screen as markdown, approximating what the
// phone UI shows: title, components top to bottom, then the action button.
func ScreenMarkdown(sc domain.Screen) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", sc.DisplayTitle())

	for _, blk := range sc.Layout {
		writeBlock(&sb, blk)
	}

	if sc.Action.Label != "" {
		fmt.Fprintf(&sb, "\n> **[ %s ]**\n", sc.Action.Label)
	}
	return sb.String()
}

// FlowMarkdown renders every screen in order, separated by rules, for the
// whole-flow preview.
func FlowMarkdown(s domain.Spec) string {
	parts := make([]string, 0, len(s.Screens))
	for _, sc := range s.Screens {
		parts = append(parts, ScreenMarkdown(sc))
	}
	return strings.Join(parts, "\n---\n\n")
}

func writeBlock(sb *strings.Builder, blk domain.Block) {
	switch blk.Kind {
	case domain.BlockTextHeading:
		fmt.Fprintf(sb, "## %s\n\n", blk.Text.Display())
	case domain.BlockTextBody, domain.BlockFooter:
		fmt.Fprintf(sb, "%s\n\n", blk.Text.Display())
	case domain.BlockTextInput, domain.BlockTextArea, domain.BlockDatePicker:
		fmt.Fprintf(sb, "- %s: `_________`%s\n", blk.Label, requiredMark(blk))
	case domain.BlockDropdown, domain.BlockRadioGroup, domain.BlockCheckbox:
		fmt.Fprintf(sb, "- %s%s\n", blk.Label, requiredMark(blk))
		for _, opt := range blk.Options {
			fmt.Fprintf(sb, "  - %s\n", opt.Title)
		}
	case domain.BlockOptIn:
		fmt.Fprintf(sb, "- [ ] %s%s\n", blk.Label, requiredMark(blk))
	case domain.BlockForm:
		for _, child := range blk.Children {
			writeBlock(sb, child)
		}
	}
}

func requiredMark(blk domain.Block) string {
	if blk.Required {
		return " *"
	}
	return ""
}
