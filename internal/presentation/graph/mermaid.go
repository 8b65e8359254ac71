package graph

import (
	"fmt"
	"strings"

	"github.com/zapflow/zapflow/pkg/domain"
)

// GraphOverlay contains dynamic editor state to visualize on the graph.
type GraphOverlay struct {
	SelectedScreen string
	IssueScreens   []string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a spec.
// It applies semantic styling:
// - First screen: ((Circle))
// - Terminal: [[Subroutine]]
// - Default: [Rectangle]
// Default routes are solid arrows; branch rules are labeled dotted arrows.
// It also applies overlay styles (Selected/Issues) if provided.
func GenerateMermaid(s domain.Spec, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, sc := range s.Screens {
		safeID := sanitizeMermaidID(sc.ID)

		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "((", "))" // Circle
		case sc.Terminal:
			opener, closer = "[[", "]]" // Subroutine
		}

		title := sc.DisplayTitle()
		if title == "" {
			title = sc.ID
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeMermaidLabel(title), closer))

		if next := s.DefaultNext[sc.ID]; next != "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(next)))
		}

		for _, rule := range s.Branches[sc.ID] {
			if rule.Next == "" {
				continue
			}
			label := fmt.Sprintf("%s %s %s", rule.Field, rule.Op, rule.Value)
			sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n",
				safeID, escapeMermaidLabel(label), sanitizeMermaidID(rule.Next)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme
		sb.WriteString("    classDef issue fill:#ffebee,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		issueSet := make(map[string]bool)
		for _, id := range overlay.IssueScreens {
			safeID := sanitizeMermaidID(id)
			if !issueSet[safeID] && safeID != "" {
				issueSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s issue;\n", safeID))
			}
		}

		if overlay.SelectedScreen != "" {
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", sanitizeMermaidID(overlay.SelectedScreen)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}

func escapeMermaidLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
