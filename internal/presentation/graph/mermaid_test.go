package graph_test

import (
	"strings"
	"testing"

	"github.com/zapflow/zapflow/internal/presentation/graph"
	"github.com/zapflow/zapflow/pkg/domain"
)

func branchedSpec() domain.Spec {
	return domain.Spec{
		Screens: []domain.Screen{
			{ID: "SCREEN_A", Title: domain.LiteralText("Boas-vindas"),
				Action: domain.Action{Type: domain.ActionNavigate, Screen: "SCREEN_B", Label: domain.LabelContinue}},
			{ID: "SCREEN_B", Title: domain.LiteralText("Escolha")},
			{ID: "SCREEN_C", Title: domain.LiteralText("Fim"), Terminal: true,
				Action: domain.Action{Type: domain.ActionComplete, Label: domain.LabelFinish}},
		},
		RoutingModel: map[string][]string{"SCREEN_A": {"SCREEN_B"}, "SCREEN_B": {}, "SCREEN_C": {}},
		DefaultNext:  map[string]string{"SCREEN_A": "SCREEN_B", "SCREEN_B": "", "SCREEN_C": ""},
		Branches: map[string][]domain.BranchRule{
			"SCREEN_B": {
				{Field: "opcao", Op: domain.OpEquals, Value: "fim", Next: "SCREEN_C"},
				{Field: "opcao", Op: domain.OpIsEmpty}, // no destination: no edge
			},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(branchedSpec(), nil)

	contains := []string{
		"graph TD",
		`SCREEN_A(("Boas-vindas"))`,       // first screen is a circle
		`SCREEN_C[["Fim"]]`,               // terminal is a subroutine
		`SCREEN_B["Escolha"]`,             // everything else a rectangle
		"SCREEN_A --> SCREEN_B",           // default route solid
		`SCREEN_B -. "opcao equals fim" .-> SCREEN_C`, // branch rule dotted
	}
	for _, want := range contains {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}

	if strings.Contains(out, "classDef") {
		t.Error("expected no overlay styles without an overlay")
	}
	// The destination-less rule must not produce an edge.
	if strings.Contains(out, "is_empty") {
		t.Error("expected rule without destination to be skipped")
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(branchedSpec(), &graph.GraphOverlay{
		SelectedScreen: "SCREEN_B",
		IssueScreens:   []string{"SCREEN_B", "SCREEN_B", "SCREEN_C"},
	})

	for _, want := range []string{
		"classDef issue",
		"classDef selected",
		"class SCREEN_B issue;",
		"class SCREEN_C issue;",
		"class SCREEN_B selected;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}

	// Duplicate issue IDs are emitted once.
	if strings.Count(out, "class SCREEN_B issue;") != 1 {
		t.Error("expected duplicate issue screens deduplicated")
	}
}

func TestGenerateMermaid_SanitizesAndEscapes(t *testing.T) {
	s := domain.Spec{
		Screens: []domain.Screen{
			{ID: "tela-1.principal", Title: domain.LiteralText(`Diga "olá"`)},
		},
		RoutingModel: map[string][]string{"tela-1.principal": {}},
		DefaultNext:  map[string]string{"tela-1.principal": ""},
	}

	out := graph.GenerateMermaid(s, nil)

	if !strings.Contains(out, "tela_1_principal((") {
		t.Errorf("expected sanitized node ID, got\n%s", out)
	}
	if !strings.Contains(out, "Diga 'olá'") {
		t.Errorf("expected quotes escaped in label, got\n%s", out)
	}
}

func TestGenerateMermaid_BoundTitleUsesExample(t *testing.T) {
	s := domain.Spec{
		Screens: []domain.Screen{
			{
				ID:    "SCREEN_A",
				Title: domain.Bound("saudacao", "Bem-vindo"),
				Data: map[string]any{
					"saudacao": map[string]any{"type": "string", domain.ExampleKey: "Bem-vindo"},
				},
			},
		},
		RoutingModel: map[string][]string{"SCREEN_A": {}},
		DefaultNext:  map[string]string{"SCREEN_A": ""},
	}

	out := graph.GenerateMermaid(s, nil)
	if !strings.Contains(out, `SCREEN_A(("Bem-vindo"))`) {
		t.Errorf("expected resolved preview title, got\n%s", out)
	}
}
