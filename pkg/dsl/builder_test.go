package dsl

import (
	"testing"

	"github.com/zapflow/zapflow/pkg/domain"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New()

	b.Screen("SCREEN_A").
		Title("Boas-vindas").
		Heading("Olá!").
		Input("nome", "Qual o seu nome?").Required().
		Go("SCREEN_B")

	b.Screen("SCREEN_B").
		Title("Confirmação").
		Body("Obrigado!").
		Terminal()

	spec := b.Build()

	if len(spec.Screens) != 2 {
		t.Fatalf("expected 2 screens, got %d", len(spec.Screens))
	}

	first, ok := spec.Screen("SCREEN_A")
	if !ok {
		t.Fatal("SCREEN_A missing")
	}
	if first.Title.Display() != "Boas-vindas" {
		t.Errorf("expected title 'Boas-vindas', got %q", first.Title.Display())
	}
	if first.Action.Type != domain.ActionNavigate {
		t.Errorf("expected navigate action, got %q", first.Action.Type)
	}
	if first.Action.Screen != "SCREEN_B" {
		t.Errorf("expected navigate to SCREEN_B, got %q", first.Action.Screen)
	}
	if len(first.Layout) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(first.Layout))
	}
	if !first.Layout[1].Required {
		t.Error("expected input to be required")
	}

	last, _ := spec.Screen("SCREEN_B")
	if !last.Terminal {
		t.Error("expected SCREEN_B to be terminal")
	}
	if last.Action.Type != domain.ActionComplete {
		t.Errorf("expected complete action, got %q", last.Action.Type)
	}

	if spec.DefaultNext["SCREEN_A"] != "SCREEN_B" {
		t.Errorf("expected default next SCREEN_B, got %q", spec.DefaultNext["SCREEN_A"])
	}
	if len(spec.RoutingModel["SCREEN_B"]) != 0 {
		t.Errorf("expected empty routing for terminal screen, got %v", spec.RoutingModel["SCREEN_B"])
	}
}

func TestBuilder_ScreensStartTerminal(t *testing.T) {
	b := New()
	b.Screen("SCREEN_A").Title("Única").Input("email", "E-mail")

	spec := b.Build()

	sc, _ := spec.Screen("SCREEN_A")
	if !sc.Terminal {
		t.Error("expected an untouched screen to be a terminal dead end")
	}
	if sc.Action.Type != domain.ActionComplete {
		t.Errorf("expected complete action, got %q", sc.Action.Type)
	}
	if sc.Action.Label != domain.LabelFinish {
		t.Errorf("expected label %q, got %q", domain.LabelFinish, sc.Action.Label)
	}
}

func TestBuilder_BranchAutoRoutesByTitle(t *testing.T) {
	b := New()

	b.Screen("SCREEN_A").
		Title("Escolha").
		Radio("destino", "Para onde?",
			domain.Option{ID: "pgto", Title: "Pagamento"},
			domain.Option{ID: "fim", Title: "Encerrar"}).
		BranchAuto("destino", domain.OpEquals, "pgto").
		Go("SCREEN_B")

	b.Screen("SCREEN_B").Title("Pagamento")
	b.Screen("SCREEN_C").Title("Encerrar").Terminal()

	spec := b.Build()

	rules := spec.Branches["SCREEN_A"]
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Next != "SCREEN_B" {
		t.Errorf("expected auto-routed destination SCREEN_B, got %q", rules[0].Next)
	}
	if !rules[0].AutoNext {
		t.Error("expected rule to stay flagged as auto")
	}
}

func TestBuilder_PinnedBranchForcesDestinationTerminal(t *testing.T) {
	b := New()

	b.Screen("SCREEN_A").
		Title("Triagem").
		Input("cpf", "CPF").
		Branch("cpf", domain.OpIsEmpty, "", "SCREEN_B").
		Go("SCREEN_B")

	b.Screen("SCREEN_B").Title("Cadastro").Go("SCREEN_C")
	b.Screen("SCREEN_C").Title("Fim")

	spec := b.Build()

	dest, _ := spec.Screen("SCREEN_B")
	if !dest.Terminal {
		t.Error("expected branch destination to be finalized as terminal")
	}
	if dest.Action.Type != domain.ActionComplete {
		t.Errorf("expected complete action on finalized screen, got %q", dest.Action.Type)
	}
	if next := spec.DefaultNext["SCREEN_B"]; next != "" {
		t.Errorf("expected finalized screen to lose its onward route, got %q", next)
	}
}

func TestBuilder_SendsDataSynthesizesPayload(t *testing.T) {
	b := New()
	b.Screen("SCREEN_A").
		Title("Cadastro").
		Input("nome", "Nome").
		Input("email", "E-mail").
		SendsData()

	spec := b.Build()

	sc, _ := spec.Screen("SCREEN_A")
	if sc.Action.Type != domain.ActionDataExchange {
		t.Fatalf("expected data_exchange action, got %q", sc.Action.Type)
	}
	if got := sc.Action.Payload["nome"]; got != "${form.nome}" {
		t.Errorf("expected templated payload for nome, got %v", got)
	}
	if got := sc.Action.Payload["email"]; got != "${form.email}" {
		t.Errorf("expected templated payload for email, got %v", got)
	}
}

func TestBuilder_ScreenReturnsExisting(t *testing.T) {
	b := New()
	first := b.Screen("SCREEN_A")
	second := b.Screen("SCREEN_A")
	if first != second {
		t.Error("expected Screen to return the existing builder for a known ID")
	}
	second.Title("Atualizada")

	spec := b.Build()
	if len(spec.Screens) != 1 {
		t.Fatalf("expected 1 screen, got %d", len(spec.Screens))
	}
	if got := spec.Screens[0].Title.Display(); got != "Atualizada" {
		t.Errorf("expected title 'Atualizada', got %q", got)
	}
}

func TestBuilder_EmptyBuildFallsBackToSeed(t *testing.T) {
	spec := New().Build()
	if len(spec.Screens) != 1 || spec.Screens[0].ID != "SCREEN_A" {
		t.Fatalf("expected seed graph with SCREEN_A, got %+v", spec.ScreenIDs())
	}
}
