package wire

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zapflow/zapflow/internal/engine"
	"github.com/zapflow/zapflow/pkg/domain"
)

// richSpec exercises every encoding corner at once: bound title, nested form,
// choice options, pinned and auto rules, a data-exchange step and a terminal.
func richSpec() domain.Spec {
	s := domain.Spec{
		Screens: []domain.Screen{
			{
				ID:    "SCREEN_A",
				Title: domain.Bound("saudacao", ""),
				Data: map[string]any{
					"saudacao": map[string]any{"type": "string", domain.ExampleKey: "Bem-vindo"},
				},
				Layout: []domain.Block{
					{Kind: domain.BlockTextHeading, Text: domain.LiteralText("Escolha o serviço")},
					{Kind: domain.BlockForm, Name: "form", Children: []domain.Block{
						{
							Kind: domain.BlockDropdown, Name: "servico", Label: "Serviço", Required: true,
							Options: []domain.Option{
								{ID: "corte", Title: "Corte"},
								{ID: "barba", Title: "Barba"},
							},
						},
					}},
				},
			},
			{
				ID:    "SCREEN_B",
				Title: domain.LiteralText("Dados"),
				Layout: []domain.Block{
					{Kind: domain.BlockTextInput, Name: "nome", Label: "Nome", Required: true},
				},
				Action: domain.Action{Type: domain.ActionDataExchange, Label: domain.LabelContinue},
			},
			{ID: "SCREEN_C", Title: domain.LiteralText("Fim"), Terminal: true,
				Action: domain.Action{Type: domain.ActionComplete, Label: domain.LabelFinish}},
		},
		DefaultNext: map[string]string{
			"SCREEN_A": "SCREEN_B",
		},
		Branches: map[string][]domain.BranchRule{
			"SCREEN_A": {
				{Field: "servico", Op: domain.OpEquals, Value: "barba", Next: "SCREEN_C"},
				{Field: "servico", Op: domain.OpIsEmpty},
			},
		},
	}
	return engine.Normalize(s)
}

func TestRoundTrip_Exact(t *testing.T) {
	want := richSpec()

	raw, err := MarshalDocument(Encode(want))
	if err != nil {
		t.Fatalf("MarshalDocument failed: %v", err)
	}

	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got = engine.Normalize(got)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip not exact (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_SeedSpec(t *testing.T) {
	want := engine.Normalize(domain.NewSpec())

	raw, err := MarshalDocument(Encode(want))
	if err != nil {
		t.Fatalf("MarshalDocument failed: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got = engine.Normalize(got)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip not exact (-want +got):\n%s", diff)
	}
}

func TestEncode_RoutingTable(t *testing.T) {
	doc := Encode(richSpec())

	if doc.DataAPIVersion != DataAPIVersion {
		t.Errorf("expected data_api_version %q, got %q", DataAPIVersion, doc.DataAPIVersion)
	}

	// SCREEN_A: default next plus the pinned rule destination plus null (the
	// second rule has no destination, so the screen may terminate).
	routes := doc.RoutingModel["SCREEN_A"]
	want := RouteList{"SCREEN_B", "SCREEN_C", ""}
	if diff := cmp.Diff(want, routes); diff != "" {
		t.Errorf("SCREEN_A routes mismatch (-want +got):\n%s", diff)
	}

	// Terminal screen: just the null entry.
	if diff := cmp.Diff(RouteList{""}, doc.RoutingModel["SCREEN_C"]); diff != "" {
		t.Errorf("SCREEN_C routes mismatch:\n%s", diff)
	}
}

func TestEncode_RouteListNullsOnWire(t *testing.T) {
	raw, err := json.Marshal(RouteList{"SCREEN_B", ""})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `["SCREEN_B",null]` {
		t.Errorf("expected null for the empty route, got %s", raw)
	}

	var back RouteList
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(RouteList{"SCREEN_B", ""}, back); diff != "" {
		t.Errorf("route list did not survive the wire:\n%s", diff)
	}
}

func TestEncode_TerminalOnlyWhenTrue(t *testing.T) {
	doc := Encode(richSpec())

	byID := make(map[string]DocScreen)
	for _, ds := range doc.Screens {
		byID[ds.ID] = ds
	}

	if byID["SCREEN_A"].Terminal != nil {
		t.Error("expected terminal omitted on a non-terminal screen")
	}
	if byID["SCREEN_C"].Terminal == nil || !*byID["SCREEN_C"].Terminal {
		t.Error("expected terminal=true emitted on the terminal screen")
	}
}

func TestEncode_NavigatePayloadStripped(t *testing.T) {
	s := richSpec()
	// Corrupt the snapshot after normalization to prove the codec strips it
	// independently.
	for i := range s.Screens {
		if s.Screens[i].Action.Type == domain.ActionNavigate {
			s.Screens[i].Action.Payload = map[string]any{"leak": true}
		}
	}

	doc := Encode(s)
	for _, ds := range doc.Screens {
		if ds.Action != nil && ds.Action.Type == string(domain.ActionNavigate) && ds.Action.Payload != nil {
			t.Errorf("screen %s: navigate action carried a payload on the wire", ds.ID)
		}
	}
}

func TestDecode_TerminalInferredFromCompleteAction(t *testing.T) {
	raw := []byte(`{
		"data_api_version": "3.0",
		"screens": [
			{"id": "SCREEN_A", "title": "Fim", "action": {"type": "complete", "label": "Concluir"}}
		],
		"routing_model": {"SCREEN_A": [null]}
	}`)

	s, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !s.Screens[0].Terminal {
		t.Error("expected terminal inferred from complete action")
	}
}

func TestDecode_DefaultNextFromNavigateAction(t *testing.T) {
	raw := []byte(`{
		"data_api_version": "3.0",
		"screens": [
			{"id": "SCREEN_A", "title": "Início", "action": {"type": "navigate", "screen": "SCREEN_B", "label": "Continuar"}},
			{"id": "SCREEN_B", "title": "Fim", "terminal": true, "action": {"type": "complete", "label": "Concluir"}}
		],
		"routing_model": {"SCREEN_A": ["SCREEN_B", "SCREEN_X"], "SCREEN_B": [null]}
	}`)

	s, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	// The default comes from the navigate action; the routing table mixes in
	// branch destinations and cannot identify it.
	if next := s.DefaultNext["SCREEN_A"]; next != "SCREEN_B" {
		t.Errorf("expected default next SCREEN_B, got %q", next)
	}
}

func TestDecode_BoundTitleResolvesExample(t *testing.T) {
	raw := []byte(`{
		"data_api_version": "3.0",
		"screens": [
			{
				"id": "SCREEN_A",
				"title": "${data.saudacao}",
				"data": {"saudacao": {"type": "string", "__example__": "Bom dia"}},
				"action": {"type": "complete", "label": "Concluir"}
			}
		],
		"routing_model": {"SCREEN_A": [null]}
	}`)

	s, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	title := s.Screens[0].Title
	if !title.IsBound() || title.Key != "saudacao" {
		t.Fatalf("expected bound title, got %+v", title)
	}
	if title.Example != "Bom dia" {
		t.Errorf("expected example resolved on decode, got %q", title.Example)
	}
}

func TestDecode_UnknownShapeFails(t *testing.T) {
	_, err := Decode([]byte(`{"foo": "bar"}`))
	if err == nil {
		t.Fatal("expected error for unknown document shape")
	}
}

func TestDecodeOrDefault_FailsClosed(t *testing.T) {
	s := DecodeOrDefault([]byte(`not json at all`))
	if len(s.Screens) != 1 || s.Screens[0].ID != "SCREEN_A" {
		t.Errorf("expected the default seed spec, got %+v", s.ScreenIDs())
	}
}

func TestDecode_UnknownComponentSurvivesRoundTrip(t *testing.T) {
	raw := []byte(`{
		"data_api_version": "3.0",
		"screens": [
			{
				"id": "SCREEN_A",
				"title": "Fim",
				"terminal": true,
				"components": [
					{"type": "EmbeddedLink", "text-entity": "ajuda", "on-click-action": {"name": "open_url"}}
				],
				"action": {"type": "complete", "label": "Concluir"}
			}
		],
		"routing_model": {"SCREEN_A": [null]}
	}`)

	s, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	out, err := MarshalDocument(Encode(engine.Normalize(s)))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatal(err)
	}
	comp := doc.Screens[0].Components[0]
	if comp["type"] != "EmbeddedLink" {
		t.Errorf("expected unknown component type preserved, got %v", comp["type"])
	}
	if comp["text-entity"] != "ajuda" {
		t.Errorf("expected opaque keys preserved, got %v", comp)
	}
}
