package domain

import (
	"reflect"
	"testing"
)

func TestBlock_IsField(t *testing.T) {
	if (Block{Kind: BlockTextInput, Name: "nome"}).IsField() == false {
		t.Error("named input should be a field")
	}
	if (Block{Kind: BlockTextInput}).IsField() {
		t.Error("unnamed input is not a field")
	}
	if (Block{Kind: BlockTextHeading, Name: "x"}).IsField() {
		t.Error("headings never collect values")
	}
}

func TestScreen_FieldNamesWalksForms(t *testing.T) {
	sc := Screen{
		Layout: []Block{
			{Kind: BlockTextHeading, Text: LiteralText("Título")},
			{Kind: BlockTextInput, Name: "fora"},
			{Kind: BlockForm, Children: []Block{
				{Kind: BlockTextInput, Name: "dentro"},
				{Kind: BlockForm, Children: []Block{
					{Kind: BlockDatePicker, Name: "fundo"},
				}},
			}},
		},
	}

	want := []string{"fora", "dentro", "fundo"}
	if got := sc.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("FieldNames() = %v, want %v", got, want)
	}

	if _, ok := sc.FieldBlock("fundo"); !ok {
		t.Error("FieldBlock should find nested fields")
	}
	if _, ok := sc.FieldBlock("nada"); ok {
		t.Error("FieldBlock found a field that does not exist")
	}
}

func TestBlock_WireRoundTrip(t *testing.T) {
	blk := Block{
		Kind:     BlockDropdown,
		Name:     "servico",
		Label:    "Serviço",
		Required: true,
		Options: []Option{
			{ID: "corte", Title: "Corte"},
		},
	}

	back, err := UnmarshalWire(blk.MarshalWire())
	if err != nil {
		t.Fatalf("UnmarshalWire failed: %v", err)
	}
	if !reflect.DeepEqual(blk, back) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, blk)
	}
}

func TestBlock_UnknownKindKeptInExtra(t *testing.T) {
	raw := map[string]any{
		"type":        "EmbeddedLink",
		"text-entity": "ajuda",
	}

	blk, err := UnmarshalWire(raw)
	if err != nil {
		t.Fatalf("UnmarshalWire failed: %v", err)
	}
	if blk.Kind != BlockRaw {
		t.Errorf("expected raw kind for unknown component, got %q", blk.Kind)
	}
	if blk.Extra["type"] != "EmbeddedLink" {
		t.Errorf("expected original tag preserved, got %v", blk.Extra)
	}

	out := blk.MarshalWire()
	if !reflect.DeepEqual(raw, out) {
		t.Errorf("unknown component did not survive the round trip:\n got %v\nwant %v", out, raw)
	}
}

func TestBlock_UnmarshalWireErrors(t *testing.T) {
	cases := []map[string]any{
		{"type": 42},
		{"type": "Dropdown", "data-source": "not-a-list"},
		{"type": "Form", "children": "not-a-list"},
		{"type": "Form", "children": []any{"not-an-object"}},
	}
	for _, raw := range cases {
		if _, err := UnmarshalWire(raw); err == nil {
			t.Errorf("expected error for %v", raw)
		}
	}
}

func TestCloneBlocks_Isolation(t *testing.T) {
	orig := []Block{
		{Kind: BlockDropdown, Name: "s", Options: []Option{{ID: "a", Title: "A"}},
			Extra: map[string]any{"visible": true}},
	}
	cloned := CloneBlocks(orig)

	cloned[0].Options[0].Title = "mutated"
	cloned[0].Extra["visible"] = false

	if orig[0].Options[0].Title != "A" {
		t.Error("clone shares the options slice")
	}
	if orig[0].Extra["visible"] != true {
		t.Error("clone shares the extra map")
	}
}
