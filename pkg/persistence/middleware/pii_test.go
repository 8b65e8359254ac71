package middleware_test

import (
	"context"
	"testing"

	"github.com/zapflow/zapflow/pkg/domain"
	"github.com/zapflow/zapflow/pkg/persistence/middleware"
)

func TestPIIMiddleware_MasksMatchingKeys(t *testing.T) {
	underlyingStore := NewMockStore()
	mw := middleware.NewPIIMiddleware([]string{`(?i)cpf`, `(?i)email`})
	store := mw(underlyingStore)
	ctx := context.Background()

	spec := domain.NewSpec()
	spec.Screens[0].Data = map[string]any{
		"cpf":      "123.456.789-00",
		"saudacao": "Olá",
		"contato":  map[string]any{"email_cliente": "x@y.com", "telefone": "11999999999"},
	}
	spec.Screens[0].Action = domain.Action{
		Type:    domain.ActionDataExchange,
		Label:   domain.LabelContinue,
		Payload: map[string]any{"cpf": "${form.cpf}", "nome": "${form.nome}"},
	}
	spec.Screens[0].Terminal = false

	if err := store.Save(ctx, "flow", spec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stored, _ := underlyingStore.Load(ctx, "flow")
	data := stored.Screens[0].Data
	if data["cpf"] != "***" {
		t.Errorf("expected cpf masked, got %v", data["cpf"])
	}
	if data["saudacao"] != "Olá" {
		t.Errorf("expected unrelated key untouched, got %v", data["saudacao"])
	}
	nested := data["contato"].(map[string]any)
	if nested["email_cliente"] != "***" {
		t.Errorf("expected nested key masked, got %v", nested["email_cliente"])
	}
	if nested["telefone"] != "11999999999" {
		t.Errorf("expected nested unrelated key untouched, got %v", nested["telefone"])
	}
	if stored.Screens[0].Action.Payload["cpf"] != "***" {
		t.Errorf("expected payload masked, got %v", stored.Screens[0].Action.Payload)
	}

	// The caller's spec must not see the masking.
	if spec.Screens[0].Data["cpf"] != "123.456.789-00" {
		t.Error("masking leaked into the caller's snapshot")
	}
}

func TestPIIMiddleware_LoadPassesThrough(t *testing.T) {
	underlyingStore := NewMockStore()
	store := middleware.NewPIIMiddleware([]string{`cpf`})(underlyingStore)
	ctx := context.Background()

	spec := domain.NewSpec()
	_ = underlyingStore.Save(ctx, "flow", spec)

	loaded, err := store.Load(ctx, "flow")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Screens) != 1 {
		t.Errorf("expected pass-through load, got %+v", loaded)
	}
}

func TestPIIMiddleware_StacksWithEncryption(t *testing.T) {
	underlyingStore := NewMockStore()
	ctx := context.Background()

	stacked := middleware.NewPIIMiddleware([]string{`(?i)cpf`})(
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore),
	)

	spec := domain.NewSpec()
	spec.Screens[0].Data = map[string]any{"cpf": "123.456.789-00", "nome": "Maria"}
	if err := stacked.Save(ctx, "flow", spec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := stacked.Load(ctx, "flow")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// Masking happened before encryption, so the decrypted copy is masked.
	if loaded.Screens[0].Data["cpf"] != "***" {
		t.Errorf("expected masked value after the stack, got %v", loaded.Screens[0].Data["cpf"])
	}
	if loaded.Screens[0].Data["nome"] != "Maria" {
		t.Errorf("expected unrelated value preserved, got %v", loaded.Screens[0].Data["nome"])
	}
}
