// Package validator inspects a normalized graph and reports the semantic
// problems the normalizer cannot repair on its own. It never mutates the
// spec: everything fixable is fixed during normalization, and only issues
// that need a human decision surface here, as plain strings the editor UI
// renders as a bulleted list that blocks saving.
package validator

import (
	"fmt"

	"github.com/zapflow/zapflow/pkg/domain"
)

// Check returns an ordered list of human-readable issues. An empty list means
// the spec is save-able.
func Check(s domain.Spec) []string {
	var issues []string

	seen := make(map[string]struct{}, len(s.Screens))
	for _, sc := range s.Screens {
		if _, dup := seen[sc.ID]; dup {
			issues = append(issues, fmt.Sprintf("Identificador de tela duplicado: %s", sc.ID))
			continue
		}
		seen[sc.ID] = struct{}{}
	}

	for _, sc := range s.Screens {
		if sc.Title.IsEmpty() {
			issues = append(issues, fmt.Sprintf("Tela %s: título vazio", sc.ID))
		}

		hasRoute := len(s.RoutingModel[sc.ID]) > 0
		hasRules := len(s.Branches[sc.ID]) > 0
		exitsViaExchange := sc.Action.Type == domain.ActionDataExchange
		if !sc.Terminal && !hasRoute && !hasRules && !exitsViaExchange {
			issues = append(issues, fmt.Sprintf(
				"Tela %s: não é final, mas não possui próxima tela nem regras de desvio", sc.ID))
		}

		for _, rule := range s.Branches[sc.ID] {
			if rule.Field == "" {
				issues = append(issues, fmt.Sprintf("Tela %s: regra de desvio sem campo", sc.ID))
				continue
			}
			if _, ok := sc.FieldBlock(rule.Field); !ok {
				issues = append(issues, fmt.Sprintf(
					"Tela %s: regra de desvio referencia um campo que não existe mais (%q)", sc.ID, rule.Field))
			}
			if !domain.KnownOp(rule.Op) {
				issues = append(issues, fmt.Sprintf(
					"Tela %s: regra de desvio com operador desconhecido (%q)", sc.ID, rule.Op))
			}
		}

		if sc.Action.Type == domain.ActionDataExchange && len(sc.Action.Payload) == 0 {
			issues = append(issues, fmt.Sprintf("Tela %s: ação de troca de dados sem payload", sc.ID))
		}

		// Dangling references are repaired during normalization; reporting
		// them here covers specs that skipped that path.
		for _, to := range s.RoutingModel[sc.ID] {
			if to != "" && !s.HasScreen(to) {
				issues = append(issues, fmt.Sprintf(
					"Tela %s: rota aponta para tela inexistente (%s)", sc.ID, to))
			}
		}
		for _, rule := range s.Branches[sc.ID] {
			if rule.Next != "" && !s.HasScreen(rule.Next) {
				issues = append(issues, fmt.Sprintf(
					"Tela %s: regra de desvio aponta para tela inexistente (%s)", sc.ID, rule.Next))
			}
		}
	}

	return issues
}
