package engine

import (
	"strings"

	"github.com/zapflow/zapflow/pkg/domain"
)

// Normalize takes a draft graph (possibly violating invariants) and returns a
// self-consistent graph. It is deterministic and idempotent: normalizing an
// already-normalized spec is a no-op. Every edit path routes through here
// before the result is accepted as current state, so repairs are silent and
// total; only problems that cannot be auto-fixed are left for the validator.
func Normalize(in domain.Spec) domain.Spec {
	s := in.Clone()
	scrub(&s)
	finalizeBranchTargets(&s)
	autoRouteBranches(&s)
	reconcileTerminals(&s)
	recomputeDerived(&s)
	return s
}

// scrub drops references to screens that no longer exist. Branch rules with a
// dangling destination keep their field/op/value and lose only the
// destination; the rule's intent is not destroyed without user confirmation.
func scrub(s *domain.Spec) {
	if s.RoutingModel == nil {
		s.RoutingModel = make(map[string][]string)
	}
	if s.DefaultNext == nil {
		s.DefaultNext = make(map[string]string)
	}

	present := make(map[string]struct{}, len(s.Screens))
	for _, sc := range s.Screens {
		present[sc.ID] = struct{}{}
	}
	has := func(id string) bool {
		_, ok := present[id]
		return ok
	}

	for id, routes := range s.RoutingModel {
		if !has(id) {
			delete(s.RoutingModel, id)
			continue
		}
		kept := make([]string, 0, len(routes))
		for _, to := range routes {
			if has(to) {
				kept = append(kept, to)
			}
		}
		s.RoutingModel[id] = kept
	}

	for id, next := range s.DefaultNext {
		if !has(id) {
			delete(s.DefaultNext, id)
			continue
		}
		if next != "" && !has(next) {
			s.DefaultNext[id] = ""
		}
	}

	for id, rules := range s.Branches {
		if !has(id) || len(rules) == 0 {
			delete(s.Branches, id)
			continue
		}
		for i := range rules {
			if rules[i].Next != "" && !has(rules[i].Next) {
				rules[i].Next = ""
			}
		}
		s.Branches[id] = rules
	}

	if s.Selected != "" && !has(s.Selected) {
		// The active screen is gone; reselect the first remaining one.
		s.Selected = ""
		if len(s.Screens) > 0 {
			s.Selected = s.Screens[0].ID
		}
	}
}

// finalizeBranchTargets forces every branch-rule destination that has no
// branching logic of its own to become terminal. A destination picked for a
// conditional path was almost certainly meant as a dead end for that path; if
// it kept a default route from its earlier place in the linear chain, the
// conversation would silently fall through past it. Re-evaluated from scratch
// on every normalization; removing the last rule pointing at a screen does
// NOT un-finalize it — reopening is an explicit user action.
func finalizeBranchTargets(s *domain.Spec) {
	seen := make(map[string]struct{})
	var destinations []string
	for _, sc := range s.Screens {
		for _, rule := range s.Branches[sc.ID] {
			if rule.Next == "" {
				continue
			}
			if _, dup := seen[rule.Next]; dup {
				continue
			}
			seen[rule.Next] = struct{}{}
			destinations = append(destinations, rule.Next)
		}
	}

	for _, dest := range destinations {
		if len(s.Branches[dest]) > 0 {
			continue
		}
		for i := range s.Screens {
			sc := &s.Screens[i]
			if sc.ID != dest {
				continue
			}
			if sc.Terminal || sc.Action.Type == domain.ActionComplete {
				break
			}
			sc.Terminal = true
			sc.Action = domain.Action{Type: domain.ActionComplete, Label: domain.LabelFinish}
			s.RoutingModel[dest] = []string{}
			s.DefaultNext[dest] = ""
			break
		}
	}
}

// autoRouteBranches recomputes the destination of every rule flagged AutoNext
// from the semantic value it tests: the rule's option value is resolved to its
// display label, and the label is matched against screen titles. Rules pinned
// by the user (AutoNext false) are never touched, and a failed inference keeps
// the previous destination rather than clearing it.
func autoRouteBranches(s *domain.Spec) {
	titles := s.TitleIndex()
	for _, sc := range s.Screens {
		rules := s.Branches[sc.ID]
		for i := range rules {
			rule := &rules[i]
			if !rule.AutoNext || rule.Op != domain.OpEquals {
				continue
			}
			label := rule.Value
			if blk, ok := sc.FieldBlock(rule.Field); ok && blk.IsChoice() {
				if opt, ok := blk.OptionByID(rule.Value); ok {
					label = opt.Title
				}
			}
			if id, ok := titles[strings.ToLower(strings.TrimSpace(label))]; ok {
				rule.Next = id
			}
		}
	}
}

// reconcileTerminals resolves the contradiction of a screen that both has a
// default route and presents as terminal: a screen that structurally has
// somewhere to go is never allowed to look like a dead end.
func reconcileTerminals(s *domain.Spec) {
	for i := range s.Screens {
		sc := &s.Screens[i]
		next := defaultNextOf(s, sc.ID)
		if next == "" {
			continue
		}
		if sc.Terminal {
			sc.Terminal = false
			sc.Action = domain.Action{Type: domain.ActionNavigate, Screen: next, Label: domain.LabelContinue}
			continue
		}
		applyNavigate(sc, next)
	}
}

// recomputeDerived rebuilds every derived view from the single source of
// truth so RoutingModel and DefaultNext stay mutually consistent, and
// canonicalizes per-screen fields (action agreement, payload synthesis,
// resolved title previews, empty-collection normalization).
func recomputeDerived(s *domain.Spec) {
	routing := make(map[string][]string, len(s.Screens))
	defaultNext := make(map[string]string, len(s.Screens))

	for i := range s.Screens {
		sc := &s.Screens[i]

		next := defaultNextOf(s, sc.ID)
		if next == "" && !sc.Terminal && sc.Action.Type == domain.ActionNavigate && s.HasScreen(sc.Action.Screen) {
			next = sc.Action.Screen
		}
		if sc.Terminal {
			next = ""
		}

		defaultNext[sc.ID] = next
		if next == "" {
			routing[sc.ID] = []string{}
		} else {
			routing[sc.ID] = []string{next}
			applyNavigate(sc, next)
		}

		if sc.Terminal && sc.Action.Type != domain.ActionComplete {
			label := sc.Action.Label
			if label == "" || sc.Action.Type == domain.ActionNavigate {
				label = domain.LabelFinish
			}
			sc.Action = domain.Action{Type: domain.ActionComplete, Label: label}
		}
		if !sc.Terminal && sc.Action.Type == domain.ActionComplete {
			// A complete action implies terminal on the wire; a reopened
			// screen must not keep it or the document would flip back to
			// terminal on reload.
			sc.Action = domain.Action{}
		}

		switch sc.Action.Type {
		case domain.ActionNavigate:
			// Presence of a payload on a navigate action breaks the publish
			// pipeline downstream; strip it, don't just leave it unset.
			sc.Action.Payload = nil
		case domain.ActionDataExchange:
			if len(sc.Action.Payload) == 0 {
				sc.Action.Payload = exchangePayload(*sc)
			}
		}

		if sc.Title.IsBound() {
			sc.Title.Example = domain.ResolveExample(sc.Title.Key, sc.Data)
		}

		if len(sc.Data) == 0 {
			sc.Data = nil
		}
		if len(sc.Layout) == 0 {
			sc.Layout = nil
		}
		if len(sc.Action.Payload) == 0 {
			sc.Action.Payload = nil
		}
	}

	s.RoutingModel = routing
	s.DefaultNext = defaultNext
	if len(s.Branches) == 0 {
		s.Branches = nil
	}
}

// exchangePayload maps every visible field of the screen to a templated
// reference to that field's submitted value.
func exchangePayload(sc domain.Screen) map[string]any {
	fields := sc.FieldNames()
	if len(fields) == 0 {
		return nil
	}
	payload := make(map[string]any, len(fields))
	for _, name := range fields {
		payload[name] = "${form." + name + "}"
	}
	return payload
}

// applyNavigate forces the action to agree with the default route. An existing
// navigate label survives; anything else is reset to the neutral wording.
func applyNavigate(sc *domain.Screen, next string) {
	label := domain.LabelContinue
	if sc.Action.Type == domain.ActionNavigate && sc.Action.Label != "" {
		label = sc.Action.Label
	}
	sc.Action = domain.Action{Type: domain.ActionNavigate, Screen: next, Label: label}
}

// defaultNextOf reads the default successor with DefaultNext taking priority
// over the routing view.
func defaultNextOf(s *domain.Spec, id string) string {
	if next, ok := s.DefaultNext[id]; ok && next != "" {
		return next
	}
	if routes := s.RoutingModel[id]; len(routes) > 0 {
		return routes[0]
	}
	return ""
}
