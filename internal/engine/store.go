package engine

import (
	"strings"

	"github.com/zapflow/zapflow/pkg/domain"
)

// Mutation helpers. Each one builds a draft from an immutable snapshot and
// hands it to Normalize before the caller accepts it as the new state, so no
// helper can ever leave the graph referencing a nonexistent screen.

// DefaultScreenTitle is the title given to screens created by the engine.
const DefaultScreenTitle = "Nova Tela"

// AddScreen appends a new terminal screen. If the previous last screen was
// terminal it becomes a non-terminal step navigating to the new screen, with
// the neutral "continue" label (never the finish label it had while
// terminal).
func AddScreen(s domain.Spec) (domain.Spec, string) {
	draft := s.Clone()

	id := NewScreenID(draft.ScreenIDs())
	screen := domain.Screen{
		ID:       id,
		Title:    domain.LiteralText(DefaultScreenTitle),
		Terminal: true,
		Action:   domain.Action{Type: domain.ActionComplete, Label: domain.LabelFinish},
	}

	if n := len(draft.Screens); n > 0 {
		last := &draft.Screens[n-1]
		if last.Terminal {
			last.Terminal = false
			last.Action = domain.Action{Type: domain.ActionNavigate, Screen: id, Label: domain.LabelContinue}
			draft.RoutingModel[last.ID] = []string{id}
			draft.DefaultNext[last.ID] = id
		}
	}

	draft.Screens = append(draft.Screens, screen)
	draft.RoutingModel[id] = []string{}
	draft.DefaultNext[id] = ""

	return Normalize(draft), id
}

// RemoveScreen drops a screen and every reference to it. A graph must always
// have at least one screen, so removing the last one is a no-op.
func RemoveScreen(s domain.Spec, id string) domain.Spec {
	if len(s.Screens) <= 1 || !s.HasScreen(id) {
		return s
	}
	draft := s.Clone()

	kept := draft.Screens[:0]
	for _, sc := range draft.Screens {
		if sc.ID != id {
			kept = append(kept, sc)
		}
	}
	draft.Screens = kept

	delete(draft.RoutingModel, id)
	delete(draft.DefaultNext, id)
	delete(draft.Branches, id)

	for sid, next := range draft.DefaultNext {
		if next == id {
			draft.DefaultNext[sid] = ""
			draft.RoutingModel[sid] = []string{}
		}
	}
	for sid, rules := range draft.Branches {
		filtered := rules[:0]
		for _, rule := range rules {
			if rule.Next != id {
				filtered = append(filtered, rule)
			}
		}
		if len(filtered) == 0 {
			delete(draft.Branches, sid)
		} else {
			draft.Branches[sid] = filtered
		}
	}

	return Normalize(draft)
}

// PatchScreen applies a partial update to one screen.
func PatchScreen(s domain.Spec, id string, patch domain.ScreenPatch) domain.Spec {
	draft := s.Clone()
	for i := range draft.Screens {
		sc := &draft.Screens[i]
		if sc.ID != id {
			continue
		}
		if patch.Title != nil {
			sc.Title = domain.ParseBinding(*patch.Title)
		}
		if patch.Data != nil {
			sc.Data = patch.Data
		}
		if patch.Layout != nil {
			sc.Layout = patch.Layout
		}
		if patch.Action != nil {
			sc.Action = *patch.Action
		}
		break
	}
	return Normalize(draft)
}

// SetBranchRules replaces the ordered rule list of a screen. Rule values typed
// as display labels are translated back to option IDs before storing.
func SetBranchRules(s domain.Spec, id string, rules []domain.BranchRule) domain.Spec {
	if !s.HasScreen(id) {
		return s
	}
	draft := s.Clone()

	sc, _ := draft.Screen(id)
	stored := domain.CloneRules(rules)
	for i := range stored {
		stored[i].Value = TranslateOptionLabel(sc, stored[i].Field, stored[i].Value)
	}

	if draft.Branches == nil {
		draft.Branches = make(map[string][]domain.BranchRule)
	}
	if len(stored) == 0 {
		delete(draft.Branches, id)
	} else {
		draft.Branches[id] = stored
	}
	return Normalize(draft)
}

// SetDefaultNext sets (or clears, with an empty next) the default route of a
// screen.
func SetDefaultNext(s domain.Spec, id, next string) domain.Spec {
	if !s.HasScreen(id) {
		return s
	}
	draft := s.Clone()
	draft.DefaultNext[id] = next
	if next == "" {
		draft.RoutingModel[id] = []string{}
		// The navigate action is the other place the route lives; left in
		// place it would resurrect the route on the next normalization.
		for i := range draft.Screens {
			sc := &draft.Screens[i]
			if sc.ID == id && sc.Action.Type == domain.ActionNavigate {
				sc.Action = domain.Action{}
			}
		}
	} else {
		draft.RoutingModel[id] = []string{next}
	}
	return Normalize(draft)
}

// SetTerminal toggles the terminal flag explicitly. Marking a screen terminal
// clears its outgoing route; reopening a screen is exactly this explicit
// action (auto-finalization never reverses itself).
func SetTerminal(s domain.Spec, id string, terminal bool) domain.Spec {
	if !s.HasScreen(id) {
		return s
	}
	draft := s.Clone()
	for i := range draft.Screens {
		sc := &draft.Screens[i]
		if sc.ID != id {
			continue
		}
		sc.Terminal = terminal
		if terminal {
			sc.Action = domain.Action{Type: domain.ActionComplete, Label: domain.LabelFinish}
			draft.RoutingModel[id] = []string{}
			draft.DefaultNext[id] = ""
		}
		break
	}
	return Normalize(draft)
}

// SelectScreen marks a screen as the active one in the editor. Selecting a
// screen that does not exist leaves the snapshot unchanged; removing the
// active screen falls back to the first remaining one during normalization.
func SelectScreen(s domain.Spec, id string) domain.Spec {
	if !s.HasScreen(id) {
		return s
	}
	draft := s.Clone()
	draft.Selected = id
	return Normalize(draft)
}

// TranslateOptionLabel converts a value typed as a display label into the
// underlying option ID of the given choice field. Values that already are
// option IDs (or fields without options) pass through unchanged: the stored
// value is always the option ID, never the label.
func TranslateOptionLabel(sc domain.Screen, field, value string) string {
	blk, ok := sc.FieldBlock(field)
	if !ok || !blk.IsChoice() || value == "" {
		return value
	}
	if _, isID := blk.OptionByID(value); isID {
		return value
	}
	for _, opt := range blk.Options {
		if strings.EqualFold(opt.Title, value) {
			return opt.ID
		}
	}
	return value
}

// Apply dispatches a user edit to the corresponding mutation helper. Unknown
// or malformed edits return the snapshot unchanged.
func Apply(s domain.Spec, edit domain.Edit) domain.Spec {
	switch edit.Type {
	case domain.EditAddScreen:
		next, _ := AddScreen(s)
		return next
	case domain.EditRemoveScreen:
		return RemoveScreen(s, edit.ScreenID)
	case domain.EditPatchScreen:
		if edit.Patch == nil {
			return s
		}
		return PatchScreen(s, edit.ScreenID, *edit.Patch)
	case domain.EditSetBranches:
		return SetBranchRules(s, edit.ScreenID, edit.Branches)
	case domain.EditSetDefaultNext:
		return SetDefaultNext(s, edit.ScreenID, edit.Next)
	case domain.EditSetTerminal:
		if edit.Terminal == nil {
			return s
		}
		return SetTerminal(s, edit.ScreenID, *edit.Terminal)
	case domain.EditSelectScreen:
		return SelectScreen(s, edit.ScreenID)
	}
	return s
}
