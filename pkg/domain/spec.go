package domain

import "strings"

// Spec is the full screen graph: the screens themselves plus three views of
// their edges. RoutingModel and DefaultNext mirror each other (the engine only
// ever stores zero or one default successor per screen); Branches holds the
// ordered conditional rules. After normalization every view is mutually
// consistent and free of dangling IDs.
type Spec struct {
	Screens []Screen `json:"screens"`

	// RoutingModel maps screen ID to its default route, as a list of zero or
	// one successor IDs. An entry exists for every screen after normalization.
	RoutingModel map[string][]string `json:"routing_model"`

	// DefaultNext maps screen ID to its single default successor; the empty
	// string means "no default route". Entry present for every screen after
	// normalization.
	DefaultNext map[string]string `json:"default_next"`

	// Branches maps screen ID to its ordered conditional rules. Screens
	// without rules carry no entry.
	Branches map[string][]BranchRule `json:"branches,omitempty"`

	// Selected is the screen currently active in the editor. Session state,
	// never part of the wire document; empty means no explicit selection.
	// Normalization keeps it pointing at an existing screen.
	Selected string `json:"selected,omitempty"`
}

// NewSpec returns a graph with a single empty terminal screen, the state every
// flow starts from (and the fail-closed fallback for unparseable documents).
func NewSpec() Spec {
	return Spec{
		Screens: []Screen{{
			ID:       "SCREEN_A",
			Title:    LiteralText("Nova Tela"),
			Terminal: true,
			Action:   Action{Type: ActionComplete, Label: LabelFinish},
		}},
		RoutingModel: map[string][]string{"SCREEN_A": {}},
		DefaultNext:  map[string]string{"SCREEN_A": ""},
	}
}

// Screen returns the screen with the given ID.
func (s Spec) Screen(id string) (Screen, bool) {
	for _, sc := range s.Screens {
		if sc.ID == id {
			return sc, true
		}
	}
	return Screen{}, false
}

// HasScreen reports whether a screen with the given ID exists.
func (s Spec) HasScreen(id string) bool {
	_, ok := s.Screen(id)
	return ok
}

// ScreenIDs returns all screen IDs in declaration order.
func (s Spec) ScreenIDs() []string {
	ids := make([]string, len(s.Screens))
	for i, sc := range s.Screens {
		ids[i] = sc.ID
	}
	return ids
}

// TitleIndex builds a case-insensitive map of resolved screen titles to screen
// IDs. The first occurrence wins on title collision.
func (s Spec) TitleIndex() map[string]string {
	idx := make(map[string]string, len(s.Screens))
	for _, sc := range s.Screens {
		title := strings.ToLower(strings.TrimSpace(sc.DisplayTitle()))
		if title == "" {
			continue
		}
		if _, exists := idx[title]; !exists {
			idx[title] = sc.ID
		}
	}
	return idx
}

// Clone deep-copies the spec. Every mutation works on a clone; callers never
// alias a previous snapshot.
func (s Spec) Clone() Spec {
	out := Spec{
		Screens:      make([]Screen, len(s.Screens)),
		RoutingModel: make(map[string][]string, len(s.RoutingModel)),
		DefaultNext:  make(map[string]string, len(s.DefaultNext)),
		Selected:     s.Selected,
	}
	for i, sc := range s.Screens {
		out.Screens[i] = sc.Clone()
	}
	for id, routes := range s.RoutingModel {
		out.RoutingModel[id] = append([]string{}, routes...)
	}
	for id, next := range s.DefaultNext {
		out.DefaultNext[id] = next
	}
	if s.Branches != nil {
		out.Branches = make(map[string][]BranchRule, len(s.Branches))
		for id, rules := range s.Branches {
			out.Branches[id] = CloneRules(rules)
		}
	}
	return out
}
