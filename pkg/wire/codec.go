// Package wire maps the normalized screen graph to and from the JSON flow
// document consumed by the messaging platform's publishing pipeline. Field
// names on the wire are load-bearing: the consumer is a fixed external
// schema.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/zapflow/zapflow/pkg/domain"
)

// DataAPIVersion is stamped on every canonical document and doubles as one of
// the shape discriminators on the way back in.
const DataAPIVersion = "3.0"

// Document is the canonical wire-format flow document.
type Document struct {
	DataAPIVersion string                         `json:"data_api_version,omitempty"`
	Screens        []DocScreen                    `json:"screens"`
	RoutingModel   map[string]RouteList           `json:"routing_model"`
	Branching      map[string][]domain.BranchRule `json:"branching,omitempty"`
}

// DocScreen is one screen as it appears on the wire.
type DocScreen struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Terminal   *bool            `json:"terminal,omitempty"`
	Data       map[string]any   `json:"data,omitempty"`
	Components []map[string]any `json:"components,omitempty"`
	Action     *DocAction       `json:"action,omitempty"`
}

// DocAction mirrors domain.Action on the wire. A navigate action never
// carries a payload key.
type DocAction struct {
	Type    string         `json:"type"`
	Screen  string         `json:"screen,omitempty"`
	Label   string         `json:"label,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// RouteList is the per-screen list of permitted successors. The empty string
// stands for "may terminate here" and serializes as JSON null.
type RouteList []string

// MarshalJSON writes empty entries as null.
func (r RouteList) MarshalJSON() ([]byte, error) {
	out := make([]any, len(r))
	for i, id := range r {
		if id == "" {
			out[i] = nil
		} else {
			out[i] = id
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads null entries back as the empty string.
func (r *RouteList) UnmarshalJSON(data []byte) error {
	var raw []*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(RouteList, len(raw))
	for i, id := range raw {
		if id != nil {
			out[i] = *id
		}
	}
	*r = out
	return nil
}

// Encode turns a normalized spec into the wire document. The routing table
// lists, per screen, the default route, every branch-rule destination, and a
// null entry when the screen may terminate.
func Encode(s domain.Spec) Document {
	doc := Document{
		DataAPIVersion: DataAPIVersion,
		Screens:        make([]DocScreen, 0, len(s.Screens)),
		RoutingModel:   make(map[string]RouteList, len(s.Screens)),
	}

	for _, sc := range s.Screens {
		doc.Screens = append(doc.Screens, encodeScreen(sc))
		doc.RoutingModel[sc.ID] = permittedRoutes(s, sc)
	}

	if len(s.Branches) > 0 {
		doc.Branching = make(map[string][]domain.BranchRule, len(s.Branches))
		for id, rules := range s.Branches {
			doc.Branching[id] = domain.CloneRules(rules)
		}
	}

	return doc
}

func encodeScreen(sc domain.Screen) DocScreen {
	out := DocScreen{
		ID:    sc.ID,
		Title: sc.Title.Wire(),
		Data:  sc.Data,
	}
	if sc.Terminal {
		t := true
		out.Terminal = &t
	}
	if len(sc.Layout) > 0 {
		out.Components = make([]map[string]any, len(sc.Layout))
		for i, b := range sc.Layout {
			out.Components[i] = b.MarshalWire()
		}
	}

	action := DocAction{
		Type:   string(sc.Action.Type),
		Screen: sc.Action.Screen,
		Label:  sc.Action.Label,
	}
	// Payload on a navigate action is a known cause of publish failures in
	// the wire consumer: strip it here as well, not just in the normalizer.
	if sc.Action.Type != domain.ActionNavigate && len(sc.Action.Payload) > 0 {
		action.Payload = sc.Action.Payload
	}
	if action.Type != "" {
		out.Action = &action
	}
	return out
}

func permittedRoutes(s domain.Spec, sc domain.Screen) RouteList {
	routes := RouteList{}
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		routes = append(routes, id)
	}

	if next := s.DefaultNext[sc.ID]; next != "" {
		add(next)
	}
	mayTerminate := sc.Terminal
	for _, rule := range s.Branches[sc.ID] {
		if rule.Next == "" {
			mayTerminate = true
			continue
		}
		add(rule.Next)
	}
	if mayTerminate {
		add("")
	}
	return routes
}

// Decode parses a document of any known shape into a Spec. Canonical
// documents are parsed faithfully; legacy shapes are upgraded by the
// dedicated adapters first. The caller is expected to normalize the result
// before using it as editor state.
func Decode(raw []byte) (domain.Spec, error) {
	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return domain.Spec{}, fmt.Errorf("failed to parse flow document: %w", err)
	}

	switch DetectShape(probe) {
	case ShapeCanonical:
		return decodeCanonical(raw)
	case ShapeLegacyForm:
		return upgradeLegacyForm(probe)
	case ShapeBooking:
		return upgradeBookingConfig(probe)
	default:
		return domain.Spec{}, fmt.Errorf("unknown flow document shape")
	}
}

// DecodeOrDefault parses a document and fails closed: on any error it returns
// the default single-screen spec so the editor always has something to edit.
func DecodeOrDefault(raw []byte) domain.Spec {
	s, err := Decode(raw)
	if err != nil {
		return domain.NewSpec()
	}
	return s
}

func decodeCanonical(raw []byte) (domain.Spec, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Spec{}, fmt.Errorf("failed to parse canonical document: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument converts a parsed canonical document into a Spec. Screens
// missing an explicit terminal flag are inferred terminal when their action
// type is complete; the default route is read back from the navigate action
// (the routing table also carries branch destinations, so it cannot identify
// the default by itself).
func FromDocument(doc Document) (domain.Spec, error) {
	s := domain.Spec{
		Screens:      make([]domain.Screen, 0, len(doc.Screens)),
		RoutingModel: make(map[string][]string, len(doc.Screens)),
		DefaultNext:  make(map[string]string, len(doc.Screens)),
	}

	present := make(map[string]struct{}, len(doc.Screens))
	for _, ds := range doc.Screens {
		present[ds.ID] = struct{}{}
	}

	for _, ds := range doc.Screens {
		sc := domain.Screen{
			ID:    ds.ID,
			Title: domain.ParseBinding(ds.Title),
			Data:  ds.Data,
		}
		if len(sc.Data) == 0 {
			sc.Data = nil
		}
		if sc.Title.IsBound() {
			sc.Title.Example = domain.ResolveExample(sc.Title.Key, sc.Data)
		}

		for _, comp := range ds.Components {
			blk, err := domain.UnmarshalWire(comp)
			if err != nil {
				return domain.Spec{}, fmt.Errorf("screen %s: %w", ds.ID, err)
			}
			sc.Layout = append(sc.Layout, blk)
		}

		if ds.Action != nil {
			sc.Action = domain.Action{
				Type:    domain.ActionType(ds.Action.Type),
				Screen:  ds.Action.Screen,
				Label:   ds.Action.Label,
				Payload: ds.Action.Payload,
			}
			if len(sc.Action.Payload) == 0 {
				sc.Action.Payload = nil
			}
		}

		if ds.Terminal != nil {
			sc.Terminal = *ds.Terminal
		} else {
			sc.Terminal = sc.Action.Type == domain.ActionComplete
		}

		next := ""
		if sc.Action.Type == domain.ActionNavigate {
			if _, ok := present[sc.Action.Screen]; ok {
				next = sc.Action.Screen
			}
		}
		s.DefaultNext[sc.ID] = next
		if next == "" {
			s.RoutingModel[sc.ID] = []string{}
		} else {
			s.RoutingModel[sc.ID] = []string{next}
		}

		s.Screens = append(s.Screens, sc)
	}

	if len(doc.Branching) > 0 {
		s.Branches = make(map[string][]domain.BranchRule, len(doc.Branching))
		for id, rules := range doc.Branching {
			if _, ok := present[id]; !ok || len(rules) == 0 {
				continue
			}
			s.Branches[id] = domain.CloneRules(rules)
		}
		if len(s.Branches) == 0 {
			s.Branches = nil
		}
	}

	return s, nil
}

// MarshalDocument renders the document as indented JSON, the form persisted
// and previewed by the editor.
func MarshalDocument(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
