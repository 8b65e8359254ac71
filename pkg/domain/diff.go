package domain

import "reflect"

// SpecDiff represents the changes between two graph snapshots. It is designed
// to be serialized to JSON for partial updates on editor clients listening on
// the event stream.
type SpecDiff struct {
	// FlowID is always present to identify the target.
	FlowID string `json:"flow_id"`

	// AddedScreens holds full definitions of screens that appeared.
	AddedScreens []Screen `json:"added_screens,omitempty"`

	// ChangedScreens holds full definitions of screens whose content changed.
	ChangedScreens []Screen `json:"changed_screens,omitempty"`

	// RemovedScreens lists IDs of screens that disappeared.
	RemovedScreens []string `json:"removed_screens,omitempty"`

	// Routing contains only changed routing entries, keyed by screen ID.
	Routing map[string][]string `json:"routing,omitempty"`

	// Branches contains only changed branch-rule lists, keyed by screen ID.
	// A key mapping to an empty list means the rules were cleared.
	Branches map[string][]BranchRule `json:"branches,omitempty"`
}

// DiffSpecs calculates the difference between two snapshots. If old is the
// zero Spec, the diff represents the entire new state (initial load). Returns
// nil when nothing changed.
func DiffSpecs(flowID string, old, new Spec) *SpecDiff {
	diff := &SpecDiff{FlowID: flowID}

	oldByID := make(map[string]Screen, len(old.Screens))
	for _, sc := range old.Screens {
		oldByID[sc.ID] = sc
	}

	for _, sc := range new.Screens {
		prev, existed := oldByID[sc.ID]
		if !existed {
			diff.AddedScreens = append(diff.AddedScreens, sc)
			continue
		}
		if !reflect.DeepEqual(prev, sc) {
			diff.ChangedScreens = append(diff.ChangedScreens, sc)
		}
		delete(oldByID, sc.ID)
	}
	for _, sc := range old.Screens {
		if _, still := oldByID[sc.ID]; still {
			if !new.HasScreen(sc.ID) {
				diff.RemovedScreens = append(diff.RemovedScreens, sc.ID)
			}
		}
	}

	for id, routes := range new.RoutingModel {
		if !reflect.DeepEqual(old.RoutingModel[id], routes) {
			if diff.Routing == nil {
				diff.Routing = make(map[string][]string)
			}
			diff.Routing[id] = routes
		}
	}

	for id, rules := range new.Branches {
		if !reflect.DeepEqual(old.Branches[id], rules) {
			if diff.Branches == nil {
				diff.Branches = make(map[string][]BranchRule)
			}
			diff.Branches[id] = rules
		}
	}
	for id := range old.Branches {
		if _, still := new.Branches[id]; !still {
			if diff.Branches == nil {
				diff.Branches = make(map[string][]BranchRule)
			}
			diff.Branches[id] = []BranchRule{}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SpecDiff) IsEmpty() bool {
	return len(d.AddedScreens) == 0 &&
		len(d.ChangedScreens) == 0 &&
		len(d.RemovedScreens) == 0 &&
		len(d.Routing) == 0 &&
		len(d.Branches) == 0
}
