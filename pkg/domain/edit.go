package domain

// EditType identifies a user mutation applied to the graph.
type EditType string

const (
	EditAddScreen      EditType = "add_screen"
	EditRemoveScreen   EditType = "remove_screen"
	EditPatchScreen    EditType = "patch_screen"
	EditSetBranches    EditType = "set_branches"
	EditSetDefaultNext EditType = "set_default_next"
	EditSetTerminal    EditType = "set_terminal"
	EditSelectScreen   EditType = "select_screen"
)

// ScreenPatch is a partial update of a screen. Nil fields are left untouched.
type ScreenPatch struct {
	Title  *string        `json:"title,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
	Layout []Block        `json:"layout,omitempty"`
	Action *Action        `json:"action,omitempty"`
}

// Edit is one user mutation. Every edit routes through normalization before
// being accepted as the new state, so a malformed edit can degrade into a
// repaired graph but never into an inconsistent one.
type Edit struct {
	Type     EditType     `json:"type"`
	ScreenID string       `json:"screen_id,omitempty"`
	Patch    *ScreenPatch `json:"patch,omitempty"`
	Branches []BranchRule `json:"branches,omitempty"`
	Next     string       `json:"next,omitempty"`
	Terminal *bool        `json:"terminal,omitempty"`
}
