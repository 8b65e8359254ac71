package domain

// ActionType identifies what happens when a screen is submitted.
type ActionType string

const (
	// ActionNavigate moves to another screen. Never carries a payload.
	ActionNavigate ActionType = "navigate"
	// ActionDataExchange posts the screen's fields to the data endpoint.
	ActionDataExchange ActionType = "data_exchange"
	// ActionComplete ends the flow.
	ActionComplete ActionType = "complete"
)

// Button labels used whenever the engine rewrites an action itself. A screen
// reopened by the engine never keeps a "submit/finish" style label.
const (
	LabelContinue = "Continuar"
	LabelFinish   = "Concluir"
)

// Action is the submit behavior of a screen.
type Action struct {
	Type    ActionType     `json:"type"`
	Screen  string         `json:"screen,omitempty"`
	Label   string         `json:"label,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Screen is one step of a multi-screen interactive form.
type Screen struct {
	ID       string         `json:"id"`
	Title    DataBinding    `json:"title"`
	Terminal bool           `json:"terminal"`
	Data     map[string]any `json:"data,omitempty"`
	Layout   []Block        `json:"layout,omitempty"`
	Action   Action         `json:"action"`
}

// DisplayTitle resolves the title for preview: the literal, or the bound
// example from the screen's data dictionary.
func (s Screen) DisplayTitle() string {
	if s.Title.IsBound() {
		if ex := ResolveExample(s.Title.Key, s.Data); ex != "" {
			return ex
		}
	}
	return s.Title.Display()
}

// FieldNames returns every named input field in layout order, including the
// children of Form blocks.
func (s Screen) FieldNames() []string {
	var names []string
	var walk func(blocks []Block)
	walk = func(blocks []Block) {
		for _, b := range blocks {
			if b.IsField() {
				names = append(names, b.Name)
			}
			if len(b.Children) > 0 {
				walk(b.Children)
			}
		}
	}
	walk(s.Layout)
	return names
}

// FieldBlock finds the input block carrying the given field name.
func (s Screen) FieldBlock(name string) (Block, bool) {
	var found Block
	ok := false
	var walk func(blocks []Block)
	walk = func(blocks []Block) {
		for _, b := range blocks {
			if !ok && b.IsField() && b.Name == name {
				found, ok = b, true
			}
			if !ok && len(b.Children) > 0 {
				walk(b.Children)
			}
		}
	}
	walk(s.Layout)
	return found, ok
}

// Clone deep-copies the screen.
func (s Screen) Clone() Screen {
	out := s
	out.Data = cloneAnyMap(s.Data)
	out.Layout = CloneBlocks(s.Layout)
	out.Action.Payload = cloneAnyMap(s.Action.Payload)
	return out
}
