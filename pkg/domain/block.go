package domain

import (
	"encoding/json"
	"fmt"
)

// BlockKind identifies a component type inside a screen layout.
type BlockKind string

// Closed set of component kinds the editor understands. Anything else is
// carried as BlockRaw and passed through untouched.
const (
	BlockTextHeading BlockKind = "TextHeading"
	BlockTextBody    BlockKind = "TextBody"
	BlockTextInput   BlockKind = "TextInput"
	BlockTextArea    BlockKind = "TextArea"
	BlockDropdown    BlockKind = "Dropdown"
	BlockRadioGroup  BlockKind = "RadioButtonsGroup"
	BlockCheckbox    BlockKind = "CheckboxGroup"
	BlockDatePicker  BlockKind = "DatePicker"
	BlockOptIn       BlockKind = "OptIn"
	BlockFooter      BlockKind = "Footer"
	BlockForm        BlockKind = "Form"
	BlockRaw         BlockKind = ""
)

// Option is one selectable entry of a choice block. The stored value of a
// branch rule is always the option ID, never the display title.
type Option struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Block is one component of a screen layout. The engine only ever reads Name
// (field identifier) and Options (to resolve branch-rule value labels);
// everything else is opaque and preserved for the wire document.
type Block struct {
	Kind     BlockKind   `json:"type"`
	Name     string      `json:"name,omitempty"`
	Label    string      `json:"label,omitempty"`
	Text     DataBinding `json:"text,omitzero"`
	Required bool        `json:"required,omitempty"`
	Options  []Option    `json:"data-source,omitempty"`
	Children []Block     `json:"children,omitempty"`

	// Extra holds keys of the raw component object that the typed fields do
	// not cover, so unknown component shapes survive a round trip.
	Extra map[string]any `json:"extra,omitempty"`
}

// IsField reports whether the block collects a value under a field name.
func (b Block) IsField() bool {
	if b.Name == "" {
		return false
	}
	switch b.Kind {
	case BlockTextInput, BlockTextArea, BlockDropdown, BlockRadioGroup,
		BlockCheckbox, BlockDatePicker, BlockOptIn:
		return true
	}
	return false
}

// IsChoice reports whether the block carries a discrete option list.
func (b Block) IsChoice() bool {
	switch b.Kind {
	case BlockDropdown, BlockRadioGroup, BlockCheckbox:
		return true
	}
	return false
}

// OptionByID returns the option with the given ID, if any.
func (b Block) OptionByID(id string) (Option, bool) {
	for _, opt := range b.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// MarshalWire serializes the block to its wire-format component object.
func (b Block) MarshalWire() map[string]any {
	out := make(map[string]any, len(b.Extra)+6)
	for k, v := range b.Extra {
		out[k] = v
	}
	if b.Kind != BlockRaw {
		out["type"] = string(b.Kind)
	}
	if b.Name != "" {
		out["name"] = b.Name
	}
	if b.Label != "" {
		out["label"] = b.Label
	}
	if b.Text != (DataBinding{}) {
		out["text"] = b.Text.Wire()
	}
	if b.Required {
		out["required"] = true
	}
	if len(b.Options) > 0 {
		opts := make([]any, len(b.Options))
		for i, o := range b.Options {
			opts[i] = map[string]any{"id": o.ID, "title": o.Title}
		}
		out["data-source"] = opts
	}
	if len(b.Children) > 0 {
		children := make([]any, len(b.Children))
		for i, c := range b.Children {
			children[i] = c.MarshalWire()
		}
		out["children"] = children
	}
	return out
}

// UnmarshalWire parses a wire-format component object into a typed block.
// Keys the typed fields do not consume are kept in Extra.
func UnmarshalWire(raw map[string]any) (Block, error) {
	b := Block{}
	extra := make(map[string]any)
	for k, v := range raw {
		switch k {
		case "type":
			s, ok := v.(string)
			if !ok {
				return Block{}, fmt.Errorf("component type must be a string, got %T", v)
			}
			b.Kind = parseKind(s)
			if b.Kind == BlockRaw {
				// Unknown kind: keep the original tag in Extra.
				extra[k] = v
			}
		case "name":
			b.Name, _ = v.(string)
		case "label":
			b.Label, _ = v.(string)
		case "text":
			if s, ok := v.(string); ok {
				b.Text = ParseBinding(s)
			} else {
				extra[k] = v
			}
		case "required":
			b.Required, _ = v.(bool)
		case "data-source":
			opts, err := parseOptions(v)
			if err != nil {
				return Block{}, err
			}
			b.Options = opts
		case "children":
			items, ok := v.([]any)
			if !ok {
				return Block{}, fmt.Errorf("children must be a list, got %T", v)
			}
			for _, item := range items {
				child, ok := item.(map[string]any)
				if !ok {
					return Block{}, fmt.Errorf("child component must be an object, got %T", item)
				}
				parsed, err := UnmarshalWire(child)
				if err != nil {
					return Block{}, err
				}
				b.Children = append(b.Children, parsed)
			}
		default:
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		b.Extra = extra
	}
	return b, nil
}

func parseKind(s string) BlockKind {
	switch BlockKind(s) {
	case BlockTextHeading, BlockTextBody, BlockTextInput, BlockTextArea,
		BlockDropdown, BlockRadioGroup, BlockCheckbox, BlockDatePicker,
		BlockOptIn, BlockFooter, BlockForm:
		return BlockKind(s)
	}
	return BlockRaw
}

func parseOptions(v any) ([]Option, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("data-source must be a list, got %T", v)
	}
	opts := make([]Option, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("data-source entry must be an object, got %T", item)
		}
		opt := Option{}
		opt.ID, _ = obj["id"].(string)
		opt.Title, _ = obj["title"].(string)
		opts = append(opts, opt)
	}
	return opts, nil
}

// CloneBlocks deep-copies a layout slice.
func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b
		out[i].Options = append([]Option(nil), b.Options...)
		out[i].Children = CloneBlocks(b.Children)
		if b.Extra != nil {
			out[i].Extra = cloneAnyMap(b.Extra)
		}
	}
	return out
}

func cloneAnyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	// JSON-shaped values only; a marshal round trip is the simplest deep copy.
	raw, err := json.Marshal(src)
	if err != nil {
		dst := make(map[string]any, len(src))
		for k, v := range src {
			dst[k] = v
		}
		return dst
	}
	var dst map[string]any
	if err := json.Unmarshal(raw, &dst); err != nil {
		return src
	}
	return dst
}
