package dsl

import "github.com/zapflow/zapflow/pkg/domain"

// ScreenBuilder provides a fluent API for configuring a screen.
type ScreenBuilder struct {
	screen  domain.Screen
	next    string
	rules   []domain.BranchRule
	builder *Builder
}

// Title sets a literal screen title.
func (s *ScreenBuilder) Title(text string) *ScreenBuilder {
	s.screen.Title = domain.LiteralText(text)
	return s
}

// BoundTitle binds the screen title to a data dictionary key and registers
// the preview example under that key.
func (s *ScreenBuilder) BoundTitle(key, example string) *ScreenBuilder {
	s.screen.Title = domain.Bound(key, example)
	return s.Data(key, map[string]any{
		"type":            "string",
		domain.ExampleKey: example,
	})
}

// Data adds an entry to the screen's data dictionary.
func (s *ScreenBuilder) Data(key string, value any) *ScreenBuilder {
	if s.screen.Data == nil {
		s.screen.Data = make(map[string]any)
	}
	s.screen.Data[key] = value
	return s
}

// Heading appends a TextHeading block.
func (s *ScreenBuilder) Heading(text string) *ScreenBuilder {
	return s.Block(domain.Block{Kind: domain.BlockTextHeading, Text: domain.LiteralText(text)})
}

// Body appends a TextBody block.
func (s *ScreenBuilder) Body(text string) *ScreenBuilder {
	return s.Block(domain.Block{Kind: domain.BlockTextBody, Text: domain.LiteralText(text)})
}

// Input appends a single-line text field.
func (s *ScreenBuilder) Input(name, label string) *ScreenBuilder {
	return s.Block(domain.Block{Kind: domain.BlockTextInput, Name: name, Label: label})
}

// TextArea appends a multi-line text field.
func (s *ScreenBuilder) TextArea(name, label string) *ScreenBuilder {
	return s.Block(domain.Block{Kind: domain.BlockTextArea, Name: name, Label: label})
}

// Date appends a date picker field.
func (s *ScreenBuilder) Date(name, label string) *ScreenBuilder {
	return s.Block(domain.Block{Kind: domain.BlockDatePicker, Name: name, Label: label})
}

// OptIn appends an opt-in checkbox field.
func (s *ScreenBuilder) OptIn(name, label string) *ScreenBuilder {
	return s.Block(domain.Block{Kind: domain.BlockOptIn, Name: name, Label: label})
}

// Dropdown appends a dropdown field with the given options.
func (s *ScreenBuilder) Dropdown(name, label string, options ...domain.Option) *ScreenBuilder {
	return s.Block(domain.Block{Kind: domain.BlockDropdown, Name: name, Label: label, Options: options})
}

// Radio appends a radio-buttons field with the given options.
func (s *ScreenBuilder) Radio(name, label string, options ...domain.Option) *ScreenBuilder {
	return s.Block(domain.Block{Kind: domain.BlockRadioGroup, Name: name, Label: label, Options: options})
}

// Checkboxes appends a checkbox-group field with the given options.
func (s *ScreenBuilder) Checkboxes(name, label string, options ...domain.Option) *ScreenBuilder {
	return s.Block(domain.Block{Kind: domain.BlockCheckbox, Name: name, Label: label, Options: options})
}

// Required marks the most recently appended block as required.
func (s *ScreenBuilder) Required() *ScreenBuilder {
	if n := len(s.screen.Layout); n > 0 {
		s.screen.Layout[n-1].Required = true
	}
	return s
}

// Block appends an arbitrary layout block. Escape hatch for component shapes
// the typed helpers do not cover.
func (s *ScreenBuilder) Block(b domain.Block) *ScreenBuilder {
	s.screen.Layout = append(s.screen.Layout, b)
	return s
}

// Action overrides the submit action. Rarely needed; the normalizer derives
// navigate/complete actions from the routing, and SendsData covers the
// data-exchange case. Routing and the terminal flag are left untouched.
func (s *ScreenBuilder) Action(a domain.Action) *ScreenBuilder {
	s.screen.Action = a
	return s
}

// SendsData marks the screen to post its fields to the data endpoint on
// submit instead of navigating or completing directly. The normalizer fills
// the payload from the screen's field names.
func (s *ScreenBuilder) SendsData() *ScreenBuilder {
	s.screen.Terminal = false
	s.screen.Action = domain.Action{Type: domain.ActionDataExchange, Label: domain.LabelContinue}
	return s
}

// Go sets the default route to the target screen.
func (s *ScreenBuilder) Go(target string) *ScreenBuilder {
	s.next = target
	s.screen.Terminal = false
	return s
}

// Branch adds a conditional rule routing to the target screen when the field
// matches. The destination is pinned: the normalizer will not reassign it.
func (s *ScreenBuilder) Branch(field string, op domain.BranchOp, value, target string) *ScreenBuilder {
	s.rules = append(s.rules, domain.BranchRule{Field: field, Op: op, Value: value, Next: target})
	return s
}

// BranchAuto adds a conditional rule without a destination and lets the
// normalizer auto-route it by matching the rule's option label against
// screen titles. Only equals rules are inferable; anything else stays
// unrouted until pinned.
func (s *ScreenBuilder) BranchAuto(field string, op domain.BranchOp, value string) *ScreenBuilder {
	s.rules = append(s.rules, domain.BranchRule{Field: field, Op: op, Value: value, AutoNext: true})
	return s
}

// Terminal marks the screen as an end of the flow.
func (s *ScreenBuilder) Terminal() *ScreenBuilder {
	s.next = ""
	s.screen.Terminal = true
	return s
}

// Builder returns the parent graph builder, for chaining across screens.
func (s *ScreenBuilder) Builder() *Builder {
	return s.builder
}
