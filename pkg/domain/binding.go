package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var bindingPattern = regexp.MustCompile(`^\$\{data\.([A-Za-z0-9_.-]+)\}$`)

// ExampleKey is the key inside a screen data entry that holds the preview value
// used to resolve a bound title or text for display.
const ExampleKey = "__example__"

// DataBinding is either a literal string or a reference to a key in the
// screen's data dictionary. A bound value carries the resolved preview example
// so consumers never have to pattern-match "${data.x}" themselves.
type DataBinding struct {
	Literal string `json:"literal,omitempty"`
	Key     string `json:"key,omitempty"`
	Example string `json:"example,omitempty"`
}

// LiteralText creates a literal (unbound) binding.
func LiteralText(s string) DataBinding {
	return DataBinding{Literal: s}
}

// Bound creates a binding against a data dictionary key.
func Bound(key, example string) DataBinding {
	return DataBinding{Key: key, Example: example}
}

// IsBound reports whether the value references the data dictionary.
func (b DataBinding) IsBound() bool {
	return b.Key != ""
}

// IsEmpty reports whether the binding carries no displayable value at all.
func (b DataBinding) IsEmpty() bool {
	return b.Key == "" && strings.TrimSpace(b.Literal) == ""
}

// Display returns the preview text: the literal, or the resolved example for a
// bound value. Falls back to the raw reference when no example is known.
func (b DataBinding) Display() string {
	if !b.IsBound() {
		return b.Literal
	}
	if b.Example != "" {
		return b.Example
	}
	return b.Wire()
}

// Wire returns the serialized form: the literal, or "${data.key}".
func (b DataBinding) Wire() string {
	if !b.IsBound() {
		return b.Literal
	}
	return "${data." + b.Key + "}"
}

// ParseBinding interprets a raw wire string as a binding. "${data.key}" becomes
// a bound value; anything else is a literal.
func ParseBinding(raw string) DataBinding {
	if m := bindingPattern.FindStringSubmatch(raw); m != nil {
		return DataBinding{Key: m[1]}
	}
	return DataBinding{Literal: raw}
}

// ResolveExample looks up the preview example for a bound value in the given
// data dictionary. Entries may be plain values or objects carrying __example__.
func ResolveExample(key string, data map[string]any) string {
	raw, ok := data[key]
	if !ok {
		return ""
	}
	if obj, ok := raw.(map[string]any); ok {
		if ex, ok := obj[ExampleKey]; ok {
			return stringify(ex)
		}
		return ""
	}
	return stringify(raw)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
