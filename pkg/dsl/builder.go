package dsl

import (
	"github.com/zapflow/zapflow/internal/engine"
	"github.com/zapflow/zapflow/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	order   []string
	screens map[string]*ScreenBuilder
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		screens: make(map[string]*ScreenBuilder),
	}
}

// Screen creates a new screen in the graph. The first screen added becomes
// the entry screen. If the screen already exists, it returns the existing
// builder so a flow can be assembled out of order. Screens start out as
// terminal dead ends; Go reopens them.
func (b *Builder) Screen(id string) *ScreenBuilder {
	if sb, ok := b.screens[id]; ok {
		return sb
	}
	sb := &ScreenBuilder{
		screen: domain.Screen{
			ID:       id,
			Title:    domain.LiteralText(engine.DefaultScreenTitle),
			Terminal: true,
		},
		builder: b,
	}
	b.order = append(b.order, id)
	b.screens[id] = sb
	return sb
}

// Build compiles the graph into a normalized Spec. The normalizer fills in
// everything the builder left implicit: submit actions, terminal screens at
// the end of chains, destinations for auto branch rules.
func (b *Builder) Build() domain.Spec {
	s := domain.Spec{
		Screens:      make([]domain.Screen, 0, len(b.order)),
		RoutingModel: make(map[string][]string, len(b.order)),
		DefaultNext:  make(map[string]string, len(b.order)),
	}
	for _, id := range b.order {
		sb := b.screens[id]
		s.Screens = append(s.Screens, sb.screen.Clone())
		s.DefaultNext[id] = sb.next
		if sb.next != "" {
			s.RoutingModel[id] = []string{sb.next}
		} else {
			s.RoutingModel[id] = []string{}
		}
		if len(sb.rules) > 0 {
			if s.Branches == nil {
				s.Branches = make(map[string][]domain.BranchRule)
			}
			s.Branches[id] = domain.CloneRules(sb.rules)
		}
	}
	if len(s.Screens) == 0 {
		return domain.NewSpec()
	}
	return engine.Normalize(s)
}
