package wire

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/zapflow/zapflow/internal/engine"
	"github.com/zapflow/zapflow/pkg/domain"
)

// Legacy shape adapters. Both upgrade paths build a draft graph and hand it to
// the normalizer, so an imported legacy document satisfies the same invariants
// as one edited from scratch.

type legacyForm struct {
	Title  string        `mapstructure:"title"`
	Fields []legacyField `mapstructure:"fields"`
}

type legacyField struct {
	Name     string   `mapstructure:"name"`
	Type     string   `mapstructure:"type"`
	Label    string   `mapstructure:"label"`
	Required bool     `mapstructure:"required"`
	Options  []string `mapstructure:"options"`
}

// upgradeLegacyForm turns the flat single-form export into a one-screen graph:
// all fields inside a single Form block, submitted through a data exchange so
// the collected values keep flowing to the same backend the old form posted
// to.
func upgradeLegacyForm(doc map[string]any) (domain.Spec, error) {
	var form legacyForm
	if err := mapstructure.Decode(doc, &form); err != nil {
		return domain.Spec{}, fmt.Errorf("failed to read legacy form document: %w", err)
	}

	title := strings.TrimSpace(form.Title)
	if title == "" {
		title = engine.DefaultScreenTitle
	}

	var children []domain.Block
	for _, f := range form.Fields {
		blk := domain.Block{
			Kind:     legacyFieldKind(f.Type),
			Name:     f.Name,
			Label:    f.Label,
			Required: f.Required,
		}
		for _, opt := range f.Options {
			blk.Options = append(blk.Options, domain.Option{ID: opt, Title: opt})
		}
		children = append(children, blk)
	}

	screen := domain.Screen{
		ID:       "SCREEN_A",
		Title:    domain.LiteralText(title),
		Terminal: true,
		Action:   domain.Action{Type: domain.ActionComplete, Label: domain.LabelFinish},
	}
	if len(children) > 0 {
		// A data-exchange exit cannot be terminal (terminal implies a
		// complete action); the backend finishes the flow after the post.
		screen.Terminal = false
		screen.Layout = []domain.Block{{Kind: domain.BlockForm, Name: "form", Children: children}}
		screen.Action = domain.Action{Type: domain.ActionDataExchange, Label: domain.LabelFinish}
	}

	s := domain.Spec{
		Screens:      []domain.Screen{screen},
		RoutingModel: map[string][]string{screen.ID: {}},
		DefaultNext:  map[string]string{screen.ID: ""},
	}
	return engine.Normalize(s), nil
}

func legacyFieldKind(t string) domain.BlockKind {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "text", "string", "":
		return domain.BlockTextInput
	case "textarea", "multiline":
		return domain.BlockTextArea
	case "select", "dropdown", "list":
		return domain.BlockDropdown
	case "radio", "choice":
		return domain.BlockRadioGroup
	case "checkbox", "multi":
		return domain.BlockCheckbox
	case "date":
		return domain.BlockDatePicker
	case "optin", "consent":
		return domain.BlockOptIn
	default:
		return domain.BlockTextInput
	}
}

type bookingConfig struct {
	Booking  *bookingSection  `mapstructure:"booking"`
	Services []bookingService `mapstructure:"services"`
	Business string           `mapstructure:"business_name"`
}

type bookingSection struct {
	Business string           `mapstructure:"business_name"`
	Services []bookingService `mapstructure:"services"`
}

type bookingService struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// upgradeBookingConfig rebuilds the scheduling bot's three-step conversation
// as an explicit graph: service choice, date and time, confirmation.
func upgradeBookingConfig(doc map[string]any) (domain.Spec, error) {
	var cfg bookingConfig
	if err := mapstructure.Decode(doc, &cfg); err != nil {
		return domain.Spec{}, fmt.Errorf("failed to read booking document: %w", err)
	}

	services := cfg.Services
	business := cfg.Business
	if cfg.Booking != nil {
		if len(services) == 0 {
			services = cfg.Booking.Services
		}
		if business == "" {
			business = cfg.Booking.Business
		}
	}

	title := "Agendamento"
	if business != "" {
		title = "Agendamento - " + business
	}

	var options []domain.Option
	for _, svc := range services {
		id := svc.ID
		if id == "" {
			id = svc.Name
		}
		options = append(options, domain.Option{ID: id, Title: svc.Name})
	}

	pick := domain.Screen{
		ID:    "SCREEN_A",
		Title: domain.LiteralText(title),
		Layout: []domain.Block{{
			Kind: domain.BlockForm,
			Name: "form",
			Children: []domain.Block{{
				Kind:     domain.BlockDropdown,
				Name:     "servico",
				Label:    "Serviço",
				Required: true,
				Options:  options,
			}},
		}},
		Action: domain.Action{Type: domain.ActionNavigate, Screen: "SCREEN_B", Label: domain.LabelContinue},
	}
	when := domain.Screen{
		ID:    "SCREEN_B",
		Title: domain.LiteralText("Data e Horário"),
		Layout: []domain.Block{{
			Kind: domain.BlockForm,
			Name: "form",
			Children: []domain.Block{
				{Kind: domain.BlockDatePicker, Name: "data", Label: "Data", Required: true},
				{Kind: domain.BlockTextInput, Name: "horario", Label: "Horário", Required: true},
			},
		}},
		Action: domain.Action{Type: domain.ActionNavigate, Screen: "SCREEN_C", Label: domain.LabelContinue},
	}
	confirm := domain.Screen{
		ID:       "SCREEN_C",
		Title:    domain.LiteralText("Confirmação"),
		Terminal: true,
		Action:   domain.Action{Type: domain.ActionComplete, Label: domain.LabelFinish},
	}

	s := domain.Spec{
		Screens: []domain.Screen{pick, when, confirm},
		RoutingModel: map[string][]string{
			"SCREEN_A": {"SCREEN_B"},
			"SCREEN_B": {"SCREEN_C"},
			"SCREEN_C": {},
		},
		DefaultNext: map[string]string{
			"SCREEN_A": "SCREEN_B",
			"SCREEN_B": "SCREEN_C",
			"SCREEN_C": "",
		},
	}
	return engine.Normalize(s), nil
}
