package ai

import (
	"context"
	"fmt"
	"time"

	"aura-studio/internal/domain/model"
	"aura-studio/internal/domain/ports/adapter"
)

var _ adapter.Generator = (*NoopAdapter)(nil)

// NoopAdapter implements the generator port for local/dev runs without
// credentials. Responses are canned and arrive after a short simulated
// delay.
type NoopAdapter struct {
	Delay time.Duration
}

func NewNoopAdapter() *NoopAdapter {
	return &NoopAdapter{Delay: 100 * time.Millisecond}
}

func (a *NoopAdapter) wait(ctx context.Context) error {
	if a.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(a.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *NoopAdapter) ClassifyPersona(ctx context.Context, imageDataURI string) (model.Persona, error) {
	if err := a.wait(ctx); err != nil {
		return model.Persona{}, err
	}
	return model.Persona{
		Persona: "The Builder",
		Title:   "Software Engineer",
		Roast:   "A resume so tidy it has clearly never shipped on a Friday.",
	}, nil
}

func (a *NoopAdapter) ParseResume(ctx context.Context, imageDataURI string) (*model.ResumeRecord, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	return &model.ResumeRecord{
		Name:    "Alex Doe",
		Title:   "Software Engineer",
		Contact: model.Contact{Email: "alex@example.com"},
		Summary: "Engineer with a bias for shipping.",
		Experience: []model.Experience{{
			ID:          "exp-1",
			Company:     "Example Corp",
			Position:    "Engineer",
			Period:      "2021 - Present",
			Description: []string{"Built things.", "Fixed things."},
		}},
		Skills: []string{"Go", "SQL"},
	}, nil
}

func (a *NoopAdapter) SuggestThemes(ctx context.Context, persona, title string) ([]model.Theme, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	variants := []model.ThemeVariant{model.VariantSafe, model.VariantBold, model.VariantCreative}
	out := make([]model.Theme, 0, len(variants))
	for i, v := range variants {
		out = append(out, model.Theme{
			ID:             fmt.Sprintf("dynamic-theme-%d", i),
			Name:           fmt.Sprintf("Noop %s", v),
			Description:    "Canned theme for local development.",
			AccentColor:    "#10b981",
			SecondaryColor: "#09090b",
			FontFamily:     "Inter",
			HeadingFont:    "Inter",
			Style:          "Minimalist Utility",
			Variant:        v,
		})
	}
	return out, nil
}

func (a *NoopAdapter) GenerateCustomTheme(ctx context.Context, userPrompt, persona string) (model.Theme, error) {
	if err := a.wait(ctx); err != nil {
		return model.Theme{}, err
	}
	return model.Theme{
		ID:             model.CustomThemeID,
		Name:           "Custom",
		Description:    userPrompt,
		AccentColor:    "#10b981",
		SecondaryColor: "#09090b",
		FontFamily:     "Inter",
		HeadingFont:    "Inter",
		Style:          "Minimalist Utility",
		Variant:        model.VariantCustom,
	}, nil
}

func (a *NoopAdapter) GenerateBackground(ctx context.Context, theme model.Theme, persona string) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	// 1x1 transparent PNG
	return "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==", nil
}

func (a *NoopAdapter) RefineChat(ctx context.Context, record *model.ResumeRecord, message string, history []model.ChatTurn) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	return "Your summary is fine. Your metrics are missing. Add numbers.", nil
}
