// File: internal/infra/adapters/ai/fallback.go
package ai

import (
	"context"

	"github.com/rs/zerolog"

	"aura-studio/internal/domain"
	"aura-studio/internal/domain/model"
	"aura-studio/internal/domain/ports/adapter"
	"aura-studio/internal/infra/metrics"
)

var _ adapter.Generator = (*fallbackAI)(nil)

// fallbackAI routes GenerateBackground to a primary generator and, when
// the primary exhausts its quota (or the model is unavailable), repeats
// the call on a cheaper secondary. Every other operation goes to the
// primary untouched.
//
// When both sides fail the PRIMARY error propagates: callers key their
// quota handling off the configured model's failure, not the fallback's.
type fallbackAI struct {
	primary   adapter.Generator
	secondary adapter.Generator
	log       *zerolog.Logger
}

func NewImageFallbackAI(primary, secondary adapter.Generator, log *zerolog.Logger) adapter.Generator {
	return &fallbackAI{primary: primary, secondary: secondary, log: log}
}

func (f *fallbackAI) GenerateBackground(ctx context.Context, theme model.Theme, persona string) (string, error) {
	uri, err := f.primary.GenerateBackground(ctx, theme, persona)
	if err == nil {
		return uri, nil
	}
	if !domain.QuotaExhausted(err) {
		return "", err
	}

	f.log.Warn().Err(err).Str("theme", theme.ID).Msg("primary image generation failed, trying fallback model")
	uri, ferr := f.secondary.GenerateBackground(ctx, theme, persona)
	if ferr == nil {
		metrics.IncFallback("recovered")
		return uri, nil
	}
	metrics.IncFallback("failed")
	f.log.Error().Err(ferr).Str("theme", theme.ID).Msg("fallback image generation failed")
	return "", err
}

func (f *fallbackAI) ClassifyPersona(ctx context.Context, imageDataURI string) (model.Persona, error) {
	return f.primary.ClassifyPersona(ctx, imageDataURI)
}

func (f *fallbackAI) ParseResume(ctx context.Context, imageDataURI string) (*model.ResumeRecord, error) {
	return f.primary.ParseResume(ctx, imageDataURI)
}

func (f *fallbackAI) SuggestThemes(ctx context.Context, persona, title string) ([]model.Theme, error) {
	return f.primary.SuggestThemes(ctx, persona, title)
}

func (f *fallbackAI) GenerateCustomTheme(ctx context.Context, userPrompt, persona string) (model.Theme, error) {
	return f.primary.GenerateCustomTheme(ctx, userPrompt, persona)
}

func (f *fallbackAI) RefineChat(ctx context.Context, record *model.ResumeRecord, message string, history []model.ChatTurn) (string, error) {
	return f.primary.RefineChat(ctx, record, message, history)
}
