package ai

import (
	"context"

	"aura-studio/internal/domain/model"
	"aura-studio/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.Generator = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.Generator
	sem   chan struct{}
}

// NewLimitedAI caps concurrent in-flight backend calls. Background theme
// workers and interactive requests share the same budget.
func NewLimitedAI(inner adapter.Generator, maxConcurrent int) adapter.Generator {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *limitedAI) ClassifyPersona(ctx context.Context, imageDataURI string) (model.Persona, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return model.Persona{}, err
	}
	defer release()
	return l.inner.ClassifyPersona(ctx, imageDataURI)
}

func (l *limitedAI) ParseResume(ctx context.Context, imageDataURI string) (*model.ResumeRecord, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.inner.ParseResume(ctx, imageDataURI)
}

func (l *limitedAI) SuggestThemes(ctx context.Context, persona, title string) ([]model.Theme, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.inner.SuggestThemes(ctx, persona, title)
}

func (l *limitedAI) GenerateCustomTheme(ctx context.Context, userPrompt, persona string) (model.Theme, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return model.Theme{}, err
	}
	defer release()
	return l.inner.GenerateCustomTheme(ctx, userPrompt, persona)
}

func (l *limitedAI) GenerateBackground(ctx context.Context, theme model.Theme, persona string) (string, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()
	return l.inner.GenerateBackground(ctx, theme, persona)
}

func (l *limitedAI) RefineChat(ctx context.Context, record *model.ResumeRecord, message string, history []model.ChatTurn) (string, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()
	return l.inner.RefineChat(ctx, record, message, history)
}
