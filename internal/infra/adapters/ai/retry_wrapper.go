package ai

import (
	"context"

	"aura-studio/internal/domain"
	"aura-studio/internal/domain/model"
	"aura-studio/internal/domain/ports/adapter"
	"aura-studio/internal/infra/metrics"
	"aura-studio/internal/retry"
)

// Compile-time check
var _ adapter.Generator = (*retriedAI)(nil)

type retriedAI struct {
	inner  adapter.Generator
	policy retry.Policy
}

// NewRetriedAI wraps every generator operation in the throttle-only
// backoff policy. Decode failures and unknown errors pass through after
// a single attempt.
func NewRetriedAI(inner adapter.Generator, policy retry.Policy) adapter.Generator {
	if policy.Retryable == nil {
		policy.Retryable = domain.Retryable
	}
	return &retriedAI{inner: inner, policy: policy}
}

func (r *retriedAI) do(ctx context.Context, op string, fn func(ctx context.Context) (any, error)) (any, error) {
	attempt := 0
	return retry.Do(ctx, r.policy, func(ctx context.Context) (any, error) {
		if attempt > 0 {
			metrics.IncRetry(op, domain.ClassThrottled.String())
		}
		attempt++
		return fn(ctx)
	})
}

func (r *retriedAI) ClassifyPersona(ctx context.Context, imageDataURI string) (model.Persona, error) {
	v, err := r.do(ctx, "classify_persona", func(ctx context.Context) (any, error) {
		return r.inner.ClassifyPersona(ctx, imageDataURI)
	})
	if err != nil {
		return model.Persona{}, err
	}
	return v.(model.Persona), nil
}

func (r *retriedAI) ParseResume(ctx context.Context, imageDataURI string) (*model.ResumeRecord, error) {
	v, err := r.do(ctx, "parse_resume", func(ctx context.Context) (any, error) {
		return r.inner.ParseResume(ctx, imageDataURI)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.ResumeRecord), nil
}

func (r *retriedAI) SuggestThemes(ctx context.Context, persona, title string) ([]model.Theme, error) {
	v, err := r.do(ctx, "suggest_themes", func(ctx context.Context) (any, error) {
		return r.inner.SuggestThemes(ctx, persona, title)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Theme), nil
}

func (r *retriedAI) GenerateCustomTheme(ctx context.Context, userPrompt, persona string) (model.Theme, error) {
	v, err := r.do(ctx, "custom_theme", func(ctx context.Context) (any, error) {
		return r.inner.GenerateCustomTheme(ctx, userPrompt, persona)
	})
	if err != nil {
		return model.Theme{}, err
	}
	return v.(model.Theme), nil
}

func (r *retriedAI) GenerateBackground(ctx context.Context, theme model.Theme, persona string) (string, error) {
	v, err := r.do(ctx, "generate_background", func(ctx context.Context) (any, error) {
		return r.inner.GenerateBackground(ctx, theme, persona)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *retriedAI) RefineChat(ctx context.Context, record *model.ResumeRecord, message string, history []model.ChatTurn) (string, error) {
	v, err := r.do(ctx, "refine_chat", func(ctx context.Context) (any, error) {
		return r.inner.RefineChat(ctx, record, message, history)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
