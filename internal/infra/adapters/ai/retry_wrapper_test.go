package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"aura-studio/internal/domain/model"
	ai "aura-studio/internal/infra/adapters/ai"
	"aura-studio/internal/retry"
)

type flakyGen struct {
	stubGen

	failN int
	calls int
}

func (f *flakyGen) SuggestThemes(ctx context.Context, persona, title string) ([]model.Theme, error) {
	f.calls++
	if f.calls <= f.failN {
		return nil, errors.New("429 too many requests")
	}
	return []model.Theme{{ID: "dynamic-theme-0"}}, nil
}

func instantPolicy() retry.Policy {
	return retry.New(3, time.Millisecond, nil).
		WithSleep(func(ctx context.Context, d time.Duration) error { return nil })
}

func TestRetriedAIRecoversFromThrottle(t *testing.T) {
	t.Parallel()
	inner := &flakyGen{failN: 2}
	g := ai.NewRetriedAI(inner, instantPolicy())

	themes, err := g.SuggestThemes(context.Background(), "p", "t")
	if err != nil || len(themes) != 1 {
		t.Fatalf("got %v, %v", themes, err)
	}
	if inner.calls != 3 {
		t.Fatalf("calls = %d", inner.calls)
	}
}

func TestRetriedAIExhaustsBudget(t *testing.T) {
	t.Parallel()
	inner := &flakyGen{failN: 10}
	g := ai.NewRetriedAI(inner, instantPolicy())

	if _, err := g.SuggestThemes(context.Background(), "p", "t"); err == nil {
		t.Fatal("expected error")
	}
	// initial attempt + 3 retries
	if inner.calls != 4 {
		t.Fatalf("calls = %d", inner.calls)
	}
}

func TestRetriedAISingleAttemptForDecode(t *testing.T) {
	t.Parallel()
	inner := &decodeGen{}
	g := ai.NewRetriedAI(inner, instantPolicy())

	if _, err := g.SuggestThemes(context.Background(), "p", "t"); err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Fatalf("calls = %d", inner.calls)
	}
}

type decodeGen struct {
	stubGen

	calls int
}

func (d *decodeGen) SuggestThemes(ctx context.Context, persona, title string) ([]model.Theme, error) {
	d.calls++
	return nil, errors.New("unexpected end of JSON input")
}
