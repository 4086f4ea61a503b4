// File: internal/usecase/studio_uc_test.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"aura-studio/internal/domain"
	"aura-studio/internal/domain/model"
	"aura-studio/internal/infra/worker"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newStudio(t *testing.T, gen *fakeGen) (*studioUC, *memSessionRepo) {
	t.Helper()
	repo := newMemSessionRepo()
	pool := worker.NewPool(2, nopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Stop()
	})
	return NewStudioUseCase(repo, gen, pool, nopLogger()), repo
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func settled(repo *memSessionRepo, id string) func() bool {
	return func() bool {
		s, err := repo.Find(context.Background(), id)
		if err != nil {
			return false
		}
		return s.Phase != model.PhaseAnalyzing && !s.GeneratingThemes
	}
}

func TestProcessUploadHappyPath(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	uc, repo := newStudio(t, gen)

	s, err := uc.CreateSession(ctx)
	if err != nil {
		t.Fatal(err)
	}

	snap, err := uc.ProcessUpload(ctx, s.ID, sampleUpload("cv.png"))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Phase != model.PhaseAnalyzing {
		t.Fatalf("phase = %s", snap.Phase)
	}

	waitFor(t, settled(repo, s.ID))
	waitFor(t, func() bool {
		got, _ := repo.Find(ctx, s.ID)
		n := 0
		for _, th := range got.Themes {
			if th.Background != "" {
				n++
			}
		}
		return n == 3
	})

	got, _ := repo.Find(ctx, s.ID)
	if got.Phase != model.PhaseEditing {
		t.Fatalf("phase = %s, notice = %q", got.Phase, got.Notice)
	}
	if got.Persona != "The Builder" || got.Roast != "Tidy." {
		t.Fatalf("persona not merged: %+v", got)
	}
	if got.Resume == nil || got.Resume.Appearance == nil {
		t.Fatal("record or appearance missing")
	}
	if got.Resume.Appearance.ActiveThemeID != model.ThemeZeroID || got.Resume.Appearance.ThemeMode != "glass" {
		t.Fatalf("default appearance wrong: %+v", got.Resume.Appearance)
	}
	// baseline + three suggestions
	if len(got.Themes) != 4 || got.Themes[0].ID != model.ThemeZeroID {
		t.Fatalf("themes = %+v", got.Themes)
	}
	if got.Themes[0].Background != "" {
		t.Fatal("baseline theme must not get a generated background")
	}
	if !got.DiagnosticReady {
		t.Fatal("diagnostic not armed")
	}
}

func TestProcessUploadClassifyThrottled(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	gen.classifyErr = errors.New("googleapi: 429 RESOURCE_EXHAUSTED")
	uc, repo := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	if _, err := uc.ProcessUpload(ctx, s.ID, sampleUpload("cv.png")); err != nil {
		t.Fatal(err)
	}

	waitFor(t, settled(repo, s.ID))
	got, _ := repo.Find(ctx, s.ID)
	if got.Phase != model.PhaseNeedsKey {
		t.Fatalf("phase = %s", got.Phase)
	}
	if !strings.Contains(got.Notice, "Rate Limit") {
		t.Fatalf("notice = %q", got.Notice)
	}
	if _, parse, suggest, _ := gen.calls(); parse != 0 || suggest != 0 {
		t.Fatalf("downstream calls ran: parse=%d suggest=%d", parse, suggest)
	}
}

func TestProcessUploadParseFailureKeepsNoPartialRecord(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	gen.parseErr = errors.New("some backend hiccup")
	uc, repo := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	if _, err := uc.ProcessUpload(ctx, s.ID, sampleUpload("cv.png")); err != nil {
		t.Fatal(err)
	}

	waitFor(t, settled(repo, s.ID))
	got, _ := repo.Find(ctx, s.ID)
	if got.Phase != model.PhaseLanding {
		t.Fatalf("phase = %s", got.Phase)
	}
	if got.Notice != "some backend hiccup" {
		t.Fatalf("notice = %q", got.Notice)
	}
	if got.Resume != nil {
		t.Fatal("partial record leaked")
	}
}

func TestProcessUploadCacheHit(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	uc, repo := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	if _, err := uc.ProcessUpload(ctx, s.ID, sampleUpload("cv.png")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, settled(repo, s.ID))
	classify0, parse0, suggest0, _ := gen.calls()

	snap, err := uc.ProcessUpload(ctx, s.ID, sampleUpload("cv.png"))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Phase != model.PhaseEditing {
		t.Fatalf("phase = %s", snap.Phase)
	}

	classify1, parse1, suggest1, _ := gen.calls()
	if classify1 != classify0 || parse1 != parse0 || suggest1 != suggest0 {
		t.Fatalf("cache hit issued gateway calls: %d/%d %d/%d %d/%d",
			classify0, classify1, parse0, parse1, suggest0, suggest1)
	}
}

func TestProcessUploadChangedFileReruns(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	uc, repo := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	_, _ = uc.ProcessUpload(ctx, s.ID, sampleUpload("cv.png"))
	waitFor(t, settled(repo, s.ID))
	classify0, _, _, _ := gen.calls()

	_, _ = uc.ProcessUpload(ctx, s.ID, sampleUpload("cv-v2.png"))
	waitFor(t, settled(repo, s.ID))
	classify1, _, _, _ := gen.calls()
	if classify1 != classify0+1 {
		t.Fatalf("classify calls %d -> %d", classify0, classify1)
	}
}

func TestBackgroundQuotaFailureFlipsToNeedsKey(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	gen.bgErr = errors.New("Requested entity was not found.")
	uc, repo := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	_, _ = uc.ProcessUpload(ctx, s.ID, sampleUpload("cv.png"))

	waitFor(t, func() bool {
		got, err := repo.Find(ctx, s.ID)
		return err == nil && got.Phase == model.PhaseNeedsKey
	})
	got, _ := repo.Find(ctx, s.ID)
	if got.Notice != noticeQuota {
		t.Fatalf("notice = %q", got.Notice)
	}
}

func TestMergeRunDropsStaleEpoch(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	uc, repo := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	_, _ = repo.Update(ctx, s.ID, func(ms *model.StudioSession) error {
		ms.Epoch = 7
		return nil
	})

	_, err := uc.mergeRun(ctx, s.ID, 6, func(ms *model.StudioSession) {
		ms.Notice = "stale write"
	})
	if err == nil {
		t.Fatal("stale merge not rejected")
	}
	got, _ := repo.Find(ctx, s.ID)
	if got.Notice != "" {
		t.Fatalf("stale write applied: %q", got.Notice)
	}

	if _, err := uc.mergeRun(ctx, s.ID, 7, func(ms *model.StudioSession) {
		ms.Notice = "current write"
	}); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.Find(ctx, s.ID)
	if got.Notice != "current write" {
		t.Fatalf("current write dropped: %q", got.Notice)
	}
}

func TestFailRunIgnoresSupersededRun(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	uc, repo := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	_, _ = repo.Update(ctx, s.ID, func(ms *model.StudioSession) error {
		ms.Epoch = 3
		ms.Phase = model.PhaseEditing
		return nil
	})

	uc.failRun(ctx, s.ID, 2, errors.New("429"), noticeRateLimit)
	got, _ := repo.Find(ctx, s.ID)
	if got.Phase != model.PhaseEditing {
		t.Fatalf("superseded failure changed phase to %s", got.Phase)
	}
}

func TestGenerateCustomTheme(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	uc, repo := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	_, _ = uc.ProcessUpload(ctx, s.ID, sampleUpload("cv.png"))
	waitFor(t, settled(repo, s.ID))

	snap, err := uc.GenerateCustomTheme(ctx, s.ID, "make it neon")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, th := range snap.Themes {
		if th.ID == model.CustomThemeID {
			found = true
		}
	}
	if !found {
		t.Fatalf("custom theme missing: %+v", snap.Themes)
	}

	// regeneration replaces, not duplicates
	snap, err = uc.GenerateCustomTheme(ctx, s.ID, "make it darker")
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, th := range snap.Themes {
		if th.ID == model.CustomThemeID {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("custom theme duplicated %d times", n)
	}
}

func TestGenerateCustomThemeRequiresRecord(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	uc, _ := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	if _, err := uc.GenerateCustomTheme(ctx, s.ID, "x"); !errors.Is(err, domain.ErrNoRecord) {
		t.Fatalf("err = %v", err)
	}
}

func TestPublishAndKeySelected(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	uc, repo := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	if _, err := uc.Publish(ctx, s.ID); !errors.Is(err, domain.ErrNoRecord) {
		t.Fatalf("publish without record: %v", err)
	}

	_, _ = uc.ProcessUpload(ctx, s.ID, sampleUpload("cv.png"))
	waitFor(t, settled(repo, s.ID))

	snap, err := uc.Publish(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Phase != model.PhasePublished || !strings.HasPrefix(snap.SiteURL, "https://aura.pages.dev/u/guest-") {
		t.Fatalf("publish snapshot: %+v", snap)
	}

	// key-selected only acts in needs_key
	snap, err = uc.KeySelected(ctx, s.ID)
	if err != nil || snap.Phase != model.PhasePublished {
		t.Fatalf("key-selected outside needs_key: %s %v", snap.Phase, err)
	}

	_, _ = repo.Update(ctx, s.ID, func(ms *model.StudioSession) error {
		ms.Phase = model.PhaseNeedsKey
		ms.Notice = noticeRateLimit
		return nil
	})
	snap, err = uc.KeySelected(ctx, s.ID)
	if err != nil || snap.Phase != model.PhaseLanding || snap.Notice != "" {
		t.Fatalf("key-selected reset: %s %q %v", snap.Phase, snap.Notice, err)
	}
	if snap.LastProcessedKey != "" {
		t.Fatal("upload cache not invalidated")
	}
}

func TestUpdateRecordKeepsAppearance(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	uc, repo := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	_, _ = uc.ProcessUpload(ctx, s.ID, sampleUpload("cv.png"))
	waitFor(t, settled(repo, s.ID))

	edit := &model.ResumeRecord{
		Name:    "Alexandra Doe",
		Title:   "Staff Engineer",
		Contact: model.Contact{Email: "alex@example.com"},
		Summary: "Ships more.",
	}
	snap, err := uc.UpdateRecord(ctx, s.ID, edit)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Resume.Name != "Alexandra Doe" {
		t.Fatalf("record not replaced: %+v", snap.Resume)
	}
	if snap.Resume.Appearance == nil || snap.Resume.Appearance.ActiveThemeID != model.ThemeZeroID {
		t.Fatalf("appearance dropped: %+v", snap.Resume.Appearance)
	}
}

func TestDismissNotice(t *testing.T) {
	ctx := context.Background()
	gen := newFakeGen()
	uc, repo := newStudio(t, gen)

	s, _ := uc.CreateSession(ctx)
	_, _ = repo.Update(ctx, s.ID, func(ms *model.StudioSession) error {
		ms.Notice = "something"
		return nil
	})
	snap, err := uc.DismissNotice(ctx, s.ID)
	if err != nil || snap.Notice != "" {
		t.Fatalf("notice = %q, err = %v", snap.Notice, err)
	}
}
