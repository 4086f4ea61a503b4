// File: internal/usecase/studio_uc.go
package usecase

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"aura-studio/internal/domain"
	"aura-studio/internal/domain/model"
	"aura-studio/internal/domain/ports/adapter"
	"aura-studio/internal/domain/ports/repository"
	"aura-studio/internal/infra/logging"
	"aura-studio/internal/infra/metrics"
	"aura-studio/internal/infra/worker"
)

// User-facing notices, matching the UI copy.
const (
	noticeRateLimit = "API Rate Limit hit. Please try again in a few moments or select a paid key."
	noticeQuota     = "High-quality model access restricted. Project quota likely reached."
)

const publishHost = "https://aura.pages.dev/u/guest-"

// Compile-time check
var _ StudioUseCase = (*studioUC)(nil)

type StudioUseCase interface {
	CreateSession(ctx context.Context) (*model.StudioSession, error)
	GetSession(ctx context.Context, id string) (*model.StudioSession, error)
	DeleteSession(ctx context.Context, id string) error

	// ProcessUpload starts (or short-circuits) the analysis workflow and
	// returns immediately; progress lands in the session for polling.
	ProcessUpload(ctx context.Context, id string, upload model.Upload) (*model.StudioSession, error)

	UpdateRecord(ctx context.Context, id string, record *model.ResumeRecord) (*model.StudioSession, error)
	GenerateCustomTheme(ctx context.Context, id, prompt string) (*model.StudioSession, error)
	Publish(ctx context.Context, id string) (*model.StudioSession, error)
	DismissNotice(ctx context.Context, id string) (*model.StudioSession, error)
	KeySelected(ctx context.Context, id string) (*model.StudioSession, error)
}

type studioUC struct {
	sessions repository.SessionRepository
	ai       adapter.Generator
	pool     *worker.Pool
	log      *zerolog.Logger
}

func NewStudioUseCase(sessions repository.SessionRepository, ai adapter.Generator, pool *worker.Pool, log *zerolog.Logger) *studioUC {
	return &studioUC{sessions: sessions, ai: ai, pool: pool, log: log}
}

func (u *studioUC) CreateSession(ctx context.Context) (*model.StudioSession, error) {
	s := model.NewStudioSession(uuid.NewString())
	if err := u.sessions.Create(ctx, s); err != nil {
		return nil, err
	}
	metrics.IncSession()
	u.log.Info().Str("session_id", s.ID).Msg("session created")
	return s, nil
}

func (u *studioUC) GetSession(ctx context.Context, id string) (*model.StudioSession, error) {
	return u.sessions.Find(ctx, id)
}

func (u *studioUC) DeleteSession(ctx context.Context, id string) error {
	return u.sessions.Delete(ctx, id)
}

func (u *studioUC) ProcessUpload(ctx context.Context, id string, upload model.Upload) (*model.StudioSession, error) {
	if upload.DataURI == "" {
		return nil, domain.ErrInvalidArgument
	}
	key := upload.CacheKey()

	var (
		epoch uint64
		runID string
		hit   bool
	)
	snap, err := u.sessions.Update(ctx, id, func(s *model.StudioSession) error {
		if key == s.LastProcessedKey && s.Resume != nil {
			// Unchanged file: jump straight back to editing.
			s.Phase = model.PhaseEditing
			s.Notice = ""
			hit = true
			return nil
		}
		s.Epoch++
		s.RunID = ulid.Make().String()
		s.Phase = model.PhaseAnalyzing
		s.Notice = ""
		s.GeneratingThemes = false
		epoch, runID = s.Epoch, s.RunID
		return nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		metrics.IncUploadCache("hit")
		metrics.IncPhaseTransition(string(model.PhaseEditing))
		return snap, nil
	}
	metrics.IncUploadCache("miss")
	metrics.IncPhaseTransition(string(model.PhaseAnalyzing))

	// The workflow outlives the HTTP request that started it.
	bg := logging.WithRunID(logging.WithSessID(context.WithoutCancel(ctx), id), runID)
	go u.runWorkflow(bg, id, epoch, runID, upload)

	return snap, nil
}

// runWorkflow is one analysis run: classify, then parse and
// suggest-themes concurrently, then per-theme background fetches on the
// worker pool. Every state merge is epoch-guarded so a newer run (or a
// failed one) silently invalidates everything still in flight.
func (u *studioUC) runWorkflow(ctx context.Context, id string, epoch uint64, runID string, upload model.Upload) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "StudioUC.runWorkflow")()

	persona, err := u.ai.ClassifyPersona(ctx, upload.DataURI)
	if err != nil {
		log.Warn().Err(err).Msg("classify failed")
		u.failRun(ctx, id, epoch, err, noticeRateLimit)
		return
	}

	if _, err := u.mergeRun(ctx, id, epoch, func(s *model.StudioSession) {
		s.Persona = persona.Persona
		s.Title = persona.Title
		s.Roast = persona.Roast
		s.GeneratingThemes = true
	}); err != nil {
		return
	}

	// Theme suggestions land on their own schedule; parse must not wait
	// for them, and neither may cancel the other.
	type themesResult struct {
		themes []model.Theme
		err    error
	}
	themesCh := make(chan themesResult, 1)
	go func() {
		themes, terr := u.ai.SuggestThemes(ctx, persona.Persona, persona.Title)
		themesCh <- themesResult{themes: themes, err: terr}
	}()

	record, err := u.ai.ParseResume(ctx, upload.DataURI)
	if err != nil {
		log.Warn().Err(err).Msg("parse failed")
		u.failRun(ctx, id, epoch, err, noticeRateLimit)
		return
	}
	record.Appearance = model.DefaultAppearance()

	if _, err := u.mergeRun(ctx, id, epoch, func(s *model.StudioSession) {
		s.Resume = record
		s.LastProcessedKey = upload.CacheKey()
		s.Phase = model.PhaseEditing
		if !s.DiagnosticDone {
			s.DiagnosticReady = true
		}
	}); err != nil {
		return
	}
	metrics.IncPhaseTransition(string(model.PhaseEditing))
	log.Info().Msg("record ready, session editing")

	res := <-themesCh
	if res.err != nil {
		log.Warn().Err(res.err).Msg("theme suggestion failed")
		if domain.QuotaExhausted(res.err) {
			u.failRun(ctx, id, epoch, res.err, noticeRateLimit)
		} else {
			_, _ = u.mergeRun(ctx, id, epoch, func(s *model.StudioSession) {
				s.GeneratingThemes = false
				s.Notice = res.err.Error()
			})
		}
		return
	}

	for _, theme := range res.themes {
		theme := theme
		if _, err := u.mergeRun(ctx, id, epoch, func(s *model.StudioSession) {
			s.AppendTheme(theme)
		}); err != nil {
			return
		}
		u.submitBackgroundFetch(ctx, id, epoch, theme, persona.Persona)
	}

	_, _ = u.mergeRun(ctx, id, epoch, func(s *model.StudioSession) {
		s.GeneratingThemes = false
	})
}

// submitBackgroundFetch queues one theme's background generation. The
// result merges by theme id; a stale epoch drops it.
func (u *studioUC) submitBackgroundFetch(ctx context.Context, id string, epoch uint64, theme model.Theme, persona string) {
	task := func(ctx context.Context) error {
		log := logging.With(ctx, u.log)
		uri, err := u.ai.GenerateBackground(ctx, theme, persona)
		if err != nil {
			metrics.IncThemeJob("failed")
			log.Warn().Err(err).Str("theme", theme.ID).Msg("background generation failed")
			if domain.QuotaExhausted(err) {
				u.failRun(ctx, id, epoch, err, noticeQuota)
			}
			return nil
		}
		if uri == "" {
			metrics.IncThemeJob("completed")
			return nil
		}
		if _, merr := u.mergeRun(ctx, id, epoch, func(s *model.StudioSession) {
			s.MergeThemeBackground(theme.ID, uri)
		}); merr != nil {
			metrics.IncThemeJob("dropped")
			return nil
		}
		metrics.IncThemeJob("completed")
		return nil
	}
	if err := u.pool.Submit(func(context.Context) error { return task(ctx) }); err != nil {
		// Pool saturated: run inline on the workflow goroutine.
		_ = task(ctx)
	}
}

// mergeRun applies fn only while the session is still on this run's
// epoch. ErrStaleRun is private to the workflow path.
func (u *studioUC) mergeRun(ctx context.Context, id string, epoch uint64, fn func(*model.StudioSession)) (*model.StudioSession, error) {
	snap, err := u.sessions.Update(ctx, id, func(s *model.StudioSession) error {
		if s.Epoch != epoch {
			return errStaleRun
		}
		fn(s)
		return nil
	})
	if errors.Is(err, errStaleRun) {
		metrics.IncStaleMerge()
	}
	return snap, err
}

// failRun records a workflow failure and bumps the epoch so everything
// else still in flight for this run is dropped. quotaNotice is the
// message shown when the failure is quota exhaustion; text and image
// operations carry different copy.
func (u *studioUC) failRun(ctx context.Context, id string, epoch uint64, cause error, quotaNotice string) {
	quota := domain.QuotaExhausted(cause)
	_, err := u.sessions.Update(ctx, id, func(s *model.StudioSession) error {
		if s.Epoch != epoch {
			return errStaleRun
		}
		s.Epoch++
		s.GeneratingThemes = false
		if quota {
			s.Phase = model.PhaseNeedsKey
			s.Notice = quotaNotice
		} else {
			s.Phase = model.PhaseLanding
			s.Notice = cause.Error()
		}
		return nil
	})
	if err != nil {
		return
	}
	if quota {
		metrics.IncPhaseTransition(string(model.PhaseNeedsKey))
	} else {
		metrics.IncPhaseTransition(string(model.PhaseLanding))
	}
}

func (u *studioUC) UpdateRecord(ctx context.Context, id string, record *model.ResumeRecord) (*model.StudioSession, error) {
	if record == nil {
		return nil, domain.ErrInvalidArgument
	}
	return u.sessions.Update(ctx, id, func(s *model.StudioSession) error {
		if s.Resume == nil {
			return domain.ErrNoRecord
		}
		next := record.Clone()
		if next.Appearance == nil {
			next.Appearance = s.Resume.Appearance
		}
		s.Resume = next
		return nil
	})
}

func (u *studioUC) GenerateCustomTheme(ctx context.Context, id, prompt string) (*model.StudioSession, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.ErrInvalidArgument
	}
	cur, err := u.sessions.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Resume == nil {
		return nil, domain.ErrNoRecord
	}

	theme, err := u.ai.GenerateCustomTheme(ctx, prompt, cur.Persona)
	if err != nil {
		if domain.QuotaExhausted(err) {
			u.failRun(ctx, id, cur.Epoch, err, noticeRateLimit)
		}
		return nil, err
	}

	var epoch uint64
	snap, err := u.sessions.Update(ctx, id, func(s *model.StudioSession) error {
		s.AppendTheme(theme)
		epoch = s.Epoch
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.submitBackgroundFetch(logging.WithSessID(context.WithoutCancel(ctx), id), id, epoch, theme, cur.Persona)
	return snap, nil
}

func (u *studioUC) Publish(ctx context.Context, id string) (*model.StudioSession, error) {
	snap, err := u.sessions.Update(ctx, id, func(s *model.StudioSession) error {
		if s.Resume == nil {
			return domain.ErrNoRecord
		}
		s.Phase = model.PhasePublished
		if s.SiteURL == "" {
			s.SiteURL = publishHost + siteSuffix()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncPhaseTransition(string(model.PhasePublished))
	return snap, nil
}

func (u *studioUC) DismissNotice(ctx context.Context, id string) (*model.StudioSession, error) {
	return u.sessions.Update(ctx, id, func(s *model.StudioSession) error {
		s.Notice = ""
		return nil
	})
}

// KeySelected acknowledges a key reconfiguration after quota exhaustion
// and resets the workflow to the landing phase.
func (u *studioUC) KeySelected(ctx context.Context, id string) (*model.StudioSession, error) {
	snap, err := u.sessions.Update(ctx, id, func(s *model.StudioSession) error {
		if s.Phase != model.PhaseNeedsKey {
			return nil
		}
		s.Phase = model.PhaseLanding
		s.Notice = ""
		// Force a fresh run on the next upload of the same file.
		s.LastProcessedKey = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncPhaseTransition(string(model.PhaseLanding))
	return snap, nil
}

// errStaleRun aborts an Update whose run was superseded. Internal to the
// workflow path; never surfaces to callers.
var errStaleRun = errors.New("stale workflow run")

func siteSuffix() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
