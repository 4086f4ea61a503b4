// File: internal/usecase/refine_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"aura-studio/internal/domain"
	"aura-studio/internal/domain/model"
	"aura-studio/internal/domain/ports/adapter"
	"aura-studio/internal/domain/ports/repository"
	"aura-studio/internal/infra/metrics"
)

const (
	// historyWindow caps the turns sent back to the model per request.
	historyWindow = 10

	diagnosticPrompt = "Run a full diagnostic on my resume. Be critical. Highlight one specific weakness and propose a fix."

	appliedReply = "✓ **Change Applied.** I've updated your resume live. What's next?"

	timeoutReply = "**Error:** System timeout. Try again."
)

// Fenced JSON block detection: an explicit ```json fence wins, a bare
// ``` fence is the fallback.
var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\n(.*?)\n```")
	bareFenceRe = regexp.MustCompile("(?s)```\n(.*?)\n```")
	anyFenceRe  = regexp.MustCompile("(?s)```.*?```")
)

// Compile-time check
var _ RefineUseCase = (*refineUC)(nil)

type RefineUseCase interface {
	// Send runs one refinement turn. A backend failure becomes an error
	// turn in the conversation rather than a failed request; only the
	// missing-record and missing-session cases error out.
	Send(ctx context.Context, sessionID, message string) (*model.StudioSession, error)

	// RunDiagnostic fires the one-shot initial critique if it is armed.
	RunDiagnostic(ctx context.Context, sessionID string) (*model.StudioSession, error)

	// Apply replaces the record with the proposal carried by the turn at
	// turnIndex and appends the confirmation reply.
	Apply(ctx context.Context, sessionID string, turnIndex int) (*model.StudioSession, error)
}

type refineUC struct {
	sessions repository.SessionRepository
	ai       adapter.Generator
	log      *zerolog.Logger
}

func NewRefineUseCase(sessions repository.SessionRepository, ai adapter.Generator, log *zerolog.Logger) *refineUC {
	return &refineUC{sessions: sessions, ai: ai, log: log}
}

func (u *refineUC) Send(ctx context.Context, sessionID, message string) (*model.StudioSession, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ErrInvalidArgument
	}

	var (
		record  *model.ResumeRecord
		history []model.ChatTurn
	)
	_, err := u.sessions.Update(ctx, sessionID, func(s *model.StudioSession) error {
		if s.Resume == nil {
			return domain.ErrNoRecord
		}
		history = s.RecentTurns(historyWindow)
		s.AddTurn(model.ChatTurn{Speaker: model.SpeakerUser, Text: message, At: time.Now()})
		record = s.Resume.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.completeTurn(ctx, sessionID, record, message, history)
}

func (u *refineUC) RunDiagnostic(ctx context.Context, sessionID string) (*model.StudioSession, error) {
	var record *model.ResumeRecord
	armed := false
	snap, err := u.sessions.Update(ctx, sessionID, func(s *model.StudioSession) error {
		if s.Resume == nil {
			return domain.ErrNoRecord
		}
		if !s.DiagnosticReady || s.DiagnosticDone {
			return nil
		}
		// Consume the trigger before the call so concurrent requests
		// cannot double-fire.
		s.DiagnosticReady = false
		s.DiagnosticDone = true
		record = s.Resume.Clone()
		armed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !armed {
		return snap, nil
	}

	// The diagnostic runs with empty history: it is always the opening turn.
	return u.completeTurn(ctx, sessionID, record, diagnosticPrompt, nil)
}

func (u *refineUC) Apply(ctx context.Context, sessionID string, turnIndex int) (*model.StudioSession, error) {
	return u.sessions.Update(ctx, sessionID, func(s *model.StudioSession) error {
		if turnIndex < 0 || turnIndex >= len(s.Turns) {
			return domain.ErrInvalidArgument
		}
		proposal := s.Turns[turnIndex].Proposal
		if proposal == nil {
			return domain.ErrNoProposal
		}
		next := proposal.Clone()
		if next.Appearance == nil && s.Resume != nil {
			// Content patches rarely carry appearance; keep the user's look.
			next.Appearance = s.Resume.Appearance
		}
		s.Resume = next
		s.AddTurn(model.ChatTurn{Speaker: model.SpeakerAssistant, Text: appliedReply, At: time.Now()})
		return nil
	})
}

// completeTurn calls the model and appends the assistant turn. Failures
// degrade to an error turn; quota exhaustion additionally pushes the
// session into the key-reconfiguration phase.
func (u *refineUC) completeTurn(ctx context.Context, sessionID string, record *model.ResumeRecord, message string, history []model.ChatTurn) (*model.StudioSession, error) {
	reply, err := u.ai.RefineChat(ctx, record, message, history)
	if err != nil {
		u.log.Warn().Err(err).Str("session_id", sessionID).Msg("refine turn failed")
		quota := domain.QuotaExhausted(err)
		snap, uerr := u.sessions.Update(ctx, sessionID, func(s *model.StudioSession) error {
			s.AddTurn(model.ChatTurn{Speaker: model.SpeakerAssistant, Text: timeoutReply, At: time.Now()})
			if quota {
				s.Phase = model.PhaseNeedsKey
				s.Notice = noticeRateLimit
			}
			return nil
		})
		if uerr != nil {
			return nil, uerr
		}
		if quota {
			metrics.IncPhaseTransition(string(model.PhaseNeedsKey))
		}
		return snap, nil
	}

	text, proposal := ParseReply(reply)
	return u.sessions.Update(ctx, sessionID, func(s *model.StudioSession) error {
		s.AddTurn(model.ChatTurn{
			Speaker:  model.SpeakerAssistant,
			Text:     text,
			Proposal: proposal,
			At:       time.Now(),
		})
		return nil
	})
}

// ParseReply splits an assistant reply into display text and an optional
// proposed record. Fences are stripped from the display text whether or
// not their payload parses; a malformed payload simply yields no
// proposal.
func ParseReply(reply string) (string, *model.ResumeRecord) {
	match := jsonFenceRe.FindStringSubmatch(reply)
	if match == nil {
		match = bareFenceRe.FindStringSubmatch(reply)
	}

	text := strings.TrimSpace(anyFenceRe.ReplaceAllString(reply, ""))

	if match == nil {
		return text, nil
	}
	var proposal model.ResumeRecord
	if err := json.Unmarshal([]byte(match[1]), &proposal); err != nil {
		return text, nil
	}
	return text, &proposal
}
