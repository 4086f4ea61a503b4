package model

import (
	"fmt"
	"time"
)

// Phase is the workflow state of a studio session.
type Phase string

const (
	PhaseLanding   Phase = "landing"
	PhaseAnalyzing Phase = "analyzing"
	PhaseEditing   Phase = "editing"
	PhasePublished Phase = "published"
	// PhaseNeedsKey is entered when the backend reports quota exhaustion;
	// the user has to select a project-linked API key to continue.
	PhaseNeedsKey Phase = "needs_key"
)

// Upload is the raw input handed over by the UI: the file identity plus
// its content as a MIME-prefixed base64 data URI.
type Upload struct {
	FileName     string `json:"fileName"`
	FileSize     int64  `json:"fileSize"`
	FileModified int64  `json:"fileModified"`
	DataURI      string `json:"dataUri"`
}

// CacheKey identifies the upload so an unchanged file short-circuits
// reprocessing.
func (u Upload) CacheKey() string {
	return fmt.Sprintf("%s-%d-%d", u.FileName, u.FileSize, u.FileModified)
}

// StudioSession is the aggregate for one tab's workflow run: phase,
// extracted data, theme collection and refinement conversation. All
// caches that used to be ambient (last-processed upload, one-shot
// diagnostic flag) live here so concurrent sessions cannot interfere.
type StudioSession struct {
	ID    string `json:"id"`
	Phase Phase  `json:"phase"`

	Persona string `json:"persona,omitempty"`
	Title   string `json:"title,omitempty"`
	Roast   string `json:"roast,omitempty"`

	Resume *ResumeRecord `json:"resume,omitempty"`
	Themes []Theme       `json:"themes"`

	// GeneratingThemes is raised while the suggest branch is in flight so
	// the UI can show a placeholder.
	GeneratingThemes bool `json:"generatingThemes"`

	// Notice is a dismissible user-facing message for recoverable failures.
	Notice string `json:"notice,omitempty"`

	SiteURL string `json:"siteUrl,omitempty"`

	Turns          []ChatTurn `json:"turns"`
	DiagnosticDone bool       `json:"diagnosticDone"`
	// DiagnosticReady is armed exactly once, when the record first becomes
	// available, and signals that the initial diagnostic turn may run.
	DiagnosticReady bool `json:"diagnosticReady"`

	// LastProcessedKey caches the upload identity of the last successful run.
	LastProcessedKey string `json:"-"`

	// Epoch is bumped at the start of every workflow run; merge callbacks
	// from older runs compare against it and are dropped when stale.
	Epoch uint64 `json:"-"`
	// RunID names the current workflow run for logs and metrics.
	RunID string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewStudioSession(id string) *StudioSession {
	now := time.Now()
	return &StudioSession{
		ID:        id,
		Phase:     PhaseLanding,
		Themes:    []Theme{ThemeZero()},
		Turns:     make([]ChatTurn, 0, 8),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendTheme adds a theme to the visible collection. An existing theme
// with the same id is replaced in place (custom theme regeneration).
func (s *StudioSession) AppendTheme(t Theme) {
	for i := range s.Themes {
		if s.Themes[i].ID == t.ID {
			s.Themes[i] = t
			s.touch()
			return
		}
	}
	s.Themes = append(s.Themes, t)
	s.touch()
}

// MergeThemeBackground attaches a generated background image to the
// theme with the given id. Idempotent: duplicate arrivals and unknown
// ids leave the collection unchanged.
func (s *StudioSession) MergeThemeBackground(themeID, dataURI string) bool {
	if dataURI == "" {
		return false
	}
	for i := range s.Themes {
		if s.Themes[i].ID == themeID {
			if s.Themes[i].Background == dataURI {
				return false
			}
			s.Themes[i].Background = dataURI
			s.touch()
			return true
		}
	}
	return false
}

// AddTurn appends to the conversation. Append-only; history is trimmed
// only when building outbound prompts.
func (s *StudioSession) AddTurn(t ChatTurn) {
	s.Turns = append(s.Turns, t)
	s.touch()
}

// RecentTurns returns up to n of the latest turns for prompt context.
func (s *StudioSession) RecentTurns(n int) []ChatTurn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// Clone produces a deep snapshot safe to hand outside the store's lock.
func (s *StudioSession) Clone() *StudioSession {
	out := *s
	out.Resume = s.Resume.Clone()
	out.Themes = append([]Theme(nil), s.Themes...)
	out.Turns = make([]ChatTurn, len(s.Turns))
	for i, t := range s.Turns {
		t.Proposal = t.Proposal.Clone()
		out.Turns[i] = t
	}
	return &out
}

func (s *StudioSession) touch() { s.UpdatedAt = time.Now() }
