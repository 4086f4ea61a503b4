package adapter

import (
	"context"

	"aura-studio/internal/domain/model"
)

// Generator is the port for the generative backend. One narrow operation
// per logical request type; implementations decide transport and model
// selection. Image inputs arrive as MIME-prefixed base64 data URIs.
type Generator interface {
	// ClassifyPersona runs the fast persona/title/roast classification.
	ClassifyPersona(ctx context.Context, imageDataURI string) (model.Persona, error)

	// ParseResume extracts the full structured record from the upload.
	ParseResume(ctx context.Context, imageDataURI string) (*model.ResumeRecord, error)

	// SuggestThemes proposes three themes for the classified persona.
	// Ids are assigned locally ("dynamic-theme-{i}"); the backend does not
	// supply stable ones.
	SuggestThemes(ctx context.Context, persona, title string) ([]model.Theme, error)

	// GenerateCustomTheme builds a single theme from a user prompt.
	// The returned theme has the custom sentinel id and variant.
	GenerateCustomTheme(ctx context.Context, userPrompt, persona string) (model.Theme, error)

	// GenerateBackground renders an abstract background texture for the
	// theme. Returns a data URI, or "" when the backend reply carries no
	// image part.
	GenerateBackground(ctx context.Context, theme model.Theme, persona string) (string, error)

	// RefineChat sends the refinement prompt (system instruction, current
	// record, capped history, new message) and returns the raw reply text,
	// fences and all.
	RefineChat(ctx context.Context, record *model.ResumeRecord, message string, history []model.ChatTurn) (string, error)
}
